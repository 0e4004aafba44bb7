// Package task defines the task domain model and the metadata card format.
//
// A task is a physical file paired with a metadata card: a YAML front matter
// header plus a free-form markdown body. The card is the single source of
// truth linking a relocated task file back to its intake origin.
package task

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Status is the lifecycle status recorded in a card.
type Status string

const (
	StatusNeedsAction Status = "needs_action"
	StatusCompleted   Status = "completed"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Priority is a task priority tier.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	// PriorityUnset marks a freshly ingested task, pending classification.
	PriorityUnset Priority = "unset"
)

// Card is the structured header of a metadata card.
type Card struct {
	Title           string   `yaml:"title"`
	Created         string   `yaml:"created"`
	SourceFile      string   `yaml:"source_file"`
	SourcePath      string   `yaml:"source_path"`
	DestinationPath string   `yaml:"destination_path"`
	Status          Status   `yaml:"status"`
	Priority        Priority `yaml:"priority"`
	FileSizeBytes   int64    `yaml:"file_size_bytes"`
	FileHashMD5     string   `yaml:"file_hash_md5"`
	Tier            string   `yaml:"tier"`
}

// CreatedFormat is the timestamp layout used inside cards and documents.
const CreatedFormat = "2006-01-02 15:04:05"

// ErrNoFrontMatter is returned when card content has no front matter block.
var ErrNoFrontMatter = errors.New("no front matter block")

// ParseCard splits card content into its structured header and markdown body.
// The front matter must be delimited by "---" on its own line at the start of
// the content. Unknown header fields are ignored.
func ParseCard(content []byte) (Card, string, error) {
	scanner := bufio.NewScanner(strings.NewReader(string(content)))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "---" {
		return Card{}, "", ErrNoFrontMatter
	}

	var header []string
	closed := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			closed = true
			break
		}
		header = append(header, line)
	}
	if !closed {
		return Card{}, "", ErrNoFrontMatter
	}

	var card Card
	if err := yaml.Unmarshal([]byte(strings.Join(header, "\n")), &card); err != nil {
		return Card{}, "", fmt.Errorf("parse card header: %w", err)
	}

	var body strings.Builder
	for scanner.Scan() {
		body.WriteString(scanner.Text())
		body.WriteByte('\n')
	}

	return card, strings.TrimPrefix(body.String(), "\n"), nil
}

// EncodeCard renders a card header and body into file content.
func EncodeCard(card Card, body string) ([]byte, error) {
	header, err := yaml.Marshal(card)
	if err != nil {
		return nil, fmt.Errorf("encode card header: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}
