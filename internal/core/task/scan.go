package task

import (
	"os"
	"path/filepath"
	"time"

	"github.com/clerkd/clerk/internal/core/vault"
)

// Descriptor pairs a pending task file with its metadata card, if one exists.
// A nil Card means the ingestion was degraded; the task is still eligible.
type Descriptor struct {
	Path     string
	CardPath string
	Card     *Card

	Name     string
	Stem     string
	Ext      string
	Size     int64
	Modified time.Time
}

// ScanQueue returns descriptors for every pending task in the work queue,
// oldest first. Task files are every non-card file; the paired card is looked
// up by stem.
func ScanQueue(layout vault.Layout) ([]Descriptor, error) {
	files, err := layout.ListFiles(vault.StageWorkQueue)
	if err != nil {
		return nil, err
	}

	var tasks []Descriptor
	for _, path := range files {
		name := filepath.Base(path)
		if IsCardName(name) {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			// Raced with a concurrent removal; skip.
			continue
		}

		d := Descriptor{
			Path:     path,
			Name:     name,
			Stem:     Stem(name),
			Ext:      filepath.Ext(name),
			Size:     info.Size(),
			Modified: info.ModTime(),
		}

		cardPath := filepath.Join(layout.Dir(vault.StageWorkQueue), CardName(d.Stem))
		if content, err := os.ReadFile(cardPath); err == nil {
			d.CardPath = cardPath
			if card, _, err := ParseCard(content); err == nil {
				d.Card = &card
			}
		}

		tasks = append(tasks, d)
	}
	return tasks, nil
}
