// Package ledger maintains the append-only task catalog: one JSON object per
// line, one line per terminal task action.
package ledger

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Entry is a single catalog row.
type Entry struct {
	Timestamp string `json:"timestamp"`
	File      string `json:"file"`
	Type      string `json:"type"`
	Action    string `json:"action"`
	Priority  string `json:"priority"`
	Tier      string `json:"tier"`
	Status    string `json:"status"`
	DryRun    bool   `json:"dry_run"`
}

// Catalog appends and prunes the JSONL task catalog. No locking is provided;
// pruning is only ever invoked by the rollback path.
type Catalog struct {
	path   string
	log    zerolog.Logger
	dryRun bool
}

// New returns a catalog backed by the given file path.
func New(path string, log zerolog.Logger, dryRun bool) *Catalog {
	return &Catalog{
		path:   path,
		log:    log.With().Str("component", "ledger").Logger(),
		dryRun: dryRun,
	}
}

// Append writes one entry. Failures are logged and never raised to the
// caller: a missing catalog row must not fail the task that produced it.
func (c *Catalog) Append(e Entry) {
	if c.dryRun {
		c.log.Info().Interface("entry", e).Msg("[dry-run] would append catalog entry")
		return
	}

	if err := c.append(e); err != nil {
		c.log.Warn().Err(err).Str("file", e.File).Msg("catalog append failed")
	}
}

func (c *Catalog) append(e Entry) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Read returns every parseable entry in the catalog. A missing file yields
// an empty list.
func (c *Catalog) Read() ([]Entry, error) {
	f, err := os.Open(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, scanner.Err()
}

// Prune rewrites the catalog without entries whose file-name stem is in
// stems. Unparseable lines are kept verbatim: ambiguous evidence is never
// deleted. Returns the number of entries dropped.
func (c *Catalog) Prune(stems map[string]struct{}) (int, error) {
	if len(stems) == 0 {
		return 0, nil
	}

	content, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read catalog: %w", err)
	}

	var kept []string
	dropped := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			kept = append(kept, line)
			continue
		}
		stem := strings.TrimSuffix(e.File, filepath.Ext(e.File))
		if _, ok := stems[stem]; ok {
			c.log.Info().Str("file", e.File).Msg("removed catalog entry")
			dropped++
			continue
		}
		kept = append(kept, line)
	}

	if dropped == 0 {
		return 0, nil
	}

	if c.dryRun {
		c.log.Info().Int("dropped", dropped).Msg("[dry-run] would rewrite catalog")
		return dropped, nil
	}

	out := ""
	if len(kept) > 0 {
		out = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(c.path, []byte(out), 0o644); err != nil {
		return 0, fmt.Errorf("rewrite catalog: %w", err)
	}
	return dropped, nil
}
