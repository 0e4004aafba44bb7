package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *Catalog {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "Logs", "task_catalog.jsonl"), zerolog.Nop(), false)
}

func entry(file string) Entry {
	return Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		File:      file,
		Type:      "note",
		Action:    "read_and_classify",
		Priority:  "medium",
		Tier:      "bronze",
		Status:    "completed",
	}
}

func TestAppendAndRead(t *testing.T) {
	c := newCatalog(t)

	c.Append(entry("20250301_100000_notes.txt"))
	c.Append(entry("20250301_100001_report.pdf"))

	entries, err := c.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "20250301_100000_notes.txt", entries[0].File)
	assert.Equal(t, "completed", entries[0].Status)
}

func TestReadMissingFile(t *testing.T) {
	c := newCatalog(t)
	entries, err := c.Read()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPrune(t *testing.T) {
	c := newCatalog(t)
	c.Append(entry("20250301_100000_notes.txt"))
	c.Append(entry("20250301_100001_report.pdf"))
	c.Append(entry("20250301_100002_other.csv"))

	dropped, err := c.Prune(map[string]struct{}{
		"20250301_100000_notes":  {},
		"20250301_100002_other":  {},
		"20250301_999999_absent": {},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, dropped)

	entries, err := c.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "20250301_100001_report.pdf", entries[0].File)
}

func TestPruneKeepsMalformedLines(t *testing.T) {
	c := newCatalog(t)
	c.Append(entry("20250301_100000_notes.txt"))

	// Inject a hand-edited, unparseable line.
	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("not json at all\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	dropped, err := c.Prune(map[string]struct{}{"20250301_100000_notes": {}})
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	content, err := os.ReadFile(c.path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), "not json at all"))
}

func TestPruneNoMatches(t *testing.T) {
	c := newCatalog(t)
	c.Append(entry("20250301_100000_notes.txt"))

	before, err := os.ReadFile(c.path)
	require.NoError(t, err)

	dropped, err := c.Prune(map[string]struct{}{"unrelated": {}})
	require.NoError(t, err)
	assert.Zero(t, dropped)

	after, err := os.ReadFile(c.path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPruneMissingCatalog(t *testing.T) {
	c := newCatalog(t)
	dropped, err := c.Prune(map[string]struct{}{"x": {}})
	require.NoError(t, err)
	assert.Zero(t, dropped)
}

func TestDryRunAppendWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task_catalog.jsonl")
	c := New(path, zerolog.Nop(), true)
	c.Append(entry("20250301_100000_notes.txt"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
