package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Layout resolves stage directories and well-known files under a vault root.
type Layout struct {
	Root string
}

// NewLayout returns a layout rooted at the given directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// Dir returns the absolute directory for a stage.
func (l Layout) Dir(s Stage) string {
	return filepath.Join(l.Root, string(s))
}

// DashboardFile is the generated status document at the vault root.
func (l Layout) DashboardFile() string {
	return filepath.Join(l.Root, "Dashboard.md")
}

// CatalogFile is the append-only JSONL ledger of auto-executed tasks.
func (l Layout) CatalogFile() string {
	return filepath.Join(l.Dir(StageLogs), "task_catalog.jsonl")
}

// LogFile is the default engine log location.
func (l Layout) LogFile() string {
	return filepath.Join(l.Dir(StageLogs), "clerk.log")
}

// Ensure creates every stage directory. Existing directories are left alone.
func (l Layout) Ensure() error {
	stages := []Stage{
		StageIntake, StageWorkQueue, StageApprovalHold, StageApproved,
		StageRejected, StageCompleted, StagePlans, StageLogs,
	}
	for _, s := range stages {
		if err := os.MkdirAll(l.Dir(s), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", s, err)
		}
	}
	return nil
}

// ListFiles returns the regular files in a stage directory sorted by
// modification time, oldest first. A missing directory yields an empty list.
func (l Layout) ListFiles(s Stage) ([]string, error) {
	dir := l.Dir(s)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s dir: %w", s, err)
	}

	type fileMod struct {
		path string
		mod  int64
	}
	files := make([]fileMod, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileMod{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod < files[j].mod })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}
