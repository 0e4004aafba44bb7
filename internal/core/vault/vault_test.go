package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    Stage
		to      Stage
		wantErr bool
	}{
		{name: "workqueue to approval hold", from: StageWorkQueue, to: StageApprovalHold},
		{name: "workqueue to completed", from: StageWorkQueue, to: StageCompleted},
		{name: "approval hold to approved", from: StageApprovalHold, to: StageApproved},
		{name: "approval hold to rejected", from: StageApprovalHold, to: StageRejected},
		{name: "intake never moves", from: StageIntake, to: StageWorkQueue, wantErr: true},
		{name: "completed is terminal", from: StageCompleted, to: StageWorkQueue, wantErr: true},
		{name: "workqueue cannot skip to approved", from: StageWorkQueue, to: StageApproved, wantErr: true},
		{name: "approval hold cannot complete directly", from: StageApprovalHold, to: StageCompleted, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLayoutEnsure(t *testing.T) {
	l := NewLayout(t.TempDir())
	require.NoError(t, l.Ensure())

	for _, s := range []Stage{
		StageIntake, StageWorkQueue, StageApprovalHold, StageApproved,
		StageRejected, StageCompleted, StagePlans, StageLogs,
	} {
		info, err := os.Stat(l.Dir(s))
		require.NoError(t, err, "stage %s", s)
		assert.True(t, info.IsDir())
	}

	// Idempotent.
	require.NoError(t, l.Ensure())
}

func TestLayoutFiles(t *testing.T) {
	l := NewLayout(t.TempDir())
	require.NoError(t, l.Ensure())

	assert.Equal(t, filepath.Join(l.Root, "Dashboard.md"), l.DashboardFile())
	assert.Equal(t, filepath.Join(l.Root, "Logs", "task_catalog.jsonl"), l.CatalogFile())
}

func TestListFilesSortedByModTime(t *testing.T) {
	l := NewLayout(t.TempDir())
	require.NoError(t, l.Ensure())

	dir := l.Dir(StageWorkQueue)
	old := filepath.Join(dir, "old.txt")
	newer := filepath.Join(dir, "newer.txt")
	require.NoError(t, os.WriteFile(old, []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("b"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	// Subdirectories are skipped.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	files, err := l.ListFiles(StageWorkQueue)
	require.NoError(t, err)
	assert.Equal(t, []string{old, newer}, files)
}

func TestListFilesMissingDir(t *testing.T) {
	l := NewLayout(filepath.Join(t.TempDir(), "nope"))
	files, err := l.ListFiles(StageWorkQueue)
	require.NoError(t, err)
	assert.Empty(t, files)
}
