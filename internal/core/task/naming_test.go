package task

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardNaming(t *testing.T) {
	assert.Equal(t, "20250301_100000_report_meta.md", CardName("20250301_100000_report"))
	assert.True(t, IsCardName("20250301_100000_report_meta.md"))
	assert.False(t, IsCardName("20250301_100000_report.pdf"))
	assert.False(t, IsCardName("notes.md"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "report", Stem("report.pdf"))
	assert.Equal(t, "archive.tar", Stem("/some/dir/archive.tar.gz"))
	assert.Equal(t, "plain", Stem("plain"))
}

func TestSanitizeStem(t *testing.T) {
	assert.Equal(t, "a_b_c", SanitizeStem(`a/b\c`))
	assert.Equal(t, "q__notes_", SanitizeStem(`q*?notes|`))
	assert.Equal(t, "clean-name", SanitizeStem("clean-name"))
}

func TestDestName(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "20250301_100000_invoice_urgent.pdf", DestName(now, "invoice_urgent.pdf"))
	assert.Equal(t, "20250301_100000_a_b.txt", DestName(now, `a:b.txt`))
}

func TestPlanName(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "20250301_100000_20250301_095900_notes_plan.md", PlanName(now, "20250301_095900_notes"))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	hash, err := HashFile(path)
	require.NoError(t, err)
	// md5("hello")
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", hash)
}

func TestHashFileMissing(t *testing.T) {
	hash, err := HashFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.Equal(t, "unknown", hash)
}
