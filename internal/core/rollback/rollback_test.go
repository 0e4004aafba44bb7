package rollback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clerkd/clerk/internal/core/dashboard"
	"github.com/clerkd/clerk/internal/core/ledger"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
)

func newCoordinator(t *testing.T, dryRun bool) (*Coordinator, vault.Layout, *ledger.Catalog) {
	t.Helper()
	layout := vault.NewLayout(t.TempDir())
	require.NoError(t, layout.Ensure())

	log := zerolog.Nop()
	catalog := ledger.New(layout.CatalogFile(), log, dryRun)
	return New(layout, catalog, dashboard.New(layout, log, dryRun), log, dryRun), layout, catalog
}

func writeCard(t *testing.T, layout vault.Layout, stage vault.Stage, name, sourceFile, destPath string) {
	t.Helper()
	content, err := task.EncodeCard(task.Card{
		Title:           "Task: " + sourceFile,
		SourceFile:      sourceFile,
		DestinationPath: destPath,
		Status:          task.StatusNeedsAction,
	}, "body")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(layout.Dir(stage), name), content, 0o644))
}

func writeFile(t *testing.T, layout vault.Layout, stage vault.Stage, name string) string {
	t.Helper()
	path := filepath.Join(layout.Dir(stage), name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestRollbackWorkQueue(t *testing.T) {
	c, layout, _ := newCoordinator(t, false)

	queued := writeFile(t, layout, vault.StageWorkQueue, "20260314_093000_invoice.pdf")
	writeCard(t, layout, vault.StageWorkQueue, "20260314_093000_invoice_meta.md",
		"invoice.pdf", queued)
	other := writeFile(t, layout, vault.StageWorkQueue, "20260314_094500_report.txt")
	writeCard(t, layout, vault.StageWorkQueue, "20260314_094500_report_meta.md",
		"report.txt", other)

	removed := c.Rollback("invoice.pdf")
	assert.Equal(t, 2, removed)

	assert.NoFileExists(t, queued)
	assert.NoFileExists(t, filepath.Join(layout.Dir(vault.StageWorkQueue), "20260314_093000_invoice_meta.md"))
	assert.FileExists(t, other)
	assert.FileExists(t, filepath.Join(layout.Dir(vault.StageWorkQueue), "20260314_094500_report_meta.md"))
	assert.FileExists(t, layout.DashboardFile())
}

func TestRollbackCompletedAndLedger(t *testing.T) {
	c, layout, catalog := newCoordinator(t, false)

	done := writeFile(t, layout, vault.StageCompleted, "20260314_101000_20260314_093000_invoice.pdf")
	writeCard(t, layout, vault.StageCompleted, "20260314_101000_20260314_093000_invoice_meta.md",
		"invoice.pdf", filepath.Join(layout.Dir(vault.StageWorkQueue), "20260314_093000_invoice.pdf"))
	planPath := writeFile(t, layout, vault.StagePlans, "20260314_101000_20260314_093000_invoice_plan.md")

	catalog.Append(ledger.Entry{File: "20260314_093000_invoice.pdf", Status: "completed"})
	catalog.Append(ledger.Entry{File: "20260314_094500_report.txt", Status: "completed"})

	removed := c.Rollback("invoice.pdf")
	assert.Equal(t, 3, removed)

	assert.NoFileExists(t, done)
	assert.NoFileExists(t, planPath)

	entries, err := catalog.Read()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "20260314_094500_report.txt", entries[0].File)
}

func TestRollbackApprovalHold(t *testing.T) {
	c, layout, _ := newCoordinator(t, false)

	held := writeFile(t, layout, vault.StageApprovalHold, "20260314_101000_20260314_093000_send.eml")
	writeCard(t, layout, vault.StageApprovalHold, "20260314_101000_20260314_093000_send_meta.md",
		"send.eml", filepath.Join(layout.Dir(vault.StageWorkQueue), "20260314_093000_send.eml"))
	holdPlan := writeFile(t, layout, vault.StageApprovalHold, "20260314_101000_20260314_093000_send_plan.md")
	canonPlan := writeFile(t, layout, vault.StagePlans, "20260314_101000_20260314_093000_send_plan.md")

	removed := c.Rollback("send.eml")
	assert.Equal(t, 4, removed)

	assert.NoFileExists(t, held)
	assert.NoFileExists(t, holdPlan)
	assert.NoFileExists(t, canonPlan)
}

func TestRollbackSkipsMalformedCards(t *testing.T) {
	c, layout, _ := newCoordinator(t, false)

	queued := writeFile(t, layout, vault.StageWorkQueue, "20260314_093000_invoice.pdf")
	cardPath := filepath.Join(layout.Dir(vault.StageWorkQueue), "20260314_093000_invoice_meta.md")
	require.NoError(t, os.WriteFile(cardPath, []byte("no front matter here"), 0o644))

	removed := c.Rollback("invoice.pdf")
	assert.Equal(t, 0, removed)
	assert.FileExists(t, queued)
	assert.FileExists(t, cardPath)
}

func TestRollbackNoMatch(t *testing.T) {
	c, layout, _ := newCoordinator(t, false)

	queued := writeFile(t, layout, vault.StageWorkQueue, "20260314_093000_invoice.pdf")
	writeCard(t, layout, vault.StageWorkQueue, "20260314_093000_invoice_meta.md",
		"invoice.pdf", queued)

	removed := c.Rollback("unrelated.docx")
	assert.Equal(t, 0, removed)
	assert.FileExists(t, queued)
}

func TestRollbackDryRun(t *testing.T) {
	c, layout, _ := newCoordinator(t, true)

	queued := writeFile(t, layout, vault.StageWorkQueue, "20260314_093000_invoice.pdf")
	writeCard(t, layout, vault.StageWorkQueue, "20260314_093000_invoice_meta.md",
		"invoice.pdf", queued)

	removed := c.Rollback("invoice.pdf")
	assert.Equal(t, 0, removed)
	assert.FileExists(t, queued)
}
