// Package dashboard regenerates the vault's Dashboard.md from live state.
package dashboard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/classify"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
	"github.com/clerkd/clerk/pkg/tmpl"
)

const maxTableRows = 15

// Updater rewrites Dashboard.md with current vault statistics.
type Updater struct {
	layout vault.Layout
	log    zerolog.Logger
	dryRun bool
}

func New(layout vault.Layout, log zerolog.Logger, dryRun bool) *Updater {
	return &Updater{
		layout: layout,
		log:    log.With().Str("component", "dashboard").Logger(),
		dryRun: dryRun,
	}
}

const dashboardTemplate = `---
last_updated: "{{ .Now }}"
system: "clerk"
auto_generated: true
---

# Clerk Dashboard

> **Last Updated:** {{ .NowLong }}
> **Mode:** {{ if .DryRun }}DRY RUN{{ else }}ACTIVE{{ end }}

---

## System Overview

| Metric | Count |
|--------|-------|
| Intake | {{ .IntakeCount }} |
| Work Queue | {{ .QueueCount }} |
| Plans Generated | {{ .PlanCount }} |
| Approval Hold | {{ .HoldCount }} |
| Approved | {{ .ApprovedCount }} |
| Rejected | {{ .RejectedCount }} |
| Completed Today | {{ .DoneTodayCount }} |
| Total Completed | {{ .DoneCount }} |

---

## Pending Tasks

| File | Age | Type | Priority |
|------|-----|------|----------|
{{ .PendingTable }}

---

## Completed Today

| File | Time | Status |
|------|------|--------|
{{ .DoneTable }}

---

## Alerts

{{ .Alerts }}

---

## Quick Navigation

- [[Intake]] drop new tasks here
- [[WorkQueue]] awaiting processing
- [[Plans]] generated execution plans
- [[ApprovalHold]] awaiting human review
- [[Approved]] cleared for execution
- [[Rejected]] declined tasks
- [[Completed]] finished tasks
- [[Logs]] audit trail and catalog
`

// Update rewrites Dashboard.md. In dry-run mode the document is rendered but
// not written.
func (u *Updater) Update(now time.Time) error {
	intake, err := u.layout.ListFiles(vault.StageIntake)
	if err != nil {
		return fmt.Errorf("could not list intake: %w", err)
	}
	descs, err := task.ScanQueue(u.layout)
	if err != nil {
		return fmt.Errorf("could not scan work queue: %w", err)
	}
	plans, err := u.layout.ListFiles(vault.StagePlans)
	if err != nil {
		return fmt.Errorf("could not list plans: %w", err)
	}
	hold, err := u.layout.ListFiles(vault.StageApprovalHold)
	if err != nil {
		return fmt.Errorf("could not list approval hold: %w", err)
	}
	approved, err := u.layout.ListFiles(vault.StageApproved)
	if err != nil {
		return fmt.Errorf("could not list approved: %w", err)
	}
	rejected, err := u.layout.ListFiles(vault.StageRejected)
	if err != nil {
		return fmt.Errorf("could not list rejected: %w", err)
	}
	done, err := u.layout.ListFiles(vault.StageCompleted)
	if err != nil {
		return fmt.Errorf("could not list completed: %w", err)
	}

	var doneToday []completedFile
	for _, path := range done {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if sameDay(info.ModTime(), now) {
			doneToday = append(doneToday, completedFile{filepath.Base(path), info.ModTime()})
		}
	}

	content, err := tmpl.Render(dashboardTemplate, map[string]any{
		"Now":            now.Format(task.CreatedFormat),
		"NowLong":        now.Format("Monday, January 2, 2006 at 15:04:05"),
		"DryRun":         u.dryRun,
		"IntakeCount":    len(intake),
		"QueueCount":     len(descs),
		"PlanCount":      len(plans),
		"HoldCount":      len(hold),
		"ApprovedCount":  len(approved),
		"RejectedCount":  len(rejected),
		"DoneTodayCount": len(doneToday),
		"DoneCount":      len(done),
		"PendingTable":   pendingTable(descs, now),
		"DoneTable":      doneTable(doneToday),
		"Alerts":         alerts(len(descs), len(hold), len(intake)),
	})
	if err != nil {
		return fmt.Errorf("could not render dashboard: %w", err)
	}

	if u.dryRun {
		u.log.Info().Msg("dry-run: dashboard not written")
		return nil
	}
	if err := os.WriteFile(u.layout.DashboardFile(), []byte(content), 0o644); err != nil {
		return fmt.Errorf("could not write dashboard: %w", err)
	}
	u.log.Debug().Int("queue", len(descs)).Int("hold", len(hold)).Msg("dashboard updated")
	return nil
}

func pendingTable(descs []task.Descriptor, now time.Time) string {
	if len(descs) == 0 {
		return "| - | - | - | - |"
	}
	var classifier classify.RuleBased
	rows := make([]string, 0, maxTableRows)
	for i, d := range descs {
		if i >= maxTableRows {
			break
		}
		age := int(now.Sub(d.Modified).Minutes())
		res := classifier.Classify(classify.Input{Name: d.Name, Ext: d.Ext, Size: d.Size, Modified: d.Modified})
		priority := res.Priority
		if d.Card != nil && d.Card.Priority != "" && d.Card.Priority != task.PriorityUnset {
			priority = d.Card.Priority
		}
		rows = append(rows, fmt.Sprintf("| `%s` | %dm ago | %s | %s |",
			d.Name, age, titleize(string(res.Type)), titleize(string(priority))))
	}
	return strings.Join(rows, "\n")
}

func titleize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// completedFile pairs a completed file's name with its finish time.
type completedFile struct {
	name     string
	finished time.Time
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func doneTable(files []completedFile) string {
	if len(files) == 0 {
		return "| - | - | - |"
	}
	rows := make([]string, 0, maxTableRows)
	for i, f := range files {
		if i >= maxTableRows {
			break
		}
		rows = append(rows, fmt.Sprintf("| `%s` | %s | Completed |", f.name, f.finished.Format("15:04")))
	}
	return strings.Join(rows, "\n")
}

func alerts(queue, hold, intake int) string {
	var out []string
	if queue > 10 {
		out = append(out, fmt.Sprintf("- **High load:** %d items awaiting action", queue))
	}
	if hold > 0 {
		out = append(out, fmt.Sprintf("- **Approval needed:** %d item(s) in ApprovalHold/", hold))
	}
	if intake > 5 {
		out = append(out, fmt.Sprintf("- **Intake filling:** %d items unprocessed", intake))
	}
	if len(out) == 0 {
		return "- No active alerts"
	}
	return strings.Join(out, "\n")
}
