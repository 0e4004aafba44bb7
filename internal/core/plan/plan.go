// Package plan renders execution plan documents for classified tasks.
package plan

import (
	"fmt"
	"time"

	"github.com/clerkd/clerk/internal/core/classify"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/pkg/tmpl"
)

// stepsByAction holds the checklist template per handling routine.
var stepsByAction = map[classify.Action][]string{
	classify.ActionReadAndClassify: {
		"Open and read the file content in full",
		"Identify the document type and primary subject",
		"Extract key information (who, what, when, why)",
		"Summarise in 3-5 bullet points",
		"Tag with relevant labels and categories",
		"Determine if any action items are present",
		"Archive or route to the appropriate folder",
		"Update Dashboard.md with findings",
	},
	classify.ActionGenerateSummary: {
		"Read the full document",
		"Identify main topics and key findings",
		"Write executive summary (200 words or fewer)",
		"List concrete action items and owners",
		"Note any deadlines or hard dependencies",
		"Save summary to Plans/",
		"Update Dashboard.md with summary link",
	},
	classify.ActionProcessTaskList: {
		"Parse all task items from the file",
		"Sort by urgency and importance",
		"Identify dependencies between tasks",
		"Assign effort estimate (S / M / L)",
		"Flag tasks that require human decision",
		"Create structured breakdown in Plans/",
		"Update Dashboard.md task queue",
	},
	classify.ActionAnalyzeAndReport: {
		"Open file and validate its structure",
		"Identify schema, column types, and row count",
		"Check for missing values or anomalies",
		"Compute basic summary statistics",
		"Identify patterns or trends",
		"Generate insight report in Plans/",
		"Update Dashboard.md with findings",
	},
	classify.ActionParseAndRespond: {
		"Parse headers: sender, recipient, date, subject",
		"Extract body content and attachments list",
		"Identify urgency indicators",
		"Extract action items from body",
		"Draft a response outline (requires approval before sending)",
		"File email in appropriate category",
		"Log to communication audit trail",
	},
	classify.ActionReviewCode: {
		"Read and understand the code structure",
		"Check for syntax and obvious logic errors",
		"Review algorithms for correctness",
		"Identify potential security concerns",
		"Note test coverage gaps",
		"Generate code-review summary in Plans/",
		"Flag items requiring developer follow-up",
	},
	classify.ActionCatalogAndArchive: {
		"Verify file integrity (size / hash check)",
		"Determine file type and intended purpose",
		"Generate descriptive canonical filename",
		"Add entry to asset catalog",
		"Move to appropriate archive subfolder",
		"Update asset index in Plans/",
	},
	classify.ActionExtractAndCatalog: {
		"Verify archive is not corrupted",
		"List archive contents without extracting",
		"Assess safety of contents",
		"Extract to a sandboxed staging folder",
		"Catalog extracted files",
		"Route individual files to appropriate folders",
		"Update asset index",
	},
	classify.ActionGeneralProcessing: {
		"Read and understand the file",
		"Determine the most appropriate handling approach",
		"Apply standard processing rules",
		"Document key findings in a note",
		"Route to appropriate vault folder",
		"Update Dashboard.md",
	},
}

// Steps returns the checklist for an action, falling back to the general
// routine for unknown actions.
func Steps(action classify.Action) []string {
	if steps, ok := stepsByAction[action]; ok {
		return steps
	}
	return stepsByAction[classify.ActionGeneralProcessing]
}

const approvalBlock = `
## Human Approval Required

This task requires human review before execution because it either:
- Has **URGENT** priority, or
- Involves **email or code** (potential external impact).

**File placed in:** ` + "`ApprovalHold/`" + `

To proceed:
- **Approve** moves the task to ` + "`Approved/`" + `
- **Reject** moves the task to ` + "`Rejected/`" + `
- **Modify** means edit the checklist, then approve
`

const planTemplate = `---
title: "Plan: {{ .Name }}"
task_file: "{{ .Name }}"
task_type: "{{ .Type }}"
priority: "{{ .Priority }}"
action: "{{ .Action }}"
requires_approval: {{ .RequiresApproval }}
created: "{{ .Created }}"
status: "pending"
tier: "{{ .Tier }}"
---

# Plan: {{ .Name }}

| Field | Value |
|-------|-------|
| Created | {{ .Created }} |
| File | ` + "`{{ .Name }}`" + ` |
| Type | {{ title .Type }} |
| Priority | **{{ upper .Priority }}** |
| Action | {{ title .Action }} |
| Size | {{ comma .Size }} bytes |
| Detected | {{ .Detected }} |
| Requires Approval | {{ if .RequiresApproval }}**Yes**{{ else }}No{{ end }} |
{{ .ApprovalBlock }}
## Execution Checklist

{{ .Checklist }}

## Observations

*Record notes here during execution.*

## Completion Checklist

- [ ] All execution steps completed
- [ ] Observations documented above
- [ ] Dashboard.md updated
- [ ] Task file moved to ` + "`Completed/`" + `
- [ ] Catalog entry written to ` + "`Logs/task_catalog.jsonl`" + `
`

// Render produces the plan document for a task and its classification.
func Render(desc task.Descriptor, res classify.Result, now time.Time) (string, error) {
	checklist := ""
	for i, step := range Steps(res.Action) {
		if i > 0 {
			checklist += "\n"
		}
		checklist += "- [ ] " + step
	}

	approval := ""
	if res.RequiresApproval {
		approval = approvalBlock
	}

	out, err := tmpl.Render(planTemplate, map[string]any{
		"Name":             desc.Name,
		"Type":             string(res.Type),
		"Priority":         string(res.Priority),
		"Action":           string(res.Action),
		"RequiresApproval": res.RequiresApproval,
		"Created":          now.Format(task.CreatedFormat),
		"Detected":         desc.Modified.Format(task.CreatedFormat),
		"Size":             desc.Size,
		"Tier":             task.Tier,
		"ApprovalBlock":    approval,
		"Checklist":        checklist,
	})
	if err != nil {
		return "", fmt.Errorf("could not render plan for %q: %w", desc.Name, err)
	}
	return out, nil
}
