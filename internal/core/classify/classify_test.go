package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clerkd/clerk/internal/core/task"
)

func TestRuleBasedClassify(t *testing.T) {
	tests := map[string]struct {
		in   Input
		want Result
	}{
		"plain note defaults": {
			in: Input{Name: "notes.txt", Ext: ".txt"},
			want: Result{
				Type:     TypeNote,
				Priority: task.PriorityMedium,
				Action:   ActionReadAndClassify,
			},
		},
		"urgent invoice requires approval": {
			in: Input{Name: "invoice_urgent.pdf", Ext: ".pdf"},
			want: Result{
				Type:             TypeDocument,
				Priority:         task.PriorityUrgent,
				Action:           ActionGenerateSummary,
				RequiresApproval: true,
			},
		},
		"code always requires approval": {
			in: Input{Name: "helper.py", Ext: ".py"},
			want: Result{
				Type:             TypeCode,
				Priority:         task.PriorityMedium,
				Action:           ActionReviewCode,
				RequiresApproval: true,
			},
		},
		"email always requires approval": {
			in: Input{Name: "reply.eml", Ext: ".eml"},
			want: Result{
				Type:             TypeEmail,
				Priority:         task.PriorityMedium,
				Action:           ActionParseAndRespond,
				RequiresApproval: true,
			},
		},
		"low priority keyword": {
			in: Input{Name: "fyi_minutes.docx", Ext: ".docx"},
			want: Result{
				Type:     TypeDocument,
				Priority: task.PriorityLow,
				Action:   ActionReadAndClassify,
			},
		},
		"urgent outranks low when both match": {
			in: Input{Name: "urgent_but_optional.txt", Ext: ".txt"},
			want: Result{
				Type:             TypeNote,
				Priority:         task.PriorityUrgent,
				Action:           ActionReadAndClassify,
				RequiresApproval: true,
			},
		},
		"keyword action override": {
			in: Input{Name: "todo_list.md", Ext: ".md"},
			want: Result{
				Type:     TypeNote,
				Priority: task.PriorityMedium,
				Action:   ActionProcessTaskList,
			},
		},
		"meeting summary action": {
			in: Input{Name: "meeting_deadline.txt", Ext: ".txt"},
			want: Result{
				Type:     TypeNote,
				Priority: task.PriorityHigh,
				Action:   ActionGenerateSummary,
			},
		},
		"spreadsheet analysis": {
			in: Input{Name: "q3_numbers.xlsx", Ext: ".xlsx"},
			want: Result{
				Type:     TypeSpreadsheet,
				Priority: task.PriorityMedium,
				Action:   ActionAnalyzeAndReport,
			},
		},
		"unknown extension falls back": {
			in: Input{Name: "blob.xyz", Ext: ".xyz"},
			want: Result{
				Type:     TypeUnknown,
				Priority: task.PriorityMedium,
				Action:   ActionGeneralProcessing,
			},
		},
		"case insensitive matching": {
			in: Input{Name: "URGENT_Report.PDF", Ext: ".PDF"},
			want: Result{
				Type:             TypeDocument,
				Priority:         task.PriorityUrgent,
				Action:           ActionGenerateSummary,
				RequiresApproval: true,
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got := RuleBased{}.Classify(tc.in)
			assert.Equal(t, tc.want, got)
		})
	}
}
