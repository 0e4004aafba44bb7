// Package classify decides a task's type, priority, action, and approval
// requirement. The engine depends only on the Classifier contract; the
// rule-based implementation is a stand-in for smarter backends.
package classify

import (
	"strings"
	"time"

	"github.com/clerkd/clerk/internal/core/task"
)

// TaskType categorizes a task by its content kind.
type TaskType string

const (
	TypeDocument    TaskType = "document"
	TypeSpreadsheet TaskType = "spreadsheet"
	TypeImage       TaskType = "image"
	TypeCode        TaskType = "code"
	TypeEmail       TaskType = "email"
	TypeArchive     TaskType = "archive"
	TypeNote        TaskType = "note"
	TypeData        TaskType = "data"
	TypeUnknown     TaskType = "unknown"
)

// Action names the handling routine a plan is generated for.
type Action string

const (
	ActionReadAndClassify   Action = "read_and_classify"
	ActionGenerateSummary   Action = "generate_summary"
	ActionProcessTaskList   Action = "process_task_list"
	ActionAnalyzeAndReport  Action = "analyze_and_report"
	ActionParseAndRespond   Action = "parse_and_respond"
	ActionReviewCode        Action = "review_code"
	ActionCatalogAndArchive Action = "catalog_and_archive"
	ActionExtractAndCatalog Action = "extract_and_catalog"
	ActionGeneralProcessing Action = "general_processing"
)

// Input is the task descriptor a classifier consumes.
type Input struct {
	Name     string
	Ext      string
	Size     int64
	Modified time.Time
}

// Result is the classification outcome.
type Result struct {
	Type             TaskType
	Priority         task.Priority
	Action           Action
	RequiresApproval bool
}

// Classifier is the pluggable decision function.
type Classifier interface {
	Classify(in Input) Result
}

// typeByExt maps file extensions to task types.
var typeByExt = map[TaskType][]string{
	TypeDocument:    {".pdf", ".docx", ".doc", ".rtf", ".odt"},
	TypeSpreadsheet: {".xlsx", ".xls", ".ods"},
	TypeImage:       {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp"},
	TypeCode: {".py", ".js", ".ts", ".html", ".css", ".json", ".yaml",
		".yml", ".sh", ".bat", ".ps1", ".rb", ".go"},
	TypeEmail:   {".eml", ".msg"},
	TypeArchive: {".zip", ".tar", ".gz", ".7z", ".rar"},
	TypeNote:    {".txt", ".md"},
	TypeData:    {".csv", ".tsv", ".xml"},
}

// priorityKeywords maps filename keywords to priority tiers. Medium is the
// default when no keyword matches.
var priorityKeywords = map[task.Priority][]string{
	task.PriorityUrgent: {"urgent", "asap", "critical", "emergency", "immediate"},
	task.PriorityHigh:   {"important", "high", "priority", "deadline", "needed"},
	task.PriorityLow:    {"low", "minor", "optional", "sometime", "fyi"},
}

// priorityOrder fixes the keyword scan order so urgent wins over low when a
// name matches several tiers.
var priorityOrder = []task.Priority{task.PriorityUrgent, task.PriorityHigh, task.PriorityLow}

// actionByType is the per-type default action.
var actionByType = map[TaskType]Action{
	TypeDocument:    ActionReadAndClassify,
	TypeSpreadsheet: ActionAnalyzeAndReport,
	TypeImage:       ActionCatalogAndArchive,
	TypeCode:        ActionReviewCode,
	TypeEmail:       ActionParseAndRespond,
	TypeArchive:     ActionExtractAndCatalog,
	TypeNote:        ActionReadAndClassify,
	TypeData:        ActionAnalyzeAndReport,
	TypeUnknown:     ActionGeneralProcessing,
}

// keywordActions override the type default when the filename carries intent.
var keywordActions = []struct {
	keyword string
	action  Action
}{
	{"review", ActionReadAndClassify},
	{"report", ActionGenerateSummary},
	{"summary", ActionGenerateSummary},
	{"task", ActionProcessTaskList},
	{"todo", ActionProcessTaskList},
	{"meeting", ActionGenerateSummary},
	{"invoice", ActionGenerateSummary},
}

// approvalTypes always require human sign-off: acting on them can have
// effects outside the vault.
var approvalTypes = map[TaskType]struct{}{
	TypeEmail: {},
	TypeCode:  {},
}

// RuleBased classifies by filename and extension heuristics.
type RuleBased struct{}

// Classify implements Classifier.
func (RuleBased) Classify(in Input) Result {
	nameLower := strings.ToLower(in.Name)
	ext := strings.ToLower(in.Ext)

	taskType := TypeUnknown
	for ttype, exts := range typeByExt {
		for _, e := range exts {
			if e == ext {
				taskType = ttype
				break
			}
		}
		if taskType != TypeUnknown {
			break
		}
	}

	priority := task.PriorityMedium
	for _, tier := range priorityOrder {
		if containsAny(nameLower, priorityKeywords[tier]) {
			priority = tier
			break
		}
	}

	action, ok := actionByType[taskType]
	if !ok {
		action = ActionGeneralProcessing
	}
	for _, ka := range keywordActions {
		if strings.Contains(nameLower, ka.keyword) {
			action = ka.action
			break
		}
	}

	_, consequential := approvalTypes[taskType]

	return Result{
		Type:             taskType,
		Priority:         priority,
		Action:           action,
		RequiresApproval: priority == task.PriorityUrgent || consequential,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
