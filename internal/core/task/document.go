package task

import (
	"fmt"
	"os"
	"time"

	"github.com/clerkd/clerk/pkg/tmpl"
)

// Tier labels the rule-based processing generation in cards and ledger rows.
const Tier = "bronze"

// NewCard builds a metadata card for a freshly detected intake file. The
// integrity hash is best-effort: an unreadable source produces a card with
// hash "unknown" rather than failing ingestion.
func NewCard(sourcePath, destPath string, now time.Time) (Card, error) {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return Card{}, fmt.Errorf("stat source: %w", err)
	}

	hash, _ := HashFile(sourcePath)

	return Card{
		Title:           "Task: " + baseName(sourcePath),
		Created:         now.Format(CreatedFormat),
		SourceFile:      baseName(sourcePath),
		SourcePath:      sourcePath,
		DestinationPath: destPath,
		Status:          StatusNeedsAction,
		Priority:        PriorityUnset,
		FileSizeBytes:   info.Size(),
		FileHashMD5:     hash,
		Tier:            Tier,
	}, nil
}

const cardBodyTemplate = `# Task: {{ .SourceFile }}

**Received:** {{ .Created }}
**Status:** Needs Action
**Priority:** Unset (pending classification)

## File Details

| Field | Value |
|-------|-------|
| Filename | ` + "`{{ .SourceFile }}`" + ` |
| Destination | ` + "`{{ .DestName }}`" + ` |
| Size | {{ comma .FileSizeBytes }} bytes |
| MD5 Hash | ` + "`{{ .FileHashMD5 }}`" + ` |
| Detected At | {{ .Created }} |

## Processing Checklist

- [x] File detected in Intake/
- [x] Copied to WorkQueue/
- [x] Metadata generated
- [ ] Classification pending
- [ ] Plan generation pending
- [ ] Routing pending
`

// RenderCardDocument produces the full card file content: the structured
// header followed by the human-readable body.
func RenderCardDocument(card Card) ([]byte, error) {
	body, err := tmpl.Render(cardBodyTemplate, map[string]any{
		"SourceFile":    card.SourceFile,
		"DestName":      baseName(card.DestinationPath),
		"Created":       card.Created,
		"FileSizeBytes": card.FileSizeBytes,
		"FileHashMD5":   card.FileHashMD5,
	})
	if err != nil {
		return nil, fmt.Errorf("render card body: %w", err)
	}
	return EncodeCard(card, body)
}
