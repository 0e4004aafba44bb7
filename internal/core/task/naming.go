package task

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// cardSuffix is the naming pattern for metadata cards. Files matching it are
// never treated as task files, which prevents ingestion feedback loops.
const cardSuffix = "_meta.md"

// TimestampFormat is the second-granular prefix used for generated names.
const TimestampFormat = "20060102_150405"

// CardName returns the metadata card filename for a task stem.
func CardName(stem string) string {
	return stem + cardSuffix
}

// IsCardName reports whether a filename matches the metadata card pattern.
func IsCardName(name string) bool {
	return strings.HasSuffix(name, cardSuffix)
}

// Stem returns the base filename without its extension.
func Stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func baseName(path string) string {
	return filepath.Base(path)
}

// SanitizeStem strips filesystem-unsafe characters from a filename stem.
func SanitizeStem(stem string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, stem)
}

// DestName builds the timestamp-prefixed destination name for an intake file.
func DestName(now time.Time, sourceName string) string {
	ts := now.Format(TimestampFormat)
	return fmt.Sprintf("%s_%s%s", ts, SanitizeStem(Stem(sourceName)), filepath.Ext(sourceName))
}

// PlanName builds the plan document name for a task stem.
func PlanName(now time.Time, stem string) string {
	return fmt.Sprintf("%s_%s_plan.md", now.Format(TimestampFormat), stem)
}

// HashFile returns the MD5 hex digest of a file's content, used for card
// integrity records. Returns "unknown" with the error when the file cannot
// be read, so callers can still emit a degraded card.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "unknown", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "unknown", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
