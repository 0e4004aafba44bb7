// Package safemove relocates files with a copy-verify-delete sequence.
//
// The source is never deleted until the destination is confirmed to exist at
// the exact source size, so at every instant at least one full copy of the
// file exists. Destination name collisions resolve with a numeric suffix
// rather than an overwrite.
package safemove

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// ErrSizeMismatch is returned when the copied destination does not match the
// source size. The partial destination is removed and the source kept.
var ErrSizeMismatch = errors.New("size mismatch after copy")

// Mover performs crash-safe relocations between vault directories.
type Mover struct {
	log    zerolog.Logger
	dryRun bool

	// copyFn is replaced in tests to inject torn writes.
	copyFn func(src, dest string) error
}

// New returns a mover. In dry-run mode every operation is logged and the
// filesystem is left untouched; the would-be destination path is still
// computed and returned so callers can report it.
func New(log zerolog.Logger, dryRun bool) *Mover {
	return &Mover{
		log:    log.With().Str("component", "safemove").Logger(),
		dryRun: dryRun,
		copyFn: copyFile,
	}
}

// Move relocates src into destDir, optionally renaming it. newName may be
// empty to keep the source basename. Returns the final destination path.
//
// On any failure after a partial copy the destination is removed and the
// source left in place.
func (m *Mover) Move(src, destDir, newName string) (string, error) {
	dest, err := m.prepare(src, destDir, newName)
	if err != nil {
		return "", err
	}

	if m.dryRun {
		m.log.Info().Str("src", src).Str("dest", dest).Msg("[dry-run] would move")
		return dest, nil
	}

	if err := m.copyVerify(src, dest); err != nil {
		return "", err
	}

	if err := os.Remove(src); err != nil {
		// Both copies exist; the transient both-exist state is safe, but the
		// move is incomplete.
		return "", fmt.Errorf("remove source after copy: %w", err)
	}

	m.log.Debug().Str("src", src).Str("dest", dest).Msg("moved")
	return dest, nil
}

// CopyTo duplicates src into destDir without removing the source, used when
// an artifact must exist in a holding area while the canonical copy remains
// elsewhere.
func (m *Mover) CopyTo(src, destDir, newName string) (string, error) {
	dest, err := m.prepare(src, destDir, newName)
	if err != nil {
		return "", err
	}

	if m.dryRun {
		m.log.Info().Str("src", src).Str("dest", dest).Msg("[dry-run] would copy")
		return dest, nil
	}

	if err := m.copyVerify(src, dest); err != nil {
		return "", err
	}

	m.log.Debug().Str("src", src).Str("dest", dest).Msg("copied")
	return dest, nil
}

func (m *Mover) prepare(src, destDir, newName string) (string, error) {
	if newName == "" {
		newName = filepath.Base(src)
	}
	if !m.dryRun {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return "", fmt.Errorf("create dest dir: %w", err)
		}
	}
	return CollisionSafePath(filepath.Join(destDir, newName)), nil
}

// copyVerify copies src to dest and confirms the destination size equals the
// source size before reporting success. A failed verification removes the
// partial destination.
func (m *Mover) copyVerify(src, dest string) error {
	if err := m.copyFn(src, dest); err != nil {
		m.cleanup(dest)
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		m.cleanup(dest)
		return fmt.Errorf("stat source after copy: %w", err)
	}
	destInfo, err := os.Stat(dest)
	if err != nil {
		m.cleanup(dest)
		return fmt.Errorf("stat destination after copy: %w", err)
	}
	if destInfo.Size() != srcInfo.Size() {
		m.cleanup(dest)
		return fmt.Errorf("%s: %w (src=%d dest=%d)",
			filepath.Base(src), ErrSizeMismatch, srcInfo.Size(), destInfo.Size())
	}

	// Best effort metadata preservation.
	_ = os.Chmod(dest, srcInfo.Mode())
	_ = os.Chtimes(dest, srcInfo.ModTime(), srcInfo.ModTime())

	return nil
}

func (m *Mover) cleanup(dest string) {
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			m.log.Warn().Err(err).Str("path", dest).Msg("failed to remove partial destination")
		}
	}
}

// CollisionSafePath resolves a filename collision by appending _1, _2, ...
// to the stem until a free name is found. Existing files are never
// overwritten.
func CollisionSafePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := path[:len(path)-len(ext)]
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
