package clerk

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clerkd/clerk/internal/core/classify"
	"github.com/clerkd/clerk/internal/core/ledger"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
)

// ErrNotHeld is returned when no held task matches the given name.
var ErrNotHeld = errors.New("no matching task in approval hold")

// ErrAmbiguous is returned when a partial name matches several held tasks.
var ErrAmbiguous = errors.New("name matches multiple held tasks")

// HeldTasks lists the task files currently awaiting approval, newest last.
// Cards and plan copies are filtered out.
func (s *Service) HeldTasks() ([]string, error) {
	paths, err := s.Layout.ListFiles(vault.StageApprovalHold)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, p := range paths {
		name := filepath.Base(p)
		if task.IsCardName(name) || strings.HasSuffix(name, "_plan.md") {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Resolve applies a human decision to a held task: the task file, its card,
// and its plan copy are moved to Approved or Rejected, the card status is
// updated, and the outcome is recorded in the catalog.
func (s *Service) Resolve(name string, approved bool) error {
	taskName, err := s.findHeld(name)
	if err != nil {
		return err
	}

	to, status := vault.StageApproved, task.StatusApproved
	if !approved {
		to, status = vault.StageRejected, task.StatusRejected
	}
	if err := vault.ValidateTransition(vault.StageApprovalHold, to); err != nil {
		return err
	}

	holdDir := s.Layout.Dir(vault.StageApprovalHold)
	destDir := s.Layout.Dir(to)
	prefix := task.Stem(taskName)
	cardPath := filepath.Join(holdDir, task.CardName(prefix))
	planPath := filepath.Join(holdDir, prefix+"_plan.md")

	card, stamped := s.stampCard(cardPath, status)

	if _, err := s.Mover.Move(filepath.Join(holdDir, taskName), destDir, taskName); err != nil {
		return fmt.Errorf("could not move held task: %w", err)
	}
	for _, sidecar := range []string{cardPath, planPath} {
		if _, statErr := os.Stat(sidecar); statErr != nil {
			continue
		}
		if _, err := s.Mover.Move(sidecar, destDir, filepath.Base(sidecar)); err != nil {
			s.log.Warn().Err(err).Str("file", filepath.Base(sidecar)).Msg("sidecar move failed")
		}
	}

	// Re-derive the classification that routed the task here; the card's
	// priority wins when it carries one.
	res := s.classifier.Classify(classify.Input{Name: taskName, Ext: filepath.Ext(taskName)})
	priority := res.Priority
	if stamped && card.Priority != "" && card.Priority != task.PriorityUnset {
		priority = card.Priority
	}

	s.Catalog.Append(ledger.Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		File:      taskName,
		Type:      string(res.Type),
		Action:    string(res.Action),
		Priority:  string(priority),
		Tier:      task.Tier,
		Status:    string(status),
		DryRun:    s.Config.DryRun,
	})

	if err := s.Dashboard.Update(time.Now()); err != nil {
		s.log.Warn().Err(err).Msg("dashboard refresh failed")
	}

	s.log.Info().Str("file", taskName).Str("decision", string(status)).Msg("held task resolved")
	return nil
}

// findHeld resolves a possibly-partial name to exactly one held task file.
func (s *Service) findHeld(name string) (string, error) {
	held, err := s.HeldTasks()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, candidate := range held {
		if candidate == name {
			return candidate, nil
		}
		if strings.Contains(candidate, name) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotHeld, name)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %s", ErrAmbiguous, name, strings.Join(matches, ", "))
	}
}

// stampCard rewrites a card's status in place and returns the parsed card.
// Failures are logged; the decision still proceeds on a degraded card.
func (s *Service) stampCard(cardPath string, status task.Status) (task.Card, bool) {
	data, err := os.ReadFile(cardPath)
	if err != nil {
		return task.Card{}, false
	}
	card, body, err := task.ParseCard(data)
	if err != nil {
		s.log.Warn().Str("card", filepath.Base(cardPath)).Msg("unparseable card left unstamped")
		return task.Card{}, false
	}
	card.Status = status
	content, err := task.EncodeCard(card, body)
	if err != nil {
		return card, true
	}
	if s.Config.DryRun {
		s.log.Info().Str("card", filepath.Base(cardPath)).Msg("dry-run: would stamp card")
		return card, true
	}
	if err := os.WriteFile(cardPath, content, 0o644); err != nil {
		s.log.Warn().Err(err).Str("card", filepath.Base(cardPath)).Msg("card stamp failed")
	}
	return card, true
}
