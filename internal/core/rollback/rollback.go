// Package rollback removes every artifact derived from a deleted intake file.
package rollback

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/dashboard"
	"github.com/clerkd/clerk/internal/core/ledger"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
)

// Coordinator walks the downstream stages and deletes whatever a since-removed
// intake file produced there. Matching is by the source file name recorded in
// each metadata card, so a card that cannot be parsed is never matched and its
// artifacts are left alone.
type Coordinator struct {
	layout  vault.Layout
	catalog *ledger.Catalog
	dash    *dashboard.Updater
	log     zerolog.Logger
	dryRun  bool
}

func New(layout vault.Layout, catalog *ledger.Catalog, dash *dashboard.Updater,
	log zerolog.Logger, dryRun bool) *Coordinator {
	return &Coordinator{
		layout:  layout,
		catalog: catalog,
		dash:    dash,
		log:     log.With().Str("component", "rollback").Logger(),
		dryRun:  dryRun,
	}
}

// Rollback removes all artifacts derived from the named intake file and
// returns how many files were deleted. Individual removal failures are logged
// and do not stop the remaining sweep.
func (c *Coordinator) Rollback(deletedName string) int {
	log := c.log.With().Str("source", deletedName).Logger()
	if c.dryRun {
		log.Info().Msg("dry-run: would sweep work queue, completed, approval hold, plans, and catalog")
		return 0
	}

	removed := 0
	stems := make(map[string]struct{})

	// Work queue: the task still sits next to its card under its queue name.
	for _, cardPath := range c.cards(vault.StageWorkQueue) {
		card, ok := c.matchCard(cardPath, deletedName)
		if !ok {
			continue
		}
		if card.DestinationPath != "" {
			destName := filepath.Base(card.DestinationPath)
			stems[task.Stem(destName)] = struct{}{}
			removed += c.unlink(log, filepath.Join(c.layout.Dir(vault.StageWorkQueue), destName))
		}
		removed += c.unlink(log, cardPath)
	}

	// Terminal stages: siblings share the card's name prefix, and the plan
	// document is derivable from it.
	removed += c.sweepTerminal(log, vault.StageCompleted, deletedName, stems)
	removed += c.sweepTerminal(log, vault.StageApprovalHold, deletedName, stems)

	if len(stems) > 0 {
		if pruned, err := c.catalog.Prune(stems); err != nil {
			log.Warn().Err(err).Msg("catalog prune failed")
		} else if pruned > 0 {
			log.Info().Int("entries", pruned).Msg("catalog pruned")
		}
	}

	if err := c.dash.Update(time.Now()); err != nil {
		log.Warn().Err(err).Msg("dashboard refresh failed")
	}

	log.Info().Int("removed", removed).Msg("rollback complete")
	return removed
}

func (c *Coordinator) sweepTerminal(log zerolog.Logger, stage vault.Stage, deletedName string, stems map[string]struct{}) int {
	removed := 0
	dir := c.layout.Dir(stage)
	for _, cardPath := range c.cards(stage) {
		card, ok := c.matchCard(cardPath, deletedName)
		if !ok {
			continue
		}
		if card.DestinationPath != "" {
			stems[task.Stem(filepath.Base(card.DestinationPath))] = struct{}{}
		}

		prefix := strings.TrimSuffix(task.Stem(filepath.Base(cardPath)), "_meta")
		removed += c.unlink(log, cardPath)

		// Non-card siblings sharing the prefix are the relocated task file.
		entries, err := os.ReadDir(dir)
		if err == nil {
			for _, e := range entries {
				name := e.Name()
				if e.IsDir() || task.IsCardName(name) {
					continue
				}
				if task.Stem(name) == prefix && strings.ToLower(filepath.Ext(name)) != ".md" {
					removed += c.unlink(log, filepath.Join(dir, name))
				}
			}
		}

		planName := prefix + "_plan.md"
		if stage == vault.StageApprovalHold {
			removed += c.unlink(log, filepath.Join(dir, planName))
		}
		removed += c.unlink(log, filepath.Join(c.layout.Dir(vault.StagePlans), planName))
	}
	return removed
}

// cards lists the metadata card paths in a stage directory.
func (c *Coordinator) cards(stage vault.Stage) []string {
	entries, err := os.ReadDir(c.layout.Dir(stage))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && task.IsCardName(e.Name()) {
			out = append(out, filepath.Join(c.layout.Dir(stage), e.Name()))
		}
	}
	return out
}

// matchCard parses a card and reports whether its recorded source file is the
// deleted one. Unreadable or malformed cards never match.
func (c *Coordinator) matchCard(path, deletedName string) (task.Card, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return task.Card{}, false
	}
	card, _, err := task.ParseCard(data)
	if err != nil {
		c.log.Debug().Str("card", filepath.Base(path)).Msg("skipping unparseable card")
		return task.Card{}, false
	}
	return card, card.SourceFile == deletedName
}

func (c *Coordinator) unlink(log zerolog.Logger, path string) int {
	if _, err := os.Stat(path); err != nil {
		return 0
	}
	if err := os.Remove(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not remove artifact")
		return 0
	}
	log.Info().Str("path", path).Msg("removed")
	return 1
}
