// Package ingest moves freshly dropped intake files into the work queue.
//
// The intake directory is immutable from the engine's point of view: files
// are copied, never moved or modified. Deleting an intake file is the user's
// signal to roll back everything derived from it.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/safemove"
	"github.com/clerkd/clerk/internal/core/stability"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
)

// Downstream is what the ingestor triggers after landing a file: a queue
// drain and a dashboard refresh. Calls are made with a bounded timeout and a
// failure is logged, never escalated.
type Downstream interface {
	ProcessQueue(ctx context.Context) error
	RefreshDashboard(ctx context.Context) error
}

// Rollbacker reverses all artifacts of a deleted intake file.
type Rollbacker interface {
	Rollback(deletedName string) int
}

// junkNames are desktop droppings that never become tasks.
var junkNames = map[string]struct{}{
	".DS_Store":  {},
	"Thumbs.db":  {},
	".gitkeep":   {},
	".gitignore": {},
}

// junkExts mark files still being written by browsers and editors.
var junkExts = map[string]struct{}{
	".tmp":        {},
	".part":       {},
	".crdownload": {},
	".swp":        {},
}

// Ingestor handles a single intake event end to end.
type Ingestor struct {
	layout      vault.Layout
	gate        stability.Gate
	mover       *safemove.Mover
	downstream  Downstream
	rollback    Rollbacker
	log         zerolog.Logger
	dryRun      bool
	ignoreGlobs []string

	// Downstream call budgets. The dashboard refresh is quick; a queue
	// drain may classify and relocate many files.
	processTimeout time.Duration
	refreshTimeout time.Duration

	clock func() time.Time
}

// Options tunes an Ingestor beyond its required collaborators.
type Options struct {
	IgnoreGlobs    []string
	ProcessTimeout time.Duration
	RefreshTimeout time.Duration
}

func New(layout vault.Layout, gate stability.Gate, mover *safemove.Mover,
	downstream Downstream, rollback Rollbacker, log zerolog.Logger, dryRun bool, opts Options) *Ingestor {
	if opts.ProcessTimeout <= 0 {
		opts.ProcessTimeout = 2 * time.Minute
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 30 * time.Second
	}
	return &Ingestor{
		layout:         layout,
		gate:           gate,
		mover:          mover,
		downstream:     downstream,
		rollback:       rollback,
		log:            log.With().Str("component", "ingest").Logger(),
		dryRun:         dryRun,
		ignoreGlobs:    opts.IgnoreGlobs,
		processTimeout: opts.ProcessTimeout,
		refreshTimeout: opts.RefreshTimeout,
		clock:          time.Now,
	}
}

// ShouldIgnore reports whether an intake filename is noise: hidden files,
// desktop droppings, partial downloads, our own metadata cards, and anything
// matching a configured ignore glob.
func (i *Ingestor) ShouldIgnore(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if _, ok := junkNames[name]; ok {
		return true
	}
	if _, ok := junkExts[strings.ToLower(filepath.Ext(name))]; ok {
		return true
	}
	if task.IsCardName(name) {
		return true
	}
	for _, pattern := range i.ignoreGlobs {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// HandleCreate runs the full pipeline for one new intake file: stabilize,
// copy into the work queue, emit the metadata card, then trigger downstream
// processing. The copy is the commit point; everything after it is
// best-effort.
func (i *Ingestor) HandleCreate(ctx context.Context, path string) error {
	name := filepath.Base(path)
	log := i.log.With().Str("file", name).Logger()
	log.Info().Msg("new intake file")

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		log.Warn().Msg("file no longer accessible")
		return nil
	}

	switch i.gate.Wait(ctx, path) {
	case stability.Vanished:
		log.Warn().Msg("file vanished during stabilization, aborting")
		return nil
	case stability.Canceled:
		return ctx.Err()
	case stability.TimedOut:
		log.Warn().Msg("stabilization timed out, proceeding anyway")
	}

	i.refreshDashboard(ctx, log)

	now := i.clock()
	destName := task.DestName(now, name)
	queueDir := i.layout.Dir(vault.StageWorkQueue)

	if i.dryRun {
		log.Info().Str("dest", destName).Msg("dry-run: would copy into work queue")
		log.Info().Str("card", task.CardName(task.Stem(destName))).Msg("dry-run: would write metadata card")
		return nil
	}

	destPath, err := i.mover.CopyTo(path, queueDir, destName)
	if err != nil {
		return fmt.Errorf("could not copy %q into work queue: %w", name, err)
	}
	log.Info().Str("dest", filepath.Base(destPath)).Msg("copied into work queue")

	// Card failure is non-fatal: the queue entry exists and is still
	// processable, just without perfect metadata.
	if err := i.writeCard(path, destPath, now); err != nil {
		log.Error().Err(err).Msg("metadata card write failed, queue entry is degraded")
	}

	i.refreshDashboard(ctx, log)
	i.processQueue(ctx, log)
	i.refreshDashboard(ctx, log)

	log.Info().Int64("bytes", info.Size()).Msg("intake complete")
	return nil
}

// HandleDelete reverses all processing for a deleted intake file.
func (i *Ingestor) HandleDelete(ctx context.Context, path string) {
	name := filepath.Base(path)
	i.log.Info().Str("file", name).Msg("intake file deleted, rolling back")
	i.rollback.Rollback(name)
}

func (i *Ingestor) writeCard(sourcePath, destPath string, now time.Time) error {
	card, err := task.NewCard(sourcePath, destPath, now)
	if err != nil {
		return err
	}
	content, err := task.RenderCardDocument(card)
	if err != nil {
		return err
	}
	cardPath := filepath.Join(filepath.Dir(destPath), task.CardName(task.Stem(destPath)))
	return os.WriteFile(cardPath, content, 0o644)
}

func (i *Ingestor) processQueue(ctx context.Context, log zerolog.Logger) {
	if i.dryRun {
		log.Info().Msg("dry-run: would process work queue")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, i.processTimeout)
	defer cancel()
	if err := i.downstream.ProcessQueue(ctx); err != nil {
		log.Warn().Err(err).Msg("queue processing failed")
	}
}

func (i *Ingestor) refreshDashboard(ctx context.Context, log zerolog.Logger) {
	if i.dryRun {
		log.Info().Msg("dry-run: would refresh dashboard")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, i.refreshTimeout)
	defer cancel()
	if err := i.downstream.RefreshDashboard(ctx); err != nil {
		log.Warn().Err(err).Msg("dashboard refresh failed")
	}
}
