// Package router drains the work queue: each task is classified, given an
// execution plan, and moved either to the approval hold or straight to
// completion.
package router

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/classify"
	"github.com/clerkd/clerk/internal/core/dashboard"
	"github.com/clerkd/clerk/internal/core/ledger"
	"github.com/clerkd/clerk/internal/core/plan"
	"github.com/clerkd/clerk/internal/core/safemove"
	"github.com/clerkd/clerk/internal/core/task"
	"github.com/clerkd/clerk/internal/core/vault"
)

// Summary reports what a single run did.
type Summary struct {
	Processed         int
	PlansCreated      int
	Completed         int
	RoutedForApproval int
	Errors            int
}

// Processor runs the classify-plan-route pipeline over the work queue.
type Processor struct {
	layout     vault.Layout
	mover      *safemove.Mover
	classifier classify.Classifier
	catalog    *ledger.Catalog
	dash       *dashboard.Updater
	log        zerolog.Logger
	dryRun     bool
	clock      func() time.Time
}

func New(layout vault.Layout, mover *safemove.Mover, classifier classify.Classifier,
	catalog *ledger.Catalog, dash *dashboard.Updater, log zerolog.Logger, dryRun bool) *Processor {
	return &Processor{
		layout:     layout,
		mover:      mover,
		classifier: classifier,
		catalog:    catalog,
		dash:       dash,
		log:        log.With().Str("component", "router").Logger(),
		dryRun:     dryRun,
		clock:      time.Now,
	}
}

// Run processes every pending task in the work queue. A failure on one task
// is logged and counted without stopping the rest, so a poisoned file cannot
// wedge the queue. The dashboard is refreshed at the end regardless.
func (p *Processor) Run(ctx context.Context) (Summary, error) {
	runID := ulid.Make().String()
	log := p.log.With().Str("run_id", runID).Logger()

	var sum Summary
	descs, err := task.ScanQueue(p.layout)
	if err != nil {
		return sum, fmt.Errorf("could not scan work queue: %w", err)
	}

	if len(descs) == 0 {
		log.Info().Msg("work queue empty")
	} else {
		log.Info().Int("tasks", len(descs)).Bool("dry_run", p.dryRun).Msg("run started")
	}

	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if err := p.processOne(log, desc, &sum); err != nil {
			log.Error().Err(err).Str("file", desc.Name).Msg("task failed")
			sum.Errors++
		}
	}

	if err := p.dash.Update(p.clock()); err != nil {
		log.Warn().Err(err).Msg("dashboard refresh failed")
	}

	log.Info().
		Int("processed", sum.Processed).
		Int("plans", sum.PlansCreated).
		Int("completed", sum.Completed).
		Int("held", sum.RoutedForApproval).
		Int("errors", sum.Errors).
		Msg("run complete")
	return sum, nil
}

func (p *Processor) processOne(log zerolog.Logger, desc task.Descriptor, sum *Summary) error {
	now := p.clock()
	res := p.classifier.Classify(classify.Input{
		Name:     desc.Name,
		Ext:      desc.Ext,
		Size:     desc.Size,
		Modified: desc.Modified,
	})
	log.Info().
		Str("file", desc.Name).
		Str("type", string(res.Type)).
		Str("priority", string(res.Priority)).
		Str("action", string(res.Action)).
		Bool("approval", res.RequiresApproval).
		Msg("classified")

	// One timestamp prefix per task so the plan, the moved file, and the
	// moved card stay correlated by name.
	ts := now.Format(task.TimestampFormat)

	planDoc, err := plan.Render(desc, res, now)
	if err != nil {
		return err
	}
	planPath := filepath.Join(p.layout.Dir(vault.StagePlans), task.PlanName(now, desc.Stem))
	if !p.dryRun {
		if err := os.MkdirAll(filepath.Dir(planPath), 0o755); err != nil {
			return fmt.Errorf("could not create plans dir: %w", err)
		}
		planPath = safemove.CollisionSafePath(planPath)
		if err := os.WriteFile(planPath, []byte(planDoc), 0o644); err != nil {
			return fmt.Errorf("could not write plan: %w", err)
		}
	}
	sum.PlansCreated++
	log.Info().Str("plan", filepath.Base(planPath)).Msg("plan written")

	if res.RequiresApproval {
		if err := p.routeToHold(log, desc, planPath, ts); err != nil {
			return err
		}
		sum.RoutedForApproval++
	} else {
		if err := p.completeTask(log, desc, res, ts); err != nil {
			return err
		}
		sum.Completed++
	}

	sum.Processed++
	return nil
}

func (p *Processor) routeToHold(log zerolog.Logger, desc task.Descriptor, planPath, ts string) error {
	if err := vault.ValidateTransition(vault.StageWorkQueue, vault.StageApprovalHold); err != nil {
		return err
	}
	holdDir := p.layout.Dir(vault.StageApprovalHold)

	if _, err := p.mover.Move(desc.Path, holdDir, ts+"_"+desc.Name); err != nil {
		return fmt.Errorf("could not move task to hold: %w", err)
	}
	if desc.CardPath != "" {
		if _, err := p.mover.Move(desc.CardPath, holdDir, ts+"_"+filepath.Base(desc.CardPath)); err != nil {
			log.Warn().Err(err).Str("file", desc.Name).Msg("card move failed")
		}
	}
	// The reviewer gets a copy of the plan next to the held file.
	if !p.dryRun {
		if _, err := p.mover.CopyTo(planPath, holdDir, filepath.Base(planPath)); err != nil {
			log.Warn().Err(err).Str("file", desc.Name).Msg("plan copy failed")
		}
	}
	log.Info().Str("file", desc.Name).Msg("routed to approval hold")
	return nil
}

func (p *Processor) completeTask(log zerolog.Logger, desc task.Descriptor, res classify.Result, ts string) error {
	if err := vault.ValidateTransition(vault.StageWorkQueue, vault.StageCompleted); err != nil {
		return err
	}

	p.catalog.Append(ledger.Entry{
		Timestamp: p.clock().Format(time.RFC3339),
		File:      desc.Name,
		Type:      string(res.Type),
		Action:    string(res.Action),
		Priority:  string(res.Priority),
		Tier:      task.Tier,
		Status:    string(task.StatusCompleted),
		DryRun:    p.dryRun,
	})

	doneDir := p.layout.Dir(vault.StageCompleted)
	if _, err := p.mover.Move(desc.Path, doneDir, ts+"_"+desc.Name); err != nil {
		return fmt.Errorf("could not move task to completed: %w", err)
	}
	if desc.CardPath != "" {
		if _, err := p.mover.Move(desc.CardPath, doneDir, ts+"_"+filepath.Base(desc.CardPath)); err != nil {
			log.Warn().Err(err).Str("file", desc.Name).Msg("card move failed")
		}
	}
	log.Info().Str("file", desc.Name).Msg("completed")
	return nil
}
