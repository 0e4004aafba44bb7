// Package clerk wires the engine's components together behind one service.
package clerk

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/classify"
	"github.com/clerkd/clerk/internal/core/config"
	"github.com/clerkd/clerk/internal/core/dashboard"
	"github.com/clerkd/clerk/internal/core/ingest"
	"github.com/clerkd/clerk/internal/core/ledger"
	"github.com/clerkd/clerk/internal/core/rollback"
	"github.com/clerkd/clerk/internal/core/router"
	"github.com/clerkd/clerk/internal/core/safemove"
	"github.com/clerkd/clerk/internal/core/stability"
	"github.com/clerkd/clerk/internal/core/vault"
)

// Service owns a configured vault and the components operating on it.
type Service struct {
	Config    *config.Config
	Layout    vault.Layout
	Mover     *safemove.Mover
	Catalog   *ledger.Catalog
	Dashboard *dashboard.Updater
	Router    *router.Processor
	Rollback  *rollback.Coordinator
	Ingestor  *ingest.Ingestor

	classifier classify.Classifier
	log        zerolog.Logger
}

// NewService builds the full component graph for a vault and creates the
// stage directories.
func NewService(cfg *config.Config, log zerolog.Logger) (*Service, error) {
	layout := vault.NewLayout(cfg.VaultRoot)
	if err := layout.Ensure(); err != nil {
		return nil, fmt.Errorf("prepare vault: %w", err)
	}

	mover := safemove.New(log, cfg.DryRun)
	catalog := ledger.New(layout.CatalogFile(), log, cfg.DryRun)
	dash := dashboard.New(layout, log, cfg.DryRun)
	classifier := classify.RuleBased{}

	svc := &Service{
		Config:     cfg,
		Layout:     layout,
		Mover:      mover,
		Catalog:    catalog,
		Dashboard:  dash,
		Router:     router.New(layout, mover, classifier, catalog, dash, log, cfg.DryRun),
		Rollback:   rollback.New(layout, catalog, dash, log, cfg.DryRun),
		classifier: classifier,
		log:        log.With().Str("component", "clerk").Logger(),
	}

	gate := stability.NewGate(cfg.Stability.PollInterval.Std(), cfg.Stability.MaxWait.Std(), log)
	svc.Ingestor = ingest.New(layout, gate, mover, svc, svc.Rollback, log, cfg.DryRun, ingest.Options{
		IgnoreGlobs:    cfg.Ignore,
		ProcessTimeout: cfg.Downstream.ProcessTimeout.Std(),
		RefreshTimeout: cfg.Downstream.RefreshTimeout.Std(),
	})

	return svc, nil
}

// ProcessQueue implements ingest.Downstream.
func (s *Service) ProcessQueue(ctx context.Context) error {
	_, err := s.Router.Run(ctx)
	return err
}

// RefreshDashboard implements ingest.Downstream.
func (s *Service) RefreshDashboard(ctx context.Context) error {
	return s.Dashboard.Update(time.Now())
}
