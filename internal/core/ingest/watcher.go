package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/clerkd/clerk/internal/core/vault"
)

// Watcher subscribes to intake directory events and dispatches them to an
// Ingestor. Each create is handled on its own goroutine; an in-flight set
// keeps duplicate events for the same path from producing duplicate queue
// entries.
type Watcher struct {
	layout   vault.Layout
	ingestor *Ingestor
	notify   *fsnotify.Watcher
	log      zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
	wg       sync.WaitGroup
}

func NewWatcher(layout vault.Layout, ingestor *Ingestor, log zerolog.Logger) (*Watcher, error) {
	intake := layout.Dir(vault.StageIntake)
	if err := os.MkdirAll(intake, 0o755); err != nil {
		return nil, fmt.Errorf("could not create intake dir: %w", err)
	}

	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not start intake watcher: %w", err)
	}
	if err := notify.Add(intake); err != nil {
		_ = notify.Close()
		return nil, fmt.Errorf("could not watch %s: %w", intake, err)
	}

	return &Watcher{
		layout:   layout,
		ingestor: ingestor,
		notify:   notify,
		log:      log.With().Str("component", "watcher").Logger(),
		inFlight: make(map[string]struct{}),
	}, nil
}

// Run consumes intake events until the context is canceled. In-flight file
// handling is allowed to finish before Run returns, so an interrupt never
// strands a half-ingested file.
func (w *Watcher) Run(ctx context.Context) error {
	w.log.Info().Str("dir", w.layout.Dir(vault.StageIntake)).Msg("watching intake")

	defer w.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.notify.Events:
			if !ok {
				return nil
			}
			w.dispatch(ctx, event)
		case err, ok := <-w.notify.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

// Close stops the underlying notifier. Pending handlers finish via Run's
// WaitGroup.
func (w *Watcher) Close() error {
	return w.notify.Close()
}

func (w *Watcher) dispatch(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if w.ingestor.ShouldIgnore(name) {
		return
	}

	// Cancellation stops the event loop only. Handlers already dispatched
	// keep a detached context so an interrupt mid-stabilization does not
	// strand a half-ingested file in Intake.
	handlerCtx := context.WithoutCancel(ctx)

	switch {
	case event.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
			return
		}
		if !w.claim(event.Name) {
			w.log.Debug().Str("file", name).Msg("already in flight")
			return
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer w.release(event.Name)
			if err := w.ingestor.HandleCreate(handlerCtx, event.Name); err != nil {
				w.log.Error().Err(err).Str("file", name).Msg("intake handling failed")
			}
		}()

	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.ingestor.HandleDelete(handlerCtx, event.Name)
		}()
	}
}

func (w *Watcher) claim(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[path]; busy {
		return false
	}
	w.inFlight[path] = struct{}{}
	return true
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inFlight, path)
}
