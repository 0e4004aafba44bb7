// Package stability detects when a newly observed file has finished being
// written, by polling its size until two successive polls agree.
package stability

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Result reports the outcome of a stability wait.
type Result int

const (
	// Stable means the file size stopped changing.
	Stable Result = iota
	// TimedOut means the bounded wait elapsed while the file was still
	// growing. Callers proceed anyway: a stalled writer should not block the
	// pipeline indefinitely.
	TimedOut
	// Vanished means the file disappeared mid-wait; ingestion must abort.
	Vanished
	// Canceled means the surrounding context was canceled.
	Canceled
)

// Gate polls a file's size at Interval until it stabilizes or MaxWait
// elapses.
type Gate struct {
	Interval time.Duration
	MaxWait  time.Duration

	log zerolog.Logger
}

// NewGate returns a gate with the given poll interval and bounded wait.
func NewGate(interval, maxWait time.Duration, log zerolog.Logger) Gate {
	return Gate{
		Interval: interval,
		MaxWait:  maxWait,
		log:      log.With().Str("component", "stability").Logger(),
	}
}

// Wait blocks until the file at path reports the same size on two successive
// polls, the bounded wait elapses, or the file disappears.
func (g Gate) Wait(ctx context.Context, path string) Result {
	deadline := time.Now().Add(g.MaxWait)
	ticker := time.NewTicker(g.Interval)
	defer ticker.Stop()

	prev := int64(-1)
	for {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			g.log.Warn().Str("path", path).Msg("file vanished while waiting for stability")
			return Vanished
		case err != nil:
			g.log.Warn().Err(err).Str("path", path).Msg("stability check error")
		case info.Size() == prev:
			return Stable
		default:
			prev = info.Size()
		}

		if time.Now().After(deadline) {
			g.log.Warn().Str("path", path).Dur("max_wait", g.MaxWait).
				Msg("stability timeout, proceeding anyway")
			return TimedOut
		}

		select {
		case <-ctx.Done():
			return Canceled
		case <-ticker.C:
		}
	}
}
