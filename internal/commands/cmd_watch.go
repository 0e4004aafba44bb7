package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/oklog/run"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/core/ingest"
	"github.com/clerkd/clerk/internal/core/styles"
	"github.com/clerkd/clerk/internal/core/vault"
)

type WatchCmd struct {
	flags *Flags
}

// NewWatchCmd creates a new watch command
func NewWatchCmd(flags *Flags) *WatchCmd {
	return &WatchCmd{flags: flags}
}

// Register adds the watch command to the application
func (cmd *WatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "watch",
		Usage:     "Watch the intake folder and process files as they arrive",
		UsageText: "clerk watch",
		Description: `Runs until interrupted. New files dropped into Intake/ are stabilized,
copied into WorkQueue/ with a metadata card, and processed. Deleting an
intake file rolls back everything derived from it.`,
		Action: cmd.watch,
	})
	return app
}

func (cmd *WatchCmd) watch(ctx context.Context, c *cli.Command) error {
	svc := cmd.flags.Service

	watcher, err := ingest.NewWatcher(svc.Layout, svc.Ingestor, log.Logger)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintln(out, styles.Title.Render("clerk watch"))
	fmt.Fprintf(out, "  Vault   : %s\n", svc.Layout.Root)
	fmt.Fprintf(out, "  Intake  : %s\n", svc.Layout.Dir(vault.StageIntake))
	if cmd.flags.Config.DryRun {
		fmt.Fprintln(out, styles.Warning.Render("  dry-run : no files will be modified"))
	}
	fmt.Fprintln(out, styles.Subtle.Render("  Press Ctrl+C to stop."))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g run.Group
	g.Add(run.SignalHandler(watchCtx, os.Interrupt, syscall.SIGTERM))
	g.Add(
		func() error { return watcher.Run(watchCtx) },
		func(error) {
			cancel()
			_ = watcher.Close()
		},
	)

	err = g.Run()
	var sig run.SignalError
	if errors.As(err, &sig) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(out, styles.Subtle.Render("stopped cleanly"))
		return nil
	}
	return err
}
