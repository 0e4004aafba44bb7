package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/clerk"
	"github.com/clerkd/clerk/internal/commands"
	"github.com/clerkd/clerk/internal/core/config"
	"github.com/clerkd/clerk/internal/core/vault"
	"github.com/clerkd/clerk/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()
	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "clerk",
		Usage:     "Route files through a directory-based task workflow",
		UsageText: "clerk [global options] command [command options]",
		Description: `Clerk turns a folder tree into a task pipeline. Files dropped into
Intake/ are copied into WorkQueue/ with a metadata card, classified,
given an execution plan, and routed either straight to Completed/ or
into ApprovalHold/ for a human decision. The directories themselves are
the workflow state; no database is involved.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("CLERK_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <vault>/Logs/clerk.log)",
				Sources:     cli.EnvVars("CLERK_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("CLERK_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "vault",
				Usage:       "path to the vault root directory",
				Sources:     cli.EnvVars("CLERK_VAULT"),
				Value:       commands.DefaultVaultRoot(),
				Destination: &flags.VaultRoot,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "simulate actions without writing or moving files",
				Sources:     cli.EnvVars("CLERK_DRY_RUN"),
				Destination: &flags.DryRun,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load(flags.ConfigPath, flags.VaultRoot)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			cfg.DryRun = flags.DryRun
			flags.Config = cfg

			// Always log to a file; use explicit path or default to the
			// vault's Logs directory.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = vault.NewLayout(cfg.VaultRoot).LogFile()
			}
			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			flags.Service, err = clerk.NewService(cfg, logger)
			if err != nil {
				return ctx, fmt.Errorf("setup vault: %w", err)
			}

			if cfg.DryRun {
				log.Info().Msg("dry-run mode enabled")
			}
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewWatchCmd(flags).Register(app)
	app = commands.NewRunCmd(flags).Register(app)
	app = commands.NewScanCmd(flags).Register(app)
	app = commands.NewDashboardCmd(flags).Register(app)
	app = commands.NewApproveCmd(flags).Register(app)
	app = commands.NewRejectCmd(flags).Register(app)

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
