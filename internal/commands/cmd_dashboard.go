package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/core/styles"
)

type DashboardCmd struct {
	flags *Flags

	print bool
}

// NewDashboardCmd creates a new dashboard command
func NewDashboardCmd(flags *Flags) *DashboardCmd {
	return &DashboardCmd{flags: flags}
}

// Register adds the dashboard command to the application
func (cmd *DashboardCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "dashboard",
		Usage:     "Refresh Dashboard.md from the current vault state",
		UsageText: "clerk dashboard [--print]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "print",
				Aliases:     []string{"p"},
				Usage:       "render the refreshed dashboard to the terminal",
				Destination: &cmd.print,
			},
		},
		Action: cmd.dashboard,
	})
	return app
}

func (cmd *DashboardCmd) dashboard(ctx context.Context, c *cli.Command) error {
	svc := cmd.flags.Service
	if err := svc.Dashboard.Update(time.Now()); err != nil {
		return err
	}

	out := c.Root().Writer
	if !cmd.print {
		fmt.Fprintln(out, styles.Success.Render("dashboard updated"))
		return nil
	}

	content, err := os.ReadFile(svc.Layout.DashboardFile())
	if err != nil {
		return fmt.Errorf("read dashboard: %w", err)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("markdown renderer: %w", err)
	}
	rendered, err := renderer.Render(string(content))
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	fmt.Fprint(out, rendered)
	return nil
}
