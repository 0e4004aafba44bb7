package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/core/styles"
)

type RunCmd struct {
	flags *Flags
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{flags: flags}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Process all pending tasks in the work queue",
		UsageText: "clerk run [options]",
		Description: `Classify every pending task, generate its execution plan, and route it:
tasks requiring approval go to ApprovalHold/, the rest are completed and
recorded in the catalog. The dashboard is refreshed afterwards.`,
		Action: cmd.run,
	})
	return app
}

func (cmd *RunCmd) run(ctx context.Context, c *cli.Command) error {
	sum, err := cmd.flags.Service.Router.Run(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintln(out, styles.Title.Render("Run Summary"))
	if cmd.flags.Config.DryRun {
		fmt.Fprintln(out, styles.Warning.Render("dry-run: no files were touched"))
	}
	fmt.Fprintf(out, "  Tasks processed : %d\n", sum.Processed)
	fmt.Fprintf(out, "  Plans created   : %d\n", sum.PlansCreated)
	fmt.Fprintf(out, "  Completed       : %d\n", sum.Completed)
	fmt.Fprintf(out, "  Held for review : %d\n", sum.RoutedForApproval)
	if sum.Errors > 0 {
		fmt.Fprintln(out, styles.Error.Render(fmt.Sprintf("  Errors          : %d", sum.Errors)))
	}
	return nil
}
