package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/core/styles"
)

type ApproveCmd struct {
	flags *Flags

	yes bool
}

// NewApproveCmd creates a new approve command
func NewApproveCmd(flags *Flags) *ApproveCmd {
	return &ApproveCmd{flags: flags}
}

// Register adds the approve command to the application
func (cmd *ApproveCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "approve",
		Usage:     "Approve a held task for execution",
		UsageText: "clerk approve [task name]",
		Description: `Moves a task from ApprovalHold/ to Approved/ along with its metadata
card and plan. With no argument, lists the tasks awaiting a decision.
A partial name is accepted when it matches exactly one held task.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.approve,
	})
	return app
}

func (cmd *ApproveCmd) approve(ctx context.Context, c *cli.Command) error {
	return resolveHeld(cmd.flags, c, true, cmd.yes)
}

// resolveHeld drives both approve and reject: list when no argument, confirm
// unless -y, then apply the decision.
func resolveHeld(flags *Flags, c *cli.Command, approved, skipConfirm bool) error {
	svc := flags.Service
	out := c.Root().Writer
	verb, past := "approve", "approved"
	if !approved {
		verb, past = "reject", "rejected"
	}

	if c.Args().Len() == 0 {
		held, err := svc.HeldTasks()
		if err != nil {
			return err
		}
		if len(held) == 0 {
			fmt.Fprintln(out, styles.Subtle.Render("nothing is awaiting approval"))
			return nil
		}
		fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Awaiting approval (%d)", len(held))))
		for _, name := range held {
			fmt.Fprintf(out, "  %s\n", name)
		}
		fmt.Fprintln(out, styles.Subtle.Render(fmt.Sprintf("run 'clerk %s <name>' to decide", verb)))
		return nil
	}

	name := c.Args().First()
	if !skipConfirm {
		var confirmed bool
		prompt := huh.NewConfirm().
			Title(fmt.Sprintf("%s %q?", verb, name)).
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, styles.Subtle.Render("aborted"))
			return nil
		}
	}

	if err := svc.Resolve(name, approved); err != nil {
		return err
	}
	fmt.Fprintln(out, styles.Success.Render(fmt.Sprintf("%s %s", past, name)))
	return nil
}
