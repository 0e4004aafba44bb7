package commands

import (
	"context"

	"github.com/urfave/cli/v3"
)

type RejectCmd struct {
	flags *Flags

	yes bool
}

// NewRejectCmd creates a new reject command
func NewRejectCmd(flags *Flags) *RejectCmd {
	return &RejectCmd{flags: flags}
}

// Register adds the reject command to the application
func (cmd *RejectCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "reject",
		Usage:     "Decline a held task",
		UsageText: "clerk reject [task name]",
		Description: `Moves a task from ApprovalHold/ to Rejected/ along with its metadata
card and plan. With no argument, lists the tasks awaiting a decision.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation prompt",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.reject,
	})
	return app
}

func (cmd *RejectCmd) reject(ctx context.Context, c *cli.Command) error {
	return resolveHeld(cmd.flags, c, false, cmd.yes)
}
