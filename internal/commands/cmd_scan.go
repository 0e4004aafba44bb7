package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/clerkd/clerk/internal/core/styles"
	"github.com/clerkd/clerk/internal/core/task"
)

type ScanCmd struct {
	flags *Flags
}

// NewScanCmd creates a new scan command
func NewScanCmd(flags *Flags) *ScanCmd {
	return &ScanCmd{flags: flags}
}

// Register adds the scan command to the application
func (cmd *ScanCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "scan",
		Usage:     "List pending tasks without processing them",
		UsageText: "clerk scan",
		Action:    cmd.scan,
	})
	return app
}

func (cmd *ScanCmd) scan(ctx context.Context, c *cli.Command) error {
	descs, err := task.ScanQueue(cmd.flags.Service.Layout)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	fmt.Fprintln(out, styles.Title.Render(fmt.Sprintf("Pending tasks (%d)", len(descs))))
	if len(descs) == 0 {
		fmt.Fprintln(out, styles.Subtle.Render("  work queue is empty"))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  FILE\tSIZE\tMODIFIED\tMETADATA")
	for _, d := range descs {
		meta := "ok"
		if d.Card == nil {
			meta = "degraded"
		}
		fmt.Fprintf(w, "  %s\t%d B\t%s\t%s\n",
			d.Name, d.Size, d.Modified.Format("15:04:05"), meta)
	}
	return w.Flush()
}
