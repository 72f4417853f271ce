package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cliadapter "github.com/example/nextaction/internal/adapters/cli"
	"github.com/example/nextaction/internal/wire"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Report open tasks that are past their due date",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := wire.SweepService().SweepOverdue(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		if len(report.Overdue) == 0 {
			fmt.Println("✓ Nothing overdue")
			return nil
		}

		loc := wire.Location()
		red := color.New(color.FgRed)
		fmt.Printf("%d overdue task(s):\n", len(report.Overdue))
		for _, t := range report.Overdue {
			due := ""
			if t.DueDate != nil {
				due = t.DueDate.In(loc).Format(cliadapter.DisplayLayout)
			}
			red.Printf("  %s  %s  (due %s)\n", t.ID, t.Name, due)
		}
		return nil
	},
}

// SweepCmd returns the sweep command
func SweepCmd() *cobra.Command {
	return sweepCmd
}
