package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/wire"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to other formats",
}

var exportICalCmd = &cobra.Command{
	Use:   "ical",
	Short: "Export open tasks with due dates as an iCalendar file",
	Long: `Export open, non-archived tasks that have a due date as VTODO entries.
Recurring tasks carry an RRULE so calendar clients can show future occurrences.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		var w io.Writer = cmd.OutOrStdout()
		if output != "" && output != "-" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}

		n, err := wire.Exporter().Export(cmd.Context(), w)
		if err != nil {
			return fmt.Errorf("failed to export calendar: %w", err)
		}
		if w != cmd.OutOrStdout() {
			fmt.Printf("✓ Exported %d task(s) to %s\n", n, output)
		}
		return nil
	},
}

func init() {
	exportICalCmd.Flags().StringP("output", "o", "", "Output file (defaults to stdout)")
	exportCmd.AddCommand(exportICalCmd)
}

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	return exportCmd
}
