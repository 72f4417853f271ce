package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/ports/primary"
	"github.com/example/nextaction/internal/wire"
)

var recurrenceCmd = &cobra.Command{
	Use:     "recurrence",
	Aliases: []string{"repeat"},
	Short:   "Work with recurrence expressions",
}

var recurrenceCheckCmd = &cobra.Command{
	Use:   "check [expression]",
	Short: "Validate an expression and preview its next occurrences",
	Long: `Validate a recurrence expression and print the rules it compiles to along
with its next occurrences.

Examples:
  nextaction recurrence check "every weekday at 9am"
  nextaction recurrence check "on the last friday of each month at 16:30" --tz Europe/Berlin

The expression is evaluated in the --tz timezone (or the configured default).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		from, _ := cmd.Flags().GetString("from")

		if count < 1 {
			return fmt.Errorf("--count must be at least 1")
		}

		fromDate, err := parseDate(from, wire.Location())
		if err != nil {
			return err
		}

		return wire.TaskAdapter().Check(cmd.Context(), primary.PreviewRecurrenceRequest{
			Expression: strings.Join(args, " "),
			Timezone:   wire.Config().Timezone,
			Count:      count,
			From:       fromDate,
		})
	},
}

func init() {
	recurrenceCheckCmd.Flags().IntP("count", "n", 5, "Number of occurrences")
	recurrenceCheckCmd.Flags().String("from", "", "Preview occurrences from this date (defaults to now)")

	recurrenceCmd.AddCommand(recurrenceCheckCmd)
}

// RecurrenceCmd returns the recurrence command
func RecurrenceCmd() *cobra.Command {
	return recurrenceCmd
}
