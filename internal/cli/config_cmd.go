package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/example/nextaction/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	Long: `Show or change settings stored in <config-dir>/config.json.

Environment variables override the file (NEXTACTION_TIMEZONE,
NEXTACTION_HTTP_ADDR, ...) and global flags override both.`,
	// config set must work even when the stored config fails validation.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveSettings(cmd)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := settings.ReadInConfig(); err != nil {
			fmt.Fprintf(os.Stderr, "note: no config file read (%v)\n", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, key := range config.Keys() {
			t.AppendRow(table.Row{key, settings.Get(key)})
		}
		t.Render()
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Store a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(configDir, args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("✓ Set %s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// ConfigCmd returns the config command
func ConfigCmd() *cobra.Command {
	return configCmd
}
