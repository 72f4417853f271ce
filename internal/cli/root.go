package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/nextaction/internal/config"
	"github.com/example/nextaction/internal/ctxutil"
	"github.com/example/nextaction/internal/version"
	"github.com/example/nextaction/internal/wire"
)

var (
	configDir string
	settings  *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:     "nextaction",
	Short:   "nextaction - a GTD task ledger with recurring tasks",
	Version: version.String(),
	Long: `nextaction keeps next actions, projects and contexts in a local SQLite ledger.
Recurring tasks carry a plain-English schedule ("every weekday at 9am"); completing
one spawns its next occurrence in the task's timezone.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveSettings(cmd); err != nil {
			return err
		}

		cfg, err := config.Load(settings, configDir)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		wire.Configure(cfg)

		cmd.SetContext(ctxutil.WithActorID(cmd.Context(), ctxutil.LocalActor()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.nextaction)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (default <config-dir>/nextaction.db)")
	rootCmd.PersistentFlags().String("tz", "", "Display and default task timezone (IANA name)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(TaskCmd())
	rootCmd.AddCommand(ContextCmd())
	rootCmd.AddCommand(ProjectCmd())
	rootCmd.AddCommand(ClientCmd())
	rootCmd.AddCommand(PriorityCmd())
	rootCmd.AddCommand(RecurrenceCmd())
	rootCmd.AddCommand(ExportCmd())
	rootCmd.AddCommand(SweepCmd())
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ConfigCmd())
	rootCmd.AddCommand(VersionCmd())
}

// resolveSettings picks the config directory and binds the global flags
// over the config file and environment.
func resolveSettings(cmd *cobra.Command) error {
	if configDir == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		configDir = dir
	}

	settings = config.NewViper(configDir)
	flags := cmd.Root().PersistentFlags()
	_ = settings.BindPFlag("db_path", flags.Lookup("db"))
	_ = settings.BindPFlag("timezone", flags.Lookup("tz"))
	_ = settings.BindPFlag("log_level", flags.Lookup("log-level"))
	return nil
}

// RootCmd returns the root command
func RootCmd() *cobra.Command {
	return rootCmd
}
