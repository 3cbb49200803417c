package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shrimptools/taskviewer/internal/config"
	"github.com/shrimptools/taskviewer/internal/logging"
	"github.com/shrimptools/taskviewer/internal/profile"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging.
	verbose bool
	// logger is the process logger, built during initialization.
	logger zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taskviewer",
	Short: "Local web dashboard for Shrimp Task Manager task files",
	Long: `taskviewer serves a local web dashboard for browsing and lightly editing
the JSON task files produced by the MCP Shrimp Task Manager.

Register task files as profiles, then run 'taskviewer serve' and open the
dashboard in a browser.`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.taskviewer.yaml or ./.taskviewer.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	logger = logging.Init(verbose)
	if err := config.Init(cfgFile); err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}
}

// openRegistry opens the profile registry at the configured settings path.
func openRegistry() (*profile.Registry, error) {
	return profile.NewRegistry(config.GetSettingsPath())
}
