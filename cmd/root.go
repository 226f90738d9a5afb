// Package cmd holds the police-case command line
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/config"
)

var (
	cfgFile string
	conf    *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "police-case-api",
	Short: "Police case management API",
	Long: `police-case-api runs the case workflow API and its maintenance tasks.

Settings come from an optional config file and POLICE_CASE_* environment
variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		conf, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger, err = config.SetupLogger(conf.Logging.Env)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the command line
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, indexesCmd, tokenCmd)
}
