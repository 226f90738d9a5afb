package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/police-case-api/databases"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the mongodb indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := databases.NewClient(conf)
		if err != nil {
			return err
		}
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(ctx); err != nil {
				zap.S().Warnw("failed to disconnect from database", "error", err)
			}
		}()

		if err := databases.EnsureIndexes(ctx, databases.NewDatabase(conf, client)); err != nil {
			return err
		}
		zap.S().Infow("indexes are in place", "database", conf.Database.Name)
		return nil
	},
}
