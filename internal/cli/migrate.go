package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openBase()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.openStore(cmd.Context()); err != nil {
			return err
		}
		if err := a.store.Migrate(cmd.Context(), a.cfg.MigrationsDir); err != nil {
			return err
		}
		a.logger.Info("migrations applied", zap.String("dir", a.cfg.MigrationsDir))
		return nil
	},
}
