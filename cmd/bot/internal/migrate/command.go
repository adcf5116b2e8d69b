package migrate

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/set-night/postrelay"
	"github.com/set-night/postrelay/internal/config"
	"github.com/set-night/postrelay/internal/repository"
)

func NewMigrateCommand() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply proposal ledger migrations",
		Args:  cobra.NoArgs,
		Example: `  bot migrate
  bot migrate --database-url postgres://bot@localhost/bot`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				cfg, err := config.LoadStore()
				if err != nil {
					return err
				}
				databaseURL = cfg.DatabaseURL
			}
			if databaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}

			migrationsFS, err := fs.Sub(postrelay.MigrationsFS, "migrations")
			if err != nil {
				return fmt.Errorf("load embedded migrations: %w", err)
			}
			if err := repository.RunMigrations(databaseURL, migrationsFS); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "",
		"Postgres URL (default: DATABASE_URL)")

	return cmd
}
