package main

import (
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:         "migrate",
	Short:       "Apply the database schema",
	Annotations: map[string]string{noApp: ""},
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}

		logger.Info("schema applied", "database", cfg.DB.Name)

		return nil
	},
}
