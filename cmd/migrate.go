package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"devicesapi/internal/db"
	"devicesapi/internal/logs"
	"devicesapi/internal/repo"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "" {
			return errors.New("migrate: database.driver is not set")
		}

		d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		if sqlDB, err := d.DB(); err == nil {
			defer sqlDB.Close()
		}

		if err := repo.Migrate(d); err != nil {
			return err
		}
		logs.Logger.Infof("schema up to date (%s)", cfg.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
