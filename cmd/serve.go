package cmd

import (
	"github.com/spf13/cobra"

	"devicesapi/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		app := &server.App{}
		if err := app.Initialize(cfg); err != nil {
			return err
		}
		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
