package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"devicesapi/config"
)

var cfgFile string

// rootCmd runs the server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:          "devicesapi",
	Short:        "Device lifecycle API server.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CONFIG_FILE or ./config.yaml)")
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
