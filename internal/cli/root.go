package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launchpad-client/internal/app"
	"launchpad-client/internal/config"
	"launchpad-client/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	saleAddr  string
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "launchpad",
	Short: "Interact with token sale contracts from the command line",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		logger := logging.NewLogger(cfg.Logging)
		appHandle = app.NewApp(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&saleAddr, "sale", "", "Sale contract address (defaults to config)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}
