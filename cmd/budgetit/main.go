package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgetit/internal/cli"
	"budgetit/internal/config"
	applog "budgetit/internal/log"
)

var (
	cfgFile string
	v       = config.NewViper()
	app     *cli.Runtime

	rootCmd = &cobra.Command{
		Use:   "budgetit",
		Short: "Personal budget ledger",
		Long: `budgetit keeps a monthly budget, categories and expenses in a local
ledger and shows where the money went over a week, month or year.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  openApp,
		PersistentPostRunE: closeApp,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./budgetit.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "data backend (sqlite, memory)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json)")

	// Bind flags to viper; unset flags fall through to env and defaults
	_ = v.BindPFlag(config.KeyDataBackend, rootCmd.PersistentFlags().Lookup("backend"))
	_ = v.BindPFlag(config.KeySQLiteDBPath, rootCmd.PersistentFlags().Lookup("db"))
	_ = v.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(expenseCmd())
	rootCmd.AddCommand(analysisCmd())
	rootCmd.AddCommand(eventsCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	// PersistentPostRunE is skipped when a command fails
	_ = closeApp(nil, nil)

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(cli.ExitCode(err))
	}
}

func openApp(cmd *cobra.Command, _ []string) error {
	cfg, err := cli.LoadAndValidateConfig(v, cfgFile)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentCLI)

	rt, err := cli.OpenLedger(cmd.Context(), cfg, logger, false)
	if err != nil {
		return err
	}
	app = rt
	cmd.SetContext(applog.NewContext(cmd.Context(), logger))
	return nil
}

func closeApp(_ *cobra.Command, _ []string) error {
	if app == nil {
		return nil
	}
	err := app.Close()
	app = nil
	return err
}
