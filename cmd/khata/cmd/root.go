// Package cmd provides the khata CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/config"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

var (
	cfgFile string
	debug   bool
	storage string

	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "khata",
	Short: "Kitab Khata - the book shop ledger",
	Long: `khata records book sales, tracks what each customer still owes and
prints statements for them.

Every change is written to the configured store (KHATA_STORAGE) before the
command exits.

Example:
  khata add --customer "Ramesh" --book "NCERT Physics XI" --total 450 --paid 200
  khata debtors
  khata statement "Ramesh"`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.NewWithOptions(logger.Options{Debug: debug, Out: os.Stderr})
		logger.SetDefault(log)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storage, "storage", "", "storage backend: bolt, memory or gcs (overrides KHATA_STORAGE)")

	// Add subcommands
	rootCmd.AddCommand(addCmd, editCmd, deleteCmd, listCmd, statsCmd)
	rootCmd.AddCommand(customerCmd, debtorsCmd, statementCmd)
	rootCmd.AddCommand(exportCmd, syncCmd, backupCmd, insightCmd)
	rootCmd.AddCommand(loginCmd, whoamiCmd, logoutCmd)
}

// withApp loads configuration, opens the ledger, runs fn and flushes the
// ledger before returning. required names features that must be configured.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error, required ...string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if storage != "" {
		cfg.Storage.Backend = storage
	}
	if debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(required...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer closeCancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to save ledger")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
