package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/export"
	"github.com/dvloznov/kitab-khata/internal/jobs"
)

var (
	csvOut string
	dryRun bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the ledger as CSV",
	Long: `Write the ledger as CSV. By default the file is named
Ledger_Backup_<date>.csv in the current directory; use --out - for stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			records := a.Ledger.Records()
			if csvOut == "-" {
				return export.WriteCSV(out(cmd), records)
			}

			path := csvOut
			if path == "" {
				path = export.BackupFilename(time.Now())
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("create %s: %w", path, err)
			}
			if err := export.WriteCSV(f, records); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Wrote %d transactions to %s\n", len(records), path)
			return nil
		})
	},
}

var exportBigQueryCmd = &cobra.Command{
	Use:   "bigquery",
	Short: "Append a ledger snapshot to BigQuery",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, jobs.TargetBigQuery, "bigquery")
	},
}

var exportDuesCmd = &cobra.Command{
	Use:   "dues",
	Short: "Show customer dues from the latest BigQuery snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if a.Runner.Warehouse == nil {
				return fmt.Errorf("BigQuery is not available")
			}
			rows, err := a.Runner.Warehouse.CustomerDues(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CUSTOMER\tBILLS\tTOTAL\tPAID\tDUE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
					r.CustomerName, r.BillCount,
					export.FormatRupees(decimal.NewFromBigRat(r.Total, 2)),
					export.FormatRupees(decimal.NewFromBigRat(r.Paid, 2)),
					export.FormatRupees(decimal.NewFromBigRat(r.Due, 2)))
			}
			return tw.Flush()
		}, "bigquery")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the ledger to external tools",
}

var syncNotionCmd = &cobra.Command{
	Use:   "notion",
	Short: "Mirror every sale into the Notion database",
	Long: `Mirror every sale into the Notion database (NOTION_DB_ID). Pages are
matched by transaction id; pages for deleted sales are archived.

Example:
  khata sync notion --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, jobs.TargetNotion, "notion")
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a dated CSV backup to Cloud Storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTarget(cmd, jobs.TargetGCSBackup, "gcs")
	},
}

func runTarget(cmd *cobra.Command, target jobs.ExportTarget, required string) error {
	return withApp(cmd, func(ctx context.Context, a *app.App) error {
		result, err := a.Runner.Run(ctx, target, dryRun)
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "%s: %s\n", target, result)
		return nil
	}, required)
}

func init() {
	exportCSVCmd.Flags().StringVarP(&csvOut, "out", "o", "", "output file (- for stdout)")
	syncNotionCmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without writing to Notion")

	exportCmd.AddCommand(exportCSVCmd, exportBigQueryCmd, exportDuesCmd)
	syncCmd.AddCommand(syncNotionCmd)
}
