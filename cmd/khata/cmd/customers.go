package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/export"
	"github.com/dvloznov/kitab-khata/internal/ledger"
)

var customerCmd = &cobra.Command{
	Use:   "customer <name>",
	Short: "Show one customer's bills and dues",
	Long: `Show one customer's bills and dues. The name must match exactly,
including case.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			records, stats := a.Ledger.Customer(args[0])
			printTable(cmd, records)
			w := out(cmd)
			fmt.Fprintf(w, "\nTotal: %s  Paid: %s  Due: %s\n",
				export.FormatRupees(stats.Total),
				export.FormatRupees(stats.Paid),
				export.FormatRupees(stats.Due))
			return nil
		})
	},
}

var debtorsCmd = &cobra.Command{
	Use:   "debtors",
	Short: "List customers who still owe money, largest due first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			printSummaries(cmd, a.Ledger.Debtors())
			return nil
		})
	},
}

var statementCmd = &cobra.Command{
	Use:   "statement <name>",
	Short: "Print a customer statement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			records, stats := a.Ledger.Customer(args[0])
			return export.RenderStatement(out(cmd), a.Config.Shop, args[0], records, stats, time.Now())
		})
	},
}

func printSummaries(cmd *cobra.Command, customers []ledger.CustomerSummary) {
	if len(customers) == 0 {
		fmt.Fprintln(out(cmd), "No customers with dues.")
		return
	}
	tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tBILLS\tTOTAL\tPAID\tDUE")
	for _, c := range customers {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			c.Name, c.BillCount,
			export.FormatRupees(c.Stats.Total),
			export.FormatRupees(c.Stats.Paid),
			export.FormatRupees(c.Stats.Due))
	}
	_ = tw.Flush()
}
