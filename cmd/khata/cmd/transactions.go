package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/kitab-khata/internal/app"
	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/export"
)

// saleFlags are shared by add and edit.
type saleFlags struct {
	date     string
	customer string
	book     string
	total    string
	paid     string
	method   string
	cheque   string
	notes    string
}

func (f *saleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "sale date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&f.customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&f.book, "book", "", "book title")
	cmd.Flags().StringVar(&f.total, "total", "", "total price in rupees")
	cmd.Flags().StringVar(&f.paid, "paid", "", "amount paid in rupees")
	cmd.Flags().StringVar(&f.method, "method", string(domain.PaymentCash), "payment method: Cash, UPI or Cheque")
	cmd.Flags().StringVar(&f.cheque, "cheque", "", "cheque number (Cheque payments only)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form remarks")
}

// apply overlays the flags the user set onto in.
func (f *saleFlags) apply(cmd *cobra.Command, in domain.Input) (domain.Input, error) {
	changed := cmd.Flags().Changed
	if changed("date") {
		in.Date = f.date
	}
	if changed("customer") {
		in.CustomerName = f.customer
	}
	if changed("book") {
		in.BookTitle = f.book
	}
	if changed("total") {
		d, err := domain.ParseAmount(f.total)
		if err != nil {
			return in, err
		}
		in.TotalPrice = d
	}
	if changed("paid") {
		d, err := domain.ParseAmount(f.paid)
		if err != nil {
			return in, err
		}
		in.AmountPaid = d
	}
	if changed("method") {
		in.PaymentMethod = domain.PaymentMethod(f.method)
	}
	if changed("cheque") {
		n := f.cheque
		in.ChequeNumber = &n
	}
	if changed("notes") {
		in.Notes = f.notes
	}
	return in, nil
}

var (
	addFlags  saleFlags
	editFlags saleFlags

	listQuery string
	listSort  string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new sale",
	Long: `Record a new sale. The balance and payment status are derived from the
total price and the amount paid.

Example:
  khata add --customer "Ramesh" --book "NCERT Physics XI" --total 450 --paid 200 --method UPI`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := addFlags.apply(cmd, domain.Input{
			Date:          time.Now().Format(time.DateOnly),
			PaymentMethod: domain.PaymentCash,
		})
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			tx, err := a.Ledger.Create(ctx, in)
			if err != nil {
				return err
			}
			printTransaction(cmd, tx)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a recorded sale",
	Long: `Change a recorded sale. Only the flags given are changed; the rest keep
their current values.

Example:
  khata edit 6f1c... --paid 450`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			current, err := a.Ledger.Get(args[0])
			if err != nil {
				return err
			}
			in, err := editFlags.apply(cmd, domain.InputOf(current))
			if err != nil {
				return err
			}
			tx, err := a.Ledger.Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			printTransaction(cmd, tx)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a recorded sale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := a.Ledger.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales, newest first",
	Long: `List sales. --search matches customer names and book titles,
ignoring case.

Example:
  khata list --search ncert --sort asc`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			records := a.Ledger.Search(listQuery, domain.ParseSortDirection(listSort))
			printTable(cmd, records)
			return nil
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show ledger totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			s := a.Ledger.Stats()
			w := out(cmd)
			fmt.Fprintln(w, "\n=== Ledger ===")
			fmt.Fprintf(w, "Total sales:     %s\n", export.FormatRupees(s.TotalSales))
			fmt.Fprintf(w, "Total received:  %s\n", export.FormatRupees(s.TotalReceived))
			fmt.Fprintf(w, "Total pending:   %s\n", export.FormatRupees(s.TotalPending))
			fmt.Fprintf(w, "Bills:           %d\n", s.TransactionCount)
			fmt.Fprintln(w)
			return nil
		})
	},
}

func init() {
	addFlags.register(addCmd)
	editFlags.register(editCmd)

	listCmd.Flags().StringVar(&listQuery, "search", "", "filter by customer or book")
	listCmd.Flags().StringVar(&listSort, "sort", string(domain.SortDesc), "date order: asc or desc")
}

func printTransaction(cmd *cobra.Command, tx domain.Transaction) {
	w := out(cmd)
	fmt.Fprintf(w, "ID:       %s\n", tx.ID)
	fmt.Fprintf(w, "Date:     %s\n", tx.Date)
	fmt.Fprintf(w, "Customer: %s\n", tx.CustomerName)
	fmt.Fprintf(w, "Book:     %s\n", tx.BookTitle)
	fmt.Fprintf(w, "Total:    %s\n", export.FormatRupees(tx.TotalPrice))
	fmt.Fprintf(w, "Paid:     %s (%s)\n", export.FormatRupees(tx.AmountPaid), paymentLabel(tx))
	fmt.Fprintf(w, "Balance:  %s\n", export.FormatRupees(tx.Balance))
	fmt.Fprintf(w, "Status:   %s\n", tx.Status)
	if tx.Notes != "" {
		fmt.Fprintf(w, "Notes:    %s\n", tx.Notes)
	}
}

func printTable(cmd *cobra.Command, records []domain.Transaction) {
	if len(records) == 0 {
		fmt.Fprintln(out(cmd), "No transactions found.")
		return
	}
	tw := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCUSTOMER\tBOOK\tTOTAL\tPAID\tBALANCE\tSTATUS\tID")
	for _, tx := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.Date, tx.CustomerName, tx.BookTitle,
			export.FormatRupees(tx.TotalPrice),
			export.FormatRupees(tx.AmountPaid),
			export.FormatRupees(tx.Balance),
			tx.Status, tx.ID)
	}
	_ = tw.Flush()
}

func paymentLabel(tx domain.Transaction) string {
	if tx.PaymentMethod == domain.PaymentCheque && tx.ChequeNumber != nil {
		return strings.TrimSpace(string(tx.PaymentMethod) + " " + *tx.ChequeNumber)
	}
	return string(tx.PaymentMethod)
}
