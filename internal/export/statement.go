package export

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

var statementTmpl = template.Must(template.New("statement").Funcs(template.FuncMap{
	"rupees": FormatRupees,
	"upper":  strings.ToUpper,
	"pad":    func(n int, s string) string { return fmt.Sprintf("%-*s", n, s) },
	"lpad":   func(n int, s string) string { return fmt.Sprintf("%*s", n, s) },
	"rule":   func(n int) string { return strings.Repeat("-", n) },
}).Parse(`{{upper .Shop.Name}}
{{.Shop.Tagline}}
{{.Shop.Address}}
PH: {{.Shop.Phone}} | EMAIL: {{.Shop.Email}}
GSTIN: {{.Shop.GSTIN}}
{{rule 78}}
ACCOUNT BILL                                                 DATE: {{.Date}}

Party: {{upper .Customer}}
Total Value: {{rupees .Stats.Total}}   Amount Paid: {{rupees .Stats.Paid}}   Net Due: {{rupees .Stats.Due}}
{{rule 78}}
{{pad 12 "DATE"}} {{pad 28 "BOOK / ITEM"}} {{lpad 12 "PRICE"}} {{lpad 12 "PAID"}} {{lpad 12 "BALANCE"}}
{{rule 78}}
{{range .Records}}{{pad 12 .Date}} {{pad 28 (upper .BookTitle)}} {{lpad 12 (rupees .TotalPrice)}} {{lpad 12 (rupees .AmountPaid)}} {{lpad 12 (rupees .Balance)}}
{{else}}No bills recorded.
{{end}}{{rule 78}}
Total Grand Outstanding Payable: {{rupees .Stats.Due}}

Business Terms:
 * Certified credit statement for accounting.
 * Please settle your balance due by next month.
 * No return policy on educational goods.

Party Signature                                         Authorized Merchant
`))

type statementData struct {
	Shop     domain.Shop
	Customer string
	Records  []domain.Transaction
	Stats    domain.CustomerStats
	Date     string
}

// RenderStatement writes a plain-text account statement for one customer.
func RenderStatement(w io.Writer, shop domain.Shop, customer string, records []domain.Transaction, stats domain.CustomerStats, now time.Time) error {
	data := statementData{
		Shop:     shop,
		Customer: customer,
		Records:  records,
		Stats:    stats,
		Date:     now.Format("02/01/2006"),
	}
	if err := statementTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("RenderStatement: %w", err)
	}
	return nil
}
