package notionsync

import (
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/kitab-khata/internal/domain"
)

// Property names of the Notion ledger database.
const (
	PropBook          = "Book"
	PropTransactionID = "Transaction ID"
	PropCustomer      = "Customer"
	PropDate          = "Date"
	PropTotalPrice    = "Total Price"
	PropAmountPaid    = "Amount Paid"
	PropBalance       = "Balance Due"
	PropMethod        = "Payment Method"
	PropCheque        = "Cheque Number"
	PropStatus        = "Status"
	PropNotes         = "Notes"
)

// TransactionToNotionProperties converts a ledger record to Notion properties.
// Optional properties are cleared when empty so that updates remove stale values.
func TransactionToNotionProperties(t domain.Transaction) notionapi.Properties {
	props := notionapi.Properties{
		PropBook:          notionapi.TitleProperty{Title: richText(t.BookTitle)},
		PropTransactionID: notionapi.RichTextProperty{RichText: richText(t.ID)},
		PropCustomer:      notionapi.RichTextProperty{RichText: richText(t.CustomerName)},
		PropTotalPrice:    notionapi.NumberProperty{Number: number(t.TotalPrice)},
		PropAmountPaid:    notionapi.NumberProperty{Number: number(t.AmountPaid)},
		PropBalance:       notionapi.NumberProperty{Number: number(t.Balance)},
		PropMethod:        notionapi.SelectProperty{Select: notionapi.Option{Name: string(t.PaymentMethod)}},
		PropStatus:        notionapi.SelectProperty{Select: notionapi.Option{Name: string(t.Status)}},
		PropNotes:         notionapi.RichTextProperty{RichText: richText(t.Notes)},
	}

	cheque := ""
	if t.ChequeNumber != nil {
		cheque = *t.ChequeNumber
	}
	props[PropCheque] = notionapi.RichTextProperty{RichText: richText(cheque)}

	if date, err := domain.ParseDate(t.Date); err == nil {
		d := notionapi.Date(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC))
		props[PropDate] = notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
	}

	return props
}

func richText(s string) []notionapi.RichText {
	if s == "" {
		return []notionapi.RichText{}
	}
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// extractTransactionID extracts the transaction ID from a Notion page's properties.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if prop, ok := page.Properties[PropTransactionID]; ok {
		if rt, ok := prop.(*notionapi.RichTextProperty); ok && len(rt.RichText) > 0 {
			return rt.RichText[0].PlainText
		}
	}
	return ""
}
