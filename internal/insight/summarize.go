// Package insight asks a language model for a short business summary of
// the ledger.
package insight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

// Messages shown instead of a model answer.
const (
	NoDataMessage = "No data available for analysis yet."
	ErrorMessage  = "Error generating AI insights. Please check your connection."
)

const instructions = `Analyze this book ledger for a shopkeeper. Give a short, helpful summary in Hinglish (Hindi + English mix).
Identify:
1. Who owes the most money (Chronic debtors).
2. Popular books being bought.
3. Any urgent follow-ups needed.
Keep it professional but friendly for a small business owner.

Data: `

// ledgerEntry is the per-bill context sent to the model.
type ledgerEntry struct {
	Date    string      `json:"date"`
	Name    string      `json:"name"`
	Book    string      `json:"book"`
	Price   json.Number `json:"price"`
	Paid    json.Number `json:"paid"`
	Balance json.Number `json:"balance"`
}

// BuildPrompt renders the model prompt for records.
func BuildPrompt(records []domain.Transaction) (string, error) {
	entries := make([]ledgerEntry, len(records))
	for i, t := range records {
		entries[i] = ledgerEntry{
			Date:    t.Date,
			Name:    t.CustomerName,
			Book:    t.BookTitle,
			Price:   json.Number(t.TotalPrice.String()),
			Paid:    json.Number(t.AmountPaid.String()),
			Balance: json.Number(t.Balance.String()),
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("BuildPrompt: %w", err)
	}
	return instructions + string(data), nil
}

// Summarize returns the model's summary of records. It never fails: an
// empty ledger and any model error are reported as display text.
func Summarize(ctx context.Context, gen Generator, records []domain.Transaction) string {
	if len(records) == 0 {
		return NoDataMessage
	}

	log := logger.FromContext(ctx)

	prompt, err := BuildPrompt(records)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build insight prompt")
		return ErrorMessage
	}

	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		log.Error().Err(err).Int("transaction_count", len(records)).Msg("Insight generation failed")
		return ErrorMessage
	}
	return text
}
