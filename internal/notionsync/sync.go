// Package notionsync mirrors the ledger into a Notion database: one page
// per bill, keyed by the "Transaction ID" property.
package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/kitab-khata/internal/domain"
	"github.com/dvloznov/kitab-khata/internal/logger"
)

const (
	// BatchSize defines the number of records to process in a single batch
	BatchSize = 100
)

// Result counts what a sync did (or would do, in dry-run mode).
type Result struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`
}

// SyncLedger makes the Notion database match records. Pages whose
// transaction no longer exists are archived, existing pages are updated and
// missing ones are created. Per-page failures are logged and counted; only
// failing to read the database is an error.
func SyncLedger(ctx context.Context, notionClient NotionService, notionDBID string, records []domain.Transaction, dryRun bool) (Result, error) {
	log := logger.FromContext(ctx)
	var res Result

	log.Info().
		Int("transaction_count", len(records)).
		Bool("dry_run", dryRun).
		Msg("Starting ledger sync to Notion")

	valid := make(map[string]bool, len(records))
	for _, t := range records {
		valid[t.ID] = true
	}

	pages, err := queryAllNotionPages(ctx, notionClient, notionDBID)
	if err != nil {
		return res, fmt.Errorf("SyncLedger: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	// First page per transaction wins; duplicates are archived with the stale ones.
	pageIDs := make(map[string]string, len(pages))
	for _, page := range pages {
		txID := extractTransactionID(page)
		if txID != "" && valid[txID] && pageIDs[txID] == "" {
			pageIDs[txID] = string(page.ID)
			continue
		}

		if dryRun {
			log.Info().Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			res.Archived++
			continue
		}
		if err := notionClient.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			res.Failed++
			continue
		}
		res.Archived++
	}

	for i := 0; i < len(records); i += BatchSize {
		end := min(i+BatchSize, len(records))
		log.Debug().Int("batch_start", i).Int("batch_end", end).Msg("Processing batch")

		for _, t := range records[i:end] {
			pageID, exists := pageIDs[t.ID]
			if dryRun {
				if exists {
					res.Updated++
				} else {
					res.Created++
				}
				continue
			}

			props := TransactionToNotionProperties(t)
			if exists {
				if _, err := notionClient.UpdatePage(ctx, pageID, props); err != nil {
					log.Warn().Err(err).Str("transaction_id", t.ID).Str("page_id", pageID).Msg("Failed to update Notion page")
					res.Failed++
					continue
				}
				res.Updated++
				continue
			}

			page, err := notionClient.CreatePage(ctx, notionDBID, props)
			if err != nil {
				log.Warn().Err(err).Str("transaction_id", t.ID).Msg("Failed to create Notion page")
				res.Failed++
				continue
			}
			pageIDs[t.ID] = string(page.ID)
			res.Created++
		}
	}

	log.Info().
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("archived", res.Archived).
		Int("failed", res.Failed).
		Bool("dry_run", dryRun).
		Msg("Ledger sync completed")

	return res, nil
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
