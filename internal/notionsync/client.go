package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
)

// NotionService is the slice of the Notion API the ledger sync needs.
type NotionService interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	// QueryDatabase returns one page of results; callers follow NextCursor.
	QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	ArchivePage(ctx context.Context, pageID string) error
}

const (
	// DefaultRetries is how often the SDK retries rate-limited requests.
	DefaultRetries = 3
	// maxPageSize is the largest page the Notion API returns.
	maxPageSize    = 100
)

// NotionClient talks to a Notion workspace through jomei/notionapi.
type NotionClient struct {
	api *notionapi.Client
}

// NewNotionClient returns a client authenticated with an integration token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		api: notionapi.NewClient(notionapi.Token(token), notionapi.WithRetry(DefaultRetries)),
	}
}

func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	page, err := n.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePage in %s: %w", databaseID, err)
	}
	return page, nil
}

func (n *NotionClient) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	return n.update(ctx, "UpdatePage", pageID, &notionapi.PageUpdateRequest{Properties: properties})
}

// QueryDatabase fills in the maximum page size when the query leaves it unset.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, query *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if query == nil {
		query = &notionapi.DatabaseQueryRequest{}
	}
	if query.PageSize == 0 {
		query.PageSize = maxPageSize
	}
	resp, err := n.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), query)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase %s: %w", databaseID, err)
	}
	return resp, nil
}

// ArchivePage moves a page to the Notion trash.
func (n *NotionClient) ArchivePage(ctx context.Context, pageID string) error {
	_, err := n.update(ctx, "ArchivePage", pageID, &notionapi.PageUpdateRequest{Archived: true})
	return err
}

func (n *NotionClient) update(ctx context.Context, op, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	page, err := n.api.Page.Update(ctx, notionapi.PageID(pageID), req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, pageID, err)
	}
	return page, nil
}

var _ NotionService = (*NotionClient)(nil)
