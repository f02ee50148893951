// Package notion implements the record store ports against the Notion API.
package notion

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
	"go.opentelemetry.io/otel/attribute"

	"obra/internal/records"
	"obra/internal/telemetry"
)

// Client is the records.Store backed by a Notion integration token.
type Client struct {
	api      *notionapi.Client
	pageSize int
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	pageSize   int
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func WithPageSize(n int) Option {
	return func(o *options) {
		if n > 0 && n <= records.DefaultPageSize {
			o.pageSize = n
		}
	}
}

func New(token string, opts ...Option) *Client {
	o := options{pageSize: records.DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	var apiOpts []notionapi.ClientOption
	if o.httpClient != nil {
		apiOpts = append(apiOpts, notionapi.WithHTTPClient(o.httpClient))
	}
	return &Client{
		api:      notionapi.NewClient(notionapi.Token(token), apiOpts...),
		pageSize: o.pageSize,
	}
}

func (c *Client) Query(ctx context.Context, dbID string, q records.Query) ([]notionapi.Page, error) {
	if dbID == "" {
		return nil, nil
	}
	ctx, span := telemetry.Start(ctx, "records.query", attribute.String("db", dbID))
	defer span.End()

	var all []notionapi.Page
	var cursor notionapi.Cursor
	for {
		req := &notionapi.DatabaseQueryRequest{
			Filter:   q.Filter,
			Sorts:    q.Sorts,
			PageSize: c.pageSize,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(dbID), req)
		if err != nil {
			telemetry.Fail(span, err)
			return nil, fmt.Errorf("query database %s: %w", dbID, err)
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	span.SetAttributes(attribute.Int("records", len(all)))
	return all, nil
}

func (c *Client) Create(ctx context.Context, dbID string, props notionapi.Properties) (string, error) {
	ctx, span := telemetry.Start(ctx, "records.create", attribute.String("db", dbID))
	defer span.End()

	page, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: props,
	})
	if err != nil {
		telemetry.Fail(span, err)
		return "", fmt.Errorf("create page in %s: %w", dbID, err)
	}
	return page.ID.String(), nil
}

func (c *Client) SetSelect(ctx context.Context, pageID, field, value string) error {
	ctx, span := telemetry.Start(ctx, "records.set_select",
		attribute.String("page", pageID), attribute.String("field", field))
	defer span.End()

	req := &notionapi.PageUpdateRequest{
		Properties: notionapi.Properties{field: records.SelectProp(value)},
	}
	if _, err := c.api.Page.Update(ctx, notionapi.PageID(pageID), req); err != nil {
		telemetry.Fail(span, err)
		return fmt.Errorf("update page %s: %w", pageID, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, pageID string) (notionapi.Page, error) {
	ctx, span := telemetry.Start(ctx, "records.get", attribute.String("page", pageID))
	defer span.End()

	page, err := c.api.Page.Get(ctx, notionapi.PageID(pageID))
	if err != nil {
		telemetry.Fail(span, err)
		return notionapi.Page{}, fmt.Errorf("get page %s: %w", pageID, err)
	}
	return *page, nil
}

var _ records.Store = (*Client)(nil)
