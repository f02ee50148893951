package records

import (
	"context"
	"sync"

	"github.com/jomei/notionapi"
)

// NameMap maps record ids to display names.
type NameMap map[string]string

// Name returns the display name for id, or fallback when unknown.
func (m NameMap) Name(id, fallback string) string {
	if n, ok := m[id]; ok && n != "" {
		return n
	}
	return fallback
}

// BuildNameMap reads every record of a database and indexes its titles.
func BuildNameMap(ctx context.Context, q Querier, dbID string) (NameMap, error) {
	pages, err := q.Query(ctx, dbID, Query{})
	if err != nil {
		return nil, err
	}
	return Index(pages), nil
}

// Index maps each page id to its title.
func Index(pages []notionapi.Page) NameMap {
	m := make(NameMap, len(pages))
	for _, p := range pages {
		m[p.ID.String()] = Title(p)
	}
	return m
}

type nameSource interface {
	Querier
	PageGetter
}

// NameCache resolves ids to names for the lifetime of one request. It must
// not be shared across requests; nothing is ever evicted.
type NameCache struct {
	src nameSource

	mu    sync.Mutex
	maps  map[string]NameMap
	pages map[string]string
}

func NewNameCache(src nameSource) *NameCache {
	return &NameCache{
		src:   src,
		maps:  make(map[string]NameMap),
		pages: make(map[string]string),
	}
}

// Map returns the name map of a whole database, fetching it once.
// Failures are not memoised.
func (c *NameCache) Map(ctx context.Context, dbID string) (NameMap, error) {
	c.mu.Lock()
	m, ok := c.maps[dbID]
	c.mu.Unlock()
	if ok {
		return m, nil
	}

	m, err := BuildNameMap(ctx, c.src, dbID)
	if err != nil {
		return NameMap{}, err
	}

	c.mu.Lock()
	c.maps[dbID] = m
	c.mu.Unlock()
	return m, nil
}

// Resolve returns the title of a single record, fetching it once. An empty
// id resolves to "".
func (c *NameCache) Resolve(ctx context.Context, pageID string) (string, error) {
	if pageID == "" {
		return "", nil
	}
	c.mu.Lock()
	name, ok := c.pages[pageID]
	c.mu.Unlock()
	if ok {
		return name, nil
	}

	p, err := c.src.Get(ctx, pageID)
	if err != nil {
		return "", err
	}
	name = Title(p)

	c.mu.Lock()
	c.pages[pageID] = name
	c.mu.Unlock()
	return name, nil
}
