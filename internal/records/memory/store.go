// Package memory provides an in-process record store used in demo mode and
// in tests.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jomei/notionapi"

	"obra/internal/records"
)

// Store keeps records per database in insertion order. Filters support
// select equality and AND compounds; other filters match everything.
type Store struct {
	mu          sync.Mutex
	dbs         map[string][]notionapi.Page
	failQuery   map[string]error
	failUpdate  map[string]error
	updateCalls int
}

func New() *Store {
	return &Store{
		dbs:        make(map[string][]notionapi.Page),
		failQuery:  make(map[string]error),
		failUpdate: make(map[string]error),
	}
}

// Load reads a fixture file shaped as {"<database id>": [<page>, ...]} where
// each page uses the upstream JSON representation.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed map[string][]notionapi.Page
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	s := New()
	for db, pages := range seed {
		s.Put(db, pages...)
	}
	return s, nil
}

// Put appends pages to a database. Pages without an id get one.
func (s *Store) Put(dbID string, pages ...notionapi.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pages {
		if p.ID == "" {
			p.ID = notionapi.ObjectID(uuid.NewString())
		}
		if p.Properties == nil {
			p.Properties = notionapi.Properties{}
		}
		s.dbs[dbID] = append(s.dbs[dbID], p)
	}
}

// FailQuery makes every query of dbID return err. A nil err clears it.
func (s *Store) FailQuery(dbID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failQuery, dbID)
		return
	}
	s.failQuery[dbID] = err
}

// FailUpdate makes every update of pageID return err. A nil err clears it.
func (s *Store) FailUpdate(pageID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failUpdate, pageID)
		return
	}
	s.failUpdate[pageID] = err
}

// UpdateCalls returns how many SetSelect calls reached the store.
func (s *Store) UpdateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateCalls
}

func (s *Store) Query(ctx context.Context, dbID string, q records.Query) ([]notionapi.Page, error) {
	if dbID == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failQuery[dbID]; err != nil {
		return nil, err
	}

	var out []notionapi.Page
	for _, p := range s.dbs[dbID] {
		if matches(p, q.Filter) {
			out = append(out, clone(p))
		}
	}
	for i := len(q.Sorts) - 1; i >= 0; i-- {
		so := q.Sorts[i]
		sort.SliceStable(out, func(a, b int) bool {
			ka, kb := sortKey(out[a], so.Property), sortKey(out[b], so.Property)
			if so.Direction == notionapi.SortOrderDESC {
				return ka > kb
			}
			return ka < kb
		})
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, dbID string, props notionapi.Properties) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if dbID == "" {
		return "", fmt.Errorf("create page: %w", records.ErrNotFound)
	}
	id := uuid.NewString()
	s.Put(dbID, notionapi.Page{ID: notionapi.ObjectID(id), Properties: props})
	return id, nil
}

func (s *Store) SetSelect(ctx context.Context, pageID, field, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if err := s.failUpdate[pageID]; err != nil {
		return err
	}
	p, ok := s.find(pageID)
	if !ok {
		return fmt.Errorf("update page %s: %w", pageID, records.ErrNotFound)
	}
	p.Properties[field] = records.SelectProp(value)
	return nil
}

func (s *Store) Get(ctx context.Context, pageID string) (notionapi.Page, error) {
	if err := ctx.Err(); err != nil {
		return notionapi.Page{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.find(pageID)
	if !ok {
		return notionapi.Page{}, fmt.Errorf("get page %s: %w", pageID, records.ErrNotFound)
	}
	return clone(*p), nil
}

func (s *Store) find(pageID string) (*notionapi.Page, bool) {
	for _, pages := range s.dbs {
		for i := range pages {
			if string(pages[i].ID) == pageID {
				return &pages[i], true
			}
		}
	}
	return nil, false
}

func clone(p notionapi.Page) notionapi.Page {
	props := make(notionapi.Properties, len(p.Properties))
	for k, v := range p.Properties {
		props[k] = v
	}
	p.Properties = props
	return p
}

func matches(p notionapi.Page, f notionapi.Filter) bool {
	switch f := f.(type) {
	case nil:
		return true
	case *notionapi.PropertyFilter:
		if f.Select != nil && f.Select.Equals != "" {
			return records.Select(p, f.Property) == f.Select.Equals
		}
		return true
	case notionapi.AndCompoundFilter:
		for _, sub := range f {
			if !matches(p, sub) {
				return false
			}
		}
		return true
	}
	return true
}

func sortKey(p notionapi.Page, property string) string {
	if d := records.Date(p, property); d != "" {
		return d
	}
	if s := records.Select(p, property); s != "" {
		return s
	}
	return strings.ToLower(records.Text(p, property))
}

var _ records.Store = (*Store)(nil)
