// Package records is the boundary to the upstream document database that
// holds every business record (expenses, timesheets, projects, ...).
//
// Records are exchanged in the upstream page model (notionapi.Page and its
// typed properties); the extractors in props.go turn them into plain values.
package records

import (
	"context"
	"errors"

	"github.com/jomei/notionapi"
)

// DefaultPageSize is the number of records requested per upstream call.
const DefaultPageSize = 100

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidPageID = errors.New("invalid page id")
)

// Query narrows and orders a database listing.
type Query struct {
	Filter notionapi.Filter
	Sorts  []notionapi.SortObject
}

// Ports for outbound adapters.
type (
	Querier interface {
		// Query returns every record of the database matching q, following
		// pagination cursors until the upstream reports no more results.
		// An empty dbID yields an empty result.
		Query(ctx context.Context, dbID string, q Query) ([]notionapi.Page, error)
	}

	Creator interface {
		Create(ctx context.Context, dbID string, props notionapi.Properties) (pageID string, err error)
	}

	// Updater sets a single select property on an existing record.
	Updater interface {
		SetSelect(ctx context.Context, pageID, field, value string) error
	}

	PageGetter interface {
		Get(ctx context.Context, pageID string) (notionapi.Page, error)
	}

	Store interface {
		Querier
		Creator
		Updater
		PageGetter
	}
)

// SelectEquals filters on a select property value.
func SelectEquals(property, value string) notionapi.Filter {
	return &notionapi.PropertyFilter{
		Property: property,
		Select:   &notionapi.SelectFilterCondition{Equals: value},
	}
}

// And combines filters that must all match.
func And(filters ...notionapi.Filter) notionapi.Filter {
	return notionapi.AndCompoundFilter(filters)
}

func Ascending(property string) notionapi.SortObject {
	return notionapi.SortObject{Property: property, Direction: notionapi.SortOrderASC}
}

func Descending(property string) notionapi.SortObject {
	return notionapi.SortObject{Property: property, Direction: notionapi.SortOrderDESC}
}
