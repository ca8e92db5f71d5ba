// Package engine is the in-process catalog backend: ordered collections of
// records held in memory and written through to JSON files.
package engine

import (
	"context"
	"errors"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

var (
	// ErrCollectionNotFound is returned for a collection the catalog does not define.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrRecordNotFound is returned when no record has the requested id.
	ErrRecordNotFound = errors.New("record not found")
	// ErrInvalidRecord is returned for a write without a body.
	ErrInvalidRecord = errors.New("invalid record")
)

// CatalogStore is the backend contract served over REST.
type CatalogStore interface {
	// Collections returns the names of every collection, sorted.
	Collections() []string
	// List returns every record of a collection in insertion order.
	List(collection string) ([]listview.Record, error)
	// Get returns the record with the given id.
	Get(collection, id string) (listview.Record, error)
	// Create stores rec under a newly assigned id and returns the stored record.
	Create(collection string, rec listview.Record) (listview.Record, error)
	// Update merges partial into the record with the given id.
	Update(collection, id string, partial listview.Record) (listview.Record, error)
	// Delete removes the record with the given id.
	Delete(collection, id string) error
}

// Loader reads a whole collection; the REST client and the embedded store both satisfy it.
type Loader interface {
	FetchCollection(ctx context.Context, collection string) ([]listview.Record, error)
}

// Importer replaces a whole collection.
type Importer interface {
	Import(collection string, records []listview.Record) error
}
