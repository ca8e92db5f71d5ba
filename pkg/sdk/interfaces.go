package sdk

import (
	"context"
	"errors"
	"fmt"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

var (
	// ErrNotFound is returned when the backend answers 404.
	ErrNotFound = errors.New("not found")
)

// StatusError is a non-2xx answer from the catalog API.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d", e.Method, e.Path, e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match a 404.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// --- Functional Interfaces (Interface Segregation) ---

// Loader reads a whole collection.
type Loader interface {
	FetchCollection(ctx context.Context, collection string) ([]listview.Record, error)
}

// RecordCreator persists a new record and returns it with its assigned id.
type RecordCreator interface {
	CreateRecord(ctx context.Context, collection string, rec listview.Record) (listview.Record, error)
}

// RecordUpdater applies a partial update.
type RecordUpdater interface {
	UpdateRecord(ctx context.Context, collection, id string, partial listview.Record) error
}

// RecordDeleter removes a record.
type RecordDeleter interface {
	DeleteRecord(ctx context.Context, collection, id string) error
}

// --- Composite Interfaces ---

// CatalogClient is everything a list page needs from the backend.
type CatalogClient interface {
	Loader
	RecordCreator
	RecordUpdater
	RecordDeleter
}
