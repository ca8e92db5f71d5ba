package sdk

import (
	"context"

	"go.uber.org/zap"

	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

// Backend is a CatalogClient that must be closed when the caller is done.
type Backend interface {
	CatalogClient
	Close() error
}

// New picks the backend for the environment.
// It returns the interface, so the app doesn't care if it's local or remote.
func New(apiURL, dataDir string, log *zap.Logger) (Backend, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// 1. A configured API URL means a remote catalog
	if apiURL != "" {
		client, err := Connect(apiURL, WithLogger(log))
		if err != nil {
			return nil, err
		}
		log.Debug("using remote catalog", zap.String("url", apiURL))
		return client, nil
	}

	// 2. Fallback to Embedded Mode
	// This uses the same engine the daemon uses, but inside the app process.
	p, err := engine.NewPersistence(dataDir, log)
	if err != nil {
		return nil, err
	}
	allData, err := p.LoadAll()
	if err != nil {
		return nil, err
	}
	store := engine.NewMemStore(allData, p)
	if _, err := engine.SeedIfEmpty(context.Background(), store); err != nil {
		return nil, err
	}
	log.Debug("using embedded catalog", zap.String("data_dir", dataDir))
	return NewEmbedded(store), nil
}

// Close is a no-op for the HTTP client.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Embedded adapts an in-process store to the CatalogClient interface.
type Embedded struct {
	store *engine.MemStore
}

// NewEmbedded wraps store.
func NewEmbedded(store *engine.MemStore) *Embedded {
	return &Embedded{store: store}
}

func (e *Embedded) FetchCollection(ctx context.Context, collection string) ([]listview.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.store.List(collection)
}

func (e *Embedded) CreateRecord(ctx context.Context, collection string, rec listview.Record) (listview.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.store.Create(collection, rec)
}

func (e *Embedded) UpdateRecord(ctx context.Context, collection, id string, partial listview.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.store.Update(collection, id, partial)
	return err
}

func (e *Embedded) DeleteRecord(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.store.Delete(collection, id)
}

// Close waits for pending disk writes.
func (e *Embedded) Close() error {
	e.store.Wait()
	return nil
}
