// Package admin binds a catalog entity, its list view state and the backend
// into one list page.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
	"github.com/celerix-dev/celerix-catalog/pkg/sdk"
)

var (
	// ErrUnknownEntity is returned for a collection the catalog does not define.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrNoID is returned when the backend answers a create without an identifier.
	ErrNoID = errors.New("created record has no identifier")
)

// Page is one mounted list page.
type Page struct {
	Entity schema.Entity
	View   *listview.Engine

	client sdk.CatalogClient
	log    *zap.Logger

	mu   sync.RWMutex
	refs map[string]map[string]string // field -> id -> display name
}

// Open returns an unmounted page for the named collection.
func Open(name string, client sdk.CatalogClient, pageSize int, log *zap.Logger) (*Page, error) {
	entity, ok := schema.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownEntity, name, schema.Names())
	}
	view, err := listview.New(entity.ViewConfig(pageSize))
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Page{
		Entity: entity,
		View:   view,
		client: client,
		log:    log.With(zap.String("entity", entity.Name)),
		refs:   make(map[string]map[string]string),
	}, nil
}

// Mount loads the collection and every referenced collection concurrently.
func (p *Page) Mount(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var records []listview.Record
	g.Go(func() error {
		var err error
		records, err = p.client.FetchCollection(ctx, p.Entity.Name)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", p.Entity.Name, err)
		}
		return nil
	})

	refs := make([]map[string]string, len(p.Entity.References))
	for i, ref := range p.Entity.References {
		g.Go(func() error {
			names, err := p.loadNames(ctx, ref)
			if err != nil {
				return err
			}
			refs[i] = names
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	p.View.Load(records)

	p.mu.Lock()
	for i, ref := range p.Entity.References {
		p.refs[ref.Field] = refs[i]
	}
	p.mu.Unlock()

	p.log.Debug("page mounted", zap.Int("records", len(records)))
	return nil
}

func (p *Page) loadNames(ctx context.Context, ref schema.Reference) (map[string]string, error) {
	target, ok := schema.Lookup(ref.Collection)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, ref.Collection)
	}
	records, err := p.client.FetchCollection(ctx, ref.Collection)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref.Collection, err)
	}
	names := make(map[string]string, len(records))
	for _, r := range records {
		names[listview.Key(r[target.IDField])] = listview.Text(r[ref.NameField])
	}
	return names, nil
}

// Display renders one cell. Reference columns show the referenced name.
func (p *Page) Display(rec listview.Record, field string) string {
	if ref, ok := p.Entity.Reference(field); ok {
		return p.ReferenceName(ref, rec[field])
	}
	return listview.Text(rec[field])
}

// ReferenceName resolves a foreign key to its name, or the reference's
// unknown label.
func (p *Page) ReferenceName(ref schema.Reference, value any) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if name, ok := p.refs[ref.Field][listview.Key(value)]; ok {
		return name
	}
	return ref.Unknown
}

// Save persists the pending edits of row id.
func (p *Page) Save(ctx context.Context, id string) error {
	err := p.View.CommitEdit(ctx, id, func(ctx context.Context, id string, partial listview.Record) error {
		return p.client.UpdateRecord(ctx, p.Entity.Name, id, partial)
	})
	p.report("update", id, err)
	return err
}

// Delete removes row id.
func (p *Page) Delete(ctx context.Context, id string) error {
	err := p.View.Remove(ctx, id, func(ctx context.Context, id string) error {
		return p.client.DeleteRecord(ctx, p.Entity.Name, id)
	})
	p.report("delete", id, err)
	return err
}

// Create persists the draft row and appends the stored record.
func (p *Page) Create(ctx context.Context) (listview.Record, error) {
	created, err := p.View.Create(ctx, nil, func(ctx context.Context, rec listview.Record) (listview.Record, error) {
		out, err := p.client.CreateRecord(ctx, p.Entity.Name, rec)
		if err != nil {
			return nil, err
		}
		if listview.Key(out[p.Entity.IDField]) == "" {
			return nil, ErrNoID
		}
		return out, nil
	})
	p.report("create", listview.NewRow, err)
	return created, err
}

func (p *Page) report(op, id string, err error) {
	switch {
	case err == nil:
		p.log.Info("record "+op+"d", zap.String("id", id))
	case listview.IsRecoverable(err):
		p.log.Warn("write failed", zap.String("op", op), zap.String("id", id), zap.Error(err))
	default:
		p.log.Debug("write rejected", zap.String("op", op), zap.String("id", id), zap.Error(err))
	}
}
