package listview

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// DefaultPageSize is used when Config.PageSize is zero.
const DefaultPageSize = 10

// Direction of the active sort key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Config describes the shape of one entity type.
type Config struct {
	IDField          string
	FilterableFields []string
	SortableFields   []string
	// ExactFields is a subset of FilterableFields matched by case-insensitive
	// equality instead of substring, for id pickers such as CategoryID.
	ExactFields []string
	PageSize    int
}

// SortState is the active sort key, if any.
type SortState struct {
	Field     string
	Direction Direction
}

// PageInfo summarizes pagination of the current view.
type PageInfo struct {
	CurrentPage   int `json:"currentPage"`
	TotalPages    int `json:"totalPages"`
	TotalMatching int `json:"totalMatching"`
}

// Persist callbacks. The engine applies a mutation only after they return nil.
type (
	UpdateFunc func(ctx context.Context, id string, partial Record) error
	DeleteFunc func(ctx context.Context, id string) error
	CreateFunc func(ctx context.Context, rec Record) (Record, error)
)

// Engine holds the collection and view state of one list page.
// It is safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	cfg        Config
	filterable map[string]bool
	sortable   map[string]bool
	exact      map[string]bool

	records []Record
	filters map[string]string
	sort    SortState
	page    int

	overlay map[string]Record
	active  string
	pending map[string]struct{}
}

// New validates cfg and returns an empty engine.
func New(cfg Config) (*Engine, error) {
	if cfg.IDField == "" {
		return nil, fmt.Errorf("%w: id field is required", ErrInvalidConfig)
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("%w: page size %d", ErrInvalidConfig, cfg.PageSize)
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}

	e := &Engine{
		cfg:        cfg,
		filterable: toSet(cfg.FilterableFields),
		sortable:   toSet(cfg.SortableFields),
		exact:      toSet(cfg.ExactFields),
		filters:    make(map[string]string),
		page:       1,
		overlay:    make(map[string]Record),
		pending:    make(map[string]struct{}),
	}
	for f := range e.exact {
		if !e.filterable[f] {
			return nil, fmt.Errorf("%w: exact field %q is not filterable", ErrInvalidConfig, f)
		}
	}
	return e, nil
}

func toSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Load replaces the collection and returns to the first page.
func (e *Engine) Load(records []Record) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.records = cloneAll(records)
	e.page = 1
}

// Len returns the size of the whole collection, ignoring filters.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.records)
}

// --- Filter / Sort / Pagination ---

// SetFilter sets the query for one filterable field. An empty query clears it.
func (e *Engine) SetFilter(field, query string) error {
	if !e.filterable[field] {
		return invalidField(field)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if query == "" {
		delete(e.filters, field)
	} else {
		e.filters[field] = query
	}
	e.page = 1
	return nil
}

// ResetFilters clears every query.
func (e *Engine) ResetFilters() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.filters)
	e.page = 1
}

// Filters returns a copy of the active queries.
func (e *Engine) Filters() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make(map[string]string, len(e.filters))
	for k, v := range e.filters {
		out[k] = v
	}
	return out
}

// SetSort makes field the sort key. Selecting the current ascending key flips it
// to descending; anything else sorts ascending.
func (e *Engine) SetSort(field string) error {
	if !e.sortable[field] {
		return invalidField(field)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	dir := Ascending
	if e.sort.Field == field && e.sort.Direction == Ascending {
		dir = Descending
	}
	e.sort = SortState{Field: field, Direction: dir}
	return nil
}

// Sort returns the active sort state. Field is empty when unsorted.
func (e *Engine) Sort() SortState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sort
}

// NextPage advances one page, stopping at the last.
func (e *Engine) NextPage() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page < e.totalPages(len(e.matching())) {
		e.page++
	}
}

// PrevPage goes back one page, stopping at the first.
func (e *Engine) PrevPage() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.page > 1 {
		e.page--
	}
}

// --- Edit overlay ---

// BeginEdit marks id (or NewRow) as the row being edited.
func (e *Engine) BeginEdit(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = id
}

// ActiveEdit returns the row being edited, or "" when none is.
func (e *Engine) ActiveEdit() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

// SetField records a pending edit. The collection is not touched.
func (e *Engine) SetField(id, field string, value any) error {
	if field == "" || (field == e.cfg.IDField && id != NewRow) {
		return invalidField(field)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.overlay[id] == nil {
		e.overlay[id] = make(Record)
	}
	e.overlay[id][field] = value
	return nil
}

// Overlay returns a copy of the pending edits for id, or nil.
func (e *Engine) Overlay(id string) Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.overlay[id].Clone()
}

// Value returns what an edit cell shows: the pending value when there is one,
// otherwise the stored value.
func (e *Engine) Value(id, field string) any {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if v, ok := e.overlay[id][field]; ok {
		return v
	}
	if i := e.indexOf(id); i >= 0 {
		return e.records[i][field]
	}
	return nil
}

// Lookup returns a copy of the record with the given id.
func (e *Engine) Lookup(id string) (Record, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	i := e.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return e.records[i].Clone(), true
}

// CancelEdit drops the pending edits for id.
func (e *Engine) CancelEdit(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.overlay, id)
	if e.active == id {
		e.active = ""
	}
}

// CommitEdit persists the pending edits for id and merges them into the
// collection once persist succeeds. Edits made to id while persist runs are
// kept in the overlay for the next commit.
func (e *Engine) CommitEdit(ctx context.Context, id string, persist UpdateFunc) error {
	e.mu.Lock()
	if _, busy := e.pending[id]; busy {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, id)
	}
	if e.indexOf(id) < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	partial := e.overlay[id].Clone()
	if len(partial) == 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoPendingEdit, id)
	}
	e.pending[id] = struct{}{}
	e.mu.Unlock()

	err := persist(ctx, id, partial.Clone())

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)

	if err != nil {
		return &RecoverableError{Op: "update", ID: id, Err: err}
	}

	if i := e.indexOf(id); i >= 0 {
		e.records[i].Merge(partial)
	}
	e.clampPage()

	// Fields changed again while persist ran stay pending.
	pending := e.overlay[id]
	for k, v := range partial {
		if cur, ok := pending[k]; ok && reflect.DeepEqual(cur, v) {
			delete(pending, k)
		}
	}
	if len(pending) == 0 {
		delete(e.overlay, id)
		if e.active == id {
			e.active = ""
		}
	}
	return nil
}

// Remove deletes id through persist and drops it locally once persist succeeds.
func (e *Engine) Remove(ctx context.Context, id string, persist DeleteFunc) error {
	e.mu.Lock()
	if _, busy := e.pending[id]; busy {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBusy, id)
	}
	if e.indexOf(id) < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	e.pending[id] = struct{}{}
	e.mu.Unlock()

	err := persist(ctx, id)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)

	if err != nil {
		return &RecoverableError{Op: "delete", ID: id, Err: err}
	}

	// The backend no longer has id, so every local copy goes.
	e.records = slices.DeleteFunc(e.records, func(r Record) bool {
		return Key(r[e.cfg.IDField]) == id
	})
	delete(e.overlay, id)
	if e.active == id {
		e.active = ""
	}
	e.clampPage()
	return nil
}

// Create persists rec (or the NewRow overlay when rec is nil) and appends the
// record returned by persist. On failure the draft is kept. An empty draft
// returns ErrNoPendingEdit without calling persist.
func (e *Engine) Create(ctx context.Context, rec Record, persist CreateFunc) (Record, error) {
	e.mu.Lock()
	if _, busy := e.pending[NewRow]; busy {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBusy, NewRow)
	}
	if rec == nil {
		rec = e.overlay[NewRow]
		if len(rec) == 0 {
			e.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", ErrNoPendingEdit, NewRow)
		}
	}
	draft := rec.Clone()
	if draft == nil {
		draft = make(Record)
	}
	e.pending[NewRow] = struct{}{}
	e.mu.Unlock()

	created, err := persist(ctx, draft)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, NewRow)

	if err != nil {
		return nil, &RecoverableError{Op: "create", ID: NewRow, Err: err}
	}

	created = created.Clone()
	if created == nil {
		created = draft
	}
	e.records = append(e.records, created)
	delete(e.overlay, NewRow)
	if e.active == NewRow {
		e.active = ""
	}
	return created.Clone(), nil
}

// indexOf returns the last record with the given id, or -1.
// Callers must hold e.mu.
func (e *Engine) indexOf(id string) int {
	for i := len(e.records) - 1; i >= 0; i-- {
		if Key(e.records[i][e.cfg.IDField]) == id {
			return i
		}
	}
	return -1
}
