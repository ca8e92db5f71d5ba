package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
)

// MemStore is a thread-safe in-memory catalog.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [collection][]record, in insertion order
	data      map[string][]listview.Record
	versions  map[string]uint64
	persister *Persistence
	wg        sync.WaitGroup
}

// NewMemStore initializes a store with every catalog collection.
// It accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string][]listview.Record, p *Persistence) *MemStore {
	data := make(map[string][]listview.Record)
	for _, name := range schema.Names() {
		data[name] = nil
	}
	for name, records := range initialData {
		if _, ok := schema.Lookup(name); !ok {
			continue
		}
		data[name] = records
	}
	return &MemStore{
		data:      data,
		versions:  make(map[string]uint64),
		persister: p,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

// --- Interface Implementation ---

func (m *MemStore) Collections() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for name := range m.data {
		list = append(list, name)
	}
	sort.Strings(list)
	return list
}

func (m *MemStore) List(collection string) ([]listview.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records, ok := m.data[collection]
	if !ok {
		return nil, ErrCollectionNotFound
	}
	return copyRecords(records), nil
}

// FetchCollection lets the store act as a Loader.
func (m *MemStore) FetchCollection(_ context.Context, collection string) ([]listview.Record, error) {
	return m.List(collection)
}

func (m *MemStore) Get(collection, id string) (listview.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entity, records, err := m.collection(collection)
	if err != nil {
		return nil, err
	}
	i := indexOf(records, entity.IDField, id)
	if i < 0 {
		return nil, ErrRecordNotFound
	}
	return records[i].Clone(), nil
}

func (m *MemStore) Create(collection string, rec listview.Record) (listview.Record, error) {
	if rec == nil {
		return nil, ErrInvalidRecord
	}

	m.mu.Lock()
	entity, records, err := m.collection(collection)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}

	stored := rec.Clone()
	stored[entity.IDField] = float64(nextID(records, entity.IDField))
	m.data[collection] = append(records, stored)

	out := stored.Clone()
	version, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return out, nil
}

func (m *MemStore) Update(collection, id string, partial listview.Record) (listview.Record, error) {
	if partial == nil {
		return nil, ErrInvalidRecord
	}

	m.mu.Lock()
	entity, records, err := m.collection(collection)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	i := indexOf(records, entity.IDField, id)
	if i < 0 {
		m.mu.Unlock()
		return nil, ErrRecordNotFound
	}

	// The id column is immutable.
	patch := partial.Clone()
	delete(patch, entity.IDField)
	records[i].Merge(patch)

	out := records[i].Clone()
	version, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return out, nil
}

func (m *MemStore) Delete(collection, id string) error {
	m.mu.Lock()
	entity, records, err := m.collection(collection)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	i := indexOf(records, entity.IDField, id)
	if i < 0 {
		m.mu.Unlock()
		return ErrRecordNotFound
	}
	records = append(records[:i], records[i+1:]...)
	m.data[collection] = records

	version, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

// Import replaces a collection wholesale.
func (m *MemStore) Import(collection string, records []listview.Record) error {
	m.mu.Lock()
	if _, _, err := m.collection(collection); err != nil {
		m.mu.Unlock()
		return err
	}
	m.data[collection] = copyRecords(records)
	version, snapshot := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

// collection must be called while holding m.mu.
func (m *MemStore) collection(name string) (schema.Entity, []listview.Record, error) {
	entity, ok := schema.Lookup(name)
	if !ok {
		return schema.Entity{}, nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
	}
	return entity, m.data[name], nil
}

// snapshot bumps the collection version and deep copies its records.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) snapshot(collection string) (uint64, []listview.Record) {
	m.versions[collection]++
	return m.versions[collection], copyRecords(m.data[collection])
}

// persist writes the snapshot in the background. Older versions that finish
// late are dropped by the persister.
func (m *MemStore) persist(collection string, version uint64, snapshot []listview.Record) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = m.persister.SaveCollection(collection, version, snapshot)
	}()
}

func indexOf(records []listview.Record, idField, id string) int {
	for i := len(records) - 1; i >= 0; i-- {
		if listview.Key(records[i][idField]) == id {
			return i
		}
	}
	return -1
}

func nextID(records []listview.Record, idField string) int {
	highest := 0
	for _, r := range records {
		var n int
		if _, err := fmt.Sscan(listview.Key(r[idField]), &n); err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func copyRecords(records []listview.Record) []listview.Record {
	out := make([]listview.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
