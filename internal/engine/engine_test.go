package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
)

func TestMemStore_CreateGetUpdateDelete(t *testing.T) {
	ms := NewMemStore(nil, nil)

	created, err := ms.Create(schema.Products, listview.Record{"ProductName": "Chais", "Price": 18.0})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created["ProductID"] != float64(1) {
		t.Fatalf("Expected ProductID 1, got %v", created["ProductID"])
	}

	second, _ := ms.Create(schema.Products, listview.Record{"ProductName": "Chang", "ProductID": 99.0})
	if second["ProductID"] != float64(2) {
		t.Errorf("Expected backend-assigned ProductID 2, got %v", second["ProductID"])
	}

	got, err := ms.Get(schema.Products, "1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got["ProductName"] != "Chais" {
		t.Errorf("Expected Chais, got %v", got["ProductName"])
	}

	updated, err := ms.Update(schema.Products, "1", listview.Record{"Price": 20.0, "ProductID": 7.0})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated["Price"] != 20.0 || updated["ProductName"] != "Chais" || updated["ProductID"] != float64(1) {
		t.Errorf("Unexpected record after update: %v", updated)
	}

	if err := ms.Delete(schema.Products, "1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := ms.Get(schema.Products, "1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound after delete, got %v", err)
	}
	if err := ms.Delete(schema.Products, "1"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestMemStore_UnknownCollection(t *testing.T) {
	ms := NewMemStore(nil, nil)

	if _, err := ms.List("orders"); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Expected ErrCollectionNotFound, got %v", err)
	}
	if _, err := ms.Create("orders", listview.Record{}); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Expected ErrCollectionNotFound, got %v", err)
	}
	if _, err := ms.Update(schema.Products, "1", nil); !errors.Is(err, ErrInvalidRecord) {
		t.Errorf("Expected ErrInvalidRecord, got %v", err)
	}

	if got := ms.Collections(); len(got) != 4 {
		t.Errorf("Expected 4 collections, got %v", got)
	}
}

func TestMemStore_ListReturnsCopies(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.Create(schema.Categories, listview.Record{"CategoryName": "Beverages"})

	list, _ := ms.List(schema.Categories)
	list[0]["CategoryName"] = "mutated"

	again, _ := ms.List(schema.Categories)
	if again[0]["CategoryName"] != "Beverages" {
		t.Errorf("List leaked internal state: %v", again[0])
	}
}

func TestPersistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, err := NewPersistence(tmpDir, nil)
	if err != nil {
		t.Fatalf("NewPersistence failed: %v", err)
	}

	records := []listview.Record{{"CategoryID": 1.0, "CategoryName": "Beverages"}}
	if err := p.SaveCollection(schema.Categories, 1, records); err != nil {
		t.Fatalf("SaveCollection failed: %v", err)
	}

	// A stale version must not overwrite a newer one.
	if err := p.SaveCollection(schema.Categories, 1, nil); err != nil {
		t.Fatalf("SaveCollection failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "categories.json")); os.IsNotExist(err) {
		t.Fatal("Collection file was not created")
	}

	os.WriteFile(filepath.Join(tmpDir, "broken.json"), []byte("{not json"), 0o644)

	all, err := p.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 collection, got %d", len(all))
	}
	if all[schema.Categories][0]["CategoryName"] != "Beverages" {
		t.Errorf("Loaded data mismatch: %v", all[schema.Categories])
	}
}

func TestMemStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	p, _ := NewPersistence(tmpDir, nil)
	ms := NewMemStore(nil, p)

	for i := range 5 {
		if _, err := ms.Create(schema.Suppliers, listview.Record{"SupplierName": fmt.Sprintf("s%d", i)}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	ms.Delete(schema.Suppliers, "2")

	ms.Wait() // Wait for background persistence

	allData, _ := p.LoadAll()
	ms2 := NewMemStore(allData, p)

	list, err := ms2.List(schema.Suppliers)
	if err != nil {
		t.Fatalf("List on new store failed: %v", err)
	}
	if len(list) != 4 {
		t.Errorf("Expected 4 suppliers after reload, got %d", len(list))
	}
	if _, err := ms2.Get(schema.Suppliers, "2"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("Deleted supplier came back: %v", err)
	}
}

func TestMemStore_Concurrent(t *testing.T) {
	ms := NewMemStore(nil, nil)
	const (
		numGoroutines = 10
		numOps        = 50
	)
	var wg sync.WaitGroup

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range numOps {
				ms.Create(schema.Customers, listview.Record{"CustomerName": "c"})
				ms.List(schema.Customers)
			}
		}()
	}
	wg.Wait()

	list, _ := ms.List(schema.Customers)
	if len(list) != numGoroutines*numOps {
		t.Fatalf("Expected %d customers, got %d", numGoroutines*numOps, len(list))
	}
	seen := make(map[string]bool)
	for _, r := range list {
		id := listview.Key(r["CustomerID"])
		if seen[id] {
			t.Fatalf("Duplicate CustomerID %s", id)
		}
		seen[id] = true
	}
}

func TestSeedIfEmptyAndMigrate(t *testing.T) {
	ms := NewMemStore(nil, nil)
	ms.Create(schema.Customers, listview.Record{"CustomerName": "kept"})

	filled, err := SeedIfEmpty(context.Background(), ms)
	if err != nil {
		t.Fatalf("SeedIfEmpty failed: %v", err)
	}
	if len(filled) != 3 {
		t.Errorf("Expected 3 seeded collections, got %v", filled)
	}

	products, _ := ms.List(schema.Products)
	if len(products) != 12 {
		t.Errorf("Expected 12 seeded products, got %d", len(products))
	}
	if products[0]["ProductID"] != float64(1) {
		t.Errorf("Seeded ids should decode as JSON numbers, got %T", products[0]["ProductID"])
	}
	customers, _ := ms.List(schema.Customers)
	if len(customers) != 1 {
		t.Errorf("Non-empty collection was overwritten: %v", customers)
	}

	dst := NewMemStore(nil, nil)
	if err := Migrate(context.Background(), ms, dst, ms.Collections()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	copied, _ := dst.List(schema.Products)
	if len(copied) != 12 {
		t.Errorf("Expected 12 migrated products, got %d", len(copied))
	}

	if err := Migrate(context.Background(), ms, dst, []string{"orders"}); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("Expected ErrCollectionNotFound, got %v", err)
	}
}
