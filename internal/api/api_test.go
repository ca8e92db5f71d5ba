package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
)

func setupTestRouter() (*gin.Engine, *engine.MemStore) {
	gin.SetMode(gin.TestMode)
	store := engine.NewMemStore(nil, nil)
	h := &Handler{Store: store}
	r := gin.New()
	h.Register(r)
	return r, store
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewBuffer(b)
	} else {
		buf = &bytes.Buffer{}
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListCollection(t *testing.T) {
	r, store := setupTestRouter()
	store.Create(schema.Categories, listview.Record{"CategoryName": "Beverages"})

	w := do(r, "GET", "/categories", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var records []map[string]any
	json.Unmarshal(w.Body.Bytes(), &records)
	if len(records) != 1 || records[0]["CategoryName"] != "Beverages" || records[0]["CategoryID"] != float64(1) {
		t.Errorf("Unexpected list: %v", records)
	}

	w = do(r, "GET", "/orders", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown collection, got %d", w.Code)
	}
}

func TestCreateRecord(t *testing.T) {
	r, store := setupTestRouter()

	w := do(r, "POST", "/products", map[string]any{"ProductName": "Chais", "Price": "18"})
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	var created map[string]any
	json.Unmarshal(w.Body.Bytes(), &created)
	if created["ProductID"] != float64(1) || created["ProductName"] != "Chais" {
		t.Errorf("Unexpected created record: %v", created)
	}

	// No server-side validation: values are stored as sent.
	got, _ := store.Get(schema.Products, "1")
	if got["Price"] != "18" {
		t.Errorf("Expected Price to be stored verbatim, got %v", got["Price"])
	}

	req, _ := http.NewRequest("POST", "/products", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed body, got %d", w.Code)
	}
}

func TestPatchRecord(t *testing.T) {
	r, store := setupTestRouter()
	store.Create(schema.Suppliers, listview.Record{"SupplierName": "Tokyo Traders", "City": "Tokyo"})

	w := do(r, "PATCH", "/suppliers/1", map[string]any{"City": "Osaka"})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	got, _ := store.Get(schema.Suppliers, "1")
	if got["City"] != "Osaka" || got["SupplierName"] != "Tokyo Traders" {
		t.Errorf("Patch did not merge: %v", got)
	}

	w = do(r, "PATCH", "/suppliers/42", map[string]any{"City": "Osaka"})
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetAndDeleteRecord(t *testing.T) {
	r, store := setupTestRouter()
	store.Create(schema.Customers, listview.Record{"CustomerName": "Around the Horn"})

	w := do(r, "GET", "/customers/1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	w = do(r, "DELETE", "/customers/1", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if _, err := store.Get(schema.Customers, "1"); err == nil {
		t.Error("Record should have been deleted")
	}

	w = do(r, "DELETE", "/customers/1", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestCollections(t *testing.T) {
	r, _ := setupTestRouter()

	w := do(r, "GET", "/collections", nil)
	var names []string
	json.Unmarshal(w.Body.Bytes(), &names)
	if len(names) != 4 {
		t.Errorf("Expected 4 collections, got %v", names)
	}
}
