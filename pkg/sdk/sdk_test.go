package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/internal/server"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
	"github.com/celerix-dev/celerix-catalog/pkg/sdk"
)

func startServer(t *testing.T) (*sdk.Client, *engine.MemStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := engine.NewMemStore(nil, nil)
	_, err := engine.SeedIfEmpty(context.Background(), store)
	require.NoError(t, err)

	ts := httptest.NewServer(server.NewRouter(store, nil))
	t.Cleanup(ts.Close)

	client, err := sdk.Connect(ts.URL)
	require.NoError(t, err)
	return client, store
}

func TestClient_Integration(t *testing.T) {
	client, store := startServer(t)
	ctx := context.Background()

	products, err := client.FetchCollection(ctx, schema.Products)
	require.NoError(t, err)
	assert.Len(t, products, 12)

	created, err := client.CreateRecord(ctx, schema.Products, listview.Record{"ProductName": "Oolong Tea", "Price": 14.0})
	require.NoError(t, err)
	assert.Equal(t, float64(13), created["ProductID"])

	require.NoError(t, client.UpdateRecord(ctx, schema.Products, "13", listview.Record{"Price": 15.5}))
	rec, _ := store.Get(schema.Products, "13")
	assert.Equal(t, 15.5, rec["Price"])

	require.NoError(t, client.DeleteRecord(ctx, schema.Products, "13"))

	err = client.DeleteRecord(ctx, schema.Products, "13")
	assert.ErrorIs(t, err, sdk.ErrNotFound)
	var serr *sdk.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusNotFound, serr.StatusCode)
	assert.Contains(t, serr.Message, "record not found")
}

func TestFetchTyped(t *testing.T) {
	client, _ := startServer(t)

	suppliers, err := sdk.Fetch[schema.Supplier](context.Background(), client, schema.Suppliers)
	require.NoError(t, err)
	require.NotEmpty(t, suppliers)
	assert.Equal(t, "Exotic Liquid", suppliers[0].SupplierName)
	assert.Equal(t, 1, suppliers[0].SupplierID)
}

func TestFetchCollection_Retries(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"CategoryID":1,"CategoryName":"Beverages"}]`))
	}))
	defer ts.Close()

	client, err := sdk.Connect(ts.URL)
	require.NoError(t, err)

	records, err := client.FetchCollection(context.Background(), schema.Categories)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWrites_AreNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client, _ := sdk.Connect(ts.URL)
	err := client.UpdateRecord(context.Background(), schema.Products, "1", listview.Record{"Price": 1})
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
	assert.False(t, errors.Is(err, sdk.ErrNotFound))
}

func TestConnect_RejectsBadURL(t *testing.T) {
	_, err := sdk.Connect("ftp://example.com")
	assert.Error(t, err)
}

func TestNew_Embedded(t *testing.T) {
	backend, err := sdk.New("", t.TempDir(), nil)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	customers, err := backend.FetchCollection(ctx, schema.Customers)
	require.NoError(t, err)
	assert.Len(t, customers, 5)

	created, err := backend.CreateRecord(ctx, schema.Customers, listview.Record{"CustomerName": "Bólido Comidas"})
	require.NoError(t, err)
	assert.Equal(t, float64(6), created["CustomerID"])

	assert.ErrorIs(t, backend.DeleteRecord(ctx, schema.Customers, "99"), engine.ErrRecordNotFound)
}
