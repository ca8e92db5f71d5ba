package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celerix-dev/celerix-catalog/internal/engine"
	"github.com/celerix-dev/celerix-catalog/internal/server"
	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

func execute(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config-dir", dir,
		"--data-dir", filepath.Join(dir, "data"),
		"--log-file", filepath.Join(dir, "catalog.log"),
	}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestList(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "", "list", "products", "--filter", "ProductName=an", "--sort", "Price", "--desc")
	require.NoError(t, err)
	assert.Contains(t, out, "Products")
	assert.Contains(t, out, "Price ↓")
	assert.Contains(t, out, "Filters: ProductName~\"an\"")

	out, err = execute(t, dir, "", "list", "customers", "--page", "1", "--json")
	require.NoError(t, err)
	var rows []listview.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 5)

	_, err = execute(t, dir, "", "list", "orders")
	assert.ErrorContains(t, err, "unknown entity")

	_, err = execute(t, dir, "", "list", "products", "--filter", "Price")
	assert.ErrorContains(t, err, "expected field=query")
}

func TestCreateUpdateDelete(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "", "create", "categories", "CategoryName=Tea", "Description=Leaves and blends")
	require.NoError(t, err)
	var created listview.Record
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.Equal(t, 9.0, created["CategoryID"])

	out, err = execute(t, dir, "", "update", "categories", "9", "Description=Green and black")
	require.NoError(t, err)
	assert.Contains(t, out, "Green and black")

	// The change reached the data dir.
	out, err = execute(t, dir, "", "list", "categories", "--filter", "CategoryName=tea", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "Green and black")

	out, err = execute(t, dir, "", "delete", "categories", "9")
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)

	_, err = execute(t, dir, "", "delete", "categories", "9")
	assert.ErrorIs(t, err, listview.ErrRecordNotFound)

	_, err = execute(t, dir, "", "update", "categories", "1", "CategoryID=5")
	assert.ErrorIs(t, err, listview.ErrInvalidField)
}

func TestBrowse(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, dir, "SORT SupplierName\nFILTER Country uk\nQUIT\n", "browse", "suppliers")
	require.NoError(t, err)
	assert.Contains(t, out, "SupplierName ↑")
	assert.Contains(t, out, "Page 1 of 1 (1 matching)")
	assert.Contains(t, out, "Exotic Liquid")
}

func TestMirror(t *testing.T) {
	gin.SetMode(gin.TestMode)
	remote := engine.NewMemStore(nil, nil)
	_, err := engine.SeedIfEmpty(context.Background(), remote)
	require.NoError(t, err)
	ts := httptest.NewServer(server.NewRouter(remote, nil))
	defer ts.Close()

	dir := t.TempDir()
	out, err := execute(t, dir, "", "--api-url", ts.URL, "mirror", "--collections", "suppliers,customers")
	require.NoError(t, err)
	assert.Contains(t, out, "suppliers    5 records")

	_, err = os.Stat(filepath.Join(dir, "data", "customers.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data", "products.json"))
	assert.True(t, os.IsNotExist(err))

	_, err = execute(t, dir, "", "--api-url", ts.URL, "mirror", "--collections", "orders")
	assert.ErrorContains(t, err, "orders")

	_, err = execute(t, dir, "", "mirror")
	assert.ErrorContains(t, err, "needs --api-url")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, "catalog dev\n", out)
}
