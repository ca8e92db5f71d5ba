package schema

import (
	"sort"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
)

// Collection names, also the REST paths (/products, /products/:id, ...).
const (
	Products   = "products"
	Categories = "categories"
	Suppliers  = "suppliers"
	Customers  = "customers"
)

// Reference links a foreign key column to the collection that names it.
type Reference struct {
	Field      string // column on the referencing entity, e.g. SupplierID
	Collection string // referenced collection, e.g. suppliers
	NameField  string // column shown instead of the id, e.g. SupplierName
	Unknown    string // label for ids with no match
}

// Entity describes one collection of the catalog.
type Entity struct {
	Name       string
	Title      string
	IDField    string
	Columns    []string // editable columns, in display order
	Filterable []string
	Sortable   []string
	Exact      []string
	References []Reference
}

// ViewConfig returns the list engine configuration for the entity.
func (e Entity) ViewConfig(pageSize int) listview.Config {
	return listview.Config{
		IDField:          e.IDField,
		FilterableFields: e.Filterable,
		SortableFields:   e.Sortable,
		ExactFields:      e.Exact,
		PageSize:         pageSize,
	}
}

// Reference returns the reference declared on field, if any.
func (e Entity) Reference(field string) (Reference, bool) {
	for _, r := range e.References {
		if r.Field == field {
			return r, true
		}
	}
	return Reference{}, false
}

var entities = map[string]Entity{
	Products: {
		Name:       Products,
		Title:      "Products",
		IDField:    "ProductID",
		Columns:    []string{"ProductName", "Price", "Unit", "SupplierID", "CategoryID"},
		Filterable: []string{"ProductName", "CategoryID", "SupplierID"},
		Sortable:   []string{"ProductName", "Price", "Unit", "SupplierID", "CategoryID"},
		Exact:      []string{"CategoryID", "SupplierID"},
		References: []Reference{
			{Field: "SupplierID", Collection: Suppliers, NameField: "SupplierName", Unknown: "Unknown Supplier"},
			{Field: "CategoryID", Collection: Categories, NameField: "CategoryName", Unknown: "Unknown Category"},
		},
	},
	Categories: {
		Name:       Categories,
		Title:      "Categories",
		IDField:    "CategoryID",
		Columns:    []string{"CategoryName", "Description"},
		Filterable: []string{"CategoryName", "Description"},
		Sortable:   []string{"CategoryName", "Description"},
	},
	Suppliers: {
		Name:       Suppliers,
		Title:      "Suppliers",
		IDField:    "SupplierID",
		Columns:    []string{"SupplierName", "ContactName", "Address", "City", "PostalCode", "Country", "Phone"},
		Filterable: []string{"SupplierName", "ContactName", "Address", "City", "PostalCode", "Country", "Phone"},
		Sortable:   []string{"SupplierName", "ContactName", "Address", "City", "PostalCode", "Country", "Phone"},
	},
	Customers: {
		Name:       Customers,
		Title:      "Customers",
		IDField:    "CustomerID",
		Columns:    []string{"CustomerName", "ContactName", "Address", "City", "PostalCode", "Country"},
		Filterable: []string{"CustomerName"},
		Sortable:   []string{"CustomerName", "ContactName", "Address", "City", "PostalCode", "Country"},
	},
}

// Lookup returns the entity registered under name.
func Lookup(name string) (Entity, bool) {
	e, ok := entities[name]
	return e, ok
}

// Names returns every collection name, sorted.
func Names() []string {
	names := make([]string, 0, len(entities))
	for n := range entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
