package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/celerix-dev/celerix-catalog/pkg/listview"
	"github.com/celerix-dev/celerix-catalog/pkg/schema"
)

var seedCategories = []schema.Category{
	{CategoryID: 1, CategoryName: "Beverages", Description: "Soft drinks, coffees, teas, beers, and ales"},
	{CategoryID: 2, CategoryName: "Condiments", Description: "Sweet and savory sauces, relishes, spreads, and seasonings"},
	{CategoryID: 3, CategoryName: "Confections", Description: "Desserts, candies, and sweet breads"},
	{CategoryID: 4, CategoryName: "Dairy Products", Description: "Cheeses"},
	{CategoryID: 5, CategoryName: "Grains/Cereals", Description: "Breads, crackers, pasta, and cereal"},
	{CategoryID: 6, CategoryName: "Meat/Poultry", Description: "Prepared meats"},
	{CategoryID: 7, CategoryName: "Produce", Description: "Dried fruit and bean curd"},
	{CategoryID: 8, CategoryName: "Seafood", Description: "Seaweed and fish"},
}

var seedSuppliers = []schema.Supplier{
	{SupplierID: 1, SupplierName: "Exotic Liquid", ContactName: "Charlotte Cooper", Address: "49 Gilbert St.", City: "London", PostalCode: "EC1 4SD", Country: "UK", Phone: "(171) 555-2222"},
	{SupplierID: 2, SupplierName: "New Orleans Cajun Delights", ContactName: "Shelley Burke", Address: "P.O. Box 78934", City: "New Orleans", PostalCode: "70117", Country: "USA", Phone: "(100) 555-4822"},
	{SupplierID: 3, SupplierName: "Grandma Kelly's Homestead", ContactName: "Regina Murphy", Address: "707 Oxford Rd.", City: "Ann Arbor", PostalCode: "48104", Country: "USA", Phone: "(313) 555-5735"},
	{SupplierID: 4, SupplierName: "Tokyo Traders", ContactName: "Yoshi Nagase", Address: "9-8 Sekimai Musashino-shi", City: "Tokyo", PostalCode: "100", Country: "Japan", Phone: "(03) 3555-5011"},
	{SupplierID: 5, SupplierName: "Cooperativa de Quesos 'Las Cabras'", ContactName: "Antonio del Valle Saavedra", Address: "Calle del Rosal 4", City: "Oviedo", PostalCode: "33007", Country: "Spain", Phone: "(98) 598 76 54"},
}

var seedProducts = []schema.Product{
	{ProductID: 1, ProductName: "Chais", SupplierID: 1, CategoryID: 1, Unit: "10 boxes x 20 bags", Price: 18},
	{ProductID: 2, ProductName: "Chang", SupplierID: 1, CategoryID: 1, Unit: "24 - 12 oz bottles", Price: 19},
	{ProductID: 3, ProductName: "Aniseed Syrup", SupplierID: 1, CategoryID: 2, Unit: "12 - 550 ml bottles", Price: 10},
	{ProductID: 4, ProductName: "Chef Anton's Cajun Seasoning", SupplierID: 2, CategoryID: 2, Unit: "48 - 6 oz jars", Price: 22},
	{ProductID: 5, ProductName: "Chef Anton's Gumbo Mix", SupplierID: 2, CategoryID: 2, Unit: "36 boxes", Price: 21.35},
	{ProductID: 6, ProductName: "Grandma's Boysenberry Spread", SupplierID: 3, CategoryID: 2, Unit: "12 - 8 oz jars", Price: 25},
	{ProductID: 7, ProductName: "Uncle Bob's Organic Dried Pears", SupplierID: 3, CategoryID: 7, Unit: "12 - 1 lb pkgs.", Price: 30},
	{ProductID: 8, ProductName: "Northwoods Cranberry Sauce", SupplierID: 3, CategoryID: 2, Unit: "12 - 12 oz jars", Price: 40},
	{ProductID: 9, ProductName: "Mishi Kobe Niku", SupplierID: 4, CategoryID: 6, Unit: "18 - 500 g pkgs.", Price: 97},
	{ProductID: 10, ProductName: "Ikura", SupplierID: 4, CategoryID: 8, Unit: "12 - 200 ml jars", Price: 31},
	{ProductID: 11, ProductName: "Queso Cabrales", SupplierID: 5, CategoryID: 4, Unit: "1 kg pkg.", Price: 21},
	{ProductID: 12, ProductName: "Queso Manchego La Pastora", SupplierID: 5, CategoryID: 4, Unit: "10 - 500 g pkgs.", Price: 38},
}

var seedCustomers = []schema.Customer{
	{CustomerID: 1, CustomerName: "Alfreds Futterkiste", ContactName: "Maria Anders", Address: "Obere Str. 57", City: "Berlin", PostalCode: "12209", Country: "Germany"},
	{CustomerID: 2, CustomerName: "Ana Trujillo Emparedados y helados", ContactName: "Ana Trujillo", Address: "Avda. de la Constitución 2222", City: "México D.F.", PostalCode: "05021", Country: "Mexico"},
	{CustomerID: 3, CustomerName: "Antonio Moreno Taquería", ContactName: "Antonio Moreno", Address: "Mataderos 2312", City: "México D.F.", PostalCode: "05023", Country: "Mexico"},
	{CustomerID: 4, CustomerName: "Around the Horn", ContactName: "Thomas Hardy", Address: "120 Hanover Sq.", City: "London", PostalCode: "WA1 1DP", Country: "UK"},
	{CustomerID: 5, CustomerName: "Berglunds snabbköp", ContactName: "Christina Berglund", Address: "Berguvsvägen 8", City: "Luleå", PostalCode: "S-958 22", Country: "Sweden"},
}

// seedSource serves the sample catalog as a Loader.
type seedSource struct{}

func (seedSource) FetchCollection(_ context.Context, collection string) ([]listview.Record, error) {
	switch collection {
	case schema.Categories:
		return toRecords(seedCategories)
	case schema.Suppliers:
		return toRecords(seedSuppliers)
	case schema.Products:
		return toRecords(seedProducts)
	case schema.Customers:
		return toRecords(seedCustomers)
	}
	return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
}

// SeedIfEmpty fills every empty collection with the sample catalog and
// returns the names it filled.
func SeedIfEmpty(ctx context.Context, m *MemStore) ([]string, error) {
	var empty []string
	for _, name := range m.Collections() {
		records, err := m.List(name)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			empty = append(empty, name)
		}
	}
	if err := Migrate(ctx, seedSource{}, m, empty); err != nil {
		return nil, err
	}
	return empty, nil
}

// toRecords round-trips typed rows through JSON so seeded records have the
// same shape as records read from disk or the wire.
func toRecords[T any](rows []T) ([]listview.Record, error) {
	b, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	var out []listview.Record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
