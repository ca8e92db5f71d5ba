// Package schema defines the catalog entity types and how each one is listed.
package schema

// Product is one row of the products collection.
type Product struct {
	ProductID   int     `json:"ProductID"`
	ProductName string  `json:"ProductName"`
	SupplierID  int     `json:"SupplierID"`
	CategoryID  int     `json:"CategoryID"`
	Unit        string  `json:"Unit"`
	Price       float64 `json:"Price"`
}

// Category is one row of the categories collection.
type Category struct {
	CategoryID   int    `json:"CategoryID"`
	CategoryName string `json:"CategoryName"`
	Description  string `json:"Description"`
}

// Supplier is one row of the suppliers collection.
type Supplier struct {
	SupplierID   int    `json:"SupplierID"`
	SupplierName string `json:"SupplierName"`
	ContactName  string `json:"ContactName"`
	Address      string `json:"Address"`
	City         string `json:"City"`
	PostalCode   string `json:"PostalCode"`
	Country      string `json:"Country"`
	Phone        string `json:"Phone"`
}

// Customer is one row of the customers collection.
type Customer struct {
	CustomerID   int    `json:"CustomerID"`
	CustomerName string `json:"CustomerName"`
	ContactName  string `json:"ContactName"`
	Address      string `json:"Address"`
	City         string `json:"City"`
	PostalCode   string `json:"PostalCode"`
	Country      string `json:"Country"`
}
