package catalog

import (
	"time"
)

// Product represents a sellable item owned by a store. Stock is an integer
// unit count and must never go below zero.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SupplierPrice float64   `json:"supplier_price"`
	ClientPrice   float64   `json:"client_price"`
	Stock         int       `json:"stock"`
	Category      string    `json:"category"`
	StoreID       string    `json:"store_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
