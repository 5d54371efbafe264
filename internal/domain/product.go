package domain

import (
	"time"
)

// Product stock statuses derived from the current stock level.
const (
	StockStatusAvailable = "AVAILABLE"
	StockStatusLow       = "LOW"
	StockStatusEmpty     = "EMPTY"
)

// Product represents an item tracked in the inventory.
type Product struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Unit      string    `json:"unit"`
	Stock     int       `json:"stock"`
	MinStock  int       `json:"min_stock"`
	CostPrice int64     `json:"cost_price"`
	SalePrice int64     `json:"sale_price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profit returns the margin per unit.
func (p *Product) Profit() int64 {
	return p.SalePrice - p.CostPrice
}

// StockStatus derives the display status from the stock level and threshold.
func (p *Product) StockStatus() string {
	switch {
	case p.Stock <= 0:
		return StockStatusEmpty
	case p.Stock <= p.MinStock:
		return StockStatusLow
	default:
		return StockStatusAvailable
	}
}

// ProductOption is a minimal projection used for dropdowns and QR scan results.
type ProductOption struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}
