package domain

import "time"

// StockOpname records a physical stock count against the system stock.
// A non-zero difference produces an ADJUST transaction that reconciles the
// product's stock to the physical count.
type StockOpname struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	SystemStock   int       `json:"system_stock"`
	PhysicalStock int       `json:"physical_stock"`
	Difference    int       `json:"difference"`
	Note          string    `json:"note,omitempty"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// OpnameSummary aggregates recorded opnames by outcome. A negative total
// difference means counts have run short of system stock overall.
type OpnameSummary struct {
	TotalOpnames    int `json:"total_opnames"`
	Matched         int `json:"matched"`
	Shortage        int `json:"shortage"`
	Surplus         int `json:"surplus"`
	TotalDifference int `json:"total_difference"`
}
