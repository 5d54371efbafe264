package domain

import "time"

// Stock transaction types.
const (
	TransactionIn     = "IN"
	TransactionOut    = "OUT"
	TransactionAdjust = "ADJUST"
)

// ValidTransactionTypes returns the set of valid stock transaction types.
func ValidTransactionTypes() []string {
	return []string{TransactionIn, TransactionOut, TransactionAdjust}
}

// IsValidTransactionType checks whether the given type is a valid stock transaction type.
func IsValidTransactionType(t string) bool {
	for _, v := range ValidTransactionTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// StockTransaction records a change in a product's stock level.
type StockTransaction struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Note      string    `json:"note,omitempty"`
	CreatedBy *string   `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockCardEntry is one row in a product's stock card: a transaction plus
// the running balance after it was applied.
type StockCardEntry struct {
	StockTransaction
	Balance int `json:"balance"`
}

// TransactionSummary aggregates movements across all products over a period.
// TotalAdjust counts ADJUST rows rather than summing their signed quantities.
type TransactionSummary struct {
	TotalIn           int `json:"total_in"`
	TotalOut          int `json:"total_out"`
	TotalAdjust       int `json:"total_adjust"`
	TotalTransactions int `json:"total_transactions"`
}

// StockSummary aggregates transaction totals for a product over a period.
type StockSummary struct {
	ProductID string `json:"product_id"`
	TotalIn   int    `json:"total_in"`
	TotalOut  int    `json:"total_out"`
	Adjusted  int    `json:"adjusted"`
	Current   int    `json:"current"`
}
