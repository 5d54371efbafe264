package domain

import "time"

// Profit report types.
const (
	ReportDaily   = "DAILY"
	ReportWeekly  = "WEEKLY"
	ReportMonthly = "MONTHLY"
)

// IsValidReportType checks whether the given type is a valid report type.
func IsValidReportType(t string) bool {
	return t == ReportDaily || t == ReportWeekly || t == ReportMonthly
}

// ProfitReport aggregates cost, sales, and profit over a period. Totals are
// computed from OUT transactions joined against product prices.
type ProfitReport struct {
	ID          string    `json:"id"`
	ReportType  string    `json:"report_type"`
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	TotalCost   int64     `json:"total_cost"`
	TotalSales  int64     `json:"total_sales"`
	TotalProfit int64     `json:"total_profit"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfitSummary sums stored reports of one type. An empty ReportType means
// the summary spans all types.
type ProfitSummary struct {
	ReportType  string `json:"report_type,omitempty"`
	ReportCount int    `json:"report_count"`
	TotalCost   int64  `json:"total_cost"`
	TotalSales  int64  `json:"total_sales"`
	TotalProfit int64  `json:"total_profit"`
}
