package domain

import "time"

// QRLog records a QR code scan of a product.
type QRLog struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	ScannedBy *string   `json:"scanned_by,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}

// QRScanStat aggregates scan counts for one product.
type QRScanStat struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ScanCount   int    `json:"scan_count"`
}
