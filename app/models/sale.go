package models

import "time"

// Item types for SaleItem.ItemType
const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
)

// Sale represents a completed sale transaction. Sales are immutable once
// created: there is no update or delete path anywhere in the application.
type Sale struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	Date          time.Time  `json:"date"`
	Subtotal      float64    `json:"subtotal"`
	TaxRate       float64    `json:"tax_rate"` // e.g. 0.16 for 16%
	TaxAmount     float64    `json:"tax_amount"`
	DiscountTotal float64    `json:"discount_total"`
	Total         float64    `json:"total"`
	PaymentMethod string     `json:"payment_method"` // "Efectivo", "Tarjeta", "Transferencia"
	CashierID     string     `json:"cashier_id"`
	Items         []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SaleItem is a line of a sale. Name and price are snapshots taken at sale
// time: later catalog edits must not alter historical sales.
type SaleItem struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	SaleID   string  `gorm:"index" json:"sale_id"`
	ItemID   *string `json:"item_id"` // product or service id, nil for ad-hoc lines
	ItemType string  `json:"item_type"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount"` // percentage 0-100 applied to this line
}

// SaleItemRecord is a sale item flattened with its parent sale context,
// as returned by the sale-items aggregate query.
type SaleItemRecord struct {
	SaleItem
	SaleDate time.Time `json:"sale_date"`
}

// SaleDraft is the payload for creating a sale. ID and Date are assigned
// by whichever side persists the sale.
type SaleDraft struct {
	Subtotal      float64         `json:"subtotal"`
	TaxRate       float64         `json:"tax_rate"`
	TaxAmount     float64         `json:"tax_amount"`
	DiscountTotal float64         `json:"discount_total"`
	Total         float64         `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	CashierID     string          `json:"cashier_id"`
	Items         []SaleItemDraft `json:"items"`
}

// SaleItemDraft is a line of a SaleDraft
type SaleItemDraft struct {
	ItemID   *string `json:"item_id"`
	ItemType string  `json:"item_type"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount"`
}

// PeriodSummary is the sale count and revenue for one reporting period
type PeriodSummary struct {
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// SalesSummary partitions all sales into today / this month / all time
type SalesSummary struct {
	Today     PeriodSummary `json:"today"`
	ThisMonth PeriodSummary `json:"this_month"`
	AllTime   PeriodSummary `json:"all_time"`
}

// ItemStat is one row of a best-seller ranking
type ItemStat struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ProductSalesStats ranks products by total quantity sold
type ProductSalesStats struct {
	MostSoldProducts    []ItemStat `json:"most_sold_products"`
	TotalUniqueProducts int        `json:"total_unique_products"`
}

// ServiceSalesStats ranks services by total quantity requested
type ServiceSalesStats struct {
	MostRequestedServices []ItemStat `json:"most_requested_services"`
	TotalUniqueServices   int        `json:"total_unique_services"`
}
