package models

import "time"

// Product represents an inventory item sold over the counter
type Product struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Image             *string   `json:"image"` // URL to product image
	Description       *string   `json:"description"`
	Price             float64   `gorm:"not null" json:"price"`
	CategoryID        string    `json:"category_id"`
	Stock             int       `json:"stock"` // never persisted negative
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsLowStock reports whether the product is at or below its alert threshold
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// IsOutOfStock reports whether the product cannot be sold
func (p *Product) IsOutOfStock() bool {
	return p.Stock <= 0
}

// Category represents a product category
type Category struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service represents work performed in the shop (no stock concept)
type Service struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
