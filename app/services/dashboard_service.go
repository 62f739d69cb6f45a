package services

import (
	"context"

	"MotoZonePos/app/models"
)

// DashboardData is the aggregate payload behind the dashboard screen
type DashboardData struct {
	Summary          *models.SalesSummary      `json:"summary"`
	LowStockProducts []models.Product          `json:"low_stock_products"`
	OutOfStock       []models.Product          `json:"out_of_stock_products"`
	ProductStats     *models.ProductSalesStats `json:"product_stats"`
	ServiceStats     *models.ServiceSalesStats `json:"service_stats"`
}

// DashboardService assembles the dashboard view from the data gateway:
// sales KPIs plus stock alerts derived from the cached catalog.
type DashboardService struct {
	data *DataService
}

// NewDashboardService creates the dashboard aggregator
func NewDashboardService(data *DataService) *DashboardService {
	return &DashboardService{data: data}
}

// LowStockProducts returns cached products at or below their threshold but
// not yet sold out.
func (s *DashboardService) LowStockProducts() []models.Product {
	var low []models.Product
	for _, product := range s.data.Products() {
		if product.IsLowStock() && !product.IsOutOfStock() {
			low = append(low, product)
		}
	}
	return low
}

// OutOfStockProducts returns cached products with no stock left
func (s *DashboardService) OutOfStockProducts() []models.Product {
	var out []models.Product
	for _, product := range s.data.Products() {
		if product.IsOutOfStock() {
			out = append(out, product)
		}
	}
	return out
}

// Load gathers everything the dashboard shows in one call
func (s *DashboardService) Load(ctx context.Context) (*DashboardData, error) {
	summary, err := s.data.SalesSummary(ctx)
	if err != nil {
		return nil, err
	}
	productStats, err := s.data.ProductSalesStats(ctx)
	if err != nil {
		return nil, err
	}
	serviceStats, err := s.data.ServiceSalesStats(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		Summary:          summary,
		LowStockProducts: s.LowStockProducts(),
		OutOfStock:       s.OutOfStockProducts(),
		ProductStats:     productStats,
		ServiceStats:     serviceStats,
	}, nil
}
