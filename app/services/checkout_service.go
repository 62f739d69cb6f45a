package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"MotoZonePos/app/models"
)

// CartLine is one line of the checkout in progress. Name and price are
// snapshots of the catalog entry at the moment it was added.
type CartLine struct {
	ItemID   *string `json:"item_id"`
	ItemType string  `json:"item_type"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Discount float64 `json:"discount"` // percentage 0-100
}

// CheckoutTotals is the computed breakdown of the cart
type CheckoutTotals struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discount_total"`
	TaxRate       float64 `json:"tax_rate"`
	TaxAmount     float64 `json:"tax_amount"`
	Total         float64 `json:"total"`
}

// CheckoutService builds a sale line by line and computes its totals.
// Discounts are per-line percentages applied before tax: the tax base is
// the subtotal minus all discounts. Product lines are guarded against the
// cached stock so a cart can never hold more units than the shop has.
type CheckoutService struct {
	data    *DataService
	logger  *LoggerService
	taxRate float64

	mu    sync.Mutex
	lines []CartLine
}

// NewCheckoutService creates a checkout with the configured tax rate
func NewCheckoutService(data *DataService, logger *LoggerService, taxRate float64) *CheckoutService {
	return &CheckoutService{data: data, logger: logger, taxRate: taxRate}
}

// Lines returns a copy of the current cart
func (s *CheckoutService) Lines() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// Clear empties the cart
func (s *CheckoutService) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

// AddProduct adds a product line from the cached catalog, merging with an
// existing line for the same product. Returns models.ErrInsufficientStock
// when the cart would exceed the cached stock.
func (s *CheckoutService) AddProduct(productID string, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	product, err := s.data.ProductByID(productID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inCart := 0
	existing := -1
	for i, line := range s.lines {
		if line.ItemType == models.ItemTypeProduct && line.ItemID != nil && *line.ItemID == productID {
			inCart += line.Quantity
			existing = i
		}
	}
	if inCart+quantity > product.Stock {
		return models.ErrInsufficientStock
	}

	if existing >= 0 {
		s.lines[existing].Quantity += quantity
		return nil
	}

	id := product.ID
	s.lines = append(s.lines, CartLine{
		ItemID:   &id,
		ItemType: models.ItemTypeProduct,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: quantity,
	})
	return nil
}

// AddService adds a service line from the cached catalog. Services have no
// stock, so no guard applies.
func (s *CheckoutService) AddService(serviceID string, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	service, err := s.data.ServiceByID(serviceID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.ItemType == models.ItemTypeService && line.ItemID != nil && *line.ItemID == serviceID {
			s.lines[i].Quantity += quantity
			return nil
		}
	}

	id := service.ID
	s.lines = append(s.lines, CartLine{
		ItemID:   &id,
		ItemType: models.ItemTypeService,
		Name:     service.Name,
		Price:    service.Price,
		Quantity: quantity,
	})
	return nil
}

// SetLineQuantity changes a line's quantity, re-checking stock for products
func (s *CheckoutService) SetLineQuantity(index, quantity int) error {
	if quantity <= 0 {
		return errors.New("quantity must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("no cart line at index %d", index)
	}

	line := s.lines[index]
	if line.ItemType == models.ItemTypeProduct && line.ItemID != nil {
		product, err := s.data.ProductByID(*line.ItemID)
		if err != nil {
			return err
		}
		if quantity > product.Stock {
			return models.ErrInsufficientStock
		}
	}

	s.lines[index].Quantity = quantity
	return nil
}

// SetLineDiscount sets a line's discount percentage (0-100)
func (s *CheckoutService) SetLineDiscount(index int, discount float64) error {
	if discount < 0 || discount > 100 {
		return fmt.Errorf("discount must be between 0 and 100, got %.2f", discount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("no cart line at index %d", index)
	}
	s.lines[index].Discount = discount
	return nil
}

// RemoveLine deletes one cart line
func (s *CheckoutService) RemoveLine(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.lines) {
		return fmt.Errorf("no cart line at index %d", index)
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	return nil
}

// Totals computes the cart breakdown. Per line the gross is price times
// quantity and the discount is that gross times the line's percentage; tax
// applies to the subtotal after discounts.
func (s *CheckoutService) Totals() CheckoutTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeTotals(s.lines, s.taxRate)
}

func computeTotals(lines []CartLine, taxRate float64) CheckoutTotals {
	totals := CheckoutTotals{TaxRate: taxRate}
	for _, line := range lines {
		gross := line.Price * float64(line.Quantity)
		totals.Subtotal += gross
		totals.DiscountTotal += gross * line.Discount / 100
	}
	taxable := totals.Subtotal - totals.DiscountTotal
	totals.TaxAmount = taxable * taxRate
	totals.Total = taxable + totals.TaxAmount
	return totals
}

// Commit turns the cart into a sale on the active data source and clears
// it. Stock is re-checked against the cache right before persisting.
func (s *CheckoutService) Commit(ctx context.Context, paymentMethod, cashierID string) (*models.Sale, error) {
	s.mu.Lock()
	lines := make([]CartLine, len(s.lines))
	copy(lines, s.lines)
	s.mu.Unlock()

	if len(lines) == 0 {
		return nil, errors.New("cannot commit an empty cart")
	}
	if paymentMethod == "" {
		return nil, errors.New("payment method is required")
	}

	for _, line := range lines {
		if line.ItemType != models.ItemTypeProduct || line.ItemID == nil {
			continue
		}
		product, err := s.data.ProductByID(*line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("product %s no longer available: %w", line.Name, err)
		}
		if line.Quantity > product.Stock {
			return nil, models.ErrInsufficientStock
		}
	}

	totals := computeTotals(lines, s.taxRate)
	draft := models.SaleDraft{
		Subtotal:      totals.Subtotal,
		TaxRate:       totals.TaxRate,
		TaxAmount:     totals.TaxAmount,
		DiscountTotal: totals.DiscountTotal,
		Total:         totals.Total,
		PaymentMethod: paymentMethod,
		CashierID:     cashierID,
		Items:         draftItems(lines),
	}

	sale, err := s.data.AddSale(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.Clear()
	return sale, nil
}

func draftItems(lines []CartLine) []models.SaleItemDraft {
	items := make([]models.SaleItemDraft, len(lines))
	for i, line := range lines {
		items[i] = models.SaleItemDraft{
			ItemID:   line.ItemID,
			ItemType: line.ItemType,
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
			Discount: line.Discount,
		}
	}
	return items
}
