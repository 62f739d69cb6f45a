package services

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"MotoZonePos/app/config"
	"MotoZonePos/app/models"
)

func sampleSale() *models.Sale {
	gloves := "prod-005"
	return &models.Sale{
		ID:            "sale-002",
		Date:          time.Date(2023, 10, 25, 15, 0, 0, 0, time.UTC),
		Subtotal:      255.00,
		TaxRate:       0.16,
		TaxAmount:     39.60,
		DiscountTotal: 7.50,
		Total:         287.10,
		PaymentMethod: "Efectivo",
		CashierID:     "user-admin-001",
		Items: []models.SaleItem{
			{ID: "item-003", ItemType: models.ItemTypeProduct, Name: "Casco Integral Sport", Price: 180.00, Quantity: 1},
			{ID: "item-004", ItemID: &gloves, ItemType: models.ItemTypeProduct, Name: "Guantes de Cuero Racing", Price: 75.00, Quantity: 1, Discount: 10},
		},
	}
}

func TestRenderTextReceipt(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Business.Name = "Moto Zone"
	cfg.Business.Phone = "555-0100"
	receipts := NewReceiptService(cfg)

	text := receipts.RenderText(sampleSale())

	for _, want := range []string{
		"Moto Zone",
		"555-0100",
		"sale-002",
		"Efectivo",
		"Casco Integral Sport",
		"(-10%)",
		"$255.00",
		"$-7.50",
		"$39.60",
		"$287.10",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("receipt missing %q:\n%s", want, text)
		}
	}
}

func TestReceiptQRCode(t *testing.T) {
	receipts := NewReceiptService(config.DefaultConfig())

	png, err := receipts.QRCode(sampleSale())
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("qr output is not a PNG")
	}
}
