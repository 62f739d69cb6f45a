package services

import (
	"fmt"
	"strings"

	"MotoZonePos/app/config"
	"MotoZonePos/app/models"

	qrcode "github.com/skip2/go-qrcode"
)

const receiptWidth = 42

// ReceiptService renders completed sales as printable text receipts and
// verification QR codes.
type ReceiptService struct {
	business config.BusinessConfig
	currency string
}

// NewReceiptService creates a receipt renderer using the configured
// business information and currency symbol.
func NewReceiptService(cfg *config.AppConfig) *ReceiptService {
	return &ReceiptService{
		business: cfg.Business,
		currency: cfg.Sales.CurrencySymbol,
	}
}

// RenderText formats a sale as a plain-text receipt
func (s *ReceiptService) RenderText(sale *models.Sale) string {
	var b strings.Builder

	writeCentered(&b, s.business.Name)
	if s.business.Address != "" {
		writeCentered(&b, s.business.Address)
	}
	if s.business.Phone != "" {
		writeCentered(&b, "Tel: "+s.business.Phone)
	}
	if s.business.Email != "" {
		writeCentered(&b, s.business.Email)
	}
	writeDivider(&b)

	fmt.Fprintf(&b, "Venta:  %s\n", sale.ID)
	fmt.Fprintf(&b, "Fecha:  %s\n", sale.Date.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Pago:   %s\n", sale.PaymentMethod)
	writeDivider(&b)

	for _, item := range sale.Items {
		fmt.Fprintf(&b, "%s\n", item.Name)
		line := fmt.Sprintf("  %d x %s%.2f", item.Quantity, s.currency, item.Price)
		if item.Discount > 0 {
			line += fmt.Sprintf(" (-%.0f%%)", item.Discount)
		}
		lineTotal := item.Price * float64(item.Quantity) * (1 - item.Discount/100)
		amount := fmt.Sprintf("%s%.2f", s.currency, lineTotal)
		fmt.Fprintf(&b, "%s%s%s\n", line, strings.Repeat(" ", pad(len(line)+len(amount))), amount)
	}
	writeDivider(&b)

	s.writeAmount(&b, "Subtotal", sale.Subtotal)
	if sale.DiscountTotal > 0 {
		s.writeAmount(&b, "Descuento", -sale.DiscountTotal)
	}
	s.writeAmount(&b, fmt.Sprintf("IVA (%.0f%%)", sale.TaxRate*100), sale.TaxAmount)
	s.writeAmount(&b, "TOTAL", sale.Total)
	writeDivider(&b)

	writeCentered(&b, "¡Gracias por su compra!")
	return b.String()
}

// QRCode renders the sale's verification QR as a PNG. The payload carries
// the sale id, date and total so a scan identifies the transaction.
func (s *ReceiptService) QRCode(sale *models.Sale) ([]byte, error) {
	payload := fmt.Sprintf("%s|%s|%.2f", sale.ID, sale.Date.Format("2006-01-02"), sale.Total)
	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("could not render receipt qr: %w", err)
	}
	return png, nil
}

func (s *ReceiptService) writeAmount(b *strings.Builder, label string, amount float64) {
	value := fmt.Sprintf("%s%.2f", s.currency, amount)
	fmt.Fprintf(b, "%s%s%s\n", label, strings.Repeat(" ", pad(len(label)+len(value))), value)
}

func writeCentered(b *strings.Builder, text string) {
	margin := (receiptWidth - len([]rune(text))) / 2
	if margin < 0 {
		margin = 0
	}
	fmt.Fprintf(b, "%s%s\n", strings.Repeat(" ", margin), text)
}

func writeDivider(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", receiptWidth) + "\n")
}

func pad(used int) int {
	if used >= receiptWidth {
		return 1
	}
	return receiptWidth - used
}
