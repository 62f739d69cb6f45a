package services

import (
	"context"
	"errors"
	"fmt"

	"MotoZonePos/app/config"
	"MotoZonePos/app/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsExportService appends sales rows to a Google Sheets spreadsheet so
// daily reports live outside the shop machine. A service-account JSON key
// from the config authenticates the writes.
type SheetsExportService struct {
	cfg    *config.AppConfig
	data   *DataService
	logger *LoggerService
}

// NewSheetsExportService creates the exporter. It stays inert until the
// sheets section of the config is enabled and filled in.
func NewSheetsExportService(cfg *config.AppConfig, data *DataService, logger *LoggerService) *SheetsExportService {
	return &SheetsExportService{cfg: cfg, data: data, logger: logger}
}

// Enabled reports whether the export is configured
func (s *SheetsExportService) Enabled() bool {
	return s.cfg.Sheets.Enabled && s.cfg.Sheets.SpreadsheetID != "" && s.cfg.Sheets.CredentialsKey != ""
}

// newService builds an authenticated Sheets client from the stored
// service-account key.
func (s *SheetsExportService) newService(ctx context.Context) (*sheets.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(s.cfg.Sheets.CredentialsKey), sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid sheets credentials: %w", err)
	}
	return sheets.NewService(ctx, option.WithCredentials(creds))
}

// ExportSale appends one sale as a spreadsheet row
func (s *SheetsExportService) ExportSale(ctx context.Context, sale *models.Sale) error {
	if !s.Enabled() {
		return errors.New("sheets export is not configured")
	}

	svc, err := s.newService(ctx)
	if err != nil {
		return err
	}
	return s.appendRows(ctx, svc, [][]interface{}{saleRow(sale)})
}

// ExportDay appends every sale of one day (2006-01-02) to the spreadsheet
func (s *SheetsExportService) ExportDay(ctx context.Context, date string) (int, error) {
	if !s.Enabled() {
		return 0, errors.New("sheets export is not configured")
	}

	sales, err := s.data.SalesByDateRange(ctx, date, date)
	if err != nil {
		return 0, err
	}
	if len(sales) == 0 {
		return 0, nil
	}

	svc, err := s.newService(ctx)
	if err != nil {
		return 0, err
	}

	rows := make([][]interface{}, 0, len(sales))
	for i := range sales {
		rows = append(rows, saleRow(&sales[i]))
	}
	if err := s.appendRows(ctx, svc, rows); err != nil {
		return 0, err
	}

	s.logger.LogInfo("Exported sales to Google Sheets", fmt.Sprintf("date=%s rows=%d", date, len(rows)))
	return len(rows), nil
}

// appendRows writes rows after the last used row of the configured sheet
func (s *SheetsExportService) appendRows(ctx context.Context, svc *sheets.Service, rows [][]interface{}) error {
	sheetName := s.cfg.Sheets.SheetName
	if sheetName == "" {
		sheetName = "Ventas"
	}

	values := &sheets.ValueRange{Values: rows}
	_, err := svc.Spreadsheets.Values.
		Append(s.cfg.Sheets.SpreadsheetID, sheetName+"!A1", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append failed: %w", err)
	}
	return nil
}

// saleRow flattens a sale into the export row layout:
// date, id, cashier, payment method, item count, subtotal, discount, tax, total
func saleRow(sale *models.Sale) []interface{} {
	itemCount := 0
	for _, item := range sale.Items {
		itemCount += item.Quantity
	}
	return []interface{}{
		sale.Date.Format("2006-01-02 15:04"),
		sale.ID,
		sale.CashierID,
		sale.PaymentMethod,
		itemCount,
		sale.Subtotal,
		sale.DiscountTotal,
		sale.TaxAmount,
		sale.Total,
	}
}
