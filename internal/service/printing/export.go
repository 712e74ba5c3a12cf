package printing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
)

var exportHeaders = []string{
	"Client", "Mobile", "Lunch Days", "Lunch Qty", "Lunch Total",
	"Dinner Days", "Dinner Qty", "Dinner Total", "Subtotal", "Discount %", "Discount", "Grand Total",
}

// Export writes the bills of month into an xlsx workbook, one row per client
// followed by a totals row with the lunch and dinner quantities and the income.
func (s *Service) Export(ctx context.Context, month billing.Month) ([]byte, error) {
	bills, err := s.bills.Preview(ctx, month, "")
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheetName := "Bills " + month.String()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	var lunchQty, dinnerQty int
	var income float64
	row := 2
	for _, b := range bills {
		values := []interface{}{
			b.Client.Name, b.Client.Mobile,
			b.LunchDays, b.LunchQuantity, b.LunchTotal,
			b.DinnerDays, b.DinnerQuantity, b.DinnerTotal,
			b.Subtotal, b.Client.Discount, b.DiscountAmount, b.GrandTotal,
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", row, err)
		}
		lunchQty += b.LunchQuantity
		dinnerQty += b.DinnerQuantity
		income += b.GrandTotal
		row++
	}

	footer := []interface{}{"TOTAL", "", "", lunchQty, "", "", dinnerQty, "", "", "", "", income}
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &footer); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

// ExportFileName is the attachment name of an export.
func ExportFileName(month billing.Month) string {
	return fmt.Sprintf("bills_%s.xlsx", month.String())
}
