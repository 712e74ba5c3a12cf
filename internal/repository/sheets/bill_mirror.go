package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

// BillsRange is the sheet area bills are appended to. Columns:
// generated at, client id, client name, mobile, month, lunch days,
// dinner days, lunch total, dinner total, subtotal, discount, grand total.
const BillsRange = "Bills!A:L"

// BillMirror copies finalized bills into a spreadsheet for the accountant.
// The database stays the source of truth; the sheet is write-mostly.
type BillMirror struct {
	repo   Repository
	logger *zap.Logger
}

// NewBillMirror wraps repo. A nil repo yields a mirror that does nothing.
func NewBillMirror(repo Repository, logger *zap.Logger) *BillMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillMirror{repo: repo, logger: logger}
}

// Enabled reports whether rows will actually be written.
func (m *BillMirror) Enabled() bool {
	return m != nil && m.repo != nil
}

// MirrorBill appends bill unless a row for the same client and month is
// already present.
func (m *BillMirror) MirrorBill(ctx context.Context, bill models.BillSummary) error {
	if !m.Enabled() {
		return nil
	}

	exists, err := m.hasRow(ctx, bill.Client.ID, bill.Month)
	if err != nil {
		return err
	}
	if exists {
		m.logger.Debug("bill already mirrored",
			zap.String("client_id", bill.Client.ID),
			zap.String("month", bill.Month))
		return nil
	}

	if err := m.repo.WriteRow(ctx, BillsRange, billRow(bill)); err != nil {
		return fmt.Errorf("mirror bill: %w", err)
	}
	m.logger.Info("bill mirrored to sheet",
		zap.String("client_id", bill.Client.ID),
		zap.String("month", bill.Month))
	return nil
}

func (m *BillMirror) hasRow(ctx context.Context, clientID, month string) (bool, error) {
	rows, err := m.repo.ReadRange(ctx, BillsRange)
	if err != nil {
		return false, fmt.Errorf("load mirrored bills: %w", err)
	}
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		if fmt.Sprint(row[1]) == clientID && fmt.Sprint(row[4]) == month {
			return true, nil
		}
	}
	return false, nil
}

func billRow(b models.BillSummary) []interface{} {
	generated := b.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	return []interface{}{
		generated.Format(time.RFC3339),
		b.Client.ID,
		b.Client.Name,
		b.Client.Mobile,
		b.Month,
		b.LunchDays,
		b.DinnerDays,
		b.LunchTotal,
		b.DinnerTotal,
		b.Subtotal,
		b.DiscountAmount,
		b.GrandTotal,
	}
}
