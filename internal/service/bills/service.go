// Package bills computes, previews and finalizes monthly bills.
package bills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/validation"
)

// Store is the persistence the bill service needs.
type Store interface {
	repository.ClientRepository
	repository.AttendanceRepository
	repository.BillRepository
}

// Mirror receives every bill right after it is persisted.
type Mirror interface {
	MirrorBill(ctx context.Context, bill models.BillSummary) error
}

// Service is the application layer around billing.ComputeBill.
type Service struct {
	store  Store
	mirror Mirror
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a new bill service. mirror may be nil.
func NewService(store Store, mirror Mirror, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, mirror: mirror, now: now, logger: logger}
}

// ParseMonth validates a month query parameter.
func ParseMonth(value string) (billing.Month, error) {
	month, err := billing.ParseMonth(strings.TrimSpace(value))
	if err != nil {
		return billing.Month{}, validation.Errorf("invalid month %q, expected YYYY-MM", value)
	}
	return month, nil
}

// Preview returns one bill per client for month, restricted to clientID when
// set. A client whose bill was already generated gets the saved bill; the
// others get a freshly computed, unsaved one.
func (s *Service) Preview(ctx context.Context, month billing.Month, clientID string) ([]models.BillSummary, error) {
	clients, err := s.clients(ctx, clientID)
	if err != nil {
		return nil, err
	}
	records, err := s.monthRecords(ctx, month, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]models.BillSummary, 0, len(clients))
	for i := range clients {
		saved, err := s.store.FindBillByClientMonth(ctx, clients[i].ID, month.String())
		switch {
		case err == nil:
			out = append(out, saved)
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("lookup bill for %s: %w", clients[i].ID, err)
		}

		bill, err := billing.ComputeBill(&clients[i], records, month)
		if err != nil {
			return nil, err
		}
		out = append(out, bill)
	}
	return out, nil
}

// Totals aggregates meals and income of month, optionally for one client.
func (s *Service) Totals(ctx context.Context, month billing.Month, clientID string) (models.MonthlyTotals, error) {
	clients, err := s.clients(ctx, clientID)
	if err != nil {
		return models.MonthlyTotals{}, err
	}
	records, err := s.monthRecords(ctx, month, clientID)
	if err != nil {
		return models.MonthlyTotals{}, err
	}
	return billing.AggregateMonthlyTotals(clients, records, month), nil
}

// Generate computes and persists the bill of clientID for month. When a bill
// already exists the returned error is a *billing.DuplicateBillError holding it.
func (s *Service) Generate(ctx context.Context, clientID string, month billing.Month) (models.BillSummary, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return models.BillSummary{}, validation.Errorf("clientId is required")
	}

	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.BillSummary{}, billing.ErrClientNotFound
		}
		return models.BillSummary{}, fmt.Errorf("load client %s: %w", clientID, err)
	}

	existing, err := s.store.ListBills(ctx, repository.BillFilter{ClientID: clientID})
	if err != nil {
		return models.BillSummary{}, fmt.Errorf("list bills: %w", err)
	}
	if err := billing.AssertNoDuplicateBill(existing, clientID, month); err != nil {
		s.logger.Warn("bill already generated", zap.String("client_id", clientID), zap.String("month", month.String()))
		return models.BillSummary{}, err
	}

	records, err := s.monthRecords(ctx, month, clientID)
	if err != nil {
		return models.BillSummary{}, err
	}
	bill, err := billing.ComputeBill(&client, records, month)
	if err != nil {
		return models.BillSummary{}, err
	}
	bill.GeneratedAt = s.now().UTC()

	saved, err := s.store.CreateBill(ctx, bill)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost a race with a concurrent generate.
			prior, findErr := s.store.FindBillByClientMonth(ctx, clientID, month.String())
			if findErr != nil {
				return models.BillSummary{}, fmt.Errorf("load existing bill: %w", findErr)
			}
			return models.BillSummary{}, &billing.DuplicateBillError{Existing: prior}
		}
		return models.BillSummary{}, fmt.Errorf("save bill: %w", err)
	}

	s.logger.Info("bill generated",
		zap.String("bill_id", saved.ID),
		zap.String("client_id", clientID),
		zap.String("month", saved.Month),
		zap.Float64("grand_total", saved.GrandTotal))

	if s.mirror != nil {
		if err := s.mirror.MirrorBill(ctx, saved); err != nil {
			s.logger.Warn("failed to mirror bill", zap.String("bill_id", saved.ID), zap.Error(err))
		}
	}
	return saved, nil
}

// List returns persisted bills.
func (s *Service) List(ctx context.Context, filter repository.BillFilter) ([]models.BillSummary, error) {
	bills, err := s.store.ListBills(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

func (s *Service) clients(ctx context.Context, clientID string) ([]models.Client, error) {
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		client, err := s.store.GetClient(ctx, clientID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, billing.ErrClientNotFound
			}
			return nil, fmt.Errorf("load client %s: %w", clientID, err)
		}
		return []models.Client{client}, nil
	}

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// monthRecords narrows the attendance query to dates starting with the month
// key; ComputeBill still applies the exact month test.
func (s *Service) monthRecords(ctx context.Context, month billing.Month, clientID string) ([]models.AttendanceRecord, error) {
	records, err := s.store.ListAttendance(ctx, repository.AttendanceFilter{
		ClientID:   strings.TrimSpace(clientID),
		DatePrefix: month.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
