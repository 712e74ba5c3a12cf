// Package reporting builds dashboard metrics and the monthly admin summary.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/printing"
)

// Store is the read-only persistence reporting needs.
type Store interface {
	ListClients(ctx context.Context) ([]models.Client, error)
	ListAttendance(ctx context.Context, filter repository.AttendanceFilter) ([]models.AttendanceRecord, error)
	ListBills(ctx context.Context, filter repository.BillFilter) ([]models.BillSummary, error)
}

// Service exposes lightweight analytics for the dashboard and WhatsApp summaries.
type Service struct {
	store  Store
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a new reporting service instance. Days and months are
// evaluated in loc.
func NewService(store Store, loc *time.Location, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, loc: loc, now: now, logger: logger}
}

// Dashboard returns today's and this month's figures.
func (s *Service) Dashboard(ctx context.Context) (models.Dashboard, error) {
	now := s.now().In(s.loc)
	month := billing.MonthOf(now)
	today := now.Format(models.DateLayout)

	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list clients: %w", err)
	}
	records, err := s.store.ListAttendance(ctx, repository.AttendanceFilter{DatePrefix: month.String()})
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list attendance: %w", err)
	}
	bills, err := s.store.ListBills(ctx, repository.BillFilter{Month: month.String()})
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list bills: %w", err)
	}

	var todayMeals int
	for _, r := range records {
		day, err := r.Day()
		if err != nil {
			s.logger.Debug("skip attendance with invalid date", zap.String("attendance_id", r.ID), zap.String("date", r.Date))
			continue
		}
		if day.Format(models.DateLayout) == today {
			todayMeals++
		}
	}

	totals := billing.AggregateMonthlyTotals(clients, records, month)

	return models.Dashboard{
		Date:           today,
		Month:          month.String(),
		TotalClients:   len(clients),
		TodayMeals:     todayMeals,
		MonthlyMeals:   totals.TotalMeals,
		MonthlyIncome:  totals.TotalIncome,
		BillsGenerated: len(bills),
		GeneratedAt:    now,
	}, nil
}

// MonthlySummary produces the admin message for month.
func (s *Service) MonthlySummary(ctx context.Context, month billing.Month) (string, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return "", fmt.Errorf("list clients: %w", err)
	}
	records, err := s.store.ListAttendance(ctx, repository.AttendanceFilter{DatePrefix: month.String()})
	if err != nil {
		return "", fmt.Errorf("list attendance: %w", err)
	}
	bills, err := s.store.ListBills(ctx, repository.BillFilter{Month: month.String()})
	if err != nil {
		return "", fmt.Errorf("list bills: %w", err)
	}

	totals := billing.AggregateMonthlyTotals(clients, records, month)
	if totals.TotalMeals == 0 {
		return fmt.Sprintf("Summary %s: no meals recorded.", month.Name()), nil
	}

	var active int
	for i := range clients {
		if len(billing.MonthlyRecords(clients[i].ID, records, month)) > 0 {
			active++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summary %s\n", month.Name())
	fmt.Fprintf(&sb, "Active clients: %d of %d\n", active, len(clients))
	fmt.Fprintf(&sb, "Meals served: %d\n", totals.TotalMeals)
	fmt.Fprintf(&sb, "Income: ₹%s\n", printing.FormatAmount(totals.TotalIncome))
	fmt.Fprintf(&sb, "Bills generated: %d", len(bills))
	return sb.String(), nil
}
