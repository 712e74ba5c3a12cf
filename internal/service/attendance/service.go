// Package attendance records which meals were delivered to which client.
package attendance

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

// Store is the persistence the attendance service needs.
type Store interface {
	repository.ClientRepository
	repository.AttendanceRepository
}

// Input is the payload used to create, update or toggle a record.
type Input struct {
	ClientID string          `json:"clientId"`
	Date     string          `json:"date"`
	MealType string          `json:"mealType"`
	Quantity models.Quantity `json:"quantity"`
}

// Query filters List. Date wins over Month when both are set.
type Query struct {
	ClientID string
	Month    string
	Date     string
}

// ToggleResult reports whether the meal is marked after a toggle.
type ToggleResult struct {
	Marked bool                     `json:"marked"`
	Record *models.AttendanceRecord `json:"record,omitempty"`
}

// Service manages attendance records.
type Service struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a new attendance service. A nil clock uses time.Now.
func NewService(store Store, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now, logger: logger}
}

// List returns records matching q.
func (s *Service) List(ctx context.Context, q Query) ([]models.AttendanceRecord, error) {
	filter := repository.AttendanceFilter{ClientID: strings.TrimSpace(q.ClientID)}

	switch {
	case q.Date != "":
		day, err := models.ParseDate(q.Date)
		if err != nil {
			return nil, validation.Errorf("invalid date %q", q.Date)
		}
		filter.DatePrefix = day.Format(models.DateLayout)
	case q.Month != "":
		month, err := billing.ParseMonth(q.Month)
		if err != nil {
			return nil, validation.Errorf("invalid month %q", q.Month)
		}
		filter.DatePrefix = month.String()
	}

	records, err := s.store.ListAttendance(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// Create marks one meal for a client.
func (s *Service) Create(ctx context.Context, in Input) (models.AttendanceRecord, error) {
	record, err := s.prepare(ctx, in)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	created, err := s.store.CreateAttendance(ctx, record)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("create attendance: %w", err)
	}
	s.logger.Info("attendance marked",
		zap.String("client_id", created.ClientID),
		zap.String("date", created.Date),
		zap.String("meal", string(created.MealType)),
		zap.Int("quantity", int(created.Quantity)))
	return created, nil
}

// Toggle unmarks the (client, date, meal) slot when it is marked and marks it
// otherwise.
func (s *Service) Toggle(ctx context.Context, in Input) (ToggleResult, error) {
	record, err := s.prepare(ctx, in)
	if err != nil {
		return ToggleResult{}, err
	}

	existing, err := s.store.ListAttendance(ctx, repository.AttendanceFilter{
		ClientID:   record.ClientID,
		DatePrefix: record.Date,
		MealType:   record.MealType,
	})
	if err != nil {
		return ToggleResult{}, fmt.Errorf("lookup attendance: %w", err)
	}

	var removed *models.AttendanceRecord
	for i := range existing {
		if err := s.store.DeleteAttendance(ctx, existing[i].ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return ToggleResult{}, fmt.Errorf("unmark attendance: %w", err)
		}
		if removed == nil {
			removed = &existing[i]
		}
	}
	if removed != nil {
		s.logger.Info("attendance unmarked",
			zap.String("client_id", record.ClientID),
			zap.String("date", record.Date),
			zap.String("meal", string(record.MealType)))
		return ToggleResult{Marked: false, Record: removed}, nil
	}

	created, err := s.store.CreateAttendance(ctx, record)
	if err != nil {
		return ToggleResult{}, fmt.Errorf("mark attendance: %w", err)
	}
	return ToggleResult{Marked: true, Record: &created}, nil
}

// Update rewrites a record. The quantity is clamped to at least one.
func (s *Service) Update(ctx context.Context, id string, in Input) (models.AttendanceRecord, error) {
	current, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		return models.AttendanceRecord{}, err
	}

	record, err := s.prepare(ctx, in)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	record.ID = current.ID
	record.Timestamp = current.Timestamp
	record.Status = current.Status

	updated, err := s.store.UpdateAttendance(ctx, record)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("update attendance %s: %w", id, err)
	}
	return updated, nil
}

// UpdateQuantity changes only the quantity, clamped to at least one.
func (s *Service) UpdateQuantity(ctx context.Context, id string, quantity models.Quantity) (models.AttendanceRecord, error) {
	record, err := s.store.GetAttendance(ctx, id)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	record.Quantity = models.Quantity(quantity.Units())

	updated, err := s.store.UpdateAttendance(ctx, record)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("update quantity %s: %w", id, err)
	}
	s.logger.Info("attendance quantity updated", zap.String("attendance_id", id), zap.Int("quantity", int(updated.Quantity)))
	return updated, nil
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteAttendance(ctx, id); err != nil {
		return fmt.Errorf("delete attendance %s: %w", id, err)
	}
	return nil
}

// prepare validates in against the client roster and fills the defaults.
func (s *Service) prepare(ctx context.Context, in Input) (models.AttendanceRecord, error) {
	clientID := strings.TrimSpace(in.ClientID)
	if clientID == "" {
		return models.AttendanceRecord{}, validation.Errorf("clientId is required")
	}

	meal, err := models.ParseMealType(in.MealType)
	if err != nil {
		return models.AttendanceRecord{}, validation.Errorf("%v", err)
	}

	day, err := models.ParseDate(in.Date)
	if err != nil {
		return models.AttendanceRecord{}, validation.Errorf("invalid date %q", in.Date)
	}

	if _, err := s.store.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AttendanceRecord{}, billing.ErrClientNotFound
		}
		return models.AttendanceRecord{}, fmt.Errorf("load client %s: %w", clientID, err)
	}

	record := models.AttendanceRecord{
		ClientID:  clientID,
		Date:      day.Format(models.DateLayout),
		MealType:  meal,
		Quantity:  models.Quantity(in.Quantity.Units()),
		Timestamp: s.now().Format(models.TimestampLayout),
		Status:    models.StatusPresent,
	}
	if err := validation.Struct(record); err != nil {
		return models.AttendanceRecord{}, err
	}
	return record, nil
}
