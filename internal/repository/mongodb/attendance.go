package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
)

// CreateAttendance inserts an attendance record.
func (s *Store) CreateAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error) {
	if record.ID == "" {
		record.ID = newID()
	}
	if _, err := s.collection(attendanceCollection).InsertOne(ctx, record); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return record, nil
}

// GetAttendance fetches one record by id.
func (s *Store) GetAttendance(ctx context.Context, id string) (models.AttendanceRecord, error) {
	r, err := findOne[models.AttendanceRecord](ctx, s.collection(attendanceCollection), idFilter(id))
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to find attendance %s: %w", id, err)
	}
	return r, nil
}

// ListAttendance returns records matching filter ordered by date.
func (s *Store) ListAttendance(ctx context.Context, filter repository.AttendanceFilter) ([]models.AttendanceRecord, error) {
	query := bson.M{}
	if filter.ClientID != "" {
		query["clientId"] = filter.ClientID
	}
	if filter.DatePrefix != "" {
		query["date"] = datePrefixRegex(filter.DatePrefix)
	}
	if filter.MealType != "" {
		query["mealType"] = filter.MealType
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	records, err := findAll[models.AttendanceRecord](ctx, s.collection(attendanceCollection), query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance: %w", err)
	}
	return records, nil
}

// UpdateAttendance overwrites a record in place.
func (s *Store) UpdateAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, error) {
	if err := replaceFields(ctx, s.collection(attendanceCollection), record.ID, record); err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to update attendance %s: %w", record.ID, err)
	}
	return record, nil
}

// DeleteAttendance removes a record.
func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	if err := deleteByID(ctx, s.collection(attendanceCollection), id); err != nil {
		return fmt.Errorf("failed to delete attendance %s: %w", id, err)
	}
	return nil
}

// datePrefixRegex matches dates starting with prefix. Leading whitespace is
// skipped the same way models.ParseDate trims it.
func datePrefixRegex(prefix string) primitive.Regex {
	return primitive.Regex{Pattern: `^\s*` + regexp.QuoteMeta(prefix)}
}
