package models

import (
	"fmt"
	"strings"
	"time"
)

// MealType enumerates the meals a client can be marked for.
type MealType string

const (
	MealLunch  MealType = "lunch"
	MealDinner MealType = "dinner"
)

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	return m == MealLunch || m == MealDinner
}

// ParseMealType normalizes user input such as "Lunch" or " DINNER ".
func ParseMealType(value string) (MealType, error) {
	m := MealType(strings.ToLower(strings.TrimSpace(value)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown meal type %q", value)
	}
	return m, nil
}

const (
	StatusPresent = "present"

	// DateLayout is the storage format of attendance dates.
	DateLayout = "2006-01-02"
	// TimestampLayout is the time-of-day format recorded when a meal is marked.
	TimestampLayout = "03:04 PM"
)

// AttendanceRecord marks one meal delivered to a client on a given day.
type AttendanceRecord struct {
	ID        string   `bson:"_id,omitempty" json:"id"`
	ClientID  string   `bson:"clientId" json:"clientId" validate:"required"`
	Date      string   `bson:"date" json:"date" validate:"required"`
	MealType  MealType `bson:"mealType" json:"mealType" validate:"required,oneof=lunch dinner"`
	Quantity  Quantity `bson:"quantity" json:"quantity"`
	Timestamp string   `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
	Status    string   `bson:"status,omitempty" json:"status,omitempty"`
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
}

// ParseDate accepts plain ISO dates as well as full ISO timestamps.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Day returns the calendar date of the record.
func (r AttendanceRecord) Day() (time.Time, error) {
	return ParseDate(r.Date)
}
