package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

// MonthLayout is the storage format of billing months.
const MonthLayout = "2006-01"

// Month is a calendar year and month. The day of month never matters for billing.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, in t's own location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts "2006-01" as well as any full date understood by
// models.ParseDate; the day part is dropped.
func ParseMonth(value string) (Month, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(MonthLayout, value); err == nil {
		return MonthOf(t), nil
	}
	t, err := models.ParseDate(value)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", value)
	}
	return MonthOf(t), nil
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Name formats the month for people, e.g. "May 2024".
func (m Month) Name() string {
	return m.First().Format("January 2006")
}

// First returns midnight UTC of the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Previous returns the month before m.
func (m Month) Previous() Month {
	return MonthOf(m.First().AddDate(0, -1, 0))
}

// Contains reports whether t falls in the same calendar year and month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// IsZero reports whether m was never set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}
