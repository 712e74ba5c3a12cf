// Package billing turns a client's rate card and attendance into monthly bills.
//
// Everything here is a pure function of its arguments: no storage, no clock,
// no shared state. Callers fetch clients and attendance, call ComputeBill and
// decide what to persist or display.
package billing

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/tiffinwala/tiffin/internal/domain/models"
)

var (
	// ErrClientNotFound is returned when a bill is requested for a missing client.
	ErrClientNotFound = errors.New("client not found")
	// ErrDuplicateBill is matched by DuplicateBillError.
	ErrDuplicateBill = errors.New("bill already exists")
)

// DuplicateBillError carries the bill that already covers the requested period.
type DuplicateBillError struct {
	Existing models.BillSummary
}

func (e *DuplicateBillError) Error() string {
	return fmt.Sprintf("bill already exists for client %s in %s", e.Existing.Client.ID, e.Existing.Month)
}

// Is lets errors.Is(err, ErrDuplicateBill) match.
func (e *DuplicateBillError) Is(target error) bool {
	return target == ErrDuplicateBill
}

type datedRecord struct {
	record models.AttendanceRecord
	day    time.Time
}

// MonthlyRecords selects the records of clientID whose date falls in month,
// ordered by ascending date. Records with unparsable dates are dropped.
func MonthlyRecords(clientID string, records []models.AttendanceRecord, month Month) []models.AttendanceRecord {
	matched := make([]datedRecord, 0)
	for _, r := range records {
		if r.ClientID != clientID {
			continue
		}
		day, err := r.Day()
		if err != nil || !month.Contains(day) {
			continue
		}
		matched = append(matched, datedRecord{record: r, day: day})
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].day.Before(matched[j].day)
	})

	out := make([]models.AttendanceRecord, len(matched))
	for i, m := range matched {
		out[i] = m.record
	}
	return out
}

// ComputeBill produces the bill of client for month from the full attendance
// collection. Filtering by client and month happens here, not in the caller.
func ComputeBill(client *models.Client, records []models.AttendanceRecord, month Month) (models.BillSummary, error) {
	if client == nil {
		return models.BillSummary{}, ErrClientNotFound
	}

	monthly := MonthlyRecords(client.ID, records, month)

	var (
		lunchDays, dinnerDays         int
		lunchQuantity, dinnerQuantity int
	)
	ids := make([]string, 0, len(monthly))
	for _, r := range monthly {
		switch r.MealType {
		case models.MealLunch:
			lunchDays++
			lunchQuantity += r.Quantity.Units()
		case models.MealDinner:
			dinnerDays++
			dinnerQuantity += r.Quantity.Units()
		default:
			continue
		}
		ids = append(ids, r.ID)
	}

	// Order matters: totals must match the reference arithmetic exactly.
	lunchTotal := float64(lunchQuantity) * client.LunchCost
	dinnerTotal := float64(dinnerQuantity) * client.DinnerCost
	subtotal := lunchTotal + dinnerTotal
	discountAmount := subtotal * client.Discount / 100
	grandTotal := subtotal - discountAmount

	return models.BillSummary{
		Client:            client.Snapshot(),
		Month:             month.String(),
		LunchDays:         lunchDays,
		DinnerDays:        dinnerDays,
		LunchQuantity:     lunchQuantity,
		DinnerQuantity:    dinnerQuantity,
		LunchTotal:        lunchTotal,
		DinnerTotal:       dinnerTotal,
		Subtotal:          subtotal,
		DiscountAmount:    discountAmount,
		GrandTotal:        grandTotal,
		AttendanceRecords: ids,
	}, nil
}

// AggregateMonthlyTotals sums meals and income of every client for month.
// Clients without attendance contribute zero.
func AggregateMonthlyTotals(clients []models.Client, records []models.AttendanceRecord, month Month) models.MonthlyTotals {
	totals := models.MonthlyTotals{Month: month.String()}
	for i := range clients {
		bill, err := ComputeBill(&clients[i], records, month)
		if err != nil {
			continue
		}
		totals.TotalMeals += bill.TotalMeals()
		totals.TotalIncome += bill.GrandTotal
	}
	return totals
}

// AssertNoDuplicateBill fails with a *DuplicateBillError when existing already
// holds a bill for (clientID, month).
func AssertNoDuplicateBill(existing []models.BillSummary, clientID string, month Month) error {
	key := month.String()
	for _, b := range existing {
		if b.Client.ID == clientID && b.Month == key {
			return &DuplicateBillError{Existing: b}
		}
	}
	return nil
}

// FindClient returns a pointer to the client with id, or nil.
func FindClient(clients []models.Client, id string) *models.Client {
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i]
		}
	}
	return nil
}
