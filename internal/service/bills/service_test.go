package bills

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/repository/memory"
	"github.com/tiffinwala/tiffin/internal/service/validation"
)

type recordingMirror struct {
	bills []models.BillSummary
	err   error
}

func (m *recordingMirror) MirrorBill(_ context.Context, b models.BillSummary) error {
	m.bills = append(m.bills, b)
	return m.err
}

var may2024 = billing.Month{Year: 2024, Month: time.May}

func seed(t *testing.T) (*memory.Store, models.Client) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	client, err := store.CreateClient(ctx, models.Client{Name: "Asha", Mobile: "9904404326", LunchCost: 80, DinnerCost: 90, Discount: 10})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	for d := 1; d <= 20; d++ {
		date := time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: date, MealType: models.MealLunch, Quantity: 1}); err != nil {
			t.Fatalf("seed lunch: %v", err)
		}
		if d <= 15 {
			if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: date, MealType: models.MealDinner, Quantity: 1}); err != nil {
				t.Fatalf("seed dinner: %v", err)
			}
		}
	}
	if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: "2024-04-30", MealType: models.MealLunch, Quantity: 1}); err != nil {
		t.Fatalf("seed april: %v", err)
	}
	return store, client
}

func fixedClock() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

func TestGenerate(t *testing.T) {
	store, client := seed(t)
	mirror := &recordingMirror{}
	svc := NewService(store, mirror, fixedClock, nil)

	bill, err := svc.Generate(context.Background(), client.ID, may2024)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if bill.ID == "" || bill.GrandTotal != 2655 || bill.Subtotal != 2950 || bill.DiscountAmount != 295 {
		t.Fatalf("unexpected bill %+v", bill)
	}
	if !bill.GeneratedAt.Equal(fixedClock()) {
		t.Fatalf("generatedAt = %v", bill.GeneratedAt)
	}
	if len(mirror.bills) != 1 || mirror.bills[0].ID != bill.ID {
		t.Fatalf("bill not mirrored: %+v", mirror.bills)
	}
}

func TestGenerateDuplicate(t *testing.T) {
	store, client := seed(t)
	svc := NewService(store, nil, fixedClock, nil)
	ctx := context.Background()

	first, err := svc.Generate(ctx, client.ID, may2024)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	// New attendance must not leak into the already generated bill.
	if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: "2024-05-25", MealType: models.MealLunch}); err != nil {
		t.Fatalf("add attendance: %v", err)
	}

	_, err = svc.Generate(ctx, client.ID, may2024)
	var dup *billing.DuplicateBillError
	if !errors.As(err, &dup) || !errors.Is(err, billing.ErrDuplicateBill) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if dup.Existing.ID != first.ID || dup.Existing.GrandTotal != first.GrandTotal {
		t.Fatalf("duplicate error carries %+v, want %+v", dup.Existing, first)
	}

	list, err := svc.List(ctx, repository.BillFilter{ClientID: client.ID})
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one bill, got %d (%v)", len(list), err)
	}
}

func TestGenerateUnknownClient(t *testing.T) {
	svc := NewService(memory.NewStore(), nil, fixedClock, nil)
	if _, err := svc.Generate(context.Background(), "ghost", may2024); !errors.Is(err, billing.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if _, err := svc.Generate(context.Background(), " ", may2024); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestGenerateMirrorFailureIsNotFatal(t *testing.T) {
	store, client := seed(t)
	svc := NewService(store, &recordingMirror{err: errors.New("sheets down")}, fixedClock, nil)
	if _, err := svc.Generate(context.Background(), client.ID, may2024); err != nil {
		t.Fatalf("mirror failure must not fail generate: %v", err)
	}
}

func TestPreviewPrefersSavedBill(t *testing.T) {
	store, client := seed(t)
	ctx := context.Background()
	other, err := store.CreateClient(ctx, models.Client{Name: "Ravi", LunchCost: 70})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(store, nil, fixedClock, nil)

	if _, err := svc.Generate(ctx, client.ID, may2024); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: "2024-05-30", MealType: models.MealLunch}); err != nil {
		t.Fatalf("add attendance: %v", err)
	}

	preview, err := svc.Preview(ctx, may2024, "")
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(preview) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(preview))
	}
	if preview[0].ID == "" || preview[0].GrandTotal != 2655 {
		t.Fatalf("expected saved bill first, got %+v", preview[0])
	}
	if preview[1].Client.ID != other.ID || preview[1].ID != "" || preview[1].GrandTotal != 0 {
		t.Fatalf("expected computed empty bill, got %+v", preview[1])
	}

	if _, err := svc.Preview(ctx, may2024, "ghost"); !errors.Is(err, billing.ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
}

func TestTotals(t *testing.T) {
	store, client := seed(t)
	svc := NewService(store, nil, fixedClock, nil)

	totals, err := svc.Totals(context.Background(), may2024, "")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Month != "2024-05" || totals.TotalMeals != 35 || totals.TotalIncome != 2655 {
		t.Fatalf("unexpected totals %+v", totals)
	}

	one, err := svc.Totals(context.Background(), may2024, client.ID)
	if err != nil || one != totals {
		t.Fatalf("single client totals = %+v, %v", one, err)
	}
}

func TestParseMonth(t *testing.T) {
	if m, err := ParseMonth(" 2024-05 "); err != nil || m != may2024 {
		t.Fatalf("ParseMonth = %v, %v", m, err)
	}
	if _, err := ParseMonth("2024-13"); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestPreviewCountsPaddedLegacyDates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	client, err := store.CreateClient(ctx, models.Client{Name: "Ravi", LunchCost: 70})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	for _, date := range []string{" 2024-05-10", "2024-05-11 ", "2024-06-01"} {
		if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: client.ID, Date: date, MealType: models.MealLunch, Quantity: 1}); err != nil {
			t.Fatalf("seed attendance: %v", err)
		}
	}

	svc := NewService(store, nil, fixedClock, nil)
	got, err := svc.Preview(ctx, may2024, client.ID)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if len(got) != 1 || got[0].LunchDays != 2 || got[0].GrandTotal != 140 {
		t.Fatalf("unexpected bill %+v", got)
	}
}
