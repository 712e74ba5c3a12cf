package printing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository/memory"
	"github.com/tiffinwala/tiffin/internal/service/bills"
	"github.com/tiffinwala/tiffin/internal/service/validation"
)

var may2024 = billing.Month{Year: 2024, Month: time.May}

func clock() time.Time { return time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC) }

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	asha, err := store.CreateClient(ctx, models.Client{Name: "Asha", Mobile: "9904404326", LunchCost: 80, DinnerCost: 90, Discount: 10})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	ravi, err := store.CreateClient(ctx, models.Client{Name: "Ravi", Mobile: "9023971084", LunchCost: 70, DinnerCost: 70})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.CreateClient(ctx, models.Client{Name: "Idle", LunchCost: 70}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for d := 1; d <= 12; d++ {
		date := time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC).Format(models.DateLayout)
		if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: asha.ID, Date: date, MealType: models.MealLunch, Quantity: 1}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: ravi.ID, Date: "2024-05-03", MealType: models.MealDinner, Quantity: 2}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	billSvc := bills.NewService(store, nil, clock, nil)
	cfg := config.BillingConfig{BusinessName: "TIFFINWALA", BusinessContacts: []string{"9904404326", "9023971084"}}
	return NewService(billSvc, store, cfg, clock, nil), store
}

func TestPrintAllClients(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	res, err := svc.Print(ctx, Request{Month: "2024-05", ClientID: "all", Format: models.PrintThermal})
	if err != nil {
		t.Fatalf("print: %v", err)
	}

	for _, want := range []string{
		"TIFFINWALA", "Meal Service Bill", "May 2024", "Date: 2024-06-02",
		"width: 58mm", "font-size: 9px",
		"Lunch (12 days)", "₹960", "Quantity: 12 × ₹80",
		"Subtotal", "Discount (10%)", "-₹96", "₹864",
		"01/05/2024 - LUNCH", "10/05/2024 - LUNCH", "... and 2 more meals",
		"03/05/2024 - DINNER", "Quantity: 2 × ₹70", "₹140",
		"Thank you for choosing TIFFINWALA!", "Contact: 9023971084",
	} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("print output missing %q", want)
		}
	}
	if strings.Contains(res.HTML, "11/05/2024 - LUNCH") {
		t.Errorf("meal details must stop after 10 entries")
	}
	if strings.Contains(res.HTML, "Idle") {
		t.Errorf("clients without meals must not be printed")
	}
	if strings.Count(res.HTML, "Subtotal") != 1 {
		t.Errorf("subtotal must only appear for discounted clients")
	}

	rec := res.Record
	if rec.ID == "" || rec.TotalClients != 2 || rec.TotalAmount != 1004 || rec.Month != "2024-05" || rec.Format != models.PrintThermal {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Details != "Roller print generated for 2 client(s) for May 2024. Total Amount: ₹1004" {
		t.Fatalf("details = %q", rec.Details)
	}

	history, err := store.ListPrints(ctx)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %v, %v", history, err)
	}
}

func TestPrintStandardFormat(t *testing.T) {
	svc, _ := newService(t)
	res, err := svc.Print(context.Background(), Request{Month: "2024-05", Format: "STANDARD"})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(res.HTML, "width: 80mm") || !strings.Contains(res.HTML, "font-size: 11px") {
		t.Fatalf("standard format not applied")
	}
}

func TestPrintErrors(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Print(ctx, Request{Month: "2024-06"}); !errors.Is(err, ErrNoBillData) {
		t.Fatalf("empty month: expected ErrNoBillData, got %v", err)
	}
	if _, err := svc.Print(ctx, Request{Month: "2024-05", Format: "a4"}); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("format: expected ErrInvalid, got %v", err)
	}
	if _, err := svc.Print(ctx, Request{Month: "soon"}); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("month: expected ErrInvalid, got %v", err)
	}
	if _, err := svc.Print(ctx, Request{Month: "2024-05", ClientID: "ghost"}); !errors.Is(err, billing.ErrClientNotFound) {
		t.Fatalf("client: expected ErrClientNotFound, got %v", err)
	}
}

func TestExport(t *testing.T) {
	svc, _ := newService(t)

	data, err := svc.Export(context.Background(), may2024)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Bills 2024-05")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header, 3 clients and totals, got %d rows", len(rows))
	}
	if rows[0][0] != "Client" || rows[1][0] != "Asha" || rows[1][11] != "864" {
		t.Fatalf("unexpected rows %v", rows[:2])
	}
	if rows[4][0] != "TOTAL" || rows[4][3] != "12" || rows[4][6] != "2" || rows[4][11] != "1004" {
		t.Fatalf("unexpected totals row %v", rows[4])
	}
	if ExportFileName(may2024) != "bills_2024-05.xlsx" {
		t.Fatalf("file name = %s", ExportFileName(may2024))
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{2655: "2655", 262.5: "262.5", 0: "0", 1004: "1004"}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", in, got, want)
		}
	}

	// Runtime arithmetic, not constants, so the float error survives.
	tenth, fifth := 0.1, 0.2
	if got := FormatAmount(tenth + fifth); got != "0.3" {
		t.Fatalf("FormatAmount(0.1+0.2) = %q", got)
	}
	quantity, rate, discount := 3.0, 85.5, 7.0
	subtotal := quantity * rate
	grand := subtotal - subtotal*discount/100
	if got := FormatAmount(grand); got != "238.55" {
		t.Fatalf("FormatAmount(%v) = %q, want 238.55", grand, got)
	}
}

func TestPrintSavedBillUsesBilledMeals(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	clients, err := store.ListClients(ctx)
	if err != nil {
		t.Fatalf("clients: %v", err)
	}
	ravi := clients[1]

	billSvc := bills.NewService(store, nil, clock, nil)
	saved, err := billSvc.Generate(ctx, ravi.ID, may2024)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if saved.GrandTotal != 140 || saved.LunchDays != 0 {
		t.Fatalf("unexpected bill %+v", saved)
	}

	if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: ravi.ID, Date: "2024-05-20", MealType: models.MealLunch, Quantity: 1}); err != nil {
		t.Fatalf("late attendance: %v", err)
	}

	res, err := svc.Print(ctx, Request{Month: "2024-05", ClientID: ravi.ID})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(res.HTML, "03/05/2024 - DINNER") {
		t.Fatalf("billed dinner missing from print")
	}
	if strings.Contains(res.HTML, "20/05/2024 - LUNCH") {
		t.Fatalf("meal added after the bill was generated must not be printed")
	}
	if res.Record.TotalAmount != 140 {
		t.Fatalf("print total = %v, want the saved 140", res.Record.TotalAmount)
	}
}
