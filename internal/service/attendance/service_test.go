package attendance

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

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	store := memory.NewStore()
	client, err := store.CreateClient(context.Background(), models.Client{Name: "Asha", LunchCost: 80, DinnerCost: 90})
	if err != nil {
		t.Fatalf("seed client: %v", err)
	}
	clock := func() time.Time { return time.Date(2024, 5, 10, 13, 5, 0, 0, time.UTC) }
	return NewService(store, clock, nil), client.ID
}

func TestCreateDefaults(t *testing.T) {
	svc, clientID := newService(t)

	rec, err := svc.Create(context.Background(), Input{ClientID: clientID, Date: "2024-05-10T00:00:00.000Z", MealType: "Lunch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Quantity != 1 || rec.Date != "2024-05-10" || rec.MealType != models.MealLunch {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Timestamp != "01:05 PM" || rec.Status != models.StatusPresent {
		t.Fatalf("unexpected metadata %+v", rec)
	}
}

func TestCreateRejects(t *testing.T) {
	svc, clientID := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, Input{ClientID: clientID, Date: "2024-05-10", MealType: "breakfast"}); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("meal: expected ErrInvalid, got %v", err)
	}
	if _, err := svc.Create(ctx, Input{ClientID: clientID, Date: "10/05/2024", MealType: "lunch"}); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("date: expected ErrInvalid, got %v", err)
	}
	if _, err := svc.Create(ctx, Input{ClientID: "ghost", Date: "2024-05-10", MealType: "lunch"}); !errors.Is(err, billing.ErrClientNotFound) {
		t.Fatalf("client: expected ErrClientNotFound, got %v", err)
	}
}

func TestToggle(t *testing.T) {
	svc, clientID := newService(t)
	ctx := context.Background()
	in := Input{ClientID: clientID, Date: "2024-05-10", MealType: "dinner", Quantity: 2}

	res, err := svc.Toggle(ctx, in)
	if err != nil || !res.Marked || res.Record == nil || res.Record.Quantity != 2 {
		t.Fatalf("first toggle = %+v, %v", res, err)
	}

	res, err = svc.Toggle(ctx, in)
	if err != nil || res.Marked {
		t.Fatalf("second toggle = %+v, %v", res, err)
	}

	list, err := svc.List(ctx, Query{ClientID: clientID})
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no records, got %v (%v)", list, err)
	}
}

func TestUpdateQuantityClamps(t *testing.T) {
	svc, clientID := newService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, Input{ClientID: clientID, Date: "2024-05-10", MealType: "lunch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, tc := range []struct {
		in   models.Quantity
		want models.Quantity
	}{{3, 3}, {0, 1}, {-4, 1}} {
		got, err := svc.UpdateQuantity(ctx, rec.ID, tc.in)
		if err != nil {
			t.Fatalf("update %d: %v", tc.in, err)
		}
		if got.Quantity != tc.want {
			t.Fatalf("quantity %d -> %d, want %d", tc.in, got.Quantity, tc.want)
		}
	}

	if _, err := svc.UpdateQuantity(ctx, "missing", 2); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateKeepsMetadata(t *testing.T) {
	svc, clientID := newService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, Input{ClientID: clientID, Date: "2024-05-10", MealType: "lunch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	updated, err := svc.Update(ctx, rec.ID, Input{ClientID: clientID, Date: "2024-05-11", MealType: "dinner", Quantity: 2})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != rec.ID || updated.Date != "2024-05-11" || updated.MealType != models.MealDinner || updated.Timestamp != rec.Timestamp {
		t.Fatalf("unexpected update %+v", updated)
	}
}

func TestListFilters(t *testing.T) {
	svc, clientID := newService(t)
	ctx := context.Background()

	for _, d := range []string{"2024-04-30", "2024-05-01", "2024-05-10"} {
		if _, err := svc.Create(ctx, Input{ClientID: clientID, Date: d, MealType: "lunch"}); err != nil {
			t.Fatalf("create %s: %v", d, err)
		}
	}

	may, err := svc.List(ctx, Query{Month: "2024-05"})
	if err != nil || len(may) != 2 {
		t.Fatalf("month filter = %d records (%v)", len(may), err)
	}
	day, err := svc.List(ctx, Query{Month: "2024-05", Date: "2024-04-30"})
	if err != nil || len(day) != 1 {
		t.Fatalf("date filter = %d records (%v)", len(day), err)
	}
	if _, err := svc.List(ctx, Query{Month: "May"}); !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for bad month, got %v", err)
	}
}
