package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository/memory"
	"github.com/tiffinwala/tiffin/internal/service/bills"
	client "github.com/tiffinwala/tiffin/pkg/clients/whatsapp"
)

type fakeClient struct {
	sent   []client.SendTextMessageRequest
	failTo string
}

func (f *fakeClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	if req.To == f.failTo {
		return nil, errors.New("undeliverable")
	}
	f.sent = append(f.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

var may2024 = billing.Month{Year: 2024, Month: time.May}

func newService(t *testing.T, api client.Client) *MetaWhatsAppService {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	seed := []models.Client{
		{Name: "Asha", Mobile: "9904404326", LunchCost: 80, DinnerCost: 90, Discount: 10, RemindersEnabled: true},
		{Name: "Ravi", Mobile: "9023971084", LunchCost: 70, RemindersEnabled: false},
		{Name: "NoPhone", LunchCost: 70, RemindersEnabled: true},
		{Name: "Unbilled", Mobile: "9000000000", LunchCost: 70, RemindersEnabled: true},
		{Name: "Bounce", Mobile: "9111111111", LunchCost: 60, RemindersEnabled: true},
	}
	for _, c := range seed {
		created, err := store.CreateClient(ctx, c)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
		if c.Name == "Unbilled" {
			continue
		}
		if _, err := store.CreateAttendance(ctx, models.AttendanceRecord{ClientID: created.ID, Date: "2024-05-02", MealType: models.MealLunch, Quantity: 2}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	cfg := config.WhatsAppConfig{AdminNumber: "9800000000"}
	return NewMetaWhatsAppService(cfg, api, store, bills.NewService(store, nil, nil, nil), "TIFFINWALA", nil)
}

func TestSendMonthlyReminders(t *testing.T) {
	api := &fakeClient{failTo: "9111111111"}
	svc := newService(t, api)

	res, err := svc.SendMonthlyReminders(context.Background(), may2024)
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if res.Month != "2024-05" || res.Sent != 1 || res.Skipped != 3 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(api.sent) != 1 || api.sent[0].To != "9904404326" {
		t.Fatalf("unexpected messages %+v", api.sent)
	}
	body := api.sent[0].Body
	for _, want := range []string{"Hello Asha", "May 2024", "Lunch: 2 × ₹80 = ₹160", "Discount (10%): -₹16", "Total due: ₹144"} {
		if !strings.Contains(body, want) {
			t.Fatalf("reminder %q missing %q", body, want)
		}
	}
	if strings.Contains(body, "Dinner") {
		t.Fatalf("reminder must omit meals that were not taken")
	}
}

func TestDisabledMessaging(t *testing.T) {
	svc := newService(t, nil)

	if _, err := svc.SendMonthlyReminders(context.Background(), may2024); !errors.Is(err, ErrMessagingDisabled) {
		t.Fatalf("expected ErrMessagingDisabled, got %v", err)
	}
	if err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "9904404326", Message: "hi"}); !errors.Is(err, ErrMessagingDisabled) {
		t.Fatalf("expected ErrMessagingDisabled, got %v", err)
	}
}

func TestSendAdminSummary(t *testing.T) {
	api := &fakeClient{}
	svc := newService(t, api)

	if err := svc.SendAdminSummary(context.Background(), "Summary May 2024"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(api.sent) != 1 || api.sent[0].To != "9800000000" {
		t.Fatalf("unexpected messages %+v", api.sent)
	}

	svc.cfg.AdminNumber = ""
	if err := svc.SendAdminSummary(context.Background(), "ignored"); err != nil || len(api.sent) != 1 {
		t.Fatalf("summary without admin number must be a no-op, got %v", err)
	}
}
