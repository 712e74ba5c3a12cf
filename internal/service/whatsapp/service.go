// Package whatsapp sends bill reminders and operator messages through the
// WhatsApp Cloud API and answers client messages received on its webhook.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/service/printing"
	client "github.com/tiffinwala/tiffin/pkg/clients/whatsapp"
)

// ErrMessagingDisabled is returned when no WhatsApp credentials are configured.
var ErrMessagingDisabled = errors.New("whatsapp messaging is not configured")

// MessagingService describes the operations the HTTP layer and scheduler can perform.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
	SendMonthlyReminders(ctx context.Context, month billing.Month) (models.ReminderResult, error)
	SendAdminSummary(ctx context.Context, text string) error
}

// BillSource yields the bills reminders are based on.
type BillSource interface {
	Preview(ctx context.Context, month billing.Month, clientID string) ([]models.BillSummary, error)
}

// ClientLister yields the client roster with reminder preferences.
type ClientLister interface {
	ListClients(ctx context.Context) ([]models.Client, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg      config.WhatsAppConfig
	client   client.Client
	clients  ClientLister
	bills    BillSource
	business string
	logger   *zap.Logger

	dispatcher Dispatcher
}

var _ MessagingService = (*MetaWhatsAppService)(nil)

// NewMetaWhatsAppService wires a new service instance. A nil api client
// disables sending; every send then fails with ErrMessagingDisabled.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, api client.Client, clients ClientLister, bills BillSource, businessName string, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:      cfg,
		client:   api,
		clients:  clients,
		bills:    bills,
		business: businessName,
		logger:   logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

// SendAdminSummary delivers text to the configured admin number.
func (s *MetaWhatsAppService) SendAdminSummary(ctx context.Context, text string) error {
	if s.cfg.AdminNumber == "" {
		s.logger.Warn("admin number not configured, summary not sent")
		return nil
	}
	return s.send(ctx, s.cfg.AdminNumber, text, false)
}

// SendMonthlyReminders messages every client that opted in, has a mobile
// number and owes a non-zero amount for month. One failed recipient does not
// stop the run.
func (s *MetaWhatsAppService) SendMonthlyReminders(ctx context.Context, month billing.Month) (models.ReminderResult, error) {
	result := models.ReminderResult{Month: month.String()}
	if s.client == nil {
		s.logger.Warn("reminders skipped, whatsapp disabled", zap.String("month", month.String()))
		return result, ErrMessagingDisabled
	}

	roster, err := s.clients.ListClients(ctx)
	if err != nil {
		return result, fmt.Errorf("list clients: %w", err)
	}
	bills, err := s.bills.Preview(ctx, month, "")
	if err != nil {
		return result, fmt.Errorf("load bills: %w", err)
	}
	byClient := make(map[string]models.BillSummary, len(bills))
	for _, b := range bills {
		byClient[b.Client.ID] = b
	}

	for _, c := range roster {
		bill, ok := byClient[c.ID]
		if !c.RemindersEnabled || strings.TrimSpace(c.Mobile) == "" || !ok || bill.GrandTotal <= 0 {
			result.Skipped++
			continue
		}

		if err := s.send(ctx, c.Mobile, ReminderMessage(s.business, bill), false); err != nil {
			s.logger.Error("failed to send reminder",
				zap.String("client_id", c.ID),
				zap.String("month", month.String()),
				zap.Error(err))
			result.Failed = append(result.Failed, c.ID)
			continue
		}
		result.Sent++
	}

	s.logger.Info("monthly reminders processed",
		zap.String("month", result.Month),
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// ReminderMessage renders the reminder text for bill.
func ReminderMessage(business string, bill models.BillSummary) string {
	month, err := billing.ParseMonth(bill.Month)
	monthName := bill.Month
	if err == nil {
		monthName = month.Name()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Hello %s,\n", bill.Client.Name)
	fmt.Fprintf(&sb, "Your %s bill for %s:\n", business, monthName)
	if bill.LunchDays > 0 {
		fmt.Fprintf(&sb, "Lunch: %d × ₹%s = ₹%s\n", bill.LunchQuantity, printing.FormatAmount(bill.Client.LunchCost), printing.FormatAmount(bill.LunchTotal))
	}
	if bill.DinnerDays > 0 {
		fmt.Fprintf(&sb, "Dinner: %d × ₹%s = ₹%s\n", bill.DinnerQuantity, printing.FormatAmount(bill.Client.DinnerCost), printing.FormatAmount(bill.DinnerTotal))
	}
	if bill.Client.Discount > 0 {
		fmt.Fprintf(&sb, "Discount (%s%%): -₹%s\n", printing.FormatAmount(bill.Client.Discount), printing.FormatAmount(bill.DiscountAmount))
	}
	fmt.Fprintf(&sb, "Total due: ₹%s\n", printing.FormatAmount(bill.GrandTotal))
	sb.WriteString("Thank you!")
	return sb.String()
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	if s.client == nil {
		return ErrMessagingDisabled
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	return err
}
