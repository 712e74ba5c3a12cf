// Package commands answers client self-service requests received over WhatsApp.
package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/service/printing"
	messaging "github.com/tiffinwala/tiffin/internal/service/whatsapp"
	"github.com/tiffinwala/tiffin/pkg/clients/whatsapp"
)

const helpText = "Send one of:\n" +
	"bill - your bill for this month so far\n" +
	"bill 2024-05 - your bill for a past month\n" +
	"meals - the meals recorded this month"

// ClientLister yields the client roster.
type ClientLister interface {
	ListClients(ctx context.Context) ([]models.Client, error)
}

// BillSource computes or loads bills.
type BillSource interface {
	Preview(ctx context.Context, month billing.Month, clientID string) ([]models.BillSummary, error)
}

// Service answers client commands from their own bills.
type Service struct {
	clients ClientLister
	bills   BillSource
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
}

var _ messaging.Dispatcher = (*Service)(nil)

// NewService constructs a command dispatcher. Months default to the current
// month in loc.
func NewService(clients ClientLister, bills BillSource, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		clients: clients,
		bills:   bills,
		loc:     loc,
		now:     time.Now,
		logger:  logger,
	}
}

// HandleCommand returns the reply to send back to sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandHelp, models.CommandUnknown:
		return helpText, nil
	}

	client, err := s.findSender(ctx, sender)
	if err != nil {
		return "", err
	}

	month := billing.MonthOf(s.now().In(s.loc))
	if len(cmd.Args) > 0 {
		m, err := billing.ParseMonth(cmd.Args[0])
		if err != nil {
			return fmt.Sprintf("Could not read month %q. Use the form 2024-05.", cmd.Args[0]), nil
		}
		month = m
	}

	bills, err := s.bills.Preview(ctx, month, client.ID)
	if err != nil {
		return "", fmt.Errorf("load bill: %w", err)
	}
	if len(bills) == 0 {
		return "", fmt.Errorf("no bill computed for client %s", client.ID)
	}
	bill := bills[0]

	switch cmd.Type {
	case models.CommandBill:
		if bill.TotalMeals() == 0 {
			return fmt.Sprintf("No meals recorded for %s.", month.Name()), nil
		}
		return fmt.Sprintf("%s, your bill for %s is ₹%s (%d meals).",
			client.Name, month.Name(), printing.FormatAmount(bill.GrandTotal), bill.TotalMeals()), nil
	case models.CommandMeals:
		return fmt.Sprintf("%s: %d lunch and %d dinner deliveries recorded (%d meals).",
			month.Name(), bill.LunchDays, bill.DinnerDays, bill.TotalMeals()), nil
	default:
		return "", fmt.Errorf("unhandled command %s", cmd.Type)
	}
}

func (s *Service) findSender(ctx context.Context, sender string) (models.Client, error) {
	from, err := whatsapp.NormalizeNumber(sender)
	if err != nil {
		return models.Client{}, messaging.ErrUnknownSender
	}

	roster, err := s.clients.ListClients(ctx)
	if err != nil {
		return models.Client{}, fmt.Errorf("list clients: %w", err)
	}
	for _, c := range roster {
		if strings.TrimSpace(c.Mobile) == "" {
			continue
		}
		if mobile, err := whatsapp.NormalizeNumber(c.Mobile); err == nil && mobile == from {
			return c, nil
		}
	}
	return models.Client{}, messaging.ErrUnknownSender
}
