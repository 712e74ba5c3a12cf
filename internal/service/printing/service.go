// Package printing renders roller bills for receipt printers and exports
// monthly bills as spreadsheets.
package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/validation"
)

// ErrNoBillData is returned when the selection has no billed meals.
var ErrNoBillData = errors.New("no attendance data found for the selected criteria")

// AllClients selects every client in a print request.
const AllClients = "all"

const maxMealDetails = 10

// BillSource yields the bills to print.
type BillSource interface {
	Preview(ctx context.Context, month billing.Month, clientID string) ([]models.BillSummary, error)
}

// Store is the persistence the printing service needs.
type Store interface {
	repository.AttendanceRepository
	repository.PrintRepository
}

// Request selects what to print.
type Request struct {
	Month    string             `json:"month"`
	ClientID string             `json:"clientId"`
	Format   models.PrintFormat `json:"format"`
}

// Result is a rendered roller print together with its log entry.
type Result struct {
	HTML   string
	Record models.PrintRecord
}

// Service renders and logs roller prints.
type Service struct {
	bills    BillSource
	store    Store
	business string
	contacts []string
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a new printing service.
func NewService(bills BillSource, store Store, cfg config.BillingConfig, now func() time.Time, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		bills:    bills,
		store:    store,
		business: cfg.BusinessName,
		contacts: cfg.BusinessContacts,
		now:      now,
		logger:   logger,
	}
}

// Print renders the roller bill of req and appends a PrintRecord.
func (s *Service) Print(ctx context.Context, req Request) (Result, error) {
	month, err := billing.ParseMonth(req.Month)
	if err != nil {
		return Result{}, validation.Errorf("invalid month %q", req.Month)
	}
	format, err := parseFormat(req.Format)
	if err != nil {
		return Result{}, err
	}

	clientID := strings.TrimSpace(req.ClientID)
	if strings.EqualFold(clientID, AllClients) {
		clientID = ""
	}

	bills, err := s.billed(ctx, month, clientID)
	if err != nil {
		return Result{}, err
	}

	records, err := s.store.ListAttendance(ctx, repository.AttendanceFilter{ClientID: clientID, DatePrefix: month.String()})
	if err != nil {
		return Result{}, fmt.Errorf("list attendance: %w", err)
	}

	now := s.now()
	view := rollerView{
		BusinessName: s.business,
		MonthName:    month.Name(),
		PrintDate:    now.Format(models.DateLayout),
		Contacts:     s.contacts,
	}
	view.applyFormat(format)

	var total float64
	ids := make([]string, 0, len(bills))
	for _, b := range bills {
		view.Bills = append(view.Bills, newBillView(b, billedRecords(b, billing.MonthlyRecords(b.Client.ID, records, month))))
		ids = append(ids, b.Client.ID)
		total += b.GrandTotal
	}

	var buf bytes.Buffer
	if err := rollerTemplate.Execute(&buf, view); err != nil {
		return Result{}, fmt.Errorf("render roller print: %w", err)
	}

	record, err := s.store.CreatePrint(ctx, models.PrintRecord{
		ClientIDs:    ids,
		PrintDate:    now.UTC(),
		Month:        month.String(),
		Format:       format,
		TotalClients: len(bills),
		TotalAmount:  total,
		Details: fmt.Sprintf("Roller print generated for %d client(s) for %s. Total Amount: ₹%s",
			len(bills), month.Name(), FormatAmount(total)),
	})
	if err != nil {
		return Result{}, fmt.Errorf("save print record: %w", err)
	}

	s.logger.Info("roller print generated",
		zap.String("month", month.String()),
		zap.String("format", string(format)),
		zap.Int("clients", len(bills)),
		zap.Float64("total", total))

	return Result{HTML: buf.String(), Record: record}, nil
}

// History lists past print runs.
func (s *Service) History(ctx context.Context) ([]models.PrintRecord, error) {
	prints, err := s.store.ListPrints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list prints: %w", err)
	}
	return prints, nil
}

// billed returns the bills of month that contain at least one meal.
func (s *Service) billed(ctx context.Context, month billing.Month, clientID string) ([]models.BillSummary, error) {
	all, err := s.bills.Preview(ctx, month, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]models.BillSummary, 0, len(all))
	for _, b := range all {
		if b.LunchDays+b.DinnerDays > 0 {
			out = append(out, b)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoBillData
	}
	return out, nil
}

// billedRecords keeps the records of monthly that bill b was computed from,
// so a saved bill is printed with the meals it charged for.
func billedRecords(b models.BillSummary, monthly []models.AttendanceRecord) []models.AttendanceRecord {
	ids := make(map[string]struct{}, len(b.AttendanceRecords))
	for _, id := range b.AttendanceRecords {
		ids[id] = struct{}{}
	}
	out := make([]models.AttendanceRecord, 0, len(ids))
	for _, r := range monthly {
		if _, ok := ids[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

func parseFormat(f models.PrintFormat) (models.PrintFormat, error) {
	switch models.PrintFormat(strings.ToLower(string(f))) {
	case "", models.PrintThermal:
		return models.PrintThermal, nil
	case models.PrintStandard:
		return models.PrintStandard, nil
	default:
		return "", validation.Errorf("unknown print format %q", f)
	}
}

// FormatAmount renders a currency value rounded to paise without trailing
// zeros, e.g. 2655, 262.5, 238.55.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

type rollerView struct {
	BusinessName string
	MonthName    string
	PrintDate    string
	Contacts     []string
	Width        string
	FontSize     string
	TitleSize    string
	NameSize     string
	SmallSize    string
	Bills        []billView
}

func (v *rollerView) applyFormat(f models.PrintFormat) {
	if f == models.PrintStandard {
		v.Width, v.FontSize, v.TitleSize, v.NameSize, v.SmallSize = "80mm", "11px", "14px", "12px", "10px"
		return
	}
	v.Width, v.FontSize, v.TitleSize, v.NameSize, v.SmallSize = "58mm", "9px", "12px", "10px", "8px"
}

type billView struct {
	Name           string
	Mobile         string
	LunchDays      int
	DinnerDays     int
	LunchQuantity  int
	DinnerQuantity int
	LunchCost      string
	DinnerCost     string
	LunchTotal     string
	DinnerTotal    string
	HasDiscount    bool
	Discount       string
	Subtotal       string
	DiscountAmount string
	GrandTotal     string
	Meals          []string
	MoreMeals      int
}

func newBillView(b models.BillSummary, meals []models.AttendanceRecord) billView {
	v := billView{
		Name:           b.Client.Name,
		Mobile:         b.Client.Mobile,
		LunchDays:      b.LunchDays,
		DinnerDays:     b.DinnerDays,
		LunchQuantity:  b.LunchQuantity,
		DinnerQuantity: b.DinnerQuantity,
		LunchCost:      FormatAmount(b.Client.LunchCost),
		DinnerCost:     FormatAmount(b.Client.DinnerCost),
		LunchTotal:     FormatAmount(b.LunchTotal),
		DinnerTotal:    FormatAmount(b.DinnerTotal),
		HasDiscount:    b.Client.Discount > 0,
		Discount:       FormatAmount(b.Client.Discount),
		Subtotal:       FormatAmount(b.Subtotal),
		DiscountAmount: FormatAmount(b.DiscountAmount),
		GrandTotal:     FormatAmount(b.GrandTotal),
	}

	for i, m := range meals {
		if i == maxMealDetails {
			v.MoreMeals = len(meals) - maxMealDetails
			break
		}
		day, err := m.Day()
		if err != nil {
			continue
		}
		v.Meals = append(v.Meals, fmt.Sprintf("%s - %s", day.Format("02/01/2006"), strings.ToUpper(string(m.MealType))))
	}
	return v
}
