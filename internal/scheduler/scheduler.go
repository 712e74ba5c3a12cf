package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/service/whatsapp"
)

// Summarizer builds the monthly admin summary.
type Summarizer interface {
	MonthlySummary(ctx context.Context, month billing.Month) (string, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron         *cron.Cron
	schedule     string
	loc          *time.Location
	reportingSvc Summarizer
	messagingSvc whatsapp.MessagingService
	now          func() time.Time
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. Cron expressions use the
// standard five fields and are evaluated in the configured timezone.
func NewScheduler(cfg config.BillingConfig, reportingSvc Summarizer, messagingSvc whatsapp.MessagingService, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		schedule:     cfg.ReminderCronSchedule,
		loc:          loc,
		reportingSvc: reportingSvc,
		messagingSvc: messagingSvc,
		now:          time.Now,
		logger:       logger,
	}, nil
}

// Start registers the monthly job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))

	if _, err := s.cron.AddFunc(s.schedule, s.runMonthlyJob); err != nil {
		return fmt.Errorf("schedule monthly reminders %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runMonthlyJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.RunMonthly(ctx)
}

// RunMonthly bills the month before now: reminders go to clients, the
// summary to the admin.
func (s *Scheduler) RunMonthly(ctx context.Context) {
	month := billing.MonthOf(s.now().In(s.loc)).Previous()
	s.logger.Info("running monthly job", zap.String("month", month.String()))

	res, err := s.messagingSvc.SendMonthlyReminders(ctx, month)
	switch {
	case errors.Is(err, whatsapp.ErrMessagingDisabled):
		s.logger.Warn("monthly reminders skipped, messaging disabled")
		return
	case err != nil:
		s.logger.Error("failed to send monthly reminders", zap.Error(err))
	default:
		s.logger.Info("monthly reminders sent", zap.Int("sent", res.Sent), zap.Int("failed", len(res.Failed)))
	}

	summary, err := s.reportingSvc.MonthlySummary(ctx, month)
	if err != nil {
		s.logger.Error("failed to build monthly summary", zap.Error(err))
		return
	}

	if err := s.messagingSvc.SendAdminSummary(ctx, summary); err != nil {
		s.logger.Error("failed to send monthly summary", zap.Error(err))
	} else {
		s.logger.Info("monthly summary sent successfully")
	}
}
