package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/config"
	"github.com/tiffinwala/tiffin/internal/repository/sheets"
	"github.com/tiffinwala/tiffin/internal/repository/storage"
	"github.com/tiffinwala/tiffin/internal/scheduler"
	"github.com/tiffinwala/tiffin/internal/server/handlers"
	"github.com/tiffinwala/tiffin/internal/server/router"
	attendancesvc "github.com/tiffinwala/tiffin/internal/service/attendance"
	authsvc "github.com/tiffinwala/tiffin/internal/service/auth"
	billsvc "github.com/tiffinwala/tiffin/internal/service/bills"
	clientsvc "github.com/tiffinwala/tiffin/internal/service/clients"
	commandsvc "github.com/tiffinwala/tiffin/internal/service/commands"
	printingsvc "github.com/tiffinwala/tiffin/internal/service/printing"
	reportingsvc "github.com/tiffinwala/tiffin/internal/service/reporting"
	whatsappsvc "github.com/tiffinwala/tiffin/internal/service/whatsapp"
	whatsappclient "github.com/tiffinwala/tiffin/pkg/clients/whatsapp"
	"github.com/tiffinwala/tiffin/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Billing.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}
	clock := func() time.Time { return time.Now().In(loc) }

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := storage.Open(startCtx, cfg, logger.Named(baseLogger, "repo"))
	cancelStart()
	if err != nil {
		baseLogger.Fatal("failed to init storage", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			baseLogger.Error("failed to close storage", zap.Error(err))
		}
	}()

	authService := authsvc.NewService(store, cfg.Auth, nil, logger.Named(baseLogger, "svc.auth"))
	if err := authService.EnsureAdmin(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		baseLogger.Fatal("failed to seed admin user", zap.Error(err))
	}

	// Optional bill mirror
	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		client, err := sheets.NewSpreadsheetClient(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets client", zap.Error(err))
		}
		sheetsRepo = client
		baseLogger.Info("google sheets bill mirror enabled")
	} else {
		baseLogger.Warn("google sheets credentials missing, bill mirror disabled")
	}
	mirror := sheets.NewBillMirror(sheetsRepo, logger.Named(baseLogger, "svc.mirror"))

	clientService := clientsvc.NewService(store, logger.Named(baseLogger, "svc.clients"))
	attendanceService := attendancesvc.NewService(store, clock, logger.Named(baseLogger, "svc.attendance"))
	billService := billsvc.NewService(store, mirror, clock, logger.Named(baseLogger, "svc.bills"))
	printingService := printingsvc.NewService(billService, store, cfg.Billing, clock, logger.Named(baseLogger, "svc.printing"))
	reportingService := reportingsvc.NewService(store, loc, nil, logger.Named(baseLogger, "svc.reporting"))

	var whatsClient whatsappclient.Client
	if cfg.WhatsApp.Enabled() {
		whatsClient = whatsappclient.NewClient(cfg.WhatsApp)
		baseLogger.Info("whatsapp client enabled")
	} else {
		baseLogger.Warn("whatsapp credentials missing, reminders disabled")
	}
	messagingService := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, store, billService, cfg.Billing.BusinessName, logger.Named(baseLogger, "svc.whatsapp")).
		WithDispatcher(commandsvc.NewService(store, billService, loc, logger.Named(baseLogger, "svc.commands")))

	engine := router.New(router.Dependencies{
		Auth:       handlers.NewAuthHandler(authService, logger.Named(baseLogger, "handlers.auth")),
		Clients:    handlers.NewClientHandler(clientService, logger.Named(baseLogger, "handlers.clients")),
		Attendance: handlers.NewAttendanceHandler(attendanceService, logger.Named(baseLogger, "handlers.attendance")),
		Bills:      handlers.NewBillHandler(billService, printingService, logger.Named(baseLogger, "handlers.bills")),
		Prints:     handlers.NewPrintHandler(printingService, logger.Named(baseLogger, "handlers.prints")),
		Dashboard:  handlers.NewDashboardHandler(reportingService, logger.Named(baseLogger, "handlers.dashboard")),
		Messaging:  handlers.NewMessagingHandler(messagingService, logger.Named(baseLogger, "handlers.whatsapp")),
		Webhook:    handlers.NewWebhookHandler(messagingService, logger.Named(baseLogger, "handlers.webhook")),
		Tokens:     authService,
		Store:      store,
	}, logger.Named(baseLogger, "router"))

	sched, err := scheduler.NewScheduler(cfg.Billing, reportingService, messagingService, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
