package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/server/handlers"
)

// Pinger reports store connectivity for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies collects everything the router mounts.
type Dependencies struct {
	Auth       *handlers.AuthHandler
	Clients    *handlers.ClientHandler
	Attendance *handlers.AttendanceHandler
	Bills      *handlers.BillHandler
	Prints     *handlers.PrintHandler
	Dashboard  *handlers.DashboardHandler
	Messaging  *handlers.MessagingHandler
	Webhook    *handlers.WebhookHandler
	Tokens     TokenParser
	Store      Pinger
}

// New wires the Gin engine with required routes and middlewares.
func New(deps Dependencies, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware())

	r.GET("/healthz", healthHandler(deps.Store))

	if deps.Webhook != nil {
		r.GET("/webhook", deps.Webhook.Verify)
		r.POST("/webhook", deps.Webhook.Receive)
	}

	api := r.Group("/api")
	api.POST("/login", deps.Auth.Login)

	secured := api.Group("")
	secured.Use(authMiddleware(deps.Tokens, logger))
	{
		secured.GET("/users", deps.Auth.ListUsers)
		secured.POST("/users", deps.Auth.Register)

		secured.GET("/clients", deps.Clients.List)
		secured.POST("/clients", deps.Clients.Create)
		secured.GET("/clients/:id", deps.Clients.Get)
		secured.PUT("/clients/:id", deps.Clients.Update)
		secured.DELETE("/clients/:id", deps.Clients.Delete)

		secured.GET("/attendance", deps.Attendance.List)
		secured.POST("/attendance", deps.Attendance.Create)
		secured.POST("/attendance/toggle", deps.Attendance.Toggle)
		secured.PUT("/attendance/:id", deps.Attendance.Update)
		secured.PATCH("/attendance/:id/quantity", deps.Attendance.UpdateQuantity)
		secured.DELETE("/attendance/:id", deps.Attendance.Delete)

		secured.GET("/bills", deps.Bills.List)
		secured.POST("/bills", deps.Bills.Generate)
		secured.GET("/bills/preview", deps.Bills.Preview)
		secured.GET("/bills/totals", deps.Bills.Totals)
		secured.GET("/bills/export", deps.Bills.Export)

		secured.GET("/prints", deps.Prints.History)
		secured.POST("/prints", deps.Prints.Print)

		secured.GET("/dashboard", deps.Dashboard.Get)

		secured.POST("/send-message", deps.Messaging.SendMessage)
		secured.POST("/reminders/send", deps.Messaging.SendReminders)
	}

	logger.Info("router initialized")

	return r
}

func healthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
