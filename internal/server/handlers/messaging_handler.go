package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/service/bills"
	service "github.com/tiffinwala/tiffin/internal/service/whatsapp"
)

// MessagingHandler handles outbound WhatsApp requests.
type MessagingHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewMessagingHandler constructs the HTTP handler adapter.
func NewMessagingHandler(svc service.MessagingService, logger *zap.Logger) *MessagingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessagingHandler{svc: svc, logger: logger}
}

// SendMessage allows sending a manual message to one number.
func (h *MessagingHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		if statusFor(err) != http.StatusInternalServerError {
			writeError(c, h.logger, "unable to send message", err)
			return
		}
		h.logger.Error("failed sending outbound", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to send message"})
		return
	}

	c.Status(http.StatusAccepted)
}

// SendReminders runs the monthly reminder batch for the requested month.
func (h *MessagingHandler) SendReminders(c *gin.Context) {
	var req struct {
		Month string `json:"month"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid request body", err)
		return
	}

	month, err := bills.ParseMonth(req.Month)
	if err != nil {
		writeError(c, h.logger, "invalid month", err)
		return
	}

	res, err := h.svc.SendMonthlyReminders(c.Request.Context(), month)
	if err != nil {
		writeError(c, h.logger, "failed to send reminders", err)
		return
	}
	c.JSON(http.StatusOK, res)
}
