package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/bills"
	"github.com/tiffinwala/tiffin/internal/service/printing"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BillHandler exposes bill preview, generation and export.
type BillHandler struct {
	svc      *bills.Service
	printing *printing.Service
	logger   *zap.Logger
}

// NewBillHandler constructs the HTTP handler adapter.
func NewBillHandler(svc *bills.Service, printingSvc *printing.Service, logger *zap.Logger) *BillHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillHandler{svc: svc, printing: printingSvc, logger: logger}
}

// List returns persisted bills, optionally filtered by month and client.
func (h *BillHandler) List(c *gin.Context) {
	filter := repository.BillFilter{ClientID: c.Query("clientId")}
	if raw := c.Query("month"); raw != "" {
		month, err := bills.ParseMonth(raw)
		if err != nil {
			writeError(c, h.logger, "invalid month", err)
			return
		}
		filter.Month = month.String()
	}

	list, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, "failed to list bills", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Preview returns computed bills without persisting them.
func (h *BillHandler) Preview(c *gin.Context) {
	month, ok := h.month(c)
	if !ok {
		return
	}

	list, err := h.svc.Preview(c.Request.Context(), month, c.Query("clientId"))
	if err != nil {
		writeError(c, h.logger, "failed to preview bills", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Totals returns the aggregated meals and income of a month.
func (h *BillHandler) Totals(c *gin.Context) {
	month, ok := h.month(c)
	if !ok {
		return
	}

	totals, err := h.svc.Totals(c.Request.Context(), month, c.Query("clientId"))
	if err != nil {
		writeError(c, h.logger, "failed to aggregate totals", err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// Generate computes and persists one bill. A duplicate answers 409 with the
// existing bill.
func (h *BillHandler) Generate(c *gin.Context) {
	var req struct {
		ClientID string `json:"clientId"`
		Month    string `json:"month"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid bill payload", err)
		return
	}

	month, err := bills.ParseMonth(req.Month)
	if err != nil {
		writeError(c, h.logger, "invalid month", err)
		return
	}

	bill, err := h.svc.Generate(c.Request.Context(), req.ClientID, month)
	if err != nil {
		writeError(c, h.logger, "failed to generate bill", err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

// Export streams the month's bills as an xlsx workbook.
func (h *BillHandler) Export(c *gin.Context) {
	month, ok := h.month(c)
	if !ok {
		return
	}

	data, err := h.printing.Export(c.Request.Context(), month)
	if err != nil {
		writeError(c, h.logger, "failed to export bills", err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+printing.ExportFileName(month))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// month reads the required month query parameter and answers 400 when it is
// missing or malformed.
func (h *BillHandler) month(c *gin.Context) (billing.Month, bool) {
	month, err := bills.ParseMonth(c.Query("month"))
	if err != nil {
		writeError(c, h.logger, "invalid month", err)
		return billing.Month{}, false
	}
	return month, true
}
