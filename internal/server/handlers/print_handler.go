package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/service/printing"
)

// PrintHandler exposes roller prints and their history.
type PrintHandler struct {
	svc    *printing.Service
	logger *zap.Logger
}

// NewPrintHandler constructs the HTTP handler adapter.
func NewPrintHandler(svc *printing.Service, logger *zap.Logger) *PrintHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrintHandler{svc: svc, logger: logger}
}

// History lists past print runs.
func (h *PrintHandler) History(c *gin.Context) {
	prints, err := h.svc.History(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "failed to list prints", err)
		return
	}
	c.JSON(http.StatusOK, prints)
}

// Print renders a roller bill. Browsers asking for text/html get the
// printable document directly; API clients get it wrapped in JSON next to
// the saved print record.
func (h *PrintHandler) Print(c *gin.Context) {
	var req printing.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid print payload", err)
		return
	}

	res, err := h.svc.Print(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "failed to print bills", err)
		return
	}

	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Header("X-Print-Record-Id", res.Record.ID)
		c.Data(http.StatusCreated, "text/html; charset=utf-8", []byte(res.HTML))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": res.Record, "html": res.HTML})
}
