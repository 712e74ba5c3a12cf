package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/service/attendance"
)

// AttendanceHandler exposes meal attendance.
type AttendanceHandler struct {
	svc    *attendance.Service
	logger *zap.Logger
}

// NewAttendanceHandler constructs the HTTP handler adapter.
func NewAttendanceHandler(svc *attendance.Service, logger *zap.Logger) *AttendanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceHandler{svc: svc, logger: logger}
}

func (h *AttendanceHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context(), attendance.Query{
		ClientID: c.Query("clientId"),
		Month:    c.Query("month"),
		Date:     c.Query("date"),
	})
	if err != nil {
		writeError(c, h.logger, "failed to list attendance", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *AttendanceHandler) Create(c *gin.Context) {
	var req attendance.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid attendance payload", err)
		return
	}

	record, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "failed to mark attendance", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Toggle marks or unmarks a meal.
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	var req attendance.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid attendance payload", err)
		return
	}

	res, err := h.svc.Toggle(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "failed to toggle attendance", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *AttendanceHandler) Update(c *gin.Context) {
	var req attendance.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid attendance payload", err)
		return
	}

	record, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, "failed to update attendance", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// UpdateQuantity changes the quantity of one record.
func (h *AttendanceHandler) UpdateQuantity(c *gin.Context) {
	var req struct {
		Quantity models.Quantity `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid quantity payload", err)
		return
	}

	record, err := h.svc.UpdateQuantity(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		writeError(c, h.logger, "failed to update quantity", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, "failed to delete attendance", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
