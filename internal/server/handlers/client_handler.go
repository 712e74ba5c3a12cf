package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/models"
	"github.com/tiffinwala/tiffin/internal/service/clients"
)

// ClientHandler exposes the client roster.
type ClientHandler struct {
	svc    *clients.Service
	logger *zap.Logger
}

// NewClientHandler constructs the HTTP handler adapter.
func NewClientHandler(svc *clients.Service, logger *zap.Logger) *ClientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientHandler{svc: svc, logger: logger}
}

func (h *ClientHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, "failed to list clients", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, "failed to load client", err)
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	var req models.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid client payload", err)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, "failed to create client", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *ClientHandler) Update(c *gin.Context) {
	var req models.Client
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "invalid client payload", err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, h.logger, "failed to update client", err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, "failed to delete client", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
