package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tiffinwala/tiffin/internal/domain/billing"
	"github.com/tiffinwala/tiffin/internal/repository"
	"github.com/tiffinwala/tiffin/internal/service/auth"
	"github.com/tiffinwala/tiffin/internal/service/printing"
	"github.com/tiffinwala/tiffin/internal/service/validation"
	"github.com/tiffinwala/tiffin/internal/service/whatsapp"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, billing.ErrClientNotFound),
		errors.Is(err, printing.ErrNoBillData):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, billing.ErrDuplicateBill):
		return http.StatusConflict
	case errors.Is(err, whatsapp.ErrMessagingDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and an {"error": ...} body. Client
// errors are logged at warn level, server errors at error level with the
// details kept out of the response.
func writeError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
	}

	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logger.Error(msg, fields...)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	logger.Warn(msg, fields...)

	var dup *billing.DuplicateBillError
	if errors.As(err, &dup) {
		c.JSON(status, gin.H{"error": err.Error(), "bill": dup.Existing})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Warn(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
