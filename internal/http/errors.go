package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"cms-server/internal/config"
	"cms-server/internal/domain"
)

const genericErrorMessage = "Something went wrong!"

// respondError maps a failure onto the error taxonomy and aborts the request.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": []domain.FieldError(verrs)})
		return
	}

	status := http.StatusInternalServerError
	fallback := ""
	switch {
	case errors.Is(err, domain.ErrConflict):
		status, fallback = http.StatusBadRequest, "Resource already exists"
	case errors.Is(err, domain.ErrUnauthenticated):
		status, fallback = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, fallback = http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, domain.ErrForbidden):
		status, fallback = http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, domain.ErrNotFound):
		status, fallback = http.StatusNotFound, "Resource not found"
	}

	if status == http.StatusInternalServerError {
		h.respondInternal(c, err)
		return
	}

	message := fallback
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Message != "" {
		message = derr.Message
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

func (h *Handler) respondInternal(c *gin.Context, err error) {
	h.requestLog(c).WithError(err).Error("request failed")

	body := gin.H{"status": "error", "message": genericErrorMessage}
	if !strings.EqualFold(h.opts.Env, config.EnvProduction) {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

func (h *Handler) requestLog(c *gin.Context) logrus.FieldLogger {
	fields := logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}
	return h.logger.WithFields(fields)
}

// bindJSON decodes the request body, reporting malformed or oversized bodies as 400.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		message := "Invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "Request body too large"
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": message})
		return false
	}
	return true
}
