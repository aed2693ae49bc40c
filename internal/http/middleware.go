package http

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"cms-server/internal/access"
	"cms-server/internal/auth"
	"cms-server/internal/domain"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

var tracer = otel.Tracer("cms-server/internal/http")

func (h *Handler) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (h *Handler) tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := otel.GetTextMapPropagator().Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(c.Request.Method),
				semconv.HTTPRoute(route),
				semconv.URLPath(c.Request.URL.Path),
			),
		)
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPResponseStatusCode(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if identity := auth.IdentityFromContext(c.Request.Context()); identity.Authenticated() {
			fields["user_id"] = identity.UserID
		}
		entry := h.requestLog(c).WithFields(fields)
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}

func (h *Handler) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.respondInternal(c, fmt.Errorf("panic: %v", recovered))
	})
}

func (h *Handler) cors() gin.HandlerFunc {
	allowAny := slices.Contains(h.opts.AllowedOrigins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAny || slices.Contains(h.opts.AllowedOrigins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Expose-Headers", requestIDHeader)
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.opts.MaxBodyBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)
		}
		c.Next()
	}
}

// authenticate resolves the caller. A missing or non-bearer header leaves the
// request anonymous; a token that fails verification or names a deleted user
// rejects it.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.ExtractFromHeader(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claimed, err := h.tokens.Verify(token)
		if err != nil {
			h.requestLog(c).WithError(err).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		user, err := h.users.GetByID(c.Request.Context(), claimed.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
				return
			}
			h.respondError(c, err)
			return
		}

		identity := domain.IdentityOf(user)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), identity))
		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.Int64("enduser.id", identity.UserID))
		c.Next()
	}
}

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authenticated(auth.IdentityFromContext(c.Request.Context())).Err(); err != nil {
			h.respondError(c, err)
			return
		}
		c.Next()
	}
}

// requireRole admits only identities holding one of roles.
func (h *Handler) requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.RequireRole(auth.IdentityFromContext(c.Request.Context()), roles...).Err(); err != nil {
			h.respondError(c, err)
			return
		}
		c.Next()
	}
}
