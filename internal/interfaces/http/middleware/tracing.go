package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request through otelgin.
// Span names follow the matched route pattern.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return passThrough
	}
	return otelgin.Middleware(serviceName)
}

// SpanEnricher adds request-scoped attributes to the active span.
// It runs inside Tracing, after RequestID and Session.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if id := GetSessionID(c); id != "" {
				span.SetAttributes(attribute.String("session.id", id))
			}
		}

		c.Next()

		if id := GetJWTAdminID(c); id != "" && span.IsRecording() {
			span.SetAttributes(attribute.String("admin_id", id))
		}
	}
}

// SpanErrorMarker marks the span as failed for 4xx and 5xx responses
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		if status := c.Writer.Status(); status >= http.StatusBadRequest {
			span.SetStatus(codes.Error, http.StatusText(status))
			span.SetAttributes(attribute.Int("http.status_code", status))
		}
	}
}
