package ctxutil

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Context keys. These are plain strings, not a private key type, because
// pkg/logger.WithTraceContext reads them back with the same literal keys
// and the two packages must agree on the wire format.
const (
	TraceIDKey  = "trace_id"
	ClientIPKey = "client_ip"
)

// WithTraceInfo copies the traceID and clientIP fiber already extracted
// into locals onto a plain context.Context, so code below the HTTP layer
// (the orchestrator, telemetry) can log with the same trace correlation
// without taking a fiber dependency.
func WithTraceInfo(ctx context.Context, c *fiber.Ctx) context.Context {
	if traceID, ok := c.Locals(TraceIDKey).(string); ok && traceID != "" {
		ctx = context.WithValue(ctx, TraceIDKey, traceID)
	}

	if clientIP, ok := c.Locals(ClientIPKey).(string); ok && clientIP != "" {
		ctx = context.WithValue(ctx, ClientIPKey, clientIP)
	}

	return ctx
}

// GetTraceID extracts traceID from context.
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// GetClientIP extracts clientIP from context.
func GetClientIP(ctx context.Context) string {
	if clientIP, ok := ctx.Value(ClientIPKey).(string); ok {
		return clientIP
	}
	return ""
}
