package ctxutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestWithTraceInfo_CopiesLocalsOntoContext(t *testing.T) {
	app := fiber.New()
	req := httptest.NewRequest("GET", "/", nil)

	var gotTraceID, gotClientIP string
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(TraceIDKey, "trace-123")
		c.Locals(ClientIPKey, "10.0.0.1")

		ctx := WithTraceInfo(context.Background(), c)
		gotTraceID = GetTraceID(ctx)
		gotClientIP = GetClientIP(ctx)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, "trace-123", gotTraceID)
	assert.Equal(t, "10.0.0.1", gotClientIP)
}

func TestWithTraceInfo_SkipsEmptyLocals(t *testing.T) {
	app := fiber.New()
	req := httptest.NewRequest("GET", "/", nil)

	var ctx context.Context
	app.Get("/", func(c *fiber.Ctx) error {
		ctx = WithTraceInfo(context.Background(), c)
		return c.SendStatus(fiber.StatusOK)
	})

	_, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, "", GetTraceID(ctx))
	assert.Equal(t, "", GetClientIP(ctx))
}

func TestGetTraceID_UsesPlainStringKey(t *testing.T) {
	// pkg/logger.WithTraceContext reads ctx.Value("trace_id") directly;
	// this constant must stay a plain string, not a distinct key type,
	// or the two packages silently stop agreeing on the wire format.
	ctx := context.WithValue(context.Background(), "trace_id", "abc")
	assert.Equal(t, "abc", GetTraceID(ctx))
}

func TestGetClientIP_MissingReturnsEmpty(t *testing.T) {
	assert.Equal(t, "", GetClientIP(context.Background()))
}
