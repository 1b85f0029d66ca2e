package context

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestID_EchoContextRoundTrip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	SetRequestID(c, "req-123")

	assert.Equal(t, "req-123", GetRequestID(c))
}

func TestRequestID_GeneratedWhenAbsent(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.NotEmpty(t, GetRequestID(c))
}

func TestGetLoggerOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
	scoped := fallback.With(slog.String("request_id", "req-123"))

	ctx := WithLogger(context.Background(), scoped)

	assert.Same(t, scoped, GetLoggerOrDefault(ctx, fallback))
	assert.Same(t, fallback, GetLoggerOrDefault(context.Background(), fallback))
}
