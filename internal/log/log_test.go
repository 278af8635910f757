package log

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Level:     slog.LevelDebug,
		Format:    "text",
		Component: component,
		Output:    buf,
	})
}

func TestLogger_Component(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentExpense)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "component=expense")

	buf.Reset()
	child := logger.WithComponent(ComponentStorage)
	child.Info("child")
	out := buf.String()
	assert.Equal(t, ComponentStorage, child.Component())
	assert.Contains(t, out, "component=storage")
	assert.Equal(t, 1, strings.Count(out, "component="))
}

func TestNewHandler_Formats(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Format: "json", Output: &buf}).Info("json line")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))

	buf.Reset()
	New(Config{Format: "tint", Output: &buf}).Info("tint line")
	assert.Contains(t, buf.String(), "tint line")
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithExpense(7, "Rent", decimal.RequireFromString("1200"), 1, 2).
		WithError(errors.New("boom")).
		WithError(nil).
		WithOperation(OpCreate)

	assert.Equal(t, "1200.00", fields[FieldAmount])
	assert.Equal(t, "boom", fields[FieldError])

	slice := fields.ToSlice()
	require.Len(t, slice, len(fields)*2)
	assert.Equal(t, FieldAccountID, slice[0])
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	var fromCtx *Logger
	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/expenses/9?x=1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, fromCtx)
	assert.Equal(t, ComponentHTTP, fromCtx.Component())
	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "status_code=404")
	assert.Contains(t, out, "path=/expenses/9")
}

func TestFromContext_Default(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	logger := FromContext(req.Context())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}
