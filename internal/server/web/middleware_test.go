package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
)

type entry struct {
	level string
	msg   string
	args  []any
}

type memLogger struct {
	mu      *sync.Mutex
	entries *[]entry
	with    []any
}

func newMemLogger() *memLogger {
	return &memLogger{mu: &sync.Mutex{}, entries: &[]entry{}}
}

func (m *memLogger) add(level, msg string, args []any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.entries = append(*m.entries, entry{level: level, msg: msg, args: append(append([]any{}, m.with...), args...)})
}

func (m *memLogger) Debug(_ context.Context, msg string, args ...any) { m.add("debug", msg, args) }
func (m *memLogger) Info(_ context.Context, msg string, args ...any)  { m.add("info", msg, args) }
func (m *memLogger) Warn(_ context.Context, msg string, args ...any)  { m.add("warn", msg, args) }
func (m *memLogger) Error(_ context.Context, msg string, args ...any) { m.add("error", msg, args) }
func (m *memLogger) With(args ...any) logging.Logger {
	return &memLogger{mu: m.mu, entries: m.entries, with: append(append([]any{}, m.with...), args...)}
}

func (m *memLogger) find(msg string) []entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entry
	for _, e := range *m.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func argValue(args []any, key string) any {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == key {
			return args[i+1]
		}
	}
	return nil
}

func newMiddlewareApp(l logging.Logger) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler(l)})
	app.Use(requestID(), accessLog(l))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString(RequestID(c)) })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("secret failure") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	return app
}

func TestRequestID_Generated(t *testing.T) {
	app := newMiddlewareApp(logging.Nop{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)

	id := resp.Header.Get(common.RequestIDHeader)
	_, perr := uuid.Parse(id)
	assert.NoError(t, perr)
}

func TestRequestID_Reused(t *testing.T) {
	app := newMiddlewareApp(logging.Nop{})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(common.RequestIDHeader, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(common.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(common.RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, strings.Repeat("x", maxRequestIDLen+1), resp.Header.Get(common.RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	l := newMemLogger()
	app := newMiddlewareApp(l)

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(common.RequestIDHeader, "rid-1")
	_, err := app.Test(req, -1)
	require.NoError(t, err)

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil), -1)
	require.NoError(t, err)

	logs := l.find("request")
	require.Len(t, logs, 2)
	assert.Equal(t, "info", logs[0].level)
	assert.Equal(t, "/ok", argValue(logs[0].args, "path"))
	assert.Equal(t, fiber.StatusOK, argValue(logs[0].args, "status"))
	assert.Equal(t, "rid-1", argValue(logs[0].args, "request_id"))
	assert.Equal(t, fiber.StatusTeapot, argValue(logs[1].args, "status"))
}

func TestErrorHandler(t *testing.T) {
	l := newMemLogger()
	app := newMiddlewareApp(l)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, fiber.MIMETextPlainCharsetUTF8, resp.Header.Get("Content-Type"))

	errs := l.find("unhandled error")
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0].level)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Len(t, l.find("unhandled error"), 1, "fiber errors are not logged as failures")
}

func TestHandlers_LogLevels(t *testing.T) {
	l := newMemLogger()
	svc := &fakeProfiles{err: errors.New("db down")}
	h := NewHandlers(svc, nil, nil, l)
	app := NewApp(h, defaultRouterConfig(), l)

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile?id=bad", nil), -1)
	require.NoError(t, err)
	rejected := l.find("rejected input")
	require.Len(t, rejected, 1)
	assert.Equal(t, "debug", rejected[0].level)
	assert.Equal(t, "web", argValue(rejected[0].args, "module"))

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/profile?id=0123456789abcdef01234567", nil), -1)
	require.NoError(t, err)
	failed := l.find("error loading profile")
	require.Len(t, failed, 1)
	assert.Equal(t, "error", failed[0].level)
	assert.NotEmpty(t, argValue(failed[0].args, "request_id"))
}
