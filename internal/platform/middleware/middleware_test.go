package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	err := h(c)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	mw := RequestID()
	h := mw(handler)
	h(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestLogger_LogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-123")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	h := Logger(logger)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"path":"/graphql"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log line to contain %s, got %s", want, out)
		}
	}
}

func TestLogger_PlacesLoggerOnContext(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-456")

	handler := func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from handler")
		return c.NoContent(http.StatusNoContent)
	}

	h := Logger(zerolog.New(&buf))(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"message":"from handler"`) {
		t.Fatalf("expected handler log line, got %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"request_id":"req-456"`) {
		t.Errorf("expected request id on handler log line, got %s", buf.String())
	}
}

func TestLogger_WritesHandlerError(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}

	h := Logger(zerolog.New(&buf))(handler)
	if err := h(c); err != nil {
		t.Fatalf("expected error to be handled, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 written, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Errorf("expected logged status 404, got %s", buf.String())
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	handler := func(c echo.Context) error {
		panic("test panic")
	}

	err := Recovery(zerolog.New(&buf))(handler)(c)

	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", httpErr.Code)
	}
	if !strings.Contains(buf.String(), `"panic":"test panic"`) {
		t.Errorf("expected panic value in fallback log, got %s", buf.String())
	}
}

func TestRecovery_LogsThroughRequestLogger(t *testing.T) {
	var base, request bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("request_id", "req-789")

	handler := func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Int64("user_id", 12)
		})
		panic("resolver blew up")
	}

	h := Recovery(zerolog.New(&base))(Logger(zerolog.New(&request))(handler))
	if err := h(c); err == nil {
		t.Fatal("expected error from recovered panic")
	}

	out := request.String()
	if !strings.Contains(out, `"message":"panic recovered"`) {
		t.Fatalf("expected panic on the request logger, got %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-789"`) || !strings.Contains(out, `"user_id":12`) {
		t.Errorf("expected request fields on the panic line, got %s", out)
	}
	if base.Len() != 0 {
		t.Errorf("expected fallback logger unused, got %s", base.String())
	}
}

func TestRecovery_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := Recovery(zerolog.New(&buf))(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected nothing logged, got %s", buf.String())
	}
}
