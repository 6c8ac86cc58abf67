package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/naijabook/platform/pkg/logging"
)

func TestRequestLoggerEmitsCompletionLine(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"booking_reference":"BK12345678"}`))
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	chimiddleware.RequestID(handler).ServeHTTP(rec, req)

	var line struct {
		Msg        string  `json:"msg"`
		Method     string  `json:"method"`
		Path       string  `json:"path"`
		Status     float64 `json:"status"`
		Bytes      float64 `json:"bytes"`
		RequestID  string  `json:"request_id"`
		DurationMS float64 `json:"duration_ms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.Msg != "http request" {
		t.Fatalf("msg = %q", line.Msg)
	}
	if line.Method != http.MethodPost || line.Path != "/api/v1/appointments" {
		t.Fatalf("method/path = %q %q", line.Method, line.Path)
	}
	if line.Status != http.StatusCreated {
		t.Fatalf("status = %v, want 201", line.Status)
	}
	if line.Bytes == 0 {
		t.Fatal("expected a byte count for the response body")
	}
	if line.RequestID == "" {
		t.Fatal("expected the chi request id to be logged")
	}
}

func TestRequestLoggerGeneratesIDWithoutUpstreamMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, "info")

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var line struct {
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line.RequestID == "" {
		t.Fatal("expected a generated request id")
	}
}
