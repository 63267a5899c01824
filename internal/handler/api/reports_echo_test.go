package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TrendLab/internal/repository"
	"TrendLab/internal/usecase"
	applogger "TrendLab/pkg/logger"

	"github.com/labstack/echo/v4"
)

type nopMetrics struct{}

func (nopMetrics) RecordCandlesLoaded(string, int)      {}
func (nopMetrics) RecordSamplesLabeled(int, int)        {}
func (nopMetrics) RecordFoldScored(string)              {}
func (nopMetrics) RecordStageDuration(string, float64)  {}
func (nopMetrics) RecordGateDecision(string)            {}
func (nopMetrics) RecordLivePrediction(string, float64) {}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	logger, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	validator := usecase.NewValidator(
		nil, nil, nil,
		repository.NopReportSink{},
		repository.NewMemoryReportCache(),
		nopMetrics{}, logger, "USDJPY",
	)
	h := NewReportsEchoHandler(logger, validator, nil)

	e := echo.New()
	h.RegisterRoutes(e)
	return e
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(newTestServer(t), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestEndpointsBeforeFirstRun(t *testing.T) {
	e := newTestServer(t)
	for _, path := range []string{
		"/api/dataset/stats",
		"/api/validation/report",
		"/api/features/latest",
		"/api/sessions",
		"/api/live/last",
	} {
		rec := get(e, path)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d, want 200 envelope", path, rec.Code)
		}
		// error payloads carry the app status inside the envelope
		if body := rec.Body.String(); !strings.Contains(body, "404") {
			t.Fatalf("%s: expected not-found payload, got %s", path, body)
		}
	}
}

func TestBadLatestFeaturesQuery(t *testing.T) {
	rec := get(newTestServer(t), "/api/features/latest?n=10000")
	if body := rec.Body.String(); !strings.Contains(body, "ERR_LTE") {
		t.Fatalf("expected validation error, got %s", body)
	}
}

func TestRateLimitKicksIn(t *testing.T) {
	e := newTestServer(t)
	limited := false
	for i := 0; i < 60; i++ {
		if get(e, "/api/sessions").Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected a 429 after exhausting the bucket")
	}
}

