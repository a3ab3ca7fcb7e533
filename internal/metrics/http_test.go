package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMiddlewarePatternLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := HTTPMiddleware(mux)

	counter, err := HTTPRequestsTotal.GetMetricWithLabelValues("GET", "GET /api/v1/events/{id}", "200")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	before := testutil.ToFloat64(counter)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/01HZXF8K2M3N4P5Q6R7S8T9V0W", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// The label is the matched pattern, not the raw event URL.
	if after := testutil.ToFloat64(counter); after != before+1 {
		t.Fatalf("expected pattern-labelled counter to increment, before=%v after=%v", before, after)
	}
}

func TestHTTPMiddlewareFallsBackToRawPath(t *testing.T) {
	handler := HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/no-pattern", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	counter, err := HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/no-pattern", "404")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if testutil.ToFloat64(counter) == 0 {
		t.Fatal("expected raw-path counter to be recorded")
	}
}
