package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/health", "/health"},
		{"/metrics/", "/metrics"},
		{"/api/v1/quotes", "/api/v1/quotes"},
		{"/api/v1/history", "/api/v1/history"},
		{"/api/stocks/AAPL", "/api/stocks/{symbol}"},
		{"/api/stocks/clear-all", "/api/stocks/clear-all"},
		{"/api/yahoo/MSFT", "/api/yahoo/{symbol}"},
		{"/swagger/index.html", "/swagger/*"},
		{"/api/v1/other", "/api/v1/*"},
		{"/api/other", "/api/*"},
		{"/random", "/unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestHTTPMetricsMiddleware_RecordsStatus(t *testing.T) {
	handler := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/stocks/{symbol}", "418"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stocks/TSLA", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/stocks/{symbol}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordSnapshotOperation(t *testing.T) {
	before := testutil.ToFloat64(SnapshotOperationsTotal.WithLabelValues("memory", "replace", "error"))
	RecordSnapshotOperation("memory", "replace", assert.AnError)
	assert.Equal(t, before+1, testutil.ToFloat64(SnapshotOperationsTotal.WithLabelValues("memory", "replace", "error")))
}
