package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("department", "IV Room"),
		attribute.String("batch_id", "2f1c"),
		attribute.String("by_name", "Sam"),
		attribute.String("to_status", "closed"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("department"), attrs[0].Key)
	assert.Equal(t, attribute.Key("to_status"), attrs[1].Key)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequestsSubmitted(context.Background(), "IV Room", 3)
	m.RecordImport(context.Background(), 1, 1)
	m.RecordUnlock(context.Background(), true)
}

func TestNewOnNoopProvider(t *testing.T) {
	m, err := New(Config{}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordStatusChange(context.Background(), "closed", 2)
	m.RecordComment(context.Background(), "manager")
}

func TestHTTPMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/api/requests/:id/comments", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/requests/1/comments", "/api/requests/2/comments"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/requests/:id/comments", "200"))
	assert.Equal(t, float64(2), got)
}
