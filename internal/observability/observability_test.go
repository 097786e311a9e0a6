package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/fuellog/internal/actorctx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestLogger_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.InfoContext(ctx, "hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "fuellog", line["service"])
	assert.Equal(t, traceID.String(), line["trace_id"])
	assert.Equal(t, spanID.String(), line["span_id"])
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, "prod").Debug("hidden")
	assert.Zero(t, buf.Len())

	newLogger(&buf, "dev").Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestProm_DomainCounters(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveNotification("record_approved", "sent")
	p.ObserveNotification("record_approved", "sent")
	p.ObserveLogin("invalid")
	p.ObserveSubmission("dropped")
	p.ObserveReportCache(true)
	p.ObserveReportCache(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.Notifications.WithLabelValues("record_approved", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.LoginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.RecordsSubmitted.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ReportCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.ReportCache.WithLabelValues("miss")))
}

func TestProm_GinMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/admin/records/:id/photos/:kind", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/records/record-1/photos/pump", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/admin/records/:id/photos/:kind", "204")))
}

func TestLogger_AddsActor(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.InfoContext(actorctx.With(context.Background(), actorctx.Actor{UserID: "4", Role: "admin"}), "x")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "4", line["actor_id"])
}
