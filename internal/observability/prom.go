package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fuellog"

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// domain
	LoginAttempts    *prometheus.CounterVec
	RecordsSubmitted *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	ReportCache      *prometheus.CounterVec
	PhotoDecode      prometheus.Histogram
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "auth",
				Name:      "login_attempts_total",
				Help:      "Login attempts by result.",
			},
			[]string{"result"}, // result=ok|blank|invalid
		),
		RecordsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "records",
				Name:      "submitted_total",
				Help:      "Fueling record submissions by outcome.",
			},
			[]string{"outcome"}, // outcome=stored|dropped|photo_error
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "notifications",
				Name:      "total",
				Help:      "Notification attempts by kind and result.",
			},
			[]string{"kind", "result"}, // result=sent|error|skipped
		),
		ReportCache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "report",
				Name:      "cache_lookups_total",
				Help:      "Filtered report lookups by cache result.",
			},
			[]string{"result"}, // result=hit|miss
		),
		PhotoDecode: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "photos",
				Name:      "encode_duration_seconds",
				Help:      "Time spent reading and encoding both photos of a submission.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.LoginAttempts, p.RecordsSubmitted, p.Notifications, p.ReportCache, p.PhotoDecode,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}

// ObserveNotification satisfies notifications.Recorder.
func (p *Prom) ObserveNotification(kind, result string) {
	p.Notifications.WithLabelValues(kind, result).Inc()
}

func (p *Prom) ObserveLogin(result string) {
	p.LoginAttempts.WithLabelValues(result).Inc()
}

func (p *Prom) ObserveSubmission(outcome string) {
	p.RecordsSubmitted.WithLabelValues(outcome).Inc()
}

func (p *Prom) ObserveReportCache(hit bool) {
	if hit {
		p.ReportCache.WithLabelValues("hit").Inc()
		return
	}
	p.ReportCache.WithLabelValues("miss").Inc()
}

func (p *Prom) ObservePhotoEncode(d time.Duration) {
	p.PhotoDecode.Observe(d.Seconds())
}
