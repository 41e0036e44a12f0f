package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scouthub"

// Prom holds every collector the API and the retention worker export.
type Prom struct {
	// HTTP
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         prometheus.Gauge

	// Store backends, op is "<collection>.<verb>"
	StoreOpDuration  *prometheus.HistogramVec
	StoreErrorsTotal *prometheus.CounterVec

	// Registrations by outcome: created, invalid, error
	RegistrationsIn *prometheus.CounterVec

	// Retention worker
	SweepDuration  *prometheus.HistogramVec
	ExpiredDeleted prometheus.Counter
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route template and status.",
		}, []string{"method", "route", "status"}),

		RequestsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route", "status"}),

		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "http", Name: "in_flight_requests",
			Help: "Requests currently being served.",
		}),

		StoreOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "store", Name: "op_duration_seconds",
			Help:    "Logical store operation latency.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"op", "status"}),

		StoreErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "store", Name: "errors_total",
			Help: "Store errors by op and class.",
		}, []string{"op", "class"}),

		RegistrationsIn: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),

		SweepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "retention", Name: "sweep_duration_seconds",
			Help:    "Retention sweep duration by result (ok, error).",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"result"}),

		ExpiredDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "retention", Name: "deleted_total",
			Help: "Registrations removed after their expiry date.",
		}),
	}

	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.StoreOpDuration, p.StoreErrorsTotal,
		p.RegistrationsIn,
		p.SweepDuration, p.ExpiredDeleted,
	)

	return p
}

// GinHandleMiddleware records request count and latency labelled by route template,
// so /players/abc and /players/def do not create separate series.
func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		p.InFlight.Inc()

		defer func() {
			p.InFlight.Dec()

			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}

			labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}
			p.RequestsTotal.WithLabelValues(labels...).Inc()
			p.RequestsDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		}()

		c.Next()
	}
}
