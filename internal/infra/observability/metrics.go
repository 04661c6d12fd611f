package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	externalErrors  *prometheus.CounterVec
	cacheHits       *prometheus.CounterVec
	cacheMisses     *prometheus.CounterVec
	lookupsTotal    *prometheus.CounterVec
	paymentsTotal   *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
	approvedAmount  prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		lookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_lookups_total",
				Help: "CPF lookups processed, by outcome.",
			},
			[]string{"outcome"},
		),
		paymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_payments_total",
				Help: "PIX charge creations, by outcome.",
			},
			[]string{"outcome"},
		),
		webhookEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_webhook_events_total",
				Help: "Webhook deliveries processed, by event kind.",
			},
			[]string{"event"},
		),
		approvedAmount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_approved_amount_total",
				Help: "Sum of approved payment amounts.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrLookup increments the lookup counter with an outcome label
// (success, no_data, invalid, error).
func (m *Metrics) IncrLookup(outcome string) {
	m.lookupsTotal.WithLabelValues(outcome).Inc()
}

// IncrPayment increments the payment creation counter (success, error).
func (m *Metrics) IncrPayment(outcome string) {
	m.paymentsTotal.WithLabelValues(outcome).Inc()
}

// IncrWebhookEvent increments the webhook event counter by kind.
func (m *Metrics) IncrWebhookEvent(event string) {
	m.webhookEvents.WithLabelValues(event).Inc()
}

// AddApprovedAmount adds an approved payment amount to the running total.
func (m *Metrics) AddApprovedAmount(amount float64) {
	m.approvedAmount.Add(amount)
}

// Snapshot is a point-in-time view of the gateway counters, served on the
// operator stats endpoint.
type Snapshot struct {
	LookupsSuccess  float64 `json:"lookups_success"`
	LookupsNoData   float64 `json:"lookups_no_data"`
	LookupsInvalid  float64 `json:"lookups_invalid"`
	LookupsError    float64 `json:"lookups_error"`
	PaymentsCreated float64 `json:"payments_created"`
	PaymentsFailed  float64 `json:"payments_failed"`
	WebhookApproved float64 `json:"webhook_approved"`
	WebhookUnknown  float64 `json:"webhook_unknown"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
}

// GetSnapshot gathers current counter values.
// Note: Prometheus counters expose cumulative values.
func (m *Metrics) GetSnapshot() Snapshot {
	hits := getCounterValue(m.cacheHits, "lookup")
	misses := getCounterValue(m.cacheMisses, "lookup")

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return Snapshot{
		LookupsSuccess:  getCounterValue(m.lookupsTotal, "success"),
		LookupsNoData:   getCounterValue(m.lookupsTotal, "no_data"),
		LookupsInvalid:  getCounterValue(m.lookupsTotal, "invalid"),
		LookupsError:    getCounterValue(m.lookupsTotal, "error"),
		PaymentsCreated: getCounterValue(m.paymentsTotal, "success"),
		PaymentsFailed:  getCounterValue(m.paymentsTotal, "error"),
		WebhookApproved: getCounterValue(m.webhookEvents, "approved"),
		WebhookUnknown:  getCounterValue(m.webhookEvents, "unknown"),
		CacheHitRate:    hitRate,
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
