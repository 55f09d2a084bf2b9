package prometheus

import (
	"strconv"
	"time"
)

// FinanceMetrics holds every metric family StayLedger exports. It satisfies
// the observer interfaces of the currency, revenue, commission and payout
// packages.
type FinanceMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Exchange rates
	ProviderRequestsTotal   CounterVec
	ProviderRequestDuration HistogramVec
	RateCacheLookupsTotal   CounterVec
	RateFallbackTotal       CounterVec
	UnconvertedTotal        CounterVec

	// Revenue
	ReportDuration         HistogramVec
	ReportBookingsTotal    CounterVec
	ReportUnconvertedTotal CounterVec

	// Commission & payouts
	CommissionEventsTotal CounterVec
	PayoutEventsTotal     CounterVec

	// Infrastructure
	DBQueryDuration   HistogramVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultProviderDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 15}
	DefaultReportDurationBuckets   = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewFinanceMetrics registers all families on collector.
func NewFinanceMetrics(collector MetricsCollector) *FinanceMetrics {
	m := &FinanceMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.ProviderRequestsTotal = collector.RegisterCounter("fx_provider_requests_total", "Exchange rate provider calls", "provider", "outcome")
	m.ProviderRequestDuration = collector.RegisterHistogram("fx_provider_request_duration_seconds", "Exchange rate provider latency", DefaultProviderDurationBuckets, "provider")
	m.RateCacheLookupsTotal = collector.RegisterCounter("fx_cache_lookups_total", "Rate cache lookups", "result")
	m.RateFallbackTotal = collector.RegisterCounter("fx_fallback_total", "Snapshots served from the static fallback table", "base")
	m.UnconvertedTotal = collector.RegisterCounter("fx_unconverted_total", "Amounts left unconverted", "from", "to")

	m.ReportDuration = collector.RegisterHistogram("revenue_report_duration_seconds", "Revenue report build time", DefaultReportDurationBuckets)
	m.ReportBookingsTotal = collector.RegisterCounter("revenue_report_bookings_total", "Bookings considered by revenue reports")
	m.ReportUnconvertedTotal = collector.RegisterCounter("revenue_report_unconverted_total", "Bookings reported in original currency")

	m.CommissionEventsTotal = collector.RegisterCounter("commission_events_total", "Commission record lifecycle events", "event")
	m.PayoutEventsTotal = collector.RegisterCounter("payout_events_total", "Payout request lifecycle events", "status")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// ObserveProvider records one provider call.
func (m *FinanceMetrics) ObserveProvider(provider, outcome string, seconds float64) {
	m.ProviderRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.ProviderRequestDuration.WithLabelValues(provider).Observe(seconds)
}

func (m *FinanceMetrics) ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RateCacheLookupsTotal.WithLabelValues(result).Inc()
}

func (m *FinanceMetrics) ObserveFallback(base string) {
	m.RateFallbackTotal.WithLabelValues(base).Inc()
}

func (m *FinanceMetrics) ObserveUnconverted(from, to string) {
	m.UnconvertedTotal.WithLabelValues(from, to).Inc()
}

// ObserveReport records one aggregation run.
func (m *FinanceMetrics) ObserveReport(seconds float64, bookings, unconverted int) {
	m.ReportDuration.WithLabelValues().Observe(seconds)
	m.ReportBookingsTotal.WithLabelValues().Add(float64(bookings))
	m.ReportUnconvertedTotal.WithLabelValues().Add(float64(unconverted))
}

func (m *FinanceMetrics) ObserveCommission(event string) {
	m.CommissionEventsTotal.WithLabelValues(event).Inc()
}

func (m *FinanceMetrics) ObservePayout(status string) {
	m.PayoutEventsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a finished HTTP request.
func (m *FinanceMetrics) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDBQuery records a repository round trip.
func (m *FinanceMetrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.ErrorsTotal.WithLabelValues("database", operation).Inc()
	}
}

// SetHealth records a component's health as 1 or 0.
func (m *FinanceMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

//Personal.AI order the ending
