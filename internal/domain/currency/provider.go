package currency

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider fetches raw rates for a base currency from one external source.
// The returned map is relative to base; the service validates coverage.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, base string) (map[string]decimal.Decimal, error)
}

// Metrics receives rate and conversion observations. Implemented by the
// Prometheus adapter; NopMetrics is used when metrics are disabled.
type Metrics interface {
	ObserveProvider(provider, outcome string, seconds float64)
	ObserveCacheLookup(hit bool)
	ObserveFallback(base string)
	ObserveUnconverted(from, to string)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveProvider(string, string, float64) {}
func (NopMetrics) ObserveCacheLookup(bool)                 {}
func (NopMetrics) ObserveFallback(string)                  {}
func (NopMetrics) ObserveUnconverted(string, string)       {}

// Provider outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeIncomplete = "incomplete"
)

//Personal.AI order the ending
