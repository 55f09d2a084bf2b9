package currency

import (
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

// FallbackSource is the Snapshot.Source value for static-table snapshots.
const FallbackSource = "static-fallback"

// FallbackTable is a static USD-based rate table used when every provider
// in the chain has failed.
type FallbackTable struct {
	anchor string
	rates  map[string]decimal.Decimal
}

// DefaultFallbackTable returns the built-in USD-anchored table.
func DefaultFallbackTable() *FallbackTable {
	return NewFallbackTable("USD", map[string]string{
		"USD": "1",
		"EUR": "0.92",
		"GBP": "0.79",
		"THB": "35.5",
		"AUD": "1.52",
		"SGD": "1.35",
		"JPY": "151.0",
		"CNY": "7.24",
		"HKD": "7.82",
		"IDR": "15800",
		"MYR": "4.72",
		"CAD": "1.36",
		"CHF": "0.90",
		"NZD": "1.66",
		"INR": "83.3",
		"VND": "25000",
		"PHP": "56.5",
		"KRW": "1350",
		"AED": "3.6725",
	})
}

// NewFallbackTable builds a table from decimal strings. Invalid entries are
// skipped.
func NewFallbackTable(anchor string, rates map[string]string) *FallbackTable {
	t := &FallbackTable{anchor: NormalizeCode(anchor), rates: make(map[string]decimal.Decimal, len(rates))}
	for code, s := range rates {
		d, err := decimal.NewFromString(s)
		if err != nil || !d.IsPositive() {
			continue
		}
		t.rates[NormalizeCode(code)] = d
	}
	t.rates[t.anchor] = decimal.NewFromInt(1)
	return t
}

// Rebase converts the table into a snapshot for base by dividing every rate
// by the table's rate for base.
func (t *FallbackTable) Rebase(base string, now time.Time) (*Snapshot, error) {
	base = NormalizeCode(base)
	pivot, ok := t.rates[base]
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedCurrency, "no fallback rate for base currency").
			WithDetail("base=" + base)
	}
	rebased := make(map[string]decimal.Decimal, len(t.rates))
	for code, r := range t.rates {
		rebased[code] = r.Div(pivot)
	}
	return NewSnapshot(base, rebased, now, FallbackSource), nil
}

//Personal.AI order the ending
