// Package currency owns exchange-rate snapshots, the rate cache contract, the
// provider chain with its static fallback and the currency converter.
package currency

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is an immutable set of rates relative to Base, where
// Rates[Base] == 1 always holds. Snapshots are replaced wholesale.
type Snapshot struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Source    string                     `json:"source"`
}

// NewSnapshot normalises codes to upper case, drops non-positive rates and
// pins the base rate to 1.
func NewSnapshot(base string, rates map[string]decimal.Decimal, fetchedAt time.Time, source string) *Snapshot {
	base = NormalizeCode(base)
	out := make(map[string]decimal.Decimal, len(rates)+1)
	for code, r := range rates {
		if !r.IsPositive() {
			continue
		}
		out[NormalizeCode(code)] = r
	}
	out[base] = decimal.NewFromInt(1)
	return &Snapshot{Base: base, Rates: out, FetchedAt: fetchedAt.UTC(), Source: source}
}

// Rate returns the rate for code. A missing key means "cannot convert".
func (s *Snapshot) Rate(code string) (decimal.Decimal, bool) {
	if s == nil {
		return decimal.Zero, false
	}
	r, ok := s.Rates[NormalizeCode(code)]
	return r, ok
}

// Fresh reports whether the snapshot is younger than ttl at now.
func (s *Snapshot) Fresh(now time.Time, ttl time.Duration) bool {
	return s != nil && now.Sub(s.FetchedAt) < ttl
}

// Missing returns the codes from required that have no rate, sorted.
func (s *Snapshot) Missing(required []string) []string {
	var missing []string
	for _, code := range required {
		if _, ok := s.Rate(code); !ok {
			missing = append(missing, NormalizeCode(code))
		}
	}
	sort.Strings(missing)
	return missing
}

// Codes returns the currency codes present in the snapshot, sorted.
func (s *Snapshot) Codes() []string {
	codes := make([]string, 0, len(s.Rates))
	for c := range s.Rates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// NormalizeCode upper-cases and trims an ISO 4217 code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

//Personal.AI order the ending
