package currency

import (
	"context"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// Unconverted reasons.
const (
	ReasonRatesUnavailable = "rates_unavailable"
	ReasonMissingRate      = "missing_rate"
)

// Conversion is the tagged outcome of a conversion. When Converted is false
// Amount and Currency still hold the original values and Reason says why.
type Conversion struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Converted        bool            `json:"converted"`
	Reason           string          `json:"reason,omitempty"`
	Original         decimal.Decimal `json:"original"`
	OriginalCurrency string          `json:"original_currency"`
}

// Converter converts amounts between currencies using snapshots from a
// RateSource. Results carry full precision; call Round at presentation.
type Converter struct {
	rates   RateSource
	base    string
	logger  logging.Logger
	metrics Metrics
}

// NewConverter builds a Converter. base is the system base currency.
func NewConverter(rates RateSource, base string, logger logging.Logger, metrics Metrics) *Converter {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Converter{rates: rates, base: NormalizeCode(base), logger: logger.Named("converter"), metrics: metrics}
}

// Base returns the system base currency.
func (c *Converter) Base() string { return c.base }

// Convert converts amount from one currency to another.
//
// Conversions into the system base use the base-currency snapshot and divide
// by rates[from]; every other pair uses the from-currency snapshot and
// multiplies by rates[to].
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) Conversion {
	from, to = NormalizeCode(from), NormalizeCode(to)
	if from == to {
		return Conversion{Amount: amount, Currency: to, Converted: true, Original: amount, OriginalCurrency: from}
	}

	inverse := to == c.base
	snapBase, key := from, to
	if inverse {
		snapBase, key = to, from
	}

	snap, err := c.rates.Rates(ctx, snapBase)
	if err != nil {
		return c.unconverted(amount, from, to, ReasonRatesUnavailable, err)
	}
	rate, ok := snap.Rate(key)
	if !ok {
		return c.unconverted(amount, from, to, ReasonMissingRate, nil)
	}

	var out decimal.Decimal
	if inverse {
		out = amount.Div(rate)
	} else {
		out = amount.Mul(rate)
	}
	return Conversion{Amount: out, Currency: to, Converted: true, Original: amount, OriginalCurrency: from}
}

// ToBase converts amount into the system base currency.
func (c *Converter) ToBase(ctx context.Context, amount decimal.Decimal, from string) Conversion {
	return c.Convert(ctx, amount, from, c.base)
}

func (c *Converter) unconverted(amount decimal.Decimal, from, to, reason string, err error) Conversion {
	fields := []logging.Field{
		logging.Currency("from", from),
		logging.Currency("to", to),
		logging.Decimal("amount", amount),
		logging.String("reason", reason),
	}
	if err != nil {
		fields = append(fields, logging.Err(err))
	}
	c.logger.Warn("amount left unconverted", fields...)
	c.metrics.ObserveUnconverted(from, to)
	return Conversion{
		Amount:           amount,
		Currency:         from,
		Converted:        false,
		Reason:           reason,
		Original:         amount,
		OriginalCurrency: from,
	}
}

// MinorUnits returns the number of decimal places used by code: 0 for
// currencies without minor units, 2 when the code is unknown.
func MinorUnits(code string) int32 {
	if cur := money.GetCurrency(NormalizeCode(code)); cur != nil {
		return int32(cur.Fraction)
	}
	return 2
}

// Round rounds amount to the minor-unit precision of code.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorUnits(code))
}

//Personal.AI order the ending
