package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// RateReader returns the current snapshot for a base currency.
type RateReader interface {
	Rates(ctx context.Context, base string) (*currency.Snapshot, error)
}

// AmountConverter converts between two currencies.
type AmountConverter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) currency.Conversion
}

// RatesHandler exposes exchange rates and ad hoc conversions.
type RatesHandler struct {
	rates     RateReader
	converter AmountConverter
	logger    logging.Logger
}

func NewRatesHandler(rates RateReader, converter AmountConverter, logger logging.Logger) *RatesHandler {
	return &RatesHandler{rates: rates, converter: converter, logger: logger}
}

// Get handles GET /api/v1/rates/{base}.
func (h *RatesHandler) Get(w http.ResponseWriter, r *http.Request) {
	base := currency.NormalizeCode(chi.URLParam(r, "base"))
	if len(base) != 3 {
		writeAppError(w, r, h.logger, errors.InvalidParam("base must be a 3-letter currency code").WithDetail(base))
		return
	}
	snap, err := h.rates.Rates(r.Context(), base)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, snap)
}

// Convert handles GET /api/v1/rates/convert?amount=&from=&to=. A missing
// rate is reported in the body, not as an error status.
func (h *RatesHandler) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeAppError(w, r, h.logger, errors.InvalidParam("amount must be a decimal").WithDetail(q.Get("amount")))
		return
	}
	from, to := currency.NormalizeCode(q.Get("from")), currency.NormalizeCode(q.Get("to"))
	if len(from) != 3 || len(to) != 3 {
		writeAppError(w, r, h.logger, errors.InvalidParam("from and to must be 3-letter currency codes"))
		return
	}
	conv := h.converter.Convert(r.Context(), amount, from, to)
	if conv.Converted {
		conv.Amount = currency.Round(conv.Amount, conv.Currency)
	}
	writeJSON(w, r, http.StatusOK, conv)
}

//Personal.AI order the ending
