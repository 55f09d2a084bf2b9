package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/turtacn/StayLedger/internal/application/revenue"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// RevenueService builds revenue summaries.
type RevenueService interface {
	Summary(ctx context.Context, in *revenue.SummaryInput) (*domainRevenue.Report, error)
}

// RevenueHandler serves revenue reports.
type RevenueHandler struct {
	svc    RevenueService
	logger logging.Logger
}

func NewRevenueHandler(svc RevenueService, logger logging.Logger) *RevenueHandler {
	return &RevenueHandler{svc: svc, logger: logger}
}

// Summary handles GET /api/v1/revenue/summary.
func (h *RevenueHandler) Summary(w http.ResponseWriter, r *http.Request) {
	in, err := summaryInputFrom(r)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	report, err := h.svc.Summary(r.Context(), in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, report)
}

func summaryInputFrom(r *http.Request) (*revenue.SummaryInput, error) {
	q := r.URL.Query()
	in := &revenue.SummaryInput{
		OrgID:         orgFrom(r),
		PropertyID:    q.Get("property_id"),
		Department:    q.Get("department"),
		CostCenter:    q.Get("cost_center"),
		BusinessUnit:  q.Get("business_unit"),
		Status:        q.Get("status"),
		Type:          q.Get("type"),
		Category:      q.Get("category"),
		ChannelSource: q.Get("channel_source"),
		RevenueStream: q.Get("revenue_stream"),
		Tags:          splitList(q["tags"]),
	}
	if v := q.Get("fiscal_year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.InvalidParam("fiscal_year must be a year").WithDetail(v)
		}
		in.FiscalYear = year
	}
	var err error
	if in.DateStart, err = parseDate("date_start", q.Get("date_start")); err != nil {
		return nil, err
	}
	if in.DateEnd, err = parseDate("date_end", q.Get("date_end")); err != nil {
		return nil, err
	}
	return in, nil
}

//Personal.AI order the ending
