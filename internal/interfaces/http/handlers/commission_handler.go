package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/StayLedger/internal/application/commission"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// CommissionService is the commission use-case surface.
type CommissionService interface {
	Calculate(ctx context.Context, in *commission.CalculateInput) (*domainCommission.Record, error)
	Approve(ctx context.Context, in *commission.TransitionInput) (*domainCommission.Record, error)
	Finalize(ctx context.Context, in *commission.TransitionInput) (*commission.FinalizeResult, error)
	ManagerPeriod(ctx context.Context, in *commission.PeriodInput) (*domainCommission.PeriodSummary, error)
}

// CommissionHandler serves commission calculation and lifecycle endpoints.
type CommissionHandler struct {
	svc    CommissionService
	logger logging.Logger
}

func NewCommissionHandler(svc CommissionService, logger logging.Logger) *CommissionHandler {
	return &CommissionHandler{svc: svc, logger: logger}
}

// Calculate handles POST /api/v1/commissions/{bookingID}/calculate.
func (h *CommissionHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Calculate(r.Context(), &commission.CalculateInput{
		BookingID: chi.URLParam(r, "bookingID"),
		UserID:    actorFrom(r),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// Approve handles POST /api/v1/commissions/{id}/approve.
func (h *CommissionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Approve(r.Context(), h.transition(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// Finalize handles POST /api/v1/commissions/{id}/finalize.
func (h *CommissionHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Finalize(r.Context(), h.transition(r))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *CommissionHandler) transition(r *http.Request) *commission.TransitionInput {
	return &commission.TransitionInput{CommissionID: chi.URLParam(r, "id"), UserID: actorFrom(r)}
}

// ManagerPeriod handles GET /api/v1/managers/{managerID}/commissions?start=YYYY-MM&end=YYYY-MM.
func (h *CommissionHandler) ManagerPeriod(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.svc.ManagerPeriod(r.Context(), &commission.PeriodInput{
		ManagerID:  chi.URLParam(r, "managerID"),
		Start:      q.Get("start"),
		End:        q.Get("end"),
		Properties: splitList(q["property_id"]),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}

//Personal.AI order the ending
