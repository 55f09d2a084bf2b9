package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/StayLedger/internal/application/reservation"
	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// ReservationService creates reservations.
type ReservationService interface {
	Create(ctx context.Context, in *reservation.CreateInput) (*booking.RawBooking, error)
}

type ReservationHandler struct {
	svc    ReservationService
	logger logging.Logger
}

func NewReservationHandler(svc ReservationService, logger logging.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, logger: logger}
}

// Create handles POST /api/v1/reservations. The organisation comes from the
// request scope when the body leaves it empty.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in reservation.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if in.OrgID == "" {
		in.OrgID = orgFrom(r)
	}
	b, err := h.svc.Create(r.Context(), &in)
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, b)
}

//Personal.AI order the ending
