package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/StayLedger/internal/application/payout"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// maxReceiptBytes caps uploaded receipt files.
const maxReceiptBytes = 10 << 20

// PayoutService is the payout use-case surface.
type PayoutService interface {
	Balance(ctx context.Context, managerID string) (*domainPayout.Balance, error)
	List(ctx context.Context, managerID, status string) ([]*domainPayout.Request, error)
	Request(ctx context.Context, in *payout.RequestInput) (*domainPayout.Request, error)
	Approve(ctx context.Context, in *payout.TransitionInput) (*domainPayout.Request, error)
	Reject(ctx context.Context, in *payout.RejectInput) (*domainPayout.Request, error)
	Pay(ctx context.Context, in *payout.PayInput) (*payout.PayResult, error)
	UploadReceipt(ctx context.Context, payoutID, filename string, r io.Reader, size int64, contentType string) (string, error)
	ReceiptURL(ctx context.Context, ref string) (string, error)
}

// PayoutHandler serves balances, payout requests and receipts.
type PayoutHandler struct {
	svc    PayoutService
	logger logging.Logger
}

func NewPayoutHandler(svc PayoutService, logger logging.Logger) *PayoutHandler {
	return &PayoutHandler{svc: svc, logger: logger}
}

// CreatePayoutRequest is the body of POST /api/v1/payouts.
type CreatePayoutRequest struct {
	ManagerID string `json:"manager_id"`
	Amount    string `json:"amount"`
	Note      string `json:"note"`
}

// RejectPayoutRequest is the body of POST /api/v1/payouts/{id}/reject.
type RejectPayoutRequest struct {
	Reason string `json:"reason"`
}

// PayPayoutRequest is the body of POST /api/v1/payouts/{id}/pay.
type PayPayoutRequest struct {
	ReceiptRef string `json:"receipt_ref"`
}

// Balance handles GET /api/v1/managers/{managerID}/balance.
func (h *PayoutHandler) Balance(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Balance(r.Context(), chi.URLParam(r, "managerID"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, b)
}

// List handles GET /api/v1/managers/{managerID}/payouts?status=.
func (h *PayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context(), chi.URLParam(r, "managerID"), r.URL.Query().Get("status"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	if out == nil {
		out = []*domainPayout.Request{}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/v1/payouts.
func (h *PayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreatePayoutRequest
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	req, err := h.svc.Request(r.Context(), &payout.RequestInput{
		ManagerID: body.ManagerID,
		Amount:    body.Amount,
		Note:      body.Note,
		UserID:    actorFrom(r),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, req)
}

// Approve handles POST /api/v1/payouts/{id}/approve.
func (h *PayoutHandler) Approve(w http.ResponseWriter, r *http.Request) {
	req, err := h.svc.Approve(r.Context(), &payout.TransitionInput{PayoutID: chi.URLParam(r, "id"), UserID: actorFrom(r)})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, req)
}

// Reject handles POST /api/v1/payouts/{id}/reject.
func (h *PayoutHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var body RejectPayoutRequest
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	req, err := h.svc.Reject(r.Context(), &payout.RejectInput{
		PayoutID: chi.URLParam(r, "id"),
		Reason:   body.Reason,
		UserID:   actorFrom(r),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, req)
}

// Pay handles POST /api/v1/payouts/{id}/pay.
func (h *PayoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	var body PayPayoutRequest
	if err := decodeJSON(r, &body); err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	res, err := h.svc.Pay(r.Context(), &payout.PayInput{
		PayoutID:   chi.URLParam(r, "id"),
		ReceiptRef: body.ReceiptRef,
		UserID:     actorFrom(r),
	})
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// UploadReceipt handles POST /api/v1/payouts/{id}/receipt as multipart
// form data with the file in the "receipt" field.
func (h *PayoutHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes)
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeAppError(w, r, h.logger, errors.NewValidation("receipt file is required").WithDetail(err.Error()))
		return
	}
	defer file.Close()

	ref, err := h.svc.UploadReceipt(r.Context(), chi.URLParam(r, "id"), header.Filename, file, header.Size,
		header.Header.Get("Content-Type"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, map[string]string{"receipt_ref": ref})
}

// ReceiptURL handles GET /api/v1/receipts?ref=.
func (h *PayoutHandler) ReceiptURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.ReceiptURL(r.Context(), r.URL.Query().Get("ref"))
	if err != nil {
		writeAppError(w, r, h.logger, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"url": url})
}

//Personal.AI order the ending
