package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/application/payout"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

func newPayoutHandler() (*PayoutHandler, *mockPayoutService) {
	svc := new(mockPayoutService)
	return NewPayoutHandler(svc, logging.NewNopLogger()), svc
}

func TestPayoutBalance(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("Balance", mock.Anything, "m-1").
		Return(&domainPayout.Balance{ManagerID: "m-1", Currency: "USD", CurrentBalance: decimal.RequireFromString("1700")}, nil)

	rr, env := serve(t, http.MethodGet, "/api/v1/managers/{managerID}/balance", "/api/v1/managers/m-1/balance",
		h.Balance, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"1700"`, string(mustJSONField(t, env.Data, "current_balance")))
}

func TestPayoutList_EmptyIsArray(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("List", mock.Anything, "m-1", "paid").Return(nil, nil)

	rr, env := serve(t, http.MethodGet, "/m/{managerID}/payouts", "/m/m-1/payouts?status=paid", h.List, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestPayoutCreate(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("Request", mock.Anything, &payout.RequestInput{ManagerID: "m-1", Amount: "300.00", Note: "june", UserID: "ops-1"}).
		Return(&domainPayout.Request{ID: "po-1", Status: domainPayout.StatusPending}, nil)

	body := mustJSON(t, CreatePayoutRequest{ManagerID: "m-1", Amount: "300.00", Note: "june"})
	rr, env := serve(t, http.MethodPost, "/api/v1/payouts", "/api/v1/payouts", h.Create, body, operator)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `"pending"`, string(mustJSONField(t, env.Data, "status")))
}

func TestPayoutCreate_InsufficientBalance(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("Request", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeInsufficientBalance, "requested 1800 exceeds balance 1700"))

	body := mustJSON(t, CreatePayoutRequest{ManagerID: "m-1", Amount: "1800"})
	rr, env := serve(t, http.MethodPost, "/p", "/p", h.Create, body, operator)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "PAY_002", env.Error.Code)
}

func TestPayoutCreate_RejectsUnknownFields(t *testing.T) {
	h, _ := newPayoutHandler()
	rr, env := serve(t, http.MethodPost, "/p", "/p", h.Create, []byte(`{"manager_id":"m-1","amount":"1","bonus":true}`), operator)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "COMMON_010", env.Error.Code)
}

func TestPayoutTransitions(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("Approve", mock.Anything, &payout.TransitionInput{PayoutID: "po-1", UserID: "ops-1"}).
		Return(&domainPayout.Request{ID: "po-1", Status: domainPayout.StatusApproved}, nil)
	svc.On("Reject", mock.Anything, &payout.RejectInput{PayoutID: "po-2", Reason: "duplicate", UserID: "ops-1"}).
		Return(&domainPayout.Request{ID: "po-2", Status: domainPayout.StatusRejected}, nil)
	svc.On("Pay", mock.Anything, &payout.PayInput{PayoutID: "po-3", ReceiptRef: "receipts/po-3/t.pdf", UserID: "ops-1"}).
		Return(nil, errors.New(errors.ErrCodeReceiptMissing, "receipt not found in storage"))

	rr, _ := serve(t, http.MethodPost, "/api/v1/payouts/{id}/approve", "/api/v1/payouts/po-1/approve", h.Approve, nil, operator)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = serve(t, http.MethodPost, "/api/v1/payouts/{id}/reject", "/api/v1/payouts/po-2/reject", h.Reject,
		mustJSON(t, RejectPayoutRequest{Reason: "duplicate"}), operator)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, env := serve(t, http.MethodPost, "/api/v1/payouts/{id}/pay", "/api/v1/payouts/po-3/pay", h.Pay,
		mustJSON(t, PayPayoutRequest{ReceiptRef: "receipts/po-3/t.pdf"}), operator)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "PAY_005", env.Error.Code)
	svc.AssertExpectations(t)
}

func TestUploadReceipt(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("UploadReceipt", mock.Anything, "po-1", "transfer.pdf", "%PDF-1.4", int64(8), "application/octet-stream").
		Return("receipts/po-1/transfer.pdf", nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("receipt", "transfer.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4"))
	require.NoError(t, mw.Close())

	r := chi.NewRouter()
	r.Post("/api/v1/payouts/{id}/receipt", h.UploadReceipt)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payouts/po-1/receipt", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"receipt_ref":"receipts/po-1/transfer.pdf"`)
	svc.AssertExpectations(t)
}

func TestUploadReceipt_MissingFile(t *testing.T) {
	h, _ := newPayoutHandler()
	rr, env := serve(t, http.MethodPost, "/p/{id}/receipt", "/p/po-1/receipt", h.UploadReceipt, []byte("x"), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "COMMON_010", env.Error.Code)
}

func TestReceiptURL(t *testing.T) {
	h, svc := newPayoutHandler()
	svc.On("ReceiptURL", mock.Anything, "receipts/po-1/transfer.pdf").Return("https://minio.local/signed", nil)

	rr, env := serve(t, http.MethodGet, "/api/v1/receipts", "/api/v1/receipts?ref=receipts/po-1/transfer.pdf",
		h.ReceiptURL, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"https://minio.local/signed"`, string(mustJSONField(t, env.Data, "url")))
}

//Personal.AI order the ending
