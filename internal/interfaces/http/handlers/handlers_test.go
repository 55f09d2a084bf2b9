package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/application/commission"
	"github.com/turtacn/StayLedger/internal/application/payout"
	"github.com/turtacn/StayLedger/internal/application/reservation"
	"github.com/turtacn/StayLedger/internal/application/revenue"
	"github.com/turtacn/StayLedger/internal/domain/booking"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/internal/interfaces/http/middleware"
)

// --- mocks ---

type mockRevenueService struct{ mock.Mock }

func (m *mockRevenueService) Summary(ctx context.Context, in *revenue.SummaryInput) (*domainRevenue.Report, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainRevenue.Report), args.Error(1)
}

type mockCommissionService struct{ mock.Mock }

func (m *mockCommissionService) Calculate(ctx context.Context, in *commission.CalculateInput) (*domainCommission.Record, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCommission.Record), args.Error(1)
}

func (m *mockCommissionService) Approve(ctx context.Context, in *commission.TransitionInput) (*domainCommission.Record, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCommission.Record), args.Error(1)
}

func (m *mockCommissionService) Finalize(ctx context.Context, in *commission.TransitionInput) (*commission.FinalizeResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commission.FinalizeResult), args.Error(1)
}

func (m *mockCommissionService) ManagerPeriod(ctx context.Context, in *commission.PeriodInput) (*domainCommission.PeriodSummary, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCommission.PeriodSummary), args.Error(1)
}

type mockPayoutService struct{ mock.Mock }

func (m *mockPayoutService) Balance(ctx context.Context, managerID string) (*domainPayout.Balance, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPayout.Balance), args.Error(1)
}

func (m *mockPayoutService) List(ctx context.Context, managerID, status string) ([]*domainPayout.Request, error) {
	args := m.Called(ctx, managerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domainPayout.Request), args.Error(1)
}

func (m *mockPayoutService) Request(ctx context.Context, in *payout.RequestInput) (*domainPayout.Request, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPayout.Request), args.Error(1)
}

func (m *mockPayoutService) Approve(ctx context.Context, in *payout.TransitionInput) (*domainPayout.Request, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPayout.Request), args.Error(1)
}

func (m *mockPayoutService) Reject(ctx context.Context, in *payout.RejectInput) (*domainPayout.Request, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainPayout.Request), args.Error(1)
}

func (m *mockPayoutService) Pay(ctx context.Context, in *payout.PayInput) (*payout.PayResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.PayResult), args.Error(1)
}

func (m *mockPayoutService) UploadReceipt(ctx context.Context, payoutID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, payoutID, filename, string(body), size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockPayoutService) ReceiptURL(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)
	return args.String(0), args.Error(1)
}

type mockRateReader struct{ mock.Mock }

func (m *mockRateReader) Rates(ctx context.Context, base string) (*currency.Snapshot, error) {
	args := m.Called(ctx, base)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.Snapshot), args.Error(1)
}

type mockConverter struct{ mock.Mock }

func (m *mockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) currency.Conversion {
	args := m.Called(ctx, amount.String(), from, to)
	return args.Get(0).(currency.Conversion)
}

type mockReservationService struct{ mock.Mock }

func (m *mockReservationService) Create(ctx context.Context, in *reservation.CreateInput) (*booking.RawBooking, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.RawBooking), args.Error(1)
}

// --- helpers ---

// envelope mirrors common.APIResponse with a raw payload.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
	Error     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// serve routes one request through a chi router carrying the production
// request-id and scope middleware.
func serve(t *testing.T, method, pattern, target string, h http.HandlerFunc, body []byte, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Scope(middleware.DefaultScopeConfig(), logging.NewNopLogger()))
	r.MethodFunc(method, pattern, h)

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

// mustJSONField returns one top-level field of a JSON object.
func mustJSONField(t *testing.T, raw json.RawMessage, field string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[field]
	require.True(t, ok, "field %s missing in %s", field, raw)
	return v
}

var operator = map[string]string{"X-User-ID": "ops-1", "X-Org-ID": "org-1"}

//Personal.AI order the ending
