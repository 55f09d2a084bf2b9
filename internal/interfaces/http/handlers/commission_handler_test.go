package handlers

import (
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/turtacn/StayLedger/internal/application/commission"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

func newCommissionHandler() (*CommissionHandler, *mockCommissionService) {
	svc := new(mockCommissionService)
	return NewCommissionHandler(svc, logging.NewNopLogger()), svc
}

func TestCalculate_UsesPathAndActor(t *testing.T) {
	h, svc := newCommissionHandler()
	svc.On("Calculate", mock.Anything, &commission.CalculateInput{BookingID: "bk-1", UserID: "ops-1"}).
		Return(&domainCommission.Record{ID: "c-1", BookingID: "bk-1", CommissionAmount: decimal.RequireFromString("150")}, nil)

	rr, env := serve(t, http.MethodPost, "/api/v1/commissions/{bookingID}/calculate",
		"/api/v1/commissions/bk-1/calculate", h.Calculate, nil, operator)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"c-1"`, string(mustJSONField(t, env.Data, "id")))
	svc.AssertExpectations(t)
}

func TestCalculate_BookingWithoutAmount(t *testing.T) {
	h, svc := newCommissionHandler()
	svc.On("Calculate", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeBookingAmountAbsent, "booking has no amount"))

	rr, env := serve(t, http.MethodPost, "/c/{bookingID}", "/c/bk-2", h.Calculate, nil, operator)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "BKG_003", env.Error.Code)
}

func TestApprove_InvalidTransition(t *testing.T) {
	h, svc := newCommissionHandler()
	svc.On("Approve", mock.Anything, &commission.TransitionInput{CommissionID: "c-1", UserID: "ops-1"}).
		Return(nil, errors.New(errors.ErrCodeCommissionInvalidTransition, "cannot move commission from finalized to approved"))

	rr, env := serve(t, http.MethodPost, "/api/v1/commissions/{id}/approve", "/api/v1/commissions/c-1/approve",
		h.Approve, nil, operator)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "COM_002", env.Error.Code)
}

func TestFinalize_ReturnsBalance(t *testing.T) {
	h, svc := newCommissionHandler()
	svc.On("Finalize", mock.Anything, &commission.TransitionInput{CommissionID: "c-1", UserID: "ops-1"}).
		Return(&commission.FinalizeResult{
			Record:  &domainCommission.Record{ID: "c-1", Status: domainCommission.StatusFinalized},
			Balance: &domainPayout.Balance{ManagerID: "m-1", CurrentBalance: decimal.RequireFromString("300")},
		}, nil)

	rr, env := serve(t, http.MethodPost, "/api/v1/commissions/{id}/finalize", "/api/v1/commissions/c-1/finalize",
		h.Finalize, nil, operator)
	assert.Equal(t, http.StatusOK, rr.Code)
	bal := mustJSONField(t, env.Data, "balance")
	assert.JSONEq(t, `"300"`, string(mustJSONField(t, bal, "current_balance")))
}

func TestManagerPeriod(t *testing.T) {
	h, svc := newCommissionHandler()
	svc.On("ManagerPeriod", mock.Anything, &commission.PeriodInput{
		ManagerID: "m-1", Start: "2024-01", End: "2024-03", Properties: []string{"p1", "p2"},
	}).Return(&domainCommission.PeriodSummary{ManagerID: "m-1", Records: 2, TotalCommission: decimal.RequireFromString("270")}, nil)

	rr, env := serve(t, http.MethodGet, "/api/v1/managers/{managerID}/commissions",
		"/api/v1/managers/m-1/commissions?start=2024-01&end=2024-03&property_id=p1,p2", h.ManagerPeriod, nil, operator)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `"270"`, string(mustJSONField(t, env.Data, "total_commission")))
	svc.AssertExpectations(t)
}

//Personal.AI order the ending
