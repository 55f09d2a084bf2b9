package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/application/commission"
	"github.com/turtacn/StayLedger/internal/application/payout"
	"github.com/turtacn/StayLedger/internal/application/revenue"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ─── rates ───────────────────────────────────────────────────────────────────

func TestRatesGet_FiltersCodes(t *testing.T) {
	h := newHarness()
	snap := currency.NewSnapshot("USD", map[string]decimal.Decimal{
		"EUR": dec("0.92"), "GBP": dec("0.79"),
	}, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "exchangerate-api")
	h.rates.On("Rates", mock.Anything, "USD").Return(snap, nil)

	out, _, err := h.run(t, "rates", "get", "usd", "--only", "eur")
	require.NoError(t, err)
	assert.Contains(t, out, "base USD from exchangerate-api")
	assert.Contains(t, out, "EUR")
	assert.NotContains(t, out, "GBP")
	h.assertExpectations(t)
}

func TestRatesGet_JSONIsTheSnapshot(t *testing.T) {
	h := newHarness()
	snap := currency.NewSnapshot("USD", map[string]decimal.Decimal{"EUR": dec("0.92")}, time.Now(), "fallback")
	h.rates.On("Rates", mock.Anything, "USD").Return(snap, nil)

	out, _, err := h.run(t, "-o", "json", "rates", "get", "USD")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "USD", body["base"])
	assert.Equal(t, "fallback", body["source"])
}

func TestRatesGet_InvalidBase(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "rates", "get", "US")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.GetCode(err))
	assert.Zero(t, h.builds)
}

func TestRatesConvert_RoundsConvertedAmount(t *testing.T) {
	h := newHarness()
	h.converter.On("Convert", mock.Anything, "100", "USD", "EUR").Return(currency.Conversion{
		Amount: dec("92.3456"), Currency: "EUR", Converted: true,
		Original: dec("100"), OriginalCurrency: "USD",
	})

	out, _, err := h.run(t, "rates", "convert", "100", "--from", "usd", "--to", "eur")
	require.NoError(t, err)
	assert.Equal(t, "100 USD = 92.35 EUR\n", out)
	h.assertExpectations(t)
}

func TestRatesConvert_MissingRate(t *testing.T) {
	h := newHarness()
	h.converter.On("Convert", mock.Anything, "5000", "THB", "XOF").Return(currency.Conversion{
		Amount: dec("5000"), Currency: "THB", Reason: currency.ReasonMissingRate,
		Original: dec("5000"), OriginalCurrency: "THB",
	})

	out, _, err := h.run(t, "rates", "convert", "5000", "--from", "THB", "--to", "XOF")
	require.NoError(t, err)
	assert.Contains(t, out, "unconverted (missing_rate)")
}

func TestRatesConvert_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad amount", []string{"rates", "convert", "ten", "--from", "USD", "--to", "EUR"}},
		{"bad currency", []string{"rates", "convert", "10", "--from", "US", "--to", "EUR"}},
		{"missing flag", []string{"rates", "convert", "10", "--from", "USD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, _, err := h.run(t, tt.args...)
			require.Error(t, err)
			assert.Zero(t, h.builds)
		})
	}
}

// ─── revenue ─────────────────────────────────────────────────────────────────

func TestRevenueSummary_MapsFlags(t *testing.T) {
	h := newHarness()
	report := &domainRevenue.Report{
		BaseCurrency:    "USD",
		TotalRevenue:    dec("1500"),
		NetProfit:       dec("1200"),
		ProfitMargin:    dec("80"),
		BookingCount:    3,
		RevenueBySource: map[string]decimal.Decimal{"airbnb": dec("1500")},
	}
	h.revenue.On("Summary", mock.Anything, mock.MatchedBy(func(in *revenue.SummaryInput) bool {
		return in.OrgID == "acme" &&
			in.FiscalYear == 2024 &&
			in.ChannelSource == "airbnb" &&
			in.DateStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			len(in.Tags) == 2 && in.Tags[0] == "vip" && in.Tags[1] == "long-stay"
	})).Return(report, nil)

	out, _, err := h.run(t, "-o", "json", "revenue", "summary",
		"--org", "acme", "--fiscal-year", "2024", "--channel", "airbnb",
		"--from", "2024-03-01", "--tags", "vip,long-stay")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "1500", body["total_revenue"])
	assert.Equal(t, "USD", body["base_currency"])
	h.assertExpectations(t)
}

func TestRevenueSummary_TextShowsBreakdowns(t *testing.T) {
	h := newHarness()
	h.revenue.On("Summary", mock.Anything, mock.Anything).Return(&domainRevenue.Report{
		BaseCurrency:    "USD",
		TotalRevenue:    dec("1500"),
		RevenueBySource: map[string]decimal.Decimal{"airbnb": dec("1000"), "direct": dec("500")},
	}, nil)

	out, _, err := h.run(t, "revenue", "summary", "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, out, "total_revenue")
	assert.Contains(t, out, "source:airbnb")
	assert.Contains(t, out, "source:direct")
}

func TestRevenueSummary_Validation(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "revenue", "summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"org"`)

	_, _, err = h.run(t, "revenue", "summary", "--org", "acme", "--from", "03/01/2024")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeBadRequest, apperrors.GetCode(err))
	assert.Zero(t, h.builds)
}

// ─── commission ──────────────────────────────────────────────────────────────

func sampleRecord(status domainCommission.Status) *domainCommission.Record {
	return &domainCommission.Record{
		ID:               "c-1",
		BookingID:        "bk-1",
		Period:           common.Period("2024-06"),
		Status:           status,
		BaseAmount:       dec("1000"),
		CommissionRate:   dec("15"),
		CommissionAmount: dec("150"),
		OwnerNetAmount:   dec("850"),
		Currency:         "USD",
	}
}

func TestCommissionCalculate(t *testing.T) {
	h := newHarness()
	h.commissions.On("Calculate", mock.Anything, &commission.CalculateInput{BookingID: "bk-1", UserID: "ops-1"}).
		Return(sampleRecord(domainCommission.StatusPending), nil)

	out, _, err := h.run(t, "commission", "calculate", "bk-1")
	require.NoError(t, err)
	assert.Contains(t, out, "commission c-1 (pending): 150 USD at 15% of 1000, owner net 850")
	h.assertExpectations(t)
}

func TestCommissionApprove_RequiresOperator(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "--as", "", "commission", "approve", "c-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--as")
	h.commissions.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything)
}

func TestCommissionApprove_PropagatesServiceError(t *testing.T) {
	h := newHarness()
	h.commissions.On("Approve", mock.Anything, &commission.TransitionInput{CommissionID: "c-1", UserID: "ops-1"}).
		Return(nil, apperrors.New(apperrors.ErrCodeCommissionInvalidTransition, "cannot approve"))

	_, _, err := h.run(t, "commission", "approve", "c-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeCommissionInvalidTransition))
}

func TestCommissionFinalize_ShowsBalance(t *testing.T) {
	h := newHarness()
	h.commissions.On("Finalize", mock.Anything, &commission.TransitionInput{CommissionID: "c-1", UserID: "ops-1"}).
		Return(&commission.FinalizeResult{
			Record:  sampleRecord(domainCommission.StatusFinalized),
			Balance: &domainPayout.Balance{ManagerID: "mgr-7", Currency: "USD", CurrentBalance: dec("650")},
		}, nil)

	out, _, err := h.run(t, "commission", "finalize", "c-1")
	require.NoError(t, err)
	assert.Contains(t, out, "(finalized)")
	assert.Contains(t, out, "balance of mgr-7: 650 USD")
}

func TestCommissionPeriod_Table(t *testing.T) {
	h := newHarness()
	h.commissions.On("ManagerPeriod", mock.Anything, &commission.PeriodInput{
		ManagerID: "mgr-7", Start: "2024-01", End: "2024-06", Properties: []string{"p1", "p2"},
	}).Return(&domainCommission.PeriodSummary{
		ManagerID:       "mgr-7",
		Currency:        "USD",
		Records:         2,
		TotalBase:       dec("2000"),
		TotalCommission: dec("300"),
		ByProperty: []domainCommission.PropertyTotal{
			{PropertyID: "p1", Records: 1, BaseAmount: dec("1200"), CommissionAmount: dec("180")},
			{PropertyID: "p2", Records: 1, BaseAmount: dec("800"), CommissionAmount: dec("120")},
		},
	}, nil)

	out, _, err := h.run(t, "-o", "table", "commission", "period", "mgr-7",
		"--start", "2024-01", "--end", "2024-06", "--property", "p1,p2")
	require.NoError(t, err)
	assert.Contains(t, out, "PROPERTY")
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "300")
	h.assertExpectations(t)
}

// ─── payout ──────────────────────────────────────────────────────────────────

func sampleRequest(status domainPayout.Status) *domainPayout.Request {
	return &domainPayout.Request{
		ID:        "po-1",
		ManagerID: "mgr-7",
		Amount:    dec("250"),
		Currency:  "USD",
		Status:    status,
		CreatedAt: time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestPayoutRequest(t *testing.T) {
	h := newHarness()
	h.payouts.On("Request", mock.Anything, &payout.RequestInput{
		ManagerID: "mgr-7", Amount: "250", Note: "June", UserID: "ops-1",
	}).Return(sampleRequest(domainPayout.StatusPending), nil)

	out, _, err := h.run(t, "payout", "request", "mgr-7", "--amount", "250", "--note", "June")
	require.NoError(t, err)
	assert.Equal(t, "payout po-1 for mgr-7: 250 USD (pending)\n", out)
	h.assertExpectations(t)
}

func TestPayoutRequest_InsufficientBalance(t *testing.T) {
	h := newHarness()
	h.payouts.On("Request", mock.Anything, mock.Anything).
		Return(nil, apperrors.New(apperrors.ErrCodeInsufficientBalance, "requested 900 exceeds balance 650"))

	_, _, err := h.run(t, "payout", "request", "mgr-7", "--amount", "900")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInsufficientBalance))
}

func TestPayoutApproveAndReject(t *testing.T) {
	h := newHarness()
	h.payouts.On("Approve", mock.Anything, &payout.TransitionInput{PayoutID: "po-1", UserID: "ops-1"}).
		Return(sampleRequest(domainPayout.StatusApproved), nil)
	h.payouts.On("Reject", mock.Anything, &payout.RejectInput{PayoutID: "po-2", Reason: "duplicate", UserID: "ops-1"}).
		Return(sampleRequest(domainPayout.StatusRejected), nil)

	out, _, err := h.run(t, "payout", "approve", "po-1")
	require.NoError(t, err)
	assert.Contains(t, out, "(approved)")

	out, _, err = h.run(t, "payout", "reject", "po-2", "--reason", "duplicate")
	require.NoError(t, err)
	assert.Contains(t, out, "(rejected)")
	h.assertExpectations(t)
}

func TestPayoutPay(t *testing.T) {
	h := newHarness()
	paid := sampleRequest(domainPayout.StatusPaid)
	paid.ReceiptRef = "receipts/po-1/r.pdf"
	h.payouts.On("Pay", mock.Anything, &payout.PayInput{PayoutID: "po-1", ReceiptRef: "receipts/po-1/r.pdf", UserID: "ops-1"}).
		Return(&payout.PayResult{
			Request: paid,
			Balance: &domainPayout.Balance{ManagerID: "mgr-7", Currency: "USD", CurrentBalance: dec("400")},
		}, nil)

	out, _, err := h.run(t, "payout", "pay", "po-1", "--receipt", "receipts/po-1/r.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "payout po-1 paid: 250 USD (receipt receipts/po-1/r.pdf)")
	assert.Contains(t, out, "balance of mgr-7: 400 USD")
}

func TestPayoutPay_RequiresReceipt(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "payout", "pay", "po-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"receipt"`)
	assert.Zero(t, h.builds)
}

func TestPayoutBalance_JSON(t *testing.T) {
	h := newHarness()
	h.payouts.On("Balance", mock.Anything, "mgr-7").Return(&domainPayout.Balance{
		ManagerID: "mgr-7", Currency: "USD",
		TotalEarned: dec("1000"), TotalPaid: dec("600"), CurrentBalance: dec("400"),
	}, nil)

	out, _, err := h.run(t, "-o", "json", "payout", "balance", "mgr-7")
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "400", body["current_balance"])
	assert.Equal(t, "mgr-7", body["manager_id"])
}

func TestPayoutList(t *testing.T) {
	h := newHarness()
	h.payouts.On("List", mock.Anything, "mgr-7", "pending").
		Return([]*domainPayout.Request{sampleRequest(domainPayout.StatusPending)}, nil)
	h.payouts.On("List", mock.Anything, "mgr-8", "").Return(nil, nil)

	out, _, err := h.run(t, "payout", "list", "mgr-7", "--status", "pending")
	require.NoError(t, err)
	assert.Contains(t, out, "po-1")
	assert.Contains(t, out, "2024-07-01T09:00:00Z")

	out, _, err = h.run(t, "-o", "json", "payout", "list", "mgr-8")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
	h.assertExpectations(t)
}

// ─── migrate ─────────────────────────────────────────────────────────────────

func TestMigrate(t *testing.T) {
	h := newHarness()
	h.migrator.On("Up").Return(nil)
	h.migrator.On("Down", 2).Return(nil)
	h.migrator.On("Force", 4).Return(nil)
	h.migrator.On("Status").Return(uint(5), true, nil)

	out, _, err := h.run(t, "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "OK: migrations applied\n", out)

	out, _, err = h.run(t, "migrate", "down", "2")
	require.NoError(t, err)
	assert.Equal(t, "OK: rolled back 2 migration(s)\n", out)

	out, _, err = h.run(t, "migrate", "force", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "forced to 4")

	out, _, err = h.run(t, "migrate", "status")
	require.NoError(t, err)
	assert.Equal(t, "version 5 (dirty)\n", out)

	h.assertExpectations(t)
	assert.Zero(t, h.builds, "migrations must not build the services")
}

func TestMigrate_InvalidArgs(t *testing.T) {
	h := newHarness()

	_, _, err := h.run(t, "migrate", "down", "zero")
	require.Error(t, err)
	_, _, err = h.run(t, "migrate", "force", "x")
	require.Error(t, err)
	h.migrator.AssertNotCalled(t, "Down", mock.Anything)
	h.migrator.AssertNotCalled(t, "Force", mock.Anything)
}

func TestMigrate_NotConfigured(t *testing.T) {
	h := newHarness()
	deps := h.deps()
	deps.Migrator = nil
	root := NewRootCommand(deps)
	root.SetArgs([]string{"--config", "x.yaml", "migrate", "up"})

	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeServiceUnavailable, apperrors.GetCode(err))
}

//Personal.AI order the ending
