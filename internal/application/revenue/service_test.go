package revenue

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) FindByID(ctx context.Context, id string) (*booking.RawBooking, error) {
	args := m.Called(ctx, id)
	if b := args.Get(0); b != nil {
		return b.(*booking.RawBooking), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBookings) List(ctx context.Context, orgID string, q booking.Query) ([]booking.RawBooking, error) {
	args := m.Called(ctx, orgID, q)
	out, _ := args.Get(0).([]booking.RawBooking)
	return out, args.Error(1)
}

type mockSources struct{ mock.Mock }

func (m *mockSources) ListAddOns(ctx context.Context, orgID string, q booking.Query) ([]domainRevenue.AddOnSale, error) {
	args := m.Called(ctx, orgID, q)
	out, _ := args.Get(0).([]domainRevenue.AddOnSale)
	return out, args.Error(1)
}

func (m *mockSources) ListExpenses(ctx context.Context, orgID string, q booking.Query) ([]domainRevenue.Expense, error) {
	args := m.Called(ctx, orgID, q)
	out, _ := args.Get(0).([]domainRevenue.Expense)
	return out, args.Error(1)
}

type usdRates struct{}

func (usdRates) Rates(_ context.Context, base string) (*currency.Snapshot, error) {
	if base != "USD" {
		return nil, apperrors.New(apperrors.ErrCodeUnsupportedCurrency, "no rates")
	}
	return currency.NewSnapshot("USD", map[string]decimal.Decimal{"EUR": d("0.8")}, time.Now(), "test"), nil
}

var may = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func newService(b *mockBookings, s *mockSources) *Service {
	conv := currency.NewConverter(usdRates{}, "USD", nil, nil)
	return NewService(b, s,
		booking.NewNormalizer([]string{"direct"}, nil, nil, nil),
		domainRevenue.NewAggregator(conv, nil, nil),
		nil)
}

func TestSummary_CombinesAllSources(t *testing.T) {
	b, s := &mockBookings{}, &mockSources{}
	q := booking.Query{PropertyID: "prop-1"}

	b.On("List", mock.Anything, "org-1", q).Return([]booking.RawBooking{
		{ID: "r-1", PropertyID: "prop-1", Source: "airbnb", PaymentStatus: "paid", FinalPayoutAmount: dp("100"), Currency: "USD", CheckIn: may},
		{ID: "l-1", PropertyID: "prop-1", Source: "direct", Status: "confirmed", TotalAmount: dp("80"), Currency: "EUR", CheckIn: may},
		{ID: "l-2", PropertyID: "prop-1", Source: "direct", Status: "inquiry", TotalAmount: dp("50"), Currency: "USD", CheckIn: may},
		{ID: "l-3", PropertyID: "prop-1", Source: "direct", Status: "cancelled", TotalAmount: dp("999"), Currency: "USD", CheckIn: may},
	}, nil).Once()
	s.On("ListAddOns", mock.Anything, "org-1", q).Return([]domainRevenue.AddOnSale{
		{ID: "a-1", PropertyID: "prop-1", Category: "transfer", Amount: d("20"), Currency: "USD", Date: may},
	}, nil).Once()
	s.On("ListExpenses", mock.Anything, "org-1", q).Return([]domainRevenue.Expense{
		{ID: "e-1", PropertyID: "prop-1", Type: "cleaning", Amount: d("30"), Currency: "USD", Date: may},
	}, nil).Once()

	report, err := newService(b, s).Summary(context.Background(), &SummaryInput{OrgID: "org-1", PropertyID: "prop-1"})
	require.NoError(t, err)

	assert.Equal(t, "USD", report.BaseCurrency)
	assert.Equal(t, 2, report.BookingCount)
	assert.Equal(t, 1, report.PendingCount)
	assert.True(t, d("220").Equal(report.TotalRevenue), report.TotalRevenue.String())
	assert.True(t, d("30").Equal(report.TotalExpenses))
	assert.True(t, d("190").Equal(report.NetProfit))
	assert.True(t, d("50").Equal(report.PendingPayments))
	assert.True(t, d("0.8636").Equal(report.ProfitMargin), report.ProfitMargin.String())
	assert.Empty(t, report.Unconverted)
	b.AssertExpectations(t)
	s.AssertExpectations(t)
}

func TestSummary_FiscalYearNarrowsQuery(t *testing.T) {
	b, s := &mockBookings{}, &mockSources{}
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := booking.Query{From: from, To: from.AddDate(1, 0, 0).Add(-time.Nanosecond)}

	b.On("List", mock.Anything, "org-1", q).Return(nil, nil).Once()
	s.On("ListAddOns", mock.Anything, "org-1", q).Return(nil, nil).Once()
	s.On("ListExpenses", mock.Anything, "org-1", q).Return(nil, nil).Once()

	report, err := newService(b, s).Summary(context.Background(), &SummaryInput{OrgID: "org-1", FiscalYear: 2024})
	require.NoError(t, err)
	assert.True(t, report.TotalRevenue.IsZero())
	assert.True(t, report.ProfitMargin.IsZero())
	b.AssertExpectations(t)
}

func TestSummary_SourceFailure(t *testing.T) {
	b, s := &mockBookings{}, &mockSources{}
	b.On("List", mock.Anything, "org-1", booking.Query{}).
		Return(nil, apperrors.New(apperrors.ErrCodeRevenueSourceRetrieval, "boom")).Once()
	s.On("ListAddOns", mock.Anything, "org-1", booking.Query{}).Return(nil, nil).Maybe()
	s.On("ListExpenses", mock.Anything, "org-1", booking.Query{}).Return(nil, nil).Maybe()

	_, err := newService(b, s).Summary(context.Background(), &SummaryInput{OrgID: "org-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRevenueSourceRetrieval))
}

func TestSummary_InvalidInput(t *testing.T) {
	svc := newService(&mockBookings{}, &mockSources{})
	ctx := context.Background()

	_, err := svc.Summary(ctx, &SummaryInput{})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Summary(ctx, &SummaryInput{OrgID: "org-1", Status: "settled"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Summary(ctx, &SummaryInput{OrgID: "org-1", DateStart: may, DateEnd: may.AddDate(0, -1, 0)})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRevenueFilterInvalid))
}

//Personal.AI order the ending
