package revenue

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fixedSource serves USD-based snapshots only.
type fixedSource map[string]*currency.Snapshot

func (s fixedSource) Rates(_ context.Context, base string) (*currency.Snapshot, error) {
	if snap, ok := s[base]; ok {
		return snap, nil
	}
	return nil, apperrors.New(apperrors.ErrCodeUnsupportedCurrency, "no rates")
}

func usdConverter() *currency.Converter {
	snap := currency.NewSnapshot("USD", map[string]decimal.Decimal{
		"EUR": d("0.8"),
		"THB": d("35"),
	}, time.Now(), "test")
	return currency.NewConverter(fixedSource{"USD": snap}, "USD", nil, nil)
}

type recordingMetrics struct{ bookings, unconverted int }

func (m *recordingMetrics) ObserveReport(_ float64, bookings, unconverted int) {
	m.bookings, m.unconverted = bookings, unconverted
}

var may = time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

func confirmed(id, property string, amount, cur string, dims booking.Dimensions) booking.Booking {
	return booking.Booking{
		ID: id, PropertyID: property, Status: booking.StatusConfirmed,
		Amount:   booking.SettledAmount{Kind: booking.AmountFinalPayout, Value: d(amount)},
		Currency: cur, CheckIn: may, Dimensions: dims,
	}
}

func sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

func TestAggregate_MixedStatuses(t *testing.T) {
	metrics := &recordingMetrics{}
	agg := NewAggregator(usdConverter(), nil, metrics)

	in := Input{Bookings: []booking.Booking{
		confirmed("legacy-checked-out", "p1", "400", "USD", booking.Dimensions{Channel: "direct", Department: "ops"}),
		confirmed("revenue-paid", "p2", "200", "EUR", booking.Dimensions{Channel: "airbnb", Department: "ops"}),
		{ID: "cancelled", PropertyID: "p1", Status: booking.StatusCancelled, Currency: "USD",
			Amount: booking.SettledAmount{Kind: booking.AmountFinalPayout, Value: d("5000")}, CheckIn: may},
		{ID: "pending", PropertyID: "p1", Status: booking.StatusPending, Currency: "USD",
			Amount: booking.SettledAmount{Kind: booking.AmountGrossTotal, Value: d("120")}, CheckIn: may},
		{ID: "excluded", PropertyID: "p1", Status: booking.StatusExcluded, Currency: "USD",
			Amount: booking.SettledAmount{Kind: booking.AmountGrossTotal, Value: d("70")}, CheckIn: may},
	}}

	r, err := agg.Aggregate(context.Background(), in, Filter{})
	require.NoError(t, err)

	assert.Equal(t, "USD", r.BaseCurrency)
	assert.Equal(t, "650", r.TotalRevenue.String()) // 400 + 200/0.8
	assert.Equal(t, "120", r.PendingPayments.String())
	assert.Equal(t, 2, r.BookingCount)
	assert.Equal(t, 1, r.PendingCount)
	assert.Equal(t, "400", r.ChannelBreakdown["direct"].String())
	assert.Equal(t, "250", r.ChannelBreakdown["airbnb"].String())
	assert.Equal(t, "650", r.DepartmentBreakdown["ops"].String())
	assert.Equal(t, "650", r.MonthlyBreakdown["2024-05"].String())
	assert.Equal(t, "650", r.BusinessUnitBreakdown[Unassigned].String())
	assert.Empty(t, r.Unconverted)
	assert.Equal(t, 3, metrics.bookings)
}

func TestAggregate_AddOnsExpensesAndProfit(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)
	in := Input{
		Bookings: []booking.Booking{confirmed("b1", "p1", "1000", "USD", booking.Dimensions{})},
		AddOns:   []AddOnSale{{ID: "a1", PropertyID: "p1", Category: "spa", Amount: d("200"), Currency: "USD", Date: may}},
		Expenses: []Expense{
			{ID: "e1", PropertyID: "p1", Type: "cleaning", Amount: d("150"), Currency: "USD", Date: may},
			{ID: "e2", PropertyID: "p1", Type: "maintenance", Amount: d("3500"), Currency: "THB", Date: may},
		},
	}

	r, err := agg.Aggregate(context.Background(), in, Filter{})
	require.NoError(t, err)

	assert.Equal(t, "1200", r.TotalRevenue.String())
	assert.Equal(t, "250", r.TotalExpenses.String())
	assert.Equal(t, "950", r.NetProfit.String())
	assert.Equal(t, "0.7917", r.ProfitMargin.String())
	assert.Equal(t, "1000", r.RevenueBySource[SourceBookings].String())
	assert.Equal(t, "200", r.RevenueBySource[SourceAddOns].String())
	assert.Equal(t, "100", r.ExpensesByType["maintenance"].String())
	assert.Equal(t, "200", r.ChannelBreakdown[SourceAddOns].String())
}

func TestAggregate_ZeroRevenueMarginIsZero(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)
	r, err := agg.Aggregate(context.Background(), Input{
		Expenses: []Expense{{ID: "e", Type: "cleaning", Amount: d("10"), Currency: "USD", Date: may}},
	}, Filter{})
	require.NoError(t, err)

	assert.True(t, r.ProfitMargin.IsZero())
	assert.Equal(t, "-10", r.NetProfit.String())
}

func TestAggregate_UnconvertedAreListedNotSummed(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)
	in := Input{Bookings: []booking.Booking{
		confirmed("b1", "p1", "100", "USD", booking.Dimensions{}),
		confirmed("b2", "p1", "5000", "JPY", booking.Dimensions{}),
	}}

	r, err := agg.Aggregate(context.Background(), in, Filter{})
	require.NoError(t, err)

	assert.Equal(t, "100", r.TotalRevenue.String())
	require.Len(t, r.Unconverted, 1)
	assert.Equal(t, "b2", r.Unconverted[0].ID)
	assert.Equal(t, "JPY", r.Unconverted[0].Currency)
	assert.Equal(t, currency.ReasonMissingRate, r.Unconverted[0].Reason)
	assert.Equal(t, "5000", r.UnconvertedTotals["JPY"].String())
}

func TestAggregate_Filters(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)
	june := may.AddDate(0, 1, 0)
	b2 := confirmed("b2", "p2", "20", "USD", booking.Dimensions{Channel: "vrbo", Tags: []string{"Pool", "family"}})
	b2.CheckIn = june
	in := Input{
		Bookings: []booking.Booking{
			confirmed("b1", "p1", "10", "USD", booking.Dimensions{Channel: "airbnb", Tags: []string{"beach"}}),
			b2,
		},
		AddOns: []AddOnSale{{ID: "a", PropertyID: "p2", Amount: d("5"), Currency: "USD", Date: june}},
	}

	cases := []struct {
		name string
		f    Filter
		want string
	}{
		{"property", Filter{PropertyID: "p2"}, "25"},
		{"channel excludes add-ons", Filter{ChannelSource: "VRBO"}, "20"},
		{"tags intersect", Filter{Tags: []string{"pool", "ski"}}, "20"},
		{"tags disjoint", Filter{Tags: []string{"ski"}}, "0"},
		{"date range", Filter{DateStart: june, DateEnd: june.AddDate(0, 0, 1)}, "25"},
		{"fiscal year", Filter{FiscalYear: 2023}, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := agg.Aggregate(context.Background(), in, tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, r.TotalRevenue.String())
		})
	}
}

func TestAggregate_InvalidFilter(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)

	_, err := agg.Aggregate(context.Background(), Input{}, Filter{DateStart: may, DateEnd: may.AddDate(0, 0, -1)})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRevenueFilterInvalid))

	_, err = agg.Aggregate(context.Background(), Input{}, Filter{Status: "weird"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeRevenueFilterInvalid))
}

func TestAggregate_BreakdownsSumToTotal(t *testing.T) {
	agg := NewAggregator(usdConverter(), nil, nil)
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 25; run++ {
		var in Input
		for i := 0; i < 40; i++ {
			cents := rng.Int63n(1000000)
			cur := []string{"USD", "EUR", "THB"}[rng.Intn(3)]
			b := confirmed(fmt.Sprintf("b%d", i), fmt.Sprintf("p%d", rng.Intn(7)),
				decimal.New(cents, -3).String(), cur,
				booking.Dimensions{Channel: fmt.Sprintf("c%d", rng.Intn(4)), Department: fmt.Sprintf("d%d", rng.Intn(3))})
			b.CheckIn = may.AddDate(0, rng.Intn(5), 0)
			in.Bookings = append(in.Bookings, b)
		}

		r, err := agg.Aggregate(context.Background(), in, Filter{})
		require.NoError(t, err)

		for name, m := range map[string]map[string]decimal.Decimal{
			"property": r.PropertyBreakdown, "channel": r.ChannelBreakdown,
			"department": r.DepartmentBreakdown, "month": r.MonthlyBreakdown,
			"business_unit": r.BusinessUnitBreakdown, "source": r.RevenueBySource,
		} {
			assert.True(t, sum(m).Equal(r.TotalRevenue), "%s breakdown %s != total %s", name, sum(m), r.TotalRevenue)
		}
		assert.True(t, r.TotalRevenue.Equal(r.TotalRevenue.Round(2)))
	}
}

func TestAllocate_LargestRemainder(t *testing.T) {
	exact := map[string]decimal.Decimal{
		"a": d("33.333333"),
		"b": d("33.333333"),
		"c": d("33.333334"),
	}
	out := allocate(exact, d("100"), "USD")

	assert.Equal(t, "33.33", out["a"].String())
	assert.Equal(t, "33.33", out["b"].String())
	assert.Equal(t, "33.34", out["c"].String())
	assert.Empty(t, allocate(nil, decimal.Zero, "USD"))
}

func TestAllocate_ZeroDecimalCurrency(t *testing.T) {
	out := allocate(map[string]decimal.Decimal{"x": d("0.5"), "y": d("0.5"), "z": d("1")}, d("2"), "JPY")
	assert.True(t, sum(out).Equal(d("2")))
	assert.Equal(t, "1", out["z"].String())
}

//Personal.AI order the ending
