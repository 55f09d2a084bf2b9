package testutil_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/internal/testutil"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

func TestLedger_WithinTxRestoresOnError(t *testing.T) {
	l := testutil.NewLedger()
	ctx := context.Background()
	now := time.Now()

	b := payout.NewBalance("m-1", "USD", now)
	require.NoError(t, b.Credit(decimal.NewFromInt(100), now))
	l.SeedBalance(*b)

	err := l.WithinTx(ctx, func(ctx context.Context) error {
		got, err := l.Balances().GetForUpdate(ctx, "m-1")
		require.NoError(t, err)
		require.NoError(t, got.Credit(decimal.NewFromInt(50), now))
		require.NoError(t, l.Balances().Upsert(ctx, got))
		// nested calls join the outer transaction
		return l.WithinTx(ctx, func(context.Context) error { return errors.New("abort") })
	})
	require.Error(t, err)

	stored, ok := l.Balance("m-1")
	require.True(t, ok)
	assert.Equal(t, "100", stored.CurrentBalance.String())
}

func TestLedger_BookingsSkipMirroredRows(t *testing.T) {
	l := testutil.NewLedger()
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	res := booking.RawBooking{ID: "bk-1", OrgID: "org-1", PropertyID: "p-1", CheckIn: at}
	require.NoError(t, l.Bookings().CreateRevenueRecord(ctx, &res))
	require.NoError(t, l.Bookings().CreateCalendarBooking(ctx, &res))
	l.SeedLegacyBooking(booking.RawBooking{ID: "bk-0", OrgID: "org-1", PropertyID: "p-1", CheckIn: at})

	out, err := l.Bookings().List(ctx, "org-1", booking.Query{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "bk-0", out[0].ID)

	err = l.Bookings().CreateRevenueRecord(ctx, &res)
	assert.True(t, apperrors.IsConflict(err))

	_, err = l.Bookings().FindByID(ctx, "missing")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLedger_Fail(t *testing.T) {
	l := testutil.NewLedger()
	boom := errors.New("disk full")
	l.Fail(testutil.OpBalanceUpsert, boom)
	assert.ErrorIs(t, l.Balances().Upsert(context.Background(), payout.NewBalance("m-1", "USD", time.Now())), boom)
	l.Fail(testutil.OpBalanceUpsert, nil)
	assert.NoError(t, l.Balances().Upsert(context.Background(), payout.NewBalance("m-1", "USD", time.Now())))
}

//Personal.AI order the ending
