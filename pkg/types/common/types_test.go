package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_Validate(t *testing.T) {
	assert.NoError(t, NewID().Validate())
	assert.Error(t, ID("").Validate())
	assert.Error(t, ID("not-a-uuid").Validate())
}

func TestPeriodOf(t *testing.T) {
	ts := time.Date(2024, time.March, 31, 23, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, Period("2024-03"), PeriodOf(ts))
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-07")
	require.NoError(t, err)
	assert.Equal(t, Period("2024-07"), p)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), p.Start())

	_, err = ParsePeriod("2024-13")
	assert.Error(t, err)
	_, err = ParsePeriod("July 2024")
	assert.Error(t, err)
}

func TestPeriod_Within(t *testing.T) {
	assert.True(t, Period("2024-02").Within("2024-01", "2024-03"))
	assert.True(t, Period("2024-01").Within("2024-01", "2024-01"))
	assert.False(t, Period("2023-12").Within("2024-01", "2024-03"))
	assert.True(t, Period("2024-10").Within("2024-09", "2025-01"))
}

func TestDateRange(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, DateRange{From: jan, To: feb}.Validate())
	assert.Error(t, DateRange{From: feb, To: jan}.Validate())
	assert.NoError(t, DateRange{From: feb}.Validate())

	r := DateRange{From: jan, To: feb}
	assert.True(t, r.Contains(jan))
	assert.True(t, r.Contains(feb))
	assert.False(t, r.Contains(feb.Add(time.Second)))
	assert.True(t, DateRange{}.Contains(feb))

	from, to := r.Periods()
	assert.Equal(t, Period("2024-01"), from)
	assert.Equal(t, Period("2024-02"), to)
}

func TestResponses(t *testing.T) {
	ok := NewSuccessResponse(map[string]int{"n": 1})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	bad := NewErrorResponse("PAY_002", "insufficient")
	assert.False(t, bad.Success)
	require.NotNil(t, bad.Error)
	assert.Equal(t, "PAY_002", bad.Error.Code)
}

//Personal.AI order the ending
