package shared

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

type sample struct {
	ManagerID string `validate:"required"`
	Currency  string `validate:"omitempty,currency"`
	Amount    string `validate:"required,numeric"`
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(sample{ManagerID: "m-1", Currency: "usd", Amount: "10.5"}))

	err := Validate(sample{Currency: "US1", Amount: "ten"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "ManagerID: required")
	assert.Contains(t, err.Error(), "Currency: currency")
	assert.Contains(t, err.Error(), "Amount: numeric")
}

type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, _ string, _ interface{}) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func TestNotify(t *testing.T) {
	pub := &recordingPublisher{}
	Notify(context.Background(), pub, logging.NewNopLogger(), "payout.paid", "m-1", nil)
	assert.Equal(t, []string{"payout.paid"}, pub.topics)

	pub.err = errors.New("broker down")
	assert.NotPanics(t, func() {
		Notify(context.Background(), pub, logging.NewNopLogger(), "payout.paid", "m-1", nil)
	})
	assert.NotPanics(t, func() {
		Notify(context.Background(), nil, logging.NewNopLogger(), "payout.paid", "m-1", nil)
	})
	assert.NoError(t, NopPublisher{}.PublishEvent(context.Background(), "t", "k", nil))
}

//Personal.AI order the ending
