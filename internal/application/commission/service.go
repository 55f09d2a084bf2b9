// Package commission provides the application service for the commission
// lifecycle: calculation, approval, and finalization into the manager's
// payout balance.
package commission

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/application/shared"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/domain/payout"
	kafkainfra "github.com/turtacn/StayLedger/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Converter brings a finalized commission into the balance currency.
type Converter interface {
	ToBase(ctx context.Context, amount decimal.Decimal, from string) currency.Conversion
}

// CalculateInput identifies the booking to price.
type CalculateInput struct {
	BookingID string `json:"booking_id" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}

// TransitionInput identifies a record and the operator moving it.
type TransitionInput struct {
	CommissionID string `json:"commission_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
}

// PeriodInput selects a manager's records over a month range.
type PeriodInput struct {
	ManagerID  string   `json:"manager_id" validate:"required"`
	Start      string   `json:"start" validate:"required"`
	End        string   `json:"end" validate:"required"`
	Properties []string `json:"properties" validate:"dive,required"`
}

// FinalizeResult is the finalized record together with the credited balance.
type FinalizeResult struct {
	Record  *domainCommission.Record `json:"record"`
	Balance *payout.Balance          `json:"balance"`
}

// Service orchestrates commission operations.
type Service struct {
	calculator *domainCommission.Calculator
	tracker    *payout.Tracker
	converter  Converter
	tx         Transactor
	publisher  shared.Publisher
	logger     logging.Logger
}

// NewService wires the commission service. A nil publisher drops events.
func NewService(
	calculator *domainCommission.Calculator,
	tracker *payout.Tracker,
	converter Converter,
	tx Transactor,
	publisher shared.Publisher,
	logger logging.Logger,
) *Service {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		calculator: calculator,
		tracker:    tracker,
		converter:  converter,
		tx:         tx,
		publisher:  publisher,
		logger:     logger.Named("commission-service"),
	}
}

// Calculate computes or recomputes the management commission of a booking.
func (s *Service) Calculate(ctx context.Context, in *CalculateInput) (*domainCommission.Record, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	var rec *domainCommission.Record
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rec, err = s.calculator.CalculateCommission(ctx, in.BookingID, in.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicCommissionCalculated, rec.ManagerID, rec)
	return rec, nil
}

// Approve moves a pending record to approved.
func (s *Service) Approve(ctx context.Context, in *TransitionInput) (*domainCommission.Record, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	return s.calculator.Approve(ctx, in.CommissionID, in.UserID)
}

// Finalize locks an approved record and credits its commission, converted to
// the balance currency and rounded to its minor units, to the manager. Both writes commit together. A
// commission that cannot be converted is not finalized.
func (s *Service) Finalize(ctx context.Context, in *TransitionInput) (*FinalizeResult, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}

	res := &FinalizeResult{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rec, err := s.calculator.Finalize(ctx, in.CommissionID, in.UserID)
		if err != nil {
			return err
		}
		res.Record = rec

		conv := s.converter.ToBase(ctx, rec.CommissionAmount, rec.Currency)
		if !conv.Converted {
			return errors.New(errors.ErrCodeMissingRate, "commission cannot be converted into the balance currency").
				WithDetail(rec.Currency + ": " + conv.Reason)
		}
		credit := currency.Round(conv.Amount, s.tracker.Currency())
		if !credit.IsPositive() {
			res.Balance, err = s.tracker.GetBalance(ctx, rec.ManagerID)
			return err
		}
		res.Balance, err = s.tracker.AddCommission(ctx, rec.ManagerID, credit)
		return err
	})
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicCommissionFinalized, res.Record.ManagerID, res.Record)
	return res, nil
}

// ManagerPeriod totals a manager's records over [Start, End].
func (s *Service) ManagerPeriod(ctx context.Context, in *PeriodInput) (*domainCommission.PeriodSummary, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	start, err := common.ParsePeriod(in.Start)
	if err != nil {
		return nil, errors.InvalidParam(err.Error())
	}
	end, err := common.ParsePeriod(in.End)
	if err != nil {
		return nil, errors.InvalidParam(err.Error())
	}
	return s.calculator.CalculateManagerCommissionForPeriod(ctx, in.ManagerID, start, end, in.Properties)
}

//Personal.AI order the ending
