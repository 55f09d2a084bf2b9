// Package payout provides the application service around the manager
// payout tracker: requests, approvals, payments and receipts.
package payout

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/application/shared"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
	kafkainfra "github.com/turtacn/StayLedger/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// ReceiptStore keeps uploaded payout receipts.
type ReceiptStore interface {
	Upload(ctx context.Context, payoutID, filename string, r io.Reader, size int64, contentType string) (string, error)
	URL(ctx context.Context, ref string) (string, error)
}

// RequestInput opens a payout request. Amount is a decimal string in the
// balance currency.
type RequestInput struct {
	ManagerID string `json:"manager_id" validate:"required"`
	Amount    string `json:"amount" validate:"required,numeric"`
	Note      string `json:"note" validate:"max=500"`
	UserID    string `json:"user_id" validate:"required"`
}

// TransitionInput identifies a request and the operator acting on it.
type TransitionInput struct {
	PayoutID string `json:"payout_id" validate:"required"`
	UserID   string `json:"user_id" validate:"required"`
}

// RejectInput rejects a pending request.
type RejectInput struct {
	PayoutID string `json:"payout_id" validate:"required"`
	Reason   string `json:"reason" validate:"required,max=500"`
	UserID   string `json:"user_id" validate:"required"`
}

// PayInput marks an approved request paid against a receipt.
type PayInput struct {
	PayoutID   string `json:"payout_id" validate:"required"`
	ReceiptRef string `json:"receipt_ref" validate:"required"`
	UserID     string `json:"user_id" validate:"required"`
}

// PayResult is the paid request together with the debited balance.
type PayResult struct {
	Request *domainPayout.Request `json:"request"`
	Balance *domainPayout.Balance `json:"balance"`
}

// Service orchestrates payout operations and announces them.
type Service struct {
	tracker   *domainPayout.Tracker
	receipts  ReceiptStore
	publisher shared.Publisher
	logger    logging.Logger
}

// NewService wires the payout service. receipts may be nil when object
// storage is disabled.
func NewService(tracker *domainPayout.Tracker, receipts ReceiptStore, publisher shared.Publisher, logger logging.Logger) *Service {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{tracker: tracker, receipts: receipts, publisher: publisher, logger: logger.Named("payout-service")}
}

// Balance returns the manager's commission balance.
func (s *Service) Balance(ctx context.Context, managerID string) (*domainPayout.Balance, error) {
	if managerID == "" {
		return nil, errors.InvalidParam("manager id is required")
	}
	return s.tracker.GetBalance(ctx, managerID)
}

// List returns the manager's requests, newest first.
func (s *Service) List(ctx context.Context, managerID, status string) ([]*domainPayout.Request, error) {
	if managerID == "" {
		return nil, errors.InvalidParam("manager id is required")
	}
	return s.tracker.ListPayouts(ctx, managerID, domainPayout.Status(status))
}

func (s *Service) Request(ctx context.Context, in *RequestInput) (*domainPayout.Request, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(in.Amount)
	if err != nil {
		return nil, errors.New(errors.ErrCodePayoutAmountInvalid, "amount is not a decimal").WithDetail(in.Amount)
	}
	req, err := s.tracker.CreatePayoutRequest(ctx, in.ManagerID, amount, in.Note, in.UserID)
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicPayoutRequested, req.ManagerID, req)
	return req, nil
}

func (s *Service) Approve(ctx context.Context, in *TransitionInput) (*domainPayout.Request, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	req, err := s.tracker.ApprovePayout(ctx, in.PayoutID, in.UserID)
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicPayoutApproved, req.ManagerID, req)
	return req, nil
}

func (s *Service) Reject(ctx context.Context, in *RejectInput) (*domainPayout.Request, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	req, err := s.tracker.RejectPayout(ctx, in.PayoutID, in.Reason, in.UserID)
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicPayoutRejected, req.ManagerID, req)
	return req, nil
}

// Pay settles an approved request and debits the balance in one transaction.
func (s *Service) Pay(ctx context.Context, in *PayInput) (*PayResult, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	req, bal, err := s.tracker.MarkPayoutPaid(ctx, in.PayoutID, in.ReceiptRef, in.UserID)
	if err != nil {
		return nil, err
	}
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicPayoutPaid, req.ManagerID, req)
	return &PayResult{Request: req, Balance: bal}, nil
}

// UploadReceipt stores a receipt file for payoutID and returns its reference.
func (s *Service) UploadReceipt(ctx context.Context, payoutID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if s.receipts == nil {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "receipt storage is disabled")
	}
	return s.receipts.Upload(ctx, payoutID, filename, r, size, contentType)
}

// ReceiptURL returns a download link for the receipt of a paid request.
func (s *Service) ReceiptURL(ctx context.Context, ref string) (string, error) {
	if s.receipts == nil {
		return "", errors.New(errors.ErrCodeServiceUnavailable, "receipt storage is disabled")
	}
	if ref == "" {
		return "", errors.New(errors.ErrCodeReceiptMissing, "payout has no receipt")
	}
	return s.receipts.URL(ctx, ref)
}

//Personal.AI order the ending
