package payout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// BalanceRepository persists balances. Get and GetForUpdate return a
// NotFound error when the manager has no balance row yet.
type BalanceRepository interface {
	Get(ctx context.Context, managerID string) (*Balance, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, managerID string) (*Balance, error)
	Upsert(ctx context.Context, b *Balance) error
}

// RequestRepository persists payout requests. Get and GetForUpdate return a
// PAY_001 error when absent.
type RequestRepository interface {
	Create(ctx context.Context, r *Request) error
	Get(ctx context.Context, id string) (*Request, error)
	GetForUpdate(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, r *Request) error
	// ListByManager returns requests newest first. An empty status lists all.
	ListByManager(ctx context.Context, managerID string, status Status) ([]*Request, error)
}

// Transactor runs fn in a single transaction. Repositories called with the
// ctx passed to fn take part in it; a nested call joins the outer one.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReceiptVerifier checks that a payout receipt exists in storage.
type ReceiptVerifier interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// Metrics observes payout transitions.
type Metrics interface {
	ObservePayout(status string)
}

type nopMetrics struct{}

func (nopMetrics) ObservePayout(string) {}

// Tracker maintains manager balances and the payout lifecycle.
type Tracker struct {
	balances BalanceRepository
	requests RequestRepository
	tx       Transactor
	receipts ReceiptVerifier
	currency string
	logger   logging.Logger
	metrics  Metrics
	now      func() time.Time
	newID    func() string
}

// TrackerOption customises a Tracker.
type TrackerOption func(*Tracker)

// WithReceiptVerifier makes MarkPayoutPaid require an existing receipt.
func WithReceiptVerifier(v ReceiptVerifier) TrackerOption {
	return func(t *Tracker) { t.receipts = v }
}

func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) { t.now = now }
}

func WithIDGenerator(fn func() string) TrackerOption {
	return func(t *Tracker) { t.newID = fn }
}

func WithMetrics(m Metrics) TrackerOption {
	return func(t *Tracker) {
		if m != nil {
			t.metrics = m
		}
	}
}

func WithLogger(l logging.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker builds a Tracker keeping balances in baseCurrency.
func NewTracker(balances BalanceRepository, requests RequestRepository, tx Transactor, baseCurrency string, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		balances: balances,
		requests: requests,
		tx:       tx,
		currency: currency.NormalizeCode(baseCurrency),
		logger:   logging.NewNopLogger(),
		metrics:  nopMetrics{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.Named("payout")
	return t
}

// Currency returns the currency balances are kept in.
func (t *Tracker) Currency() string { return t.currency }

func (t *Tracker) validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.New(errors.ErrCodePayoutAmountInvalid, "amount must be greater than zero").WithDetail(amount.String())
	}
	if !amount.Equal(currency.Round(amount, t.currency)) {
		return errors.Newf(errors.ErrCodePayoutAmountInvalid,
			"amount %s has more precision than %s allows", amount, t.currency)
	}
	return nil
}

// balanceFor loads the balance through get, treating a missing row as zero.
func (t *Tracker) balanceFor(ctx context.Context, managerID string,
	get func(context.Context, string) (*Balance, error)) (*Balance, error) {
	b, err := get(ctx, managerID)
	if err == nil {
		return b, nil
	}
	if errors.IsNotFound(err) {
		return NewBalance(managerID, t.currency, t.now().UTC()), nil
	}
	return nil, err
}

// GetBalance returns the manager's balance; a manager without one has a
// zero balance.
func (t *Tracker) GetBalance(ctx context.Context, managerID string) (*Balance, error) {
	return t.balanceFor(ctx, managerID, t.balances.Get)
}

// ListPayouts returns the manager's requests, optionally filtered by status.
func (t *Tracker) ListPayouts(ctx context.Context, managerID string, status Status) ([]*Request, error) {
	if status != "" && !status.IsValid() {
		return nil, errors.InvalidParam("unknown payout status").WithDetail(string(status))
	}
	return t.requests.ListByManager(ctx, managerID, status)
}

// AddCommission credits amount to the manager's balance, creating it when
// missing.
func (t *Tracker) AddCommission(ctx context.Context, managerID string, amount decimal.Decimal) (*Balance, error) {
	if managerID == "" {
		return nil, errors.InvalidParam("manager id is required")
	}
	if !amount.IsPositive() {
		return nil, errors.New(errors.ErrCodePayoutAmountInvalid, "commission credit must be positive").WithDetail(amount.String())
	}

	var out *Balance
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := t.balanceFor(ctx, managerID, t.balances.GetForUpdate)
		if err != nil {
			return err
		}
		if err := b.Credit(amount, t.now().UTC()); err != nil {
			return err
		}
		if err := t.balances.Upsert(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info("commission credited",
		logging.String("manager_id", managerID),
		logging.Decimal("amount", amount),
		logging.Decimal("balance", out.CurrentBalance))
	return out, nil
}

// CreatePayoutRequest opens a pending request for amount. It fails with
// InsufficientBalance when amount exceeds the current balance, and nothing is
// created.
func (t *Tracker) CreatePayoutRequest(ctx context.Context, managerID string, amount decimal.Decimal, note, by string) (*Request, error) {
	if managerID == "" {
		return nil, errors.InvalidParam("manager id is required")
	}
	if err := t.validAmount(amount); err != nil {
		return nil, err
	}

	var req *Request
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		b, err := t.balanceFor(ctx, managerID, t.balances.GetForUpdate)
		if err != nil {
			return err
		}
		if amount.GreaterThan(b.CurrentBalance) {
			return errors.Newf(errors.ErrCodeInsufficientBalance,
				"requested %s exceeds balance %s", amount, b.CurrentBalance)
		}
		now := t.now().UTC()
		req = &Request{
			ID:          t.newID(),
			ManagerID:   managerID,
			Amount:      amount,
			Currency:    t.currency,
			Status:      StatusPending,
			Note:        note,
			RequestedBy: by,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return t.requests.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	t.metrics.ObservePayout(string(StatusPending))
	t.logger.Info("payout requested",
		logging.String("payout_id", req.ID),
		logging.String("manager_id", managerID),
		logging.Decimal("amount", amount))
	return req, nil
}

// ApprovePayout moves a pending request to approved.
func (t *Tracker) ApprovePayout(ctx context.Context, id, by string) (*Request, error) {
	return t.transition(ctx, id, StatusApproved, func(r *Request, now time.Time) error {
		return r.Approve(by, now)
	})
}

// RejectPayout moves a pending request to rejected. The balance is untouched.
func (t *Tracker) RejectPayout(ctx context.Context, id, reason, by string) (*Request, error) {
	return t.transition(ctx, id, StatusRejected, func(r *Request, now time.Time) error {
		return r.Reject(reason, by, now)
	})
}

func (t *Tracker) transition(ctx context.Context, id string, to Status, apply func(*Request, time.Time) error) (*Request, error) {
	var req *Request
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := t.requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(r, t.now().UTC()); err != nil {
			return err
		}
		req = r
		return t.requests.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	t.metrics.ObservePayout(string(to))
	t.logger.Info("payout "+string(to), logging.String("payout_id", id))
	return req, nil
}

// MarkPayoutPaid moves an approved request to paid and debits the balance in
// the same transaction. The balance is checked again here, since
// commissions may have been adjusted after the request was made.
func (t *Tracker) MarkPayoutPaid(ctx context.Context, id, receiptRef, by string) (*Request, *Balance, error) {
	if receiptRef == "" {
		return nil, nil, errors.InvalidParam("receipt reference is required")
	}
	if t.receipts != nil {
		ok, err := t.receipts.Exists(ctx, receiptRef)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, errors.New(errors.ErrCodeReceiptMissing, "receipt not found in storage").WithDetail(receiptRef)
		}
	}

	var (
		req *Request
		bal *Balance
	)
	err := t.tx.WithinTx(ctx, func(ctx context.Context) error {
		r, err := t.requests.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := t.now().UTC()
		if err := r.MarkPaid(receiptRef, by, now); err != nil {
			return err
		}
		b, err := t.balanceFor(ctx, r.ManagerID, t.balances.GetForUpdate)
		if err != nil {
			return err
		}
		if err := b.Debit(r.Amount, now); err != nil {
			return err
		}
		if err := t.requests.Update(ctx, r); err != nil {
			return err
		}
		if err := t.balances.Upsert(ctx, b); err != nil {
			return err
		}
		req, bal = r, b
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	t.metrics.ObservePayout(string(StatusPaid))
	t.logger.Info("payout paid",
		logging.String("payout_id", id),
		logging.String("manager_id", req.ManagerID),
		logging.Decimal("amount", req.Amount),
		logging.Decimal("balance", bal.CurrentBalance))
	return req, bal, nil
}

//Personal.AI order the ending
