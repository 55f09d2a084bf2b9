// Package payout tracks manager commission balances and the payout requests
// drawn against them.
package payout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/pkg/errors"
)

// Status is the lifecycle state of a payout request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusPaid     Status = "paid"
	StatusRejected Status = "rejected"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusRejected:
		return true
	}
	return false
}

// Request is a manager's request to withdraw from their balance.
type Request struct {
	ID              string          `json:"id"`
	ManagerID       string          `json:"manager_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          Status          `json:"status"`
	Note            string          `json:"note,omitempty"`
	ReceiptRef      string          `json:"receipt_ref,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	RequestedBy     string          `json:"requested_by,omitempty"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	PaidBy          string          `json:"paid_by,omitempty"`
	RejectedBy      string          `json:"rejected_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
}

// Approve moves a pending request to approved.
func (r *Request) Approve(by string, now time.Time) error {
	if r.Status != StatusPending {
		return r.transitionError(StatusApproved)
	}
	r.Status = StatusApproved
	r.ApprovedBy = by
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// MarkPaid moves an approved request to paid.
func (r *Request) MarkPaid(receiptRef, by string, now time.Time) error {
	if r.Status != StatusApproved {
		return r.transitionError(StatusPaid)
	}
	r.Status = StatusPaid
	r.ReceiptRef = receiptRef
	r.PaidBy = by
	r.PaidAt = &now
	r.UpdatedAt = now
	return nil
}

// Reject moves a pending request to rejected.
func (r *Request) Reject(reason, by string, now time.Time) error {
	if r.Status != StatusPending {
		return r.transitionError(StatusRejected)
	}
	r.Status = StatusRejected
	r.RejectionReason = reason
	r.RejectedBy = by
	r.RejectedAt = &now
	r.UpdatedAt = now
	return nil
}

func (r *Request) transitionError(to Status) error {
	return errors.Newf(errors.ErrCodePayoutInvalidTransition,
		"payout %s cannot move from %s to %s", r.ID, r.Status, to)
}

// Balance is a manager's running commission account.
// CurrentBalance always equals TotalEarned - TotalPaid.
type Balance struct {
	ManagerID      string          `json:"manager_id"`
	Currency       string          `json:"currency"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LastPayoutDate *time.Time      `json:"last_payout_date,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewBalance returns an empty balance for managerID.
func NewBalance(managerID, currency string, now time.Time) *Balance {
	return &Balance{ManagerID: managerID, Currency: currency, UpdatedAt: now}
}

// Credit adds earned commission.
func (b *Balance) Credit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return errors.New(errors.ErrCodePayoutAmountInvalid, "credit must be positive").WithDetail(amount.String())
	}
	b.TotalEarned = b.TotalEarned.Add(amount)
	b.CurrentBalance = b.CurrentBalance.Add(amount)
	b.UpdatedAt = now
	return nil
}

// Debit records a paid-out amount. It fails without mutation when amount
// exceeds the current balance.
func (b *Balance) Debit(amount decimal.Decimal, now time.Time) error {
	if !amount.IsPositive() {
		return errors.New(errors.ErrCodePayoutAmountInvalid, "debit must be positive").WithDetail(amount.String())
	}
	if amount.GreaterThan(b.CurrentBalance) {
		return errors.Newf(errors.ErrCodeInsufficientBalance,
			"payout %s exceeds balance %s", amount, b.CurrentBalance)
	}
	b.TotalPaid = b.TotalPaid.Add(amount)
	b.CurrentBalance = b.CurrentBalance.Sub(amount)
	b.LastPayoutDate = &now
	b.UpdatedAt = now
	return nil
}

// Consistent reports whether the balance invariant holds.
func (b *Balance) Consistent() bool {
	return b.CurrentBalance.Equal(b.TotalEarned.Sub(b.TotalPaid))
}

//Personal.AI order the ending
