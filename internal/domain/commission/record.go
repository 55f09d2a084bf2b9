// Package commission computes multi-party commission splits for bookings and
// manages the lifecycle of the resulting records.
package commission

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// Status is the lifecycle state of a commission record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusFinalized Status = "finalized"
)

// Role is the party a record's CommissionAmount is owed to.
type Role string

const (
	RoleManagement       Role = "management"
	RolePortfolioManager Role = "portfolio_manager"
	RoleReferralAgent    Role = "referral_agent"
)

var hundred = decimal.NewFromInt(100)

// Rates are commission percentages (15 means 15%).
type Rates struct {
	Management       decimal.Decimal `json:"management"`
	PortfolioManager decimal.Decimal `json:"portfolio_manager"`
	ReferralAgent    decimal.Decimal `json:"referral_agent"`
}

// Validate checks each rate lies in [0, 100] and that they leave the owner a
// non-negative share.
func (r Rates) Validate() error {
	for _, v := range []decimal.Decimal{r.Management, r.PortfolioManager, r.ReferralAgent} {
		if v.IsNegative() || v.GreaterThan(hundred) {
			return errors.New(errors.ErrCodeCommissionRateInvalid, "rate out of range").WithDetail(v.String())
		}
	}
	if r.Management.Add(r.PortfolioManager).Add(r.ReferralAgent).GreaterThan(hundred) {
		return errors.New(errors.ErrCodeCommissionRateInvalid, "rates exceed 100 percent")
	}
	return nil
}

// Split is the division of a payout between the parties.
type Split struct {
	Management       decimal.Decimal `json:"management"`
	PortfolioManager decimal.Decimal `json:"portfolio_manager"`
	ReferralAgent    decimal.Decimal `json:"referral_agent"`
	OwnerNet         decimal.Decimal `json:"owner_net"`
}

// ComputeSplit divides base by rates. Shares are rounded to the currency's
// minor unit and the owner receives the exact remainder, so the four parts
// always sum to base.
func ComputeSplit(base decimal.Decimal, rates Rates, code string) Split {
	share := func(rate decimal.Decimal) decimal.Decimal {
		return currency.Round(base.Mul(rate).Div(hundred), code)
	}
	s := Split{
		Management:       share(rates.Management),
		PortfolioManager: share(rates.PortfolioManager),
		ReferralAgent:    share(rates.ReferralAgent),
	}
	s.OwnerNet = base.Sub(s.Management).Sub(s.PortfolioManager).Sub(s.ReferralAgent)
	return s
}

// Record is the management commission owed on one booking, carrying the
// full split for reference.
type Record struct {
	ID         string `json:"id"`
	BookingID  string `json:"booking_id"`
	PropertyID string `json:"property_id"`
	ManagerID  string `json:"manager_id"`
	Role       Role   `json:"role"`

	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionRate   decimal.Decimal `json:"commission_rate"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Currency         string          `json:"currency"`
	Period           common.Period   `json:"period"`
	Status           Status          `json:"status"`

	PortfolioManagerRate   decimal.Decimal `json:"portfolio_manager_rate"`
	PortfolioManagerAmount decimal.Decimal `json:"portfolio_manager_amount"`
	ReferralAgentRate      decimal.Decimal `json:"referral_agent_rate"`
	ReferralAgentAmount    decimal.Decimal `json:"referral_agent_amount"`
	OwnerNetAmount         decimal.Decimal `json:"owner_net_amount"`

	CalculatedBy string     `json:"calculated_by"`
	ApprovedBy   string     `json:"approved_by,omitempty"`
	FinalizedBy  string     `json:"finalized_by,omitempty"`
	CalculatedAt time.Time  `json:"calculated_at"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	FinalizedAt  *time.Time `json:"finalized_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// apply stamps a computed split onto r.
func (r *Record) apply(base decimal.Decimal, code string, rates Rates, by string, now time.Time) {
	split := ComputeSplit(base, rates, code)
	r.BaseAmount = base
	r.Currency = code
	r.CommissionRate = rates.Management
	r.CommissionAmount = split.Management
	r.PortfolioManagerRate = rates.PortfolioManager
	r.PortfolioManagerAmount = split.PortfolioManager
	r.ReferralAgentRate = rates.ReferralAgent
	r.ReferralAgentAmount = split.ReferralAgent
	r.OwnerNetAmount = split.OwnerNet
	r.CalculatedBy = by
	r.CalculatedAt = now
	r.UpdatedAt = now
}

// Recalculate replaces the computed figures of a record that is still
// correctable. A finalized record is never recomputed.
func (r *Record) Recalculate(base decimal.Decimal, code string, rates Rates, by string, now time.Time) error {
	if r.Status == StatusFinalized {
		return errors.New(errors.ErrCodeCommissionFinalized, "finalized commission cannot be recalculated").WithDetail(r.ID)
	}
	r.apply(base, code, rates, by, now)
	return nil
}

// Approve moves a pending record to approved.
func (r *Record) Approve(by string, now time.Time) error {
	if r.Status != StatusPending {
		return transitionError(r, StatusApproved)
	}
	r.Status = StatusApproved
	r.ApprovedBy = by
	r.ApprovedAt = &now
	r.UpdatedAt = now
	return nil
}

// Finalize moves an approved record to finalized.
func (r *Record) Finalize(by string, now time.Time) error {
	if r.Status != StatusApproved {
		return transitionError(r, StatusFinalized)
	}
	r.Status = StatusFinalized
	r.FinalizedBy = by
	r.FinalizedAt = &now
	r.UpdatedAt = now
	return nil
}

func transitionError(r *Record, to Status) error {
	return errors.Newf(errors.ErrCodeCommissionInvalidTransition, "cannot move commission from %s to %s", r.Status, to).
		WithDetail(r.ID)
}

//Personal.AI order the ending
