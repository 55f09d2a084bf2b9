// Package revenue aggregates normalized bookings, add-on service sales and
// task expenses into a report expressed in the system base currency.
package revenue

import (
	"strings"
	"time"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

// Filter narrows a report. Empty fields match everything. Tags match when
// the booking shares at least one tag with the filter.
type Filter struct {
	PropertyID    string                 `json:"property_id,omitempty"`
	Department    string                 `json:"department,omitempty"`
	CostCenter    string                 `json:"cost_center,omitempty"`
	BusinessUnit  string                 `json:"business_unit,omitempty"`
	Status        booking.SemanticStatus `json:"status,omitempty"`
	Type          string                 `json:"type,omitempty"`
	Category      string                 `json:"category,omitempty"`
	ChannelSource string                 `json:"channel_source,omitempty"`
	RevenueStream string                 `json:"revenue_stream,omitempty"`
	FiscalYear    int                    `json:"fiscal_year,omitempty"`
	DateStart     time.Time              `json:"date_start,omitempty"`
	DateEnd       time.Time              `json:"date_end,omitempty"`
	Tags          []string               `json:"tags,omitempty"`
}

// Validate rejects inverted date ranges and unknown statuses.
func (f Filter) Validate() error {
	if !f.DateStart.IsZero() && !f.DateEnd.IsZero() && f.DateStart.After(f.DateEnd) {
		return apperrors.New(apperrors.ErrCodeRevenueFilterInvalid, "date_start is after date_end")
	}
	switch f.Status {
	case "", booking.StatusConfirmed, booking.StatusPending, booking.StatusCancelled:
	default:
		return apperrors.New(apperrors.ErrCodeRevenueFilterInvalid, "unknown status").WithDetail(string(f.Status))
	}
	if f.FiscalYear < 0 {
		return apperrors.New(apperrors.ErrCodeRevenueFilterInvalid, "fiscal_year must be positive")
	}
	return nil
}

// matchBooking applies every filter field to a booking. Bookings are dated
// by check-in.
func (f Filter) matchBooking(b booking.Booking) bool {
	d := b.Dimensions
	return eq(f.PropertyID, b.PropertyID) &&
		f.common(b.CheckIn, d.Department, d.CostCenter, d.BusinessUnit) &&
		(f.Status == "" || f.Status == b.Status) &&
		eq(f.Type, d.Type) &&
		eq(f.Category, d.Category) &&
		eq(f.ChannelSource, d.Channel) &&
		eq(f.RevenueStream, d.RevenueStream) &&
		intersects(f.Tags, d.Tags)
}

func (f Filter) matchAddOn(a AddOnSale) bool {
	return eq(f.PropertyID, a.PropertyID) &&
		f.common(a.Date, a.Department, a.CostCenter, a.BusinessUnit) &&
		eq(f.Category, a.Category)
}

func (f Filter) matchExpense(e Expense) bool {
	return eq(f.PropertyID, e.PropertyID) &&
		f.common(e.Date, e.Department, e.CostCenter, e.BusinessUnit)
}

func (f Filter) common(at time.Time, department, costCenter, businessUnit string) bool {
	if !f.DateStart.IsZero() && at.Before(f.DateStart) {
		return false
	}
	if !f.DateEnd.IsZero() && at.After(f.DateEnd) {
		return false
	}
	if f.FiscalYear != 0 && at.Year() != f.FiscalYear {
		return false
	}
	return eq(f.Department, department) && eq(f.CostCenter, costCenter) && eq(f.BusinessUnit, businessUnit)
}

func eq(want, got string) bool {
	return want == "" || strings.EqualFold(want, got)
}

func intersects(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[strings.ToLower(t)] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[strings.ToLower(t)]; ok {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
