package booking

import (
	"github.com/shopspring/decimal"
)

// AmountKind identifies which monetary figure of a record was used.
type AmountKind string

const (
	AmountFinalPayout AmountKind = "final_payout"
	AmountGuestPrice  AmountKind = "guest_price"
	AmountGrossTotal  AmountKind = "gross_total"
	AmountAbsent      AmountKind = "absent"
)

// SettledAmount is the most settled figure available on a record, tagged
// with the field it came from.
type SettledAmount struct {
	Kind  AmountKind      `json:"kind"`
	Value decimal.Decimal `json:"value"`
}

// Present reports whether any figure was found.
func (a SettledAmount) Present() bool { return a.Kind != AmountAbsent }

// AmountPriority orders amount kinds per provenance, most settled first.
type AmountPriority map[Provenance][]AmountKind

// DefaultAmountPriority prefers the owner payout over the guest price over
// the gross total for both stores.
func DefaultAmountPriority() AmountPriority {
	order := []AmountKind{AmountFinalPayout, AmountGuestPrice, AmountGrossTotal}
	return AmountPriority{
		ProvenanceLegacy:       order,
		ProvenanceRevenueTable: order,
	}
}

// Select picks the first populated figure of raw in p's order.
func (ap AmountPriority) Select(p Provenance, raw RawBooking) SettledAmount {
	for _, kind := range ap[p] {
		if v := raw.field(kind); v != nil {
			return SettledAmount{Kind: kind, Value: *v}
		}
	}
	return SettledAmount{Kind: AmountAbsent, Value: decimal.Zero}
}

func (r RawBooking) field(kind AmountKind) *decimal.Decimal {
	switch kind {
	case AmountFinalPayout:
		return r.FinalPayoutAmount
	case AmountGuestPrice:
		return r.GuestBookingPrice
	case AmountGrossTotal:
		return r.TotalAmount
	}
	return nil
}

//Personal.AI order the ending
