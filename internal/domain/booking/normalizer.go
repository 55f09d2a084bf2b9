package booking

import (
	"strings"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// Normalizer classifies and normalizes raw bookings.
type Normalizer struct {
	legacy   map[string]struct{}
	statuses *StatusTable
	amounts  AmountPriority
	logger   logging.Logger
}

// NewNormalizer builds a Normalizer. legacySources are the raw source values
// that identify the legacy store; a nil table or priority selects the
// defaults.
func NewNormalizer(legacySources []string, statuses *StatusTable, amounts AmountPriority, log logging.Logger) *Normalizer {
	if statuses == nil {
		statuses = MustDefaultStatusTable()
	}
	if amounts == nil {
		amounts = DefaultAmountPriority()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	set := make(map[string]struct{}, len(legacySources))
	for _, s := range legacySources {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return &Normalizer{legacy: set, statuses: statuses, amounts: amounts, logger: log.Named("normalizer")}
}

// Classify determines the provenance of raw from its source field.
func (n *Normalizer) Classify(raw RawBooking) Provenance {
	if _, ok := n.legacy[strings.ToLower(strings.TrimSpace(raw.Source))]; ok {
		return ProvenanceLegacy
	}
	return ProvenanceRevenueTable
}

// Normalize projects one record. It never fails: an unknown status or a
// record without any amount is marked excluded.
func (n *Normalizer) Normalize(raw RawBooking) Booking {
	prov := n.Classify(raw)

	rawStatus := raw.Status
	if prov == ProvenanceRevenueTable && raw.PaymentStatus != "" {
		rawStatus = raw.PaymentStatus
	}
	status := n.statuses.Resolve(prov, rawStatus)
	if status == StatusExcluded {
		n.logger.Debug("unrecognised booking status excluded",
			logging.String("booking_id", raw.ID),
			logging.String("provenance", string(prov)),
			logging.String("raw_status", rawStatus))
	}

	amount := n.amounts.Select(prov, raw)
	if !amount.Present() && status != StatusCancelled && status != StatusExcluded {
		n.logger.Warn("booking has no settled amount, excluded",
			logging.String("booking_id", raw.ID),
			logging.String("raw_status", rawStatus))
		status = StatusExcluded
	}

	return Booking{
		ID:         raw.ID,
		PropertyID: raw.PropertyID,
		ManagerID:  raw.ManagerID,
		Provenance: prov,
		Status:     status,
		RawStatus:  rawStatus,
		Amount:     amount,
		Currency:   strings.ToUpper(raw.Currency),
		CheckIn:    raw.CheckIn,
		CheckOut:   raw.CheckOut,
		Dimensions: Dimensions{
			Channel:       raw.Channel,
			Department:    raw.Department,
			CostCenter:    raw.CostCenter,
			BusinessUnit:  raw.BusinessUnit,
			RevenueStream: raw.RevenueStream,
			Type:          raw.Type,
			Category:      raw.Category,
			Tags:          raw.Tags,
		},
	}
}

// NormalizeAll projects every record, preserving order.
func (n *Normalizer) NormalizeAll(raws []RawBooking) []Booking {
	out := make([]Booking, 0, len(raws))
	for _, r := range raws {
		out = append(out, n.Normalize(r))
	}
	return out
}

// SettledAmount returns the settled figure of raw under n's priority table.
func (n *Normalizer) SettledAmount(raw RawBooking) SettledAmount {
	return n.amounts.Select(n.Classify(raw), raw)
}

//Personal.AI order the ending
