// Package booking projects raw records from the legacy booking store and the
// booking-revenue table onto a single normalized shape.
package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Provenance names the store a record came from.
type Provenance string

const (
	ProvenanceLegacy       Provenance = "legacy"
	ProvenanceRevenueTable Provenance = "revenue_table"
)

// Provenances lists every provenance the status table must cover.
var Provenances = []Provenance{ProvenanceLegacy, ProvenanceRevenueTable}

// SemanticStatus is the normalized booking state.
type SemanticStatus string

const (
	StatusConfirmed SemanticStatus = "confirmed"
	StatusPending   SemanticStatus = "pending"
	StatusCancelled SemanticStatus = "cancelled"
	// StatusExcluded marks a record whose raw status is not recognised. It
	// never contributes to revenue.
	StatusExcluded SemanticStatus = "excluded"
)

// IsRevenue reports whether bookings in s count towards confirmed revenue.
func (s SemanticStatus) IsRevenue() bool { return s == StatusConfirmed }

// RawBooking is a record as read from either store. Legacy rows carry their
// lifecycle in Status; revenue-table rows carry it in PaymentStatus.
type RawBooking struct {
	ID            string
	OrgID         string
	PropertyID    string
	ManagerID     string
	Source        string
	Status        string
	PaymentStatus string

	FinalPayoutAmount *decimal.Decimal
	GuestBookingPrice *decimal.Decimal
	TotalAmount       *decimal.Decimal
	Currency          string

	CheckIn  time.Time
	CheckOut time.Time

	Channel       string
	Department    string
	CostCenter    string
	BusinessUnit  string
	RevenueStream string
	Type          string
	Category      string
	Tags          []string
	CreatedAt     time.Time
}

// Dimensions are the attributes reports filter and group on.
type Dimensions struct {
	Channel       string   `json:"channel,omitempty"`
	Department    string   `json:"department,omitempty"`
	CostCenter    string   `json:"cost_center,omitempty"`
	BusinessUnit  string   `json:"business_unit,omitempty"`
	RevenueStream string   `json:"revenue_stream,omitempty"`
	Type          string   `json:"type,omitempty"`
	Category      string   `json:"category,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

// Booking is the normalized projection. It is derived per query and never
// persisted.
type Booking struct {
	ID         string         `json:"id"`
	PropertyID string         `json:"property_id"`
	ManagerID  string         `json:"manager_id,omitempty"`
	Provenance Provenance     `json:"provenance"`
	Status     SemanticStatus `json:"status"`
	RawStatus  string         `json:"raw_status"`
	Amount     SettledAmount  `json:"amount"`
	Currency   string         `json:"currency"`
	CheckIn    time.Time      `json:"check_in"`
	CheckOut   time.Time      `json:"check_out"`
	Dimensions Dimensions     `json:"dimensions"`
}

// Query narrows what the stores return. Zero fields are unconstrained.
type Query struct {
	PropertyID string
	From       time.Time
	To         time.Time
}

// Repository reads bookings from both stores.
type Repository interface {
	// FindByID looks the id up in the revenue table first, then the legacy
	// store. A miss in both returns a BKG_001 error.
	FindByID(ctx context.Context, id string) (*RawBooking, error)
	// List returns the records of both stores for orgID.
	List(ctx context.Context, orgID string, q Query) ([]RawBooking, error)
}

//Personal.AI order the ending
