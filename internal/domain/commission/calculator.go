package commission

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

// Repository persists commission records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	// GetByID returns a COM_001 error when absent.
	GetByID(ctx context.Context, id string) (*Record, error)
	// FindByBooking returns a COM_001 error when the booking has no record
	// for role.
	FindByBooking(ctx context.Context, bookingID string, role Role) (*Record, error)
	// ListByManager returns records whose period lies in [from, to].
	ListByManager(ctx context.Context, managerID string, from, to common.Period) ([]*Record, error)
}

// Assignment links a property to its manager. A nil ManagementRate means
// the configured default applies.
type Assignment struct {
	PropertyID     string
	ManagerID      string
	ManagementRate *decimal.Decimal
}

// AssignmentReader resolves the manager of a property.
type AssignmentReader interface {
	// ForProperty returns a NotFound error when the property is unassigned.
	ForProperty(ctx context.Context, propertyID string) (*Assignment, error)
}

// Converter brings amounts into the base currency.
type Converter interface {
	Base() string
	ToBase(ctx context.Context, amount decimal.Decimal, from string) currency.Conversion
}

// Metrics observes commission lifecycle events.
type Metrics interface {
	ObserveCommission(event string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveCommission(string) {}

// Lifecycle event names.
const (
	EventCalculated   = "calculated"
	EventRecalculated = "recalculated"
	EventApproved     = "approved"
	EventFinalized    = "finalized"
)

// Calculator computes commission records from bookings.
type Calculator struct {
	bookings    booking.Repository
	normalizer  *booking.Normalizer
	assignments AssignmentReader
	records     Repository
	converter   Converter
	defaults    Rates
	logger      logging.Logger
	metrics     Metrics
	now         func() time.Time
	newID       func() string
}

// CalculatorOption customises a Calculator.
type CalculatorOption func(*Calculator)

func WithClock(now func() time.Time) CalculatorOption {
	return func(c *Calculator) { c.now = now }
}

func WithIDGenerator(fn func() string) CalculatorOption {
	return func(c *Calculator) { c.newID = fn }
}

func WithMetrics(m Metrics) CalculatorOption {
	return func(c *Calculator) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(l logging.Logger) CalculatorOption {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCalculator builds a Calculator. defaults supplies the management rate
// for properties without an explicit one and the portfolio-manager and
// referral-agent rates, which stay zero until configured.
func NewCalculator(
	bookings booking.Repository,
	normalizer *booking.Normalizer,
	assignments AssignmentReader,
	records Repository,
	converter Converter,
	defaults Rates,
	opts ...CalculatorOption,
) (*Calculator, error) {
	if err := defaults.Validate(); err != nil {
		return nil, err
	}
	c := &Calculator{
		bookings:    bookings,
		normalizer:  normalizer,
		assignments: assignments,
		records:     records,
		converter:   converter,
		defaults:    defaults,
		logger:      logging.NewNopLogger(),
		metrics:     nopMetrics{},
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("commission")
	return c, nil
}

// CalculateCommission computes or recomputes the management commission for
// bookingID from its final payout amount. A new record starts pending; an existing pending or approved
// record is updated in place; a finalized one is left untouched and an
// error is returned.
func (c *Calculator) CalculateCommission(ctx context.Context, bookingID, calculatedBy string) (*Record, error) {
	raw, err := c.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	nb := c.normalizer.Normalize(*raw)
	if nb.Status == booking.StatusCancelled {
		return nil, errors.InvalidState("cannot calculate commission for a cancelled booking").WithDetail(bookingID)
	}
	if nb.Amount.Kind != booking.AmountFinalPayout {
		return nil, errors.New(errors.ErrCodeBookingAmountAbsent, "booking has no final payout amount").
			WithDetail(bookingID + ": " + string(nb.Amount.Kind))
	}
	if nb.Status == booking.StatusExcluded {
		return nil, errors.InvalidState("booking status does not count as revenue").WithDetail(bookingID + ": " + nb.RawStatus)
	}

	managerID, rates, err := c.resolveRates(ctx, raw)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	code := currency.NormalizeCode(nb.Currency)

	existing, err := c.records.FindByBooking(ctx, bookingID, RoleManagement)
	switch {
	case err == nil:
		if err := existing.Recalculate(nb.Amount.Value, code, rates, calculatedBy, now); err != nil {
			return nil, err
		}
		existing.ManagerID = managerID
		existing.Period = periodOf(raw, now)
		if err := c.records.Update(ctx, existing); err != nil {
			return nil, err
		}
		c.metrics.ObserveCommission(EventRecalculated)
		c.logger.Info("commission recalculated",
			logging.String("commission_id", existing.ID),
			logging.String("booking_id", bookingID),
			logging.Decimal("amount", existing.CommissionAmount))
		return existing, nil
	case !errors.IsNotFound(err):
		return nil, err
	}

	rec := &Record{
		ID:         c.newID(),
		BookingID:  bookingID,
		PropertyID: raw.PropertyID,
		ManagerID:  managerID,
		Role:       RoleManagement,
		Period:     periodOf(raw, now),
		Status:     StatusPending,
		CreatedAt:  now,
	}
	rec.apply(nb.Amount.Value, code, rates, calculatedBy, now)

	if err := c.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	c.metrics.ObserveCommission(EventCalculated)
	c.logger.Info("commission calculated",
		logging.String("commission_id", rec.ID),
		logging.String("booking_id", bookingID),
		logging.String("manager_id", managerID),
		logging.Decimal("amount", rec.CommissionAmount),
		logging.Currency("currency", code))
	return rec, nil
}

func (c *Calculator) resolveRates(ctx context.Context, raw *booking.RawBooking) (string, Rates, error) {
	rates := c.defaults
	managerID := raw.ManagerID

	a, err := c.assignments.ForProperty(ctx, raw.PropertyID)
	switch {
	case err == nil:
		if a.ManagerID != "" {
			managerID = a.ManagerID
		}
		if a.ManagementRate != nil {
			rates.Management = *a.ManagementRate
		}
	case !errors.IsNotFound(err):
		return "", Rates{}, err
	}

	if managerID == "" {
		return "", Rates{}, errors.NotFound("no manager assigned to property").WithDetail(raw.PropertyID)
	}
	if err := rates.Validate(); err != nil {
		return "", Rates{}, err
	}
	return managerID, rates, nil
}

// periodOf dates a commission by the month the stay ended.
func periodOf(raw *booking.RawBooking, now time.Time) common.Period {
	switch {
	case !raw.CheckOut.IsZero():
		return common.PeriodOf(raw.CheckOut)
	case !raw.CheckIn.IsZero():
		return common.PeriodOf(raw.CheckIn)
	default:
		return common.PeriodOf(now)
	}
}

// Approve moves a pending record to approved.
func (c *Calculator) Approve(ctx context.Context, id, by string) (*Record, error) {
	rec, err := c.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Approve(by, c.now().UTC()); err != nil {
		return nil, err
	}
	if err := c.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	c.metrics.ObserveCommission(EventApproved)
	c.logger.Info("commission approved", logging.String("commission_id", id), logging.String("by", by))
	return rec, nil
}

// Finalize moves an approved record to finalized. Crediting the manager's
// balance is the caller's job and belongs in the same transaction.
func (c *Calculator) Finalize(ctx context.Context, id, by string) (*Record, error) {
	rec, err := c.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.Finalize(by, c.now().UTC()); err != nil {
		return nil, err
	}
	if err := c.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	c.metrics.ObserveCommission(EventFinalized)
	c.logger.Info("commission finalized", logging.String("commission_id", id), logging.String("by", by))
	return rec, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Period aggregation
// ─────────────────────────────────────────────────────────────────────────────

// PropertyTotal is one row of a period breakdown.
type PropertyTotal struct {
	PropertyID       string          `json:"property_id"`
	Records          int             `json:"records"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// PeriodSummary totals a manager's existing records over a month range.
type PeriodSummary struct {
	ManagerID       string                     `json:"manager_id"`
	Start           common.Period              `json:"start"`
	End             common.Period              `json:"end"`
	Currency        string                     `json:"currency"`
	Records         int                        `json:"records"`
	TotalBase       decimal.Decimal            `json:"total_base"`
	TotalCommission decimal.Decimal            `json:"total_commission"`
	ByStatus        map[Status]decimal.Decimal `json:"by_status"`
	ByProperty      []PropertyTotal            `json:"by_property"`
	Unconverted     []string                   `json:"unconverted,omitempty"`
}

// CalculateManagerCommissionForPeriod totals the records of managerID whose
// period lies in [start, end], optionally restricted to properties. It only
// reads existing records.
func (c *Calculator) CalculateManagerCommissionForPeriod(ctx context.Context, managerID string, start, end common.Period, properties []string) (*PeriodSummary, error) {
	if start > end {
		return nil, errors.InvalidParam("start period is after end period")
	}
	recs, err := c.records.ListByManager(ctx, managerID, start, end)
	if err != nil {
		return nil, err
	}

	allow := make(map[string]struct{}, len(properties))
	for _, p := range properties {
		allow[p] = struct{}{}
	}

	base := c.converter.Base()
	type exact struct {
		n                int
		base, commission decimal.Decimal
	}
	byProperty := map[string]*exact{}
	byStatus := map[Status]decimal.Decimal{}
	summary := &PeriodSummary{ManagerID: managerID, Start: start, End: end, Currency: base}

	for _, r := range recs {
		if !r.Period.Within(start, end) {
			continue
		}
		if len(allow) > 0 {
			if _, ok := allow[r.PropertyID]; !ok {
				continue
			}
		}
		convBase := c.converter.ToBase(ctx, r.BaseAmount, r.Currency)
		convComm := c.converter.ToBase(ctx, r.CommissionAmount, r.Currency)
		if !convBase.Converted || !convComm.Converted {
			summary.Unconverted = append(summary.Unconverted, r.ID)
			continue
		}
		e := byProperty[r.PropertyID]
		if e == nil {
			e = &exact{}
			byProperty[r.PropertyID] = e
		}
		e.n++
		e.base = e.base.Add(convBase.Amount)
		e.commission = e.commission.Add(convComm.Amount)
		byStatus[r.Status] = byStatus[r.Status].Add(convComm.Amount)
	}

	ids := make([]string, 0, len(byProperty))
	for id := range byProperty {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		e := byProperty[id]
		row := PropertyTotal{
			PropertyID:       id,
			Records:          e.n,
			BaseAmount:       currency.Round(e.base, base),
			CommissionAmount: currency.Round(e.commission, base),
		}
		summary.ByProperty = append(summary.ByProperty, row)
		summary.Records += row.Records
		summary.TotalBase = summary.TotalBase.Add(row.BaseAmount)
		summary.TotalCommission = summary.TotalCommission.Add(row.CommissionAmount)
	}
	summary.ByStatus = make(map[Status]decimal.Decimal, len(byStatus))
	for s, v := range byStatus {
		summary.ByStatus[s] = currency.Round(v, base)
	}
	return summary, nil
}

//Personal.AI order the ending
