package revenue

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// Names of the revenueBySource components.
const (
	SourceBookings = "bookings"
	SourceAddOns   = "add_on_services"
)

// Unassigned labels a bucket for items without a value in that dimension.
const Unassigned = "unassigned"

// AddOnSale is revenue from an ancillary service sold against a property.
type AddOnSale struct {
	ID           string          `json:"id"`
	PropertyID   string          `json:"property_id"`
	Category     string          `json:"category"`
	Department   string          `json:"department,omitempty"`
	CostCenter   string          `json:"cost_center,omitempty"`
	BusinessUnit string          `json:"business_unit,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Date         time.Time       `json:"date"`
}

// Expense is a cost derived from a completed operational task.
type Expense struct {
	ID           string          `json:"id"`
	PropertyID   string          `json:"property_id"`
	Type         string          `json:"type"`
	Department   string          `json:"department,omitempty"`
	CostCenter   string          `json:"cost_center,omitempty"`
	BusinessUnit string          `json:"business_unit,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Date         time.Time       `json:"date"`
}

// Input is everything a report is built from.
type Input struct {
	Bookings []booking.Booking
	AddOns   []AddOnSale
	Expenses []Expense
}

// UnconvertedItem is an amount that could not be brought into the base
// currency. It is reported in its original units and left out of totals.
type UnconvertedItem struct {
	Kind     string          `json:"kind"` // booking, add_on, expense
	ID       string          `json:"id"`
	Status   string          `json:"status,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Reason   string          `json:"reason"`
}

// Report is the published aggregate. Every monetary value is in
// BaseCurrency and rounded once to its minor unit; each breakdown sums
// exactly to the total it decomposes.
type Report struct {
	BaseCurrency          string                     `json:"base_currency"`
	TotalRevenue          decimal.Decimal            `json:"total_revenue"`
	TotalExpenses         decimal.Decimal            `json:"total_expenses"`
	NetProfit             decimal.Decimal            `json:"net_profit"`
	ProfitMargin          decimal.Decimal            `json:"profit_margin"`
	PendingPayments       decimal.Decimal            `json:"pending_payments"`
	RevenueBySource       map[string]decimal.Decimal `json:"revenue_by_source"`
	ExpensesByType        map[string]decimal.Decimal `json:"expenses_by_type"`
	DepartmentBreakdown   map[string]decimal.Decimal `json:"department_breakdown"`
	ChannelBreakdown      map[string]decimal.Decimal `json:"channel_breakdown"`
	BusinessUnitBreakdown map[string]decimal.Decimal `json:"business_unit_breakdown"`
	PropertyBreakdown     map[string]decimal.Decimal `json:"property_breakdown"`
	MonthlyBreakdown      map[string]decimal.Decimal `json:"monthly_breakdown"`
	BookingCount          int                        `json:"booking_count"`
	PendingCount          int                        `json:"pending_count"`
	Unconverted           []UnconvertedItem          `json:"unconverted"`
	// UnconvertedTotals sums unconverted confirmed revenue per original currency.
	UnconvertedTotals map[string]decimal.Decimal `json:"unconverted_totals,omitempty"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

// Converter is the subset of currency.Converter the aggregator needs.
type Converter interface {
	Base() string
	ToBase(ctx context.Context, amount decimal.Decimal, from string) currency.Conversion
}

// Metrics observes report runs.
type Metrics interface {
	ObserveReport(seconds float64, bookings, unconverted int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveReport(float64, int, int) {}

// Aggregator builds revenue reports.
type Aggregator struct {
	converter Converter
	logger    logging.Logger
	metrics   Metrics
	now       func() time.Time
}

// NewAggregator builds an Aggregator.
func NewAggregator(converter Converter, log logging.Logger, metrics Metrics) *Aggregator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Aggregator{converter: converter, logger: log.Named("revenue"), metrics: metrics, now: time.Now}
}

// accumulator holds exact, unrounded sums.
type accumulator struct {
	bookings, addOns, expenses, pending decimal.Decimal

	byType, byDepartment, byChannel, byUnit, byProperty, byMonth map[string]decimal.Decimal
	unconvertedTotals                                            map[string]decimal.Decimal
}

func newAccumulator() *accumulator {
	return &accumulator{
		byType:            map[string]decimal.Decimal{},
		byDepartment:      map[string]decimal.Decimal{},
		byChannel:         map[string]decimal.Decimal{},
		byUnit:            map[string]decimal.Decimal{},
		byProperty:        map[string]decimal.Decimal{},
		byMonth:           map[string]decimal.Decimal{},
		unconvertedTotals: map[string]decimal.Decimal{},
	}
}

func add(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	if key == "" {
		key = Unassigned
	}
	m[key] = m[key].Add(v)
}

func (a *accumulator) revenue(v decimal.Decimal, property, department, channel, unit string, at time.Time) {
	add(a.byDepartment, department, v)
	add(a.byChannel, channel, v)
	add(a.byUnit, unit, v)
	add(a.byProperty, property, v)
	add(a.byMonth, at.UTC().Format("2006-01"), v)
}

// Aggregate filters, converts and sums in. It degrades instead of failing:
// amounts that cannot be converted are listed in Report.Unconverted.
func (g *Aggregator) Aggregate(ctx context.Context, in Input, f Filter) (*Report, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	start := g.now()
	base := g.converter.Base()
	acc := newAccumulator()
	report := &Report{BaseCurrency: base}

	for _, b := range in.Bookings {
		if !f.matchBooking(b) {
			continue
		}
		switch b.Status {
		case booking.StatusConfirmed, booking.StatusPending:
		default:
			continue
		}

		conv := g.converter.ToBase(ctx, b.Amount.Value, b.Currency)
		if !conv.Converted {
			report.Unconverted = append(report.Unconverted, UnconvertedItem{
				Kind: "booking", ID: b.ID, Status: string(b.Status),
				Amount: conv.Original, Currency: conv.OriginalCurrency, Reason: conv.Reason,
			})
			if b.Status == booking.StatusConfirmed {
				add(acc.unconvertedTotals, conv.OriginalCurrency, conv.Original)
			}
			continue
		}

		if b.Status == booking.StatusPending {
			acc.pending = acc.pending.Add(conv.Amount)
			report.PendingCount++
			continue
		}
		report.BookingCount++
		acc.bookings = acc.bookings.Add(conv.Amount)
		d := b.Dimensions
		acc.revenue(conv.Amount, b.PropertyID, d.Department, d.Channel, d.BusinessUnit, b.CheckIn)
	}

	for _, a := range in.AddOns {
		if !f.matchAddOn(a) || !bookingOnlyFiltersUnset(f) {
			continue
		}
		conv := g.converter.ToBase(ctx, a.Amount, a.Currency)
		if !conv.Converted {
			report.Unconverted = append(report.Unconverted, UnconvertedItem{
				Kind: "add_on", ID: a.ID, Amount: conv.Original, Currency: conv.OriginalCurrency, Reason: conv.Reason,
			})
			add(acc.unconvertedTotals, conv.OriginalCurrency, conv.Original)
			continue
		}
		acc.addOns = acc.addOns.Add(conv.Amount)
		acc.revenue(conv.Amount, a.PropertyID, a.Department, SourceAddOns, a.BusinessUnit, a.Date)
	}

	for _, e := range in.Expenses {
		if !f.matchExpense(e) || !bookingOnlyFiltersUnset(f) {
			continue
		}
		conv := g.converter.ToBase(ctx, e.Amount, e.Currency)
		if !conv.Converted {
			report.Unconverted = append(report.Unconverted, UnconvertedItem{
				Kind: "expense", ID: e.ID, Amount: conv.Original, Currency: conv.OriginalCurrency, Reason: conv.Reason,
			})
			continue
		}
		acc.expenses = acc.expenses.Add(conv.Amount)
		add(acc.byType, e.Type, conv.Amount)
	}

	g.publish(report, acc, base)

	sort.SliceStable(report.Unconverted, func(i, j int) bool {
		if report.Unconverted[i].Kind != report.Unconverted[j].Kind {
			return report.Unconverted[i].Kind < report.Unconverted[j].Kind
		}
		return report.Unconverted[i].ID < report.Unconverted[j].ID
	})
	if len(report.Unconverted) > 0 {
		g.logger.Warn("report contains unconverted amounts",
			logging.Int("count", len(report.Unconverted)),
			logging.Currency("base", base))
	}

	report.GeneratedAt = g.now().UTC()
	g.metrics.ObserveReport(g.now().Sub(start).Seconds(), report.BookingCount+report.PendingCount, len(report.Unconverted))
	return report, nil
}

// bookingOnlyFiltersUnset reports whether f carries none of the filters
// that only bookings have. When one is set, add-ons and expenses cannot
// match it and are left out.
func bookingOnlyFiltersUnset(f Filter) bool {
	return f.Status == "" && f.Type == "" && f.ChannelSource == "" && f.RevenueStream == "" && len(f.Tags) == 0
}

// publish rounds once and fills every published figure.
func (g *Aggregator) publish(r *Report, acc *accumulator, base string) {
	exactRevenue := acc.bookings.Add(acc.addOns)

	r.TotalRevenue = currency.Round(exactRevenue, base)
	r.TotalExpenses = currency.Round(acc.expenses, base)
	r.NetProfit = r.TotalRevenue.Sub(r.TotalExpenses)
	r.PendingPayments = currency.Round(acc.pending, base)

	r.ProfitMargin = decimal.Zero
	if !exactRevenue.IsZero() {
		r.ProfitMargin = exactRevenue.Sub(acc.expenses).DivRound(exactRevenue, 8).Round(4)
	}

	r.RevenueBySource = allocate(map[string]decimal.Decimal{
		SourceBookings: acc.bookings,
		SourceAddOns:   acc.addOns,
	}, r.TotalRevenue, base)
	r.ExpensesByType = allocate(acc.byType, r.TotalExpenses, base)
	r.DepartmentBreakdown = allocate(acc.byDepartment, r.TotalRevenue, base)
	r.ChannelBreakdown = allocate(acc.byChannel, r.TotalRevenue, base)
	r.BusinessUnitBreakdown = allocate(acc.byUnit, r.TotalRevenue, base)
	r.PropertyBreakdown = allocate(acc.byProperty, r.TotalRevenue, base)
	r.MonthlyBreakdown = allocate(acc.byMonth, r.TotalRevenue, base)

	if len(acc.unconvertedTotals) > 0 {
		r.UnconvertedTotals = make(map[string]decimal.Decimal, len(acc.unconvertedTotals))
		for code, v := range acc.unconvertedTotals {
			r.UnconvertedTotals[code] = currency.Round(v, code)
		}
	}
}

//Personal.AI order the ending
