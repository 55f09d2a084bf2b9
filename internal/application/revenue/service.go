// Package revenue provides the application service that builds revenue
// reports from both booking stores plus add-on sales and expenses.
package revenue

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/StayLedger/internal/application/shared"
	"github.com/turtacn/StayLedger/internal/domain/booking"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
)

// SummaryInput contains the report filter. OrgID scopes every store read.
type SummaryInput struct {
	OrgID         string    `json:"org_id" validate:"required"`
	PropertyID    string    `json:"property_id"`
	Department    string    `json:"department"`
	CostCenter    string    `json:"cost_center"`
	BusinessUnit  string    `json:"business_unit"`
	Status        string    `json:"status" validate:"omitempty,oneof=confirmed pending cancelled"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	ChannelSource string    `json:"channel_source"`
	RevenueStream string    `json:"revenue_stream"`
	FiscalYear    int       `json:"fiscal_year" validate:"omitempty,gte=1970,lte=9999"`
	DateStart     time.Time `json:"date_start"`
	DateEnd       time.Time `json:"date_end"`
	Tags          []string  `json:"tags" validate:"dive,required"`
}

func (in *SummaryInput) filter() domainRevenue.Filter {
	return domainRevenue.Filter{
		PropertyID:    in.PropertyID,
		Department:    in.Department,
		CostCenter:    in.CostCenter,
		BusinessUnit:  in.BusinessUnit,
		Status:        booking.SemanticStatus(in.Status),
		Type:          in.Type,
		Category:      in.Category,
		ChannelSource: in.ChannelSource,
		RevenueStream: in.RevenueStream,
		FiscalYear:    in.FiscalYear,
		DateStart:     in.DateStart,
		DateEnd:       in.DateEnd,
		Tags:          in.Tags,
	}
}

// query narrows the store reads. A fiscal year without explicit dates
// becomes the calendar year.
func (in *SummaryInput) query() booking.Query {
	q := booking.Query{PropertyID: in.PropertyID, From: in.DateStart, To: in.DateEnd}
	if in.FiscalYear > 0 {
		if q.From.IsZero() {
			q.From = time.Date(in.FiscalYear, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		if q.To.IsZero() {
			q.To = time.Date(in.FiscalYear+1, time.January, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		}
	}
	return q
}

// Service builds revenue summaries.
type Service struct {
	bookings   booking.Repository
	sources    domainRevenue.SourceRepository
	normalizer *booking.Normalizer
	aggregator *domainRevenue.Aggregator
	logger     logging.Logger
}

// NewService wires the report pipeline.
func NewService(
	bookings booking.Repository,
	sources domainRevenue.SourceRepository,
	normalizer *booking.Normalizer,
	aggregator *domainRevenue.Aggregator,
	logger logging.Logger,
) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		bookings:   bookings,
		sources:    sources,
		normalizer: normalizer,
		aggregator: aggregator,
		logger:     logger.Named("revenue-service"),
	}
}

// Summary loads the three sources concurrently, normalizes the bookings and
// aggregates them under the input filter.
func (s *Service) Summary(ctx context.Context, in *SummaryInput) (*domainRevenue.Report, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	f := in.filter()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	q := in.query()

	var (
		raws     []booking.RawBooking
		addOns   []domainRevenue.AddOnSale
		expenses []domainRevenue.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raws, err = s.bookings.List(gctx, in.OrgID, q)
		return err
	})
	g.Go(func() (err error) {
		addOns, err = s.sources.ListAddOns(gctx, in.OrgID, q)
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.sources.ListExpenses(gctx, in.OrgID, q)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("revenue sources failed to load", logging.String("org_id", in.OrgID), logging.Err(err))
		return nil, err
	}

	report, err := s.aggregator.Aggregate(ctx, domainRevenue.Input{
		Bookings: s.normalizer.NormalizeAll(raws),
		AddOns:   addOns,
		Expenses: expenses,
	}, f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("revenue summary built",
		logging.String("org_id", in.OrgID),
		logging.Int("bookings", report.BookingCount),
		logging.Int("unconverted", len(report.Unconverted)))
	return report, nil
}

//Personal.AI order the ending
