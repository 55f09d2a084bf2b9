// Package reservation creates reservations. A reservation is written to the
// booking-revenue table and mirrored into the legacy table calendar views
// read; both rows commit together or not at all.
package reservation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/application/shared"
	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/currency"
	kafkainfra "github.com/turtacn/StayLedger/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// maxStayNights bounds how far back the overlap check looks for stays that
// began before the new check-in.
const maxStayNights = 365

// Store reads and writes both booking tables.
type Store interface {
	booking.Repository
	CreateRevenueRecord(ctx context.Context, b *booking.RawBooking) error
	CreateCalendarBooking(ctx context.Context, b *booking.RawBooking) error
}

// Transactor runs fn in one database transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker serializes reservation writes per property across instances.
type Locker interface {
	Acquire(ctx context.Context, name string) (func(context.Context) error, error)
}

// CreateInput describes a new reservation. At least one amount is required.
type CreateInput struct {
	OrgID             string    `json:"org_id" validate:"required"`
	PropertyID        string    `json:"property_id" validate:"required"`
	ManagerID         string    `json:"manager_id"`
	Source            string    `json:"source" validate:"required"`
	PaymentStatus     string    `json:"payment_status" validate:"required,oneof=paid pending pending_payment awaiting_payment"`
	FinalPayoutAmount string    `json:"final_payout_amount" validate:"required_without_all=GuestBookingPrice TotalAmount,omitempty,numeric"`
	GuestBookingPrice string    `json:"guest_booking_price" validate:"omitempty,numeric"`
	TotalAmount       string    `json:"total_amount" validate:"omitempty,numeric"`
	Currency          string    `json:"currency" validate:"required,currency"`
	CheckIn           time.Time `json:"check_in" validate:"required"`
	CheckOut          time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Channel           string    `json:"channel"`
	Department        string    `json:"department"`
	CostCenter        string    `json:"cost_center"`
	BusinessUnit      string    `json:"business_unit"`
	RevenueStream     string    `json:"revenue_stream"`
	Type              string    `json:"type"`
	Category          string    `json:"category"`
	Tags              []string  `json:"tags"`
}

// Service creates reservations.
type Service struct {
	store      Store
	normalizer *booking.Normalizer
	tx         Transactor
	locker     Locker
	publisher  shared.Publisher
	logger     logging.Logger
	now        func() time.Time
	newID      func() string
}

// NewService wires the reservation service. locker may be nil for a single
// instance deployment.
func NewService(store Store, normalizer *booking.Normalizer, tx Transactor, locker Locker, publisher shared.Publisher, logger logging.Logger) *Service {
	if publisher == nil {
		publisher = shared.NopPublisher{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{
		store:      store,
		normalizer: normalizer,
		tx:         tx,
		locker:     locker,
		publisher:  publisher,
		logger:     logger.Named("reservation"),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Create validates in, rejects a stay overlapping a live booking of the same
// property and writes both rows in one transaction.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*booking.RawBooking, error) {
	if err := shared.Validate(in); err != nil {
		return nil, err
	}
	raw, err := s.toRaw(in)
	if err != nil {
		return nil, err
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "reservation:"+in.PropertyID)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("reservation lock release failed", logging.String("property_id", in.PropertyID), logging.Err(err))
			}
		}()
	}

	if err := s.checkOverlap(ctx, raw); err != nil {
		return nil, err
	}

	calendar := *raw
	calendar.PaymentStatus = ""

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateRevenueRecord(ctx, raw); err != nil {
			return err
		}
		return s.store.CreateCalendarBooking(ctx, &calendar)
	})
	if err != nil {
		s.logger.Error("reservation not created", logging.String("property_id", in.PropertyID), logging.Err(err))
		return nil, err
	}

	s.logger.Info("reservation created",
		logging.String("booking_id", raw.ID),
		logging.String("property_id", raw.PropertyID),
		logging.Currency("currency", raw.Currency))
	shared.Notify(ctx, s.publisher, s.logger, kafkainfra.TopicReservationCreated, raw.PropertyID, raw)
	return raw, nil
}

func (s *Service) toRaw(in *CreateInput) (*booking.RawBooking, error) {
	parse := func(field, v string) (*decimal.Decimal, error) {
		if v == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return nil, errors.NewValidation("amount must be a non-negative decimal").WithDetail(field + "=" + v)
		}
		return &d, nil
	}
	raw := &booking.RawBooking{
		ID:            s.newID(),
		OrgID:         in.OrgID,
		PropertyID:    in.PropertyID,
		ManagerID:     in.ManagerID,
		Source:        strings.ToLower(strings.TrimSpace(in.Source)),
		Status:        legacyStatus(in.PaymentStatus),
		PaymentStatus: in.PaymentStatus,
		Currency:      currency.NormalizeCode(in.Currency),
		CheckIn:       in.CheckIn.UTC(),
		CheckOut:      in.CheckOut.UTC(),
		Channel:       in.Channel,
		Department:    in.Department,
		CostCenter:    in.CostCenter,
		BusinessUnit:  in.BusinessUnit,
		RevenueStream: in.RevenueStream,
		Type:          in.Type,
		Category:      in.Category,
		Tags:          in.Tags,
		CreatedAt:     s.now().UTC(),
	}
	var err error
	if raw.FinalPayoutAmount, err = parse("final_payout_amount", in.FinalPayoutAmount); err != nil {
		return nil, err
	}
	if raw.GuestBookingPrice, err = parse("guest_booking_price", in.GuestBookingPrice); err != nil {
		return nil, err
	}
	if raw.TotalAmount, err = parse("total_amount", in.TotalAmount); err != nil {
		return nil, err
	}
	return raw, nil
}

// checkOverlap fails when a live booking of the property shares a night
// with raw. Check-out day equals the next check-in day without overlap.
func (s *Service) checkOverlap(ctx context.Context, raw *booking.RawBooking) error {
	existing, err := s.store.List(ctx, raw.OrgID, booking.Query{
		PropertyID: raw.PropertyID,
		From:       raw.CheckIn.AddDate(0, 0, -maxStayNights),
		To:         raw.CheckOut,
	})
	if err != nil {
		return err
	}
	for _, b := range existing {
		nb := s.normalizer.Normalize(b)
		if nb.Status == booking.StatusCancelled {
			continue
		}
		if b.CheckIn.Before(raw.CheckOut) && raw.CheckIn.Before(b.CheckOut) {
			return errors.New(errors.ErrCodeReservationConflict, "stay overlaps an existing booking").WithDetail(b.ID)
		}
	}
	return nil
}

// legacyStatus maps a payment status onto the status vocabulary of the legacy
// table. Both rows carry it so a legacy-source reservation read back through
// either table resolves to the same semantic status.
func legacyStatus(paymentStatus string) string {
	if paymentStatus == "paid" {
		return "confirmed"
	}
	return "pending"
}

//Personal.AI order the ending
