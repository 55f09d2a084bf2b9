package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// The legacy store has no payment_status; it is projected as empty so both
// tables scan through the same function.
const (
	bookingColumnsTail = `final_payout_amount, guest_booking_price, total_amount, currency,
		check_in, check_out, channel, department, cost_center, business_unit,
		revenue_stream, booking_type, category, tags, created_at`

	revenueSelect = `SELECT id, org_id, property_id, manager_id, source, status, payment_status, ` +
		bookingColumnsTail + ` FROM booking_revenue`
	legacySelect = `SELECT id, org_id, property_id, manager_id, source, status, '' AS payment_status, ` +
		bookingColumnsTail + ` FROM bookings`
)

// BookingRepo reads both booking stores and writes reservations into them.
type BookingRepo struct {
	conn *postgres.Connection
	log  logging.Logger
}

var _ booking.Repository = (*BookingRepo)(nil)

func NewBookingRepo(conn *postgres.Connection, log logging.Logger) *BookingRepo {
	return &BookingRepo{conn: conn, log: log}
}

func (r *BookingRepo) FindByID(ctx context.Context, id string) (*booking.RawBooking, error) {
	for _, q := range []string{revenueSelect, legacySelect} {
		row := r.conn.Executor(ctx).QueryRowContext(ctx, q+` WHERE id = $1`, id)
		b, err := scanRawBooking(row)
		if err == nil {
			return b, nil
		}
		if !stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load booking")
		}
	}
	return nil, errors.New(errors.ErrCodeBookingNotFound, "booking not found").WithDetail(id)
}

func (r *BookingRepo) List(ctx context.Context, orgID string, q booking.Query) ([]booking.RawBooking, error) {
	where := []string{"org_id = $1"}
	args := []interface{}{orgID}
	if q.PropertyID != "" {
		args = append(args, q.PropertyID)
		where = append(where, fmt.Sprintf("property_id = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where = append(where, fmt.Sprintf("check_in >= $%d", len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where = append(where, fmt.Sprintf("check_in <= $%d", len(args)))
	}
	cond := " WHERE " + strings.Join(where, " AND ")
	// A reservation mirrored into the legacy table is read from booking_revenue only.
	legacyCond := cond + " AND NOT EXISTS (SELECT 1 FROM booking_revenue br WHERE br.id = bookings.id)"
	query := revenueSelect + cond + " UNION ALL " + legacySelect + legacyCond + " ORDER BY check_in, id"

	rows, err := r.conn.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to list bookings")
	}
	defer rows.Close()

	var out []booking.RawBooking
	for rows.Next() {
		b, err := scanRawBooking(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to scan booking")
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to iterate bookings")
	}
	return out, nil
}

// CreateRevenueRecord inserts into booking_revenue.
func (r *BookingRepo) CreateRevenueRecord(ctx context.Context, b *booking.RawBooking) error {
	query := `
		INSERT INTO booking_revenue (
			id, org_id, property_id, manager_id, source, status, payment_status,
			final_payout_amount, guest_booking_price, total_amount, currency,
			check_in, check_out, channel, department, cost_center, business_unit,
			revenue_stream, booking_type, category, tags, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`
	_, err := r.conn.Executor(ctx).ExecContext(ctx, query,
		b.ID, b.OrgID, b.PropertyID, b.ManagerID, b.Source, b.Status, b.PaymentStatus,
		nullDecimal(b.FinalPayoutAmount), nullDecimal(b.GuestBookingPrice), nullDecimal(b.TotalAmount), b.Currency,
		b.CheckIn, b.CheckOut, b.Channel, b.Department, b.CostCenter, b.BusinessUnit,
		b.RevenueStream, b.Type, b.Category, pq.Array(b.Tags), b.CreatedAt,
	)
	return r.insertError(err, "booking_revenue", b.ID)
}

// CreateCalendarBooking inserts the legacy row calendar views read.
func (r *BookingRepo) CreateCalendarBooking(ctx context.Context, b *booking.RawBooking) error {
	query := `
		INSERT INTO bookings (
			id, org_id, property_id, manager_id, source, status,
			final_payout_amount, guest_booking_price, total_amount, currency,
			check_in, check_out, channel, department, cost_center, business_unit,
			revenue_stream, booking_type, category, tags, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err := r.conn.Executor(ctx).ExecContext(ctx, query,
		b.ID, b.OrgID, b.PropertyID, b.ManagerID, b.Source, b.Status,
		nullDecimal(b.FinalPayoutAmount), nullDecimal(b.GuestBookingPrice), nullDecimal(b.TotalAmount), b.Currency,
		b.CheckIn, b.CheckOut, b.Channel, b.Department, b.CostCenter, b.BusinessUnit,
		b.RevenueStream, b.Type, b.Category, pq.Array(b.Tags), b.CreatedAt,
	)
	return r.insertError(err, "bookings", b.ID)
}

func (r *BookingRepo) insertError(err error, table, id string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return errors.New(errors.ErrCodeReservationConflict, "booking already exists").WithDetail(id)
	}
	r.log.Error("booking insert failed", logging.String("table", table), logging.String("booking_id", id), logging.Err(err))
	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to insert into "+table)
}

func scanRawBooking(row scanner) (*booking.RawBooking, error) {
	var (
		b                              booking.RawBooking
		finalPayout, guestPrice, total decimal.NullDecimal
		tags                           pq.StringArray
	)
	err := row.Scan(
		&b.ID, &b.OrgID, &b.PropertyID, &b.ManagerID, &b.Source, &b.Status, &b.PaymentStatus,
		&finalPayout, &guestPrice, &total, &b.Currency,
		&b.CheckIn, &b.CheckOut, &b.Channel, &b.Department, &b.CostCenter, &b.BusinessUnit,
		&b.RevenueStream, &b.Type, &b.Category, &tags, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.FinalPayoutAmount = decimalPtr(finalPayout)
	b.GuestBookingPrice = decimalPtr(guestPrice)
	b.TotalAmount = decimalPtr(total)
	b.Currency = strings.TrimSpace(b.Currency)
	b.Tags = []string(tags)
	return &b, nil
}

//Personal.AI order the ending
