package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

var bookingCols = []string{
	"id", "org_id", "property_id", "manager_id", "source", "status", "payment_status",
	"final_payout_amount", "guest_booking_price", "total_amount", "currency",
	"check_in", "check_out", "channel", "department", "cost_center", "business_unit",
	"revenue_stream", "booking_type", "category", "tags", "created_at",
}

type BookingRepoTestSuite struct {
	suite.Suite
	db   *sql.DB
	mock sqlmock.Sqlmock
	repo *BookingRepo
	ts   time.Time
}

func (s *BookingRepoTestSuite) SetupTest() {
	var err error
	s.db, s.mock, err = sqlmock.New()
	s.Require().NoError(err)
	conn := postgres.NewConnectionWithDB(s.db, logging.NewNopLogger())
	s.repo = NewBookingRepo(conn, logging.NewNopLogger())
	s.ts = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
}

func (s *BookingRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.db.Close()
}

func TestBookingRepoTestSuite(t *testing.T) {
	suite.Run(t, new(BookingRepoTestSuite))
}

func (s *BookingRepoTestSuite) row(id, source, status, payment string, payout interface{}) *sqlmock.Rows {
	return sqlmock.NewRows(bookingCols).AddRow(
		id, "org-1", "prop-1", "mgr-1", source, status, payment,
		payout, "1200.00", nil, "USD",
		s.ts, s.ts.AddDate(0, 0, 3), "airbnb", "ops", "cc-1", "bu-1",
		"stays", "nightly", "villa", "{vip,summer}", s.ts,
	)
}

func (s *BookingRepoTestSuite) TestFindByID_RevenueTableFirst() {
	s.mock.ExpectQuery("FROM booking_revenue WHERE id = \\$1").
		WithArgs("bk-1").
		WillReturnRows(s.row("bk-1", "airbnb", "", "paid", "1000.50"))

	b, err := s.repo.FindByID(context.Background(), "bk-1")
	s.Require().NoError(err)
	s.Equal("paid", b.PaymentStatus)
	s.Require().NotNil(b.FinalPayoutAmount)
	s.Equal("1000.5", b.FinalPayoutAmount.String())
	s.Equal("1200", b.GuestBookingPrice.String())
	s.Nil(b.TotalAmount)
	s.Equal([]string{"vip", "summer"}, b.Tags)
	s.Equal("nightly", b.Type)
}

func (s *BookingRepoTestSuite) TestFindByID_FallsBackToLegacy() {
	s.mock.ExpectQuery("FROM booking_revenue WHERE id = \\$1").
		WithArgs("bk-2").
		WillReturnError(sql.ErrNoRows)
	s.mock.ExpectQuery(regexp.QuoteMeta("'' AS payment_status")).
		WithArgs("bk-2").
		WillReturnRows(s.row("bk-2", "direct", "confirmed", "", nil))

	b, err := s.repo.FindByID(context.Background(), "bk-2")
	s.Require().NoError(err)
	s.Equal("direct", b.Source)
	s.Nil(b.FinalPayoutAmount)
}

func (s *BookingRepoTestSuite) TestFindByID_NotFound() {
	s.mock.ExpectQuery("FROM booking_revenue").WithArgs("nope").WillReturnError(sql.ErrNoRows)
	s.mock.ExpectQuery("FROM bookings").WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := s.repo.FindByID(context.Background(), "nope")
	s.True(errors.IsCode(err, errors.ErrCodeBookingNotFound))
}

func (s *BookingRepoTestSuite) TestList_UnionWithFilters() {
	from := s.ts
	to := s.ts.AddDate(0, 1, 0)
	s.mock.ExpectQuery("FROM booking_revenue WHERE org_id = \\$1 AND property_id = \\$2 AND check_in >= \\$3 AND check_in <= \\$4 UNION ALL").
		WithArgs("org-1", "prop-1", from, to).
		WillReturnRows(s.row("a", "airbnb", "", "paid", "10").AddRow(
			"b", "org-1", "prop-1", "", "direct", "cancelled", "",
			nil, nil, "99.99", "EUR ",
			s.ts, s.ts, "", "", "", "", "", "", "", "{}", s.ts,
		))

	out, err := s.repo.List(context.Background(), "org-1", booking.Query{PropertyID: "prop-1", From: from, To: to})
	s.Require().NoError(err)
	s.Require().Len(out, 2)
	s.Equal("EUR", out[1].Currency)
	s.Equal("99.99", out[1].TotalAmount.String())
	s.Empty(out[1].Tags)
}

func (s *BookingRepoTestSuite) TestList_QueryError() {
	s.mock.ExpectQuery("UNION ALL .* FROM bookings WHERE org_id = \\$1 AND NOT EXISTS").WithArgs("org-1").WillReturnError(sql.ErrConnDone)

	_, err := s.repo.List(context.Background(), "org-1", booking.Query{})
	s.True(errors.IsCode(err, errors.ErrCodeRevenueSourceRetrieval))
}

func (s *BookingRepoTestSuite) rawBooking() *booking.RawBooking {
	amt := decimal.RequireFromString("450")
	return &booking.RawBooking{
		ID: "bk-9", OrgID: "org-1", PropertyID: "prop-1", Source: "direct", Status: "confirmed",
		PaymentStatus: "pending", TotalAmount: &amt, Currency: "USD",
		CheckIn: s.ts, CheckOut: s.ts.AddDate(0, 0, 2), Tags: []string{"vip"}, CreatedAt: s.ts,
	}
}

func (s *BookingRepoTestSuite) TestCreateRevenueRecord() {
	b := s.rawBooking()
	s.mock.ExpectExec("INSERT INTO booking_revenue").
		WithArgs(b.ID, b.OrgID, b.PropertyID, b.ManagerID, b.Source, b.Status, b.PaymentStatus,
			decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{Decimal: *b.TotalAmount, Valid: true}, "USD",
			b.CheckIn, b.CheckOut, "", "", "", "", "", "", "", pq.Array(b.Tags), b.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s.NoError(s.repo.CreateRevenueRecord(context.Background(), b))
}

func (s *BookingRepoTestSuite) TestCreateCalendarBooking_Duplicate() {
	s.mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	err := s.repo.CreateCalendarBooking(context.Background(), s.rawBooking())
	s.True(errors.IsCode(err, errors.ErrCodeReservationConflict))
	s.True(errors.IsConflict(err))
}

func (s *BookingRepoTestSuite) TestCreateCalendarBooking_PqDuplicate() {
	s.mock.ExpectExec("INSERT INTO bookings").
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.repo.CreateCalendarBooking(context.Background(), s.rawBooking())
	s.True(errors.IsConflict(err))
}

//Personal.AI order the ending
