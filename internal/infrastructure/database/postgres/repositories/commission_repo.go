package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/pkg/errors"
	"github.com/turtacn/StayLedger/pkg/types/common"
)

const commissionColumns = `id, booking_id, property_id, manager_id, role,
	base_amount, commission_rate, commission_amount, currency, period, status,
	portfolio_manager_rate, portfolio_manager_amount, referral_agent_rate, referral_agent_amount, owner_net_amount,
	calculated_by, approved_by, finalized_by, calculated_at, approved_at, finalized_at, created_at, updated_at`

// CommissionRepo persists commission records.
type CommissionRepo struct {
	conn *postgres.Connection
}

var _ commission.Repository = (*CommissionRepo)(nil)

func NewCommissionRepo(conn *postgres.Connection) *CommissionRepo {
	return &CommissionRepo{conn: conn}
}

func (r *CommissionRepo) Create(ctx context.Context, c *commission.Record) error {
	query := `INSERT INTO commission_records (` + commissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.conn.Executor(ctx).ExecContext(ctx, query,
		c.ID, c.BookingID, c.PropertyID, c.ManagerID, c.Role,
		c.BaseAmount, c.CommissionRate, c.CommissionAmount, c.Currency, string(c.Period), c.Status,
		c.PortfolioManagerRate, c.PortfolioManagerAmount, c.ReferralAgentRate, c.ReferralAgentAmount, c.OwnerNetAmount,
		c.CalculatedBy, c.ApprovedBy, c.FinalizedBy, c.CalculatedAt, nullTime(c.ApprovedAt), nullTime(c.FinalizedAt),
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("commission already exists for booking").WithDetail(c.BookingID)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create commission record")
	}
	return nil
}

// Update rewrites the mutable fields. The status guard keeps a finalized
// row from being overwritten even by a stale caller.
func (r *CommissionRepo) Update(ctx context.Context, c *commission.Record) error {
	query := `
		UPDATE commission_records SET
			manager_id = $2, base_amount = $3, commission_rate = $4, commission_amount = $5, currency = $6,
			period = $7, status = $8, portfolio_manager_rate = $9, portfolio_manager_amount = $10,
			referral_agent_rate = $11, referral_agent_amount = $12, owner_net_amount = $13,
			calculated_by = $14, approved_by = $15, finalized_by = $16, calculated_at = $17,
			approved_at = $18, finalized_at = $19, updated_at = $20
		WHERE id = $1 AND status <> 'finalized'
	`
	res, err := r.conn.Executor(ctx).ExecContext(ctx, query,
		c.ID, c.ManagerID, c.BaseAmount, c.CommissionRate, c.CommissionAmount, c.Currency,
		string(c.Period), c.Status, c.PortfolioManagerRate, c.PortfolioManagerAmount,
		c.ReferralAgentRate, c.ReferralAgentAmount, c.OwnerNetAmount,
		c.CalculatedBy, c.ApprovedBy, c.FinalizedBy, c.CalculatedAt,
		nullTime(c.ApprovedAt), nullTime(c.FinalizedAt), c.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update commission record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeCommissionFinalized, "commission record is finalized or missing").WithDetail(c.ID)
	}
	return nil
}

func (r *CommissionRepo) GetByID(ctx context.Context, id string) (*commission.Record, error) {
	row := r.conn.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+commissionColumns+` FROM commission_records WHERE id = $1`, id)
	rec, err := scanCommission(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeCommissionNotFound, "commission record not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load commission record")
	}
	return rec, nil
}

func (r *CommissionRepo) FindByBooking(ctx context.Context, bookingID string, role commission.Role) (*commission.Record, error) {
	row := r.conn.Executor(ctx).QueryRowContext(ctx,
		`SELECT `+commissionColumns+` FROM commission_records WHERE booking_id = $1 AND role = $2`, bookingID, role)
	rec, err := scanCommission(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodeCommissionNotFound, "no commission for booking").WithDetail(bookingID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load commission record")
	}
	return rec, nil
}

func (r *CommissionRepo) ListByManager(ctx context.Context, managerID string, from, to common.Period) ([]*commission.Record, error) {
	rows, err := r.conn.Executor(ctx).QueryContext(ctx,
		`SELECT `+commissionColumns+` FROM commission_records
		WHERE manager_id = $1 AND period >= $2 AND period <= $3
		ORDER BY period, property_id, id`, managerID, string(from), string(to))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list commission records")
	}
	defer rows.Close()

	var out []*commission.Record
	for rows.Next() {
		rec, err := scanCommission(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan commission record")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate commission records")
	}
	return out, nil
}

func scanCommission(row scanner) (*commission.Record, error) {
	var (
		c                       commission.Record
		period                  string
		approvedAt, finalizedAt sql.NullTime
	)
	err := row.Scan(
		&c.ID, &c.BookingID, &c.PropertyID, &c.ManagerID, &c.Role,
		&c.BaseAmount, &c.CommissionRate, &c.CommissionAmount, &c.Currency, &period, &c.Status,
		&c.PortfolioManagerRate, &c.PortfolioManagerAmount, &c.ReferralAgentRate, &c.ReferralAgentAmount, &c.OwnerNetAmount,
		&c.CalculatedBy, &c.ApprovedBy, &c.FinalizedBy, &c.CalculatedAt, &approvedAt, &finalizedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Period = common.Period(period)
	c.Currency = strings.TrimSpace(c.Currency)
	c.ApprovedAt = timePtr(approvedAt)
	c.FinalizedAt = timePtr(finalizedAt)
	return &c, nil
}

//Personal.AI order the ending
