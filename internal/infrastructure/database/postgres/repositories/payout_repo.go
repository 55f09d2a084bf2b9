package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/turtacn/StayLedger/internal/domain/payout"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// BalanceRepo persists commission balances.
type BalanceRepo struct {
	conn *postgres.Connection
}

var _ payout.BalanceRepository = (*BalanceRepo)(nil)

func NewBalanceRepo(conn *postgres.Connection) *BalanceRepo {
	return &BalanceRepo{conn: conn}
}

const balanceSelect = `SELECT manager_id, currency, total_earned, total_paid, current_balance, last_payout_date, updated_at
	FROM commission_balances WHERE manager_id = $1`

func (r *BalanceRepo) Get(ctx context.Context, managerID string) (*payout.Balance, error) {
	return r.get(ctx, balanceSelect, managerID)
}

func (r *BalanceRepo) GetForUpdate(ctx context.Context, managerID string) (*payout.Balance, error) {
	return r.get(ctx, balanceSelect+` FOR UPDATE`, managerID)
}

func (r *BalanceRepo) get(ctx context.Context, query, managerID string) (*payout.Balance, error) {
	var (
		b    payout.Balance
		last sql.NullTime
	)
	err := r.conn.Executor(ctx).QueryRowContext(ctx, query, managerID).Scan(
		&b.ManagerID, &b.Currency, &b.TotalEarned, &b.TotalPaid, &b.CurrentBalance, &last, &b.UpdatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("commission balance not found").WithDetail(managerID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load commission balance")
	}
	b.Currency = strings.TrimSpace(b.Currency)
	b.LastPayoutDate = timePtr(last)
	return &b, nil
}

func (r *BalanceRepo) Upsert(ctx context.Context, b *payout.Balance) error {
	_, err := r.conn.Executor(ctx).ExecContext(ctx, `
		INSERT INTO commission_balances (manager_id, currency, total_earned, total_paid, current_balance, last_payout_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (manager_id) DO UPDATE SET
			total_earned = EXCLUDED.total_earned,
			total_paid = EXCLUDED.total_paid,
			current_balance = EXCLUDED.current_balance,
			last_payout_date = EXCLUDED.last_payout_date,
			updated_at = EXCLUDED.updated_at
	`, b.ManagerID, b.Currency, b.TotalEarned, b.TotalPaid, b.CurrentBalance, nullTime(b.LastPayoutDate), b.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save commission balance")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Payout requests
// ─────────────────────────────────────────────────────────────────────────────

const payoutColumns = `id, manager_id, amount, currency, status, note, receipt_ref, rejection_reason,
	requested_by, approved_by, paid_by, rejected_by, created_at, updated_at, approved_at, paid_at, rejected_at`

// PayoutRepo persists payout requests.
type PayoutRepo struct {
	conn *postgres.Connection
}

var _ payout.RequestRepository = (*PayoutRepo)(nil)

func NewPayoutRepo(conn *postgres.Connection) *PayoutRepo {
	return &PayoutRepo{conn: conn}
}

func (r *PayoutRepo) Create(ctx context.Context, p *payout.Request) error {
	_, err := r.conn.Executor(ctx).ExecContext(ctx,
		`INSERT INTO payout_requests (`+payoutColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		p.ID, p.ManagerID, p.Amount, p.Currency, p.Status, p.Note, p.ReceiptRef, p.RejectionReason,
		p.RequestedBy, p.ApprovedBy, p.PaidBy, p.RejectedBy, p.CreatedAt, p.UpdatedAt,
		nullTime(p.ApprovedAt), nullTime(p.PaidAt), nullTime(p.RejectedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Conflict("payout request already exists").WithDetail(p.ID)
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create payout request")
	}
	return nil
}

func (r *PayoutRepo) Get(ctx context.Context, id string) (*payout.Request, error) {
	return r.get(ctx, `SELECT `+payoutColumns+` FROM payout_requests WHERE id = $1`, id)
}

func (r *PayoutRepo) GetForUpdate(ctx context.Context, id string) (*payout.Request, error) {
	return r.get(ctx, `SELECT `+payoutColumns+` FROM payout_requests WHERE id = $1 FOR UPDATE`, id)
}

func (r *PayoutRepo) get(ctx context.Context, query, id string) (*payout.Request, error) {
	p, err := scanPayout(r.conn.Executor(ctx).QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrCodePayoutNotFound, "payout request not found").WithDetail(id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load payout request")
	}
	return p, nil
}

func (r *PayoutRepo) Update(ctx context.Context, p *payout.Request) error {
	res, err := r.conn.Executor(ctx).ExecContext(ctx, `
		UPDATE payout_requests SET
			status = $2, receipt_ref = $3, rejection_reason = $4, approved_by = $5, paid_by = $6,
			rejected_by = $7, updated_at = $8, approved_at = $9, paid_at = $10, rejected_at = $11
		WHERE id = $1
	`, p.ID, p.Status, p.ReceiptRef, p.RejectionReason, p.ApprovedBy, p.PaidBy,
		p.RejectedBy, p.UpdatedAt, nullTime(p.ApprovedAt), nullTime(p.PaidAt), nullTime(p.RejectedAt))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to update payout request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodePayoutNotFound, "payout request not found").WithDetail(p.ID)
	}
	return nil
}

func (r *PayoutRepo) ListByManager(ctx context.Context, managerID string, status payout.Status) ([]*payout.Request, error) {
	query := `SELECT ` + payoutColumns + ` FROM payout_requests WHERE manager_id = $1`
	args := []interface{}{managerID}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.conn.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list payout requests")
	}
	defer rows.Close()

	var out []*payout.Request
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan payout request")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate payout requests")
	}
	return out, nil
}

func scanPayout(row scanner) (*payout.Request, error) {
	var (
		p                         payout.Request
		approvedAt, paidAt, rejAt sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.ManagerID, &p.Amount, &p.Currency, &p.Status, &p.Note, &p.ReceiptRef, &p.RejectionReason,
		&p.RequestedBy, &p.ApprovedBy, &p.PaidBy, &p.RejectedBy, &p.CreatedAt, &p.UpdatedAt,
		&approvedAt, &paidAt, &rejAt,
	)
	if err != nil {
		return nil, err
	}
	p.Currency = strings.TrimSpace(p.Currency)
	p.ApprovedAt = timePtr(approvedAt)
	p.PaidAt = timePtr(paidAt)
	p.RejectedAt = timePtr(rejAt)
	return &p, nil
}

//Personal.AI order the ending
