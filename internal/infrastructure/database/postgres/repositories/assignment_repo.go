package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/commission"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// AssignmentRepo resolves property managers.
type AssignmentRepo struct {
	conn *postgres.Connection
}

var _ commission.AssignmentReader = (*AssignmentRepo)(nil)

func NewAssignmentRepo(conn *postgres.Connection) *AssignmentRepo {
	return &AssignmentRepo{conn: conn}
}

func (r *AssignmentRepo) ForProperty(ctx context.Context, propertyID string) (*commission.Assignment, error) {
	var (
		a    = commission.Assignment{PropertyID: propertyID}
		rate decimal.NullDecimal
	)
	err := r.conn.Executor(ctx).QueryRowContext(ctx,
		`SELECT manager_id, management_rate FROM property_assignments WHERE property_id = $1`, propertyID,
	).Scan(&a.ManagerID, &rate)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NotFound("property has no manager assignment").WithDetail(propertyID)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load property assignment")
	}
	a.ManagementRate = decimalPtr(rate)
	return &a, nil
}

// Assign sets or replaces the manager of a property. A nil rate falls back to
// the configured default.
func (r *AssignmentRepo) Assign(ctx context.Context, a commission.Assignment) error {
	_, err := r.conn.Executor(ctx).ExecContext(ctx, `
		INSERT INTO property_assignments (property_id, manager_id, management_rate, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (property_id) DO UPDATE
		SET manager_id = EXCLUDED.manager_id, management_rate = EXCLUDED.management_rate, updated_at = NOW()
	`, a.PropertyID, a.ManagerID, nullDecimal(a.ManagementRate))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save property assignment")
	}
	return nil
}

//Personal.AI order the ending
