package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/turtacn/StayLedger/internal/domain/booking"
	"github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/internal/infrastructure/database/postgres"
	"github.com/turtacn/StayLedger/pkg/errors"
)

// RevenueSourceRepo reads add-on sales and expenses.
type RevenueSourceRepo struct {
	conn *postgres.Connection
}

var _ revenue.SourceRepository = (*RevenueSourceRepo)(nil)

func NewRevenueSourceRepo(conn *postgres.Connection) *RevenueSourceRepo {
	return &RevenueSourceRepo{conn: conn}
}

// sourceWhere renders the shared org/property/date predicate on dateCol.
func sourceWhere(orgID string, q booking.Query, dateCol string) (string, []interface{}) {
	where := []string{"org_id = $1"}
	args := []interface{}{orgID}
	if q.PropertyID != "" {
		args = append(args, q.PropertyID)
		where = append(where, fmt.Sprintf("property_id = $%d", len(args)))
	}
	if !q.From.IsZero() {
		args = append(args, q.From)
		where = append(where, fmt.Sprintf("%s >= $%d", dateCol, len(args)))
	}
	if !q.To.IsZero() {
		args = append(args, q.To)
		where = append(where, fmt.Sprintf("%s <= $%d", dateCol, len(args)))
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func (r *RevenueSourceRepo) ListAddOns(ctx context.Context, orgID string, q booking.Query) ([]revenue.AddOnSale, error) {
	cond, args := sourceWhere(orgID, q, "sold_at")
	rows, err := r.conn.Executor(ctx).QueryContext(ctx,
		`SELECT id, property_id, category, department, cost_center, business_unit, amount, currency, sold_at
		FROM add_on_sales`+cond+` ORDER BY sold_at, id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to list add-on sales")
	}
	defer rows.Close()

	var out []revenue.AddOnSale
	for rows.Next() {
		var a revenue.AddOnSale
		if err := rows.Scan(&a.ID, &a.PropertyID, &a.Category, &a.Department, &a.CostCenter,
			&a.BusinessUnit, &a.Amount, &a.Currency, &a.Date); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to scan add-on sale")
		}
		a.Currency = strings.TrimSpace(a.Currency)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to iterate add-on sales")
	}
	return out, nil
}

func (r *RevenueSourceRepo) ListExpenses(ctx context.Context, orgID string, q booking.Query) ([]revenue.Expense, error) {
	cond, args := sourceWhere(orgID, q, "incurred_at")
	rows, err := r.conn.Executor(ctx).QueryContext(ctx,
		`SELECT id, property_id, expense_type, department, cost_center, business_unit, amount, currency, incurred_at
		FROM expenses`+cond+` ORDER BY incurred_at, id`, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to list expenses")
	}
	defer rows.Close()

	var out []revenue.Expense
	for rows.Next() {
		var e revenue.Expense
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.Type, &e.Department, &e.CostCenter,
			&e.BusinessUnit, &e.Amount, &e.Currency, &e.Date); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to scan expense")
		}
		e.Currency = strings.TrimSpace(e.Currency)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRevenueSourceRetrieval, "failed to iterate expenses")
	}
	return out, nil
}

//Personal.AI order the ending
