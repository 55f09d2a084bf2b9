package revenue

import (
	"context"

	"github.com/turtacn/StayLedger/internal/domain/booking"
)

// SourceRepository reads the non-booking inputs of a report. Add-on sales are
// dated by sale, expenses by when they were incurred.
type SourceRepository interface {
	ListAddOns(ctx context.Context, orgID string, q booking.Query) ([]AddOnSale, error)
	ListExpenses(ctx context.Context, orgID string, q booking.Query) ([]Expense, error)
}

//Personal.AI order the ending
