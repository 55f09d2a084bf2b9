package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is a set of exchange rates relative to Base.
type RateSnapshot struct {
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                  `json:"fetched_at"`
	Source    string                     `json:"source"`
}

// Conversion is the outcome of converting one amount. When Converted is
// false Amount and Currency hold the original values and Reason says why.
type Conversion struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Converted        bool            `json:"converted"`
	Reason           string          `json:"reason,omitempty"`
	Original         decimal.Decimal `json:"original"`
	OriginalCurrency string          `json:"original_currency"`
}

// UnconvertedItem is an amount left out of the report totals.
type UnconvertedItem struct {
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Status   string          `json:"status,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Reason   string          `json:"reason"`
}

// RevenueReport is a revenue summary in BaseCurrency.
type RevenueReport struct {
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
	UnconvertedTotals     map[string]decimal.Decimal `json:"unconverted_totals,omitempty"`
	GeneratedAt           time.Time                  `json:"generated_at"`
}

// Commission is one commission record.
type Commission struct {
	ID                     string          `json:"id"`
	BookingID              string          `json:"booking_id"`
	PropertyID             string          `json:"property_id"`
	ManagerID              string          `json:"manager_id"`
	Role                   string          `json:"role"`
	BaseAmount             decimal.Decimal `json:"base_amount"`
	CommissionRate         decimal.Decimal `json:"commission_rate"`
	CommissionAmount       decimal.Decimal `json:"commission_amount"`
	Currency               string          `json:"currency"`
	Period                 string          `json:"period"`
	Status                 string          `json:"status"`
	PortfolioManagerRate   decimal.Decimal `json:"portfolio_manager_rate"`
	PortfolioManagerAmount decimal.Decimal `json:"portfolio_manager_amount"`
	ReferralAgentRate      decimal.Decimal `json:"referral_agent_rate"`
	ReferralAgentAmount    decimal.Decimal `json:"referral_agent_amount"`
	OwnerNetAmount         decimal.Decimal `json:"owner_net_amount"`
	CalculatedBy           string          `json:"calculated_by"`
	ApprovedBy             string          `json:"approved_by,omitempty"`
	FinalizedBy            string          `json:"finalized_by,omitempty"`
}

type PropertyTotal struct {
	PropertyID       string          `json:"property_id"`
	Records          int             `json:"records"`
	BaseAmount       decimal.Decimal `json:"base_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
}

// PeriodSummary totals a manager's commissions over a range of months.
type PeriodSummary struct {
	ManagerID       string                     `json:"manager_id"`
	Start           string                     `json:"start"`
	End             string                     `json:"end"`
	Currency        string                     `json:"currency"`
	Records         int                        `json:"records"`
	TotalBase       decimal.Decimal            `json:"total_base"`
	TotalCommission decimal.Decimal            `json:"total_commission"`
	ByStatus        map[string]decimal.Decimal `json:"by_status"`
	ByProperty      []PropertyTotal            `json:"by_property"`
	Unconverted     []string                   `json:"unconverted,omitempty"`
}

// Balance is a manager's running commission balance.
type Balance struct {
	ManagerID      string          `json:"manager_id"`
	Currency       string          `json:"currency"`
	TotalEarned    decimal.Decimal `json:"total_earned"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	LastPayoutDate *time.Time      `json:"last_payout_date,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FinalizeResult is a finalized commission with the credited balance.
type FinalizeResult struct {
	Record  *Commission `json:"record"`
	Balance *Balance    `json:"balance"`
}

// Payout is one payout request.
type Payout struct {
	ID              string          `json:"id"`
	ManagerID       string          `json:"manager_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Note            string          `json:"note,omitempty"`
	ReceiptRef      string          `json:"receipt_ref,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	RequestedBy     string          `json:"requested_by,omitempty"`
	ApprovedBy      string          `json:"approved_by,omitempty"`
	PaidBy          string          `json:"paid_by,omitempty"`
	RejectedBy      string          `json:"rejected_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
}

// PayResult is a paid payout with the debited balance.
type PayResult struct {
	Request *Payout  `json:"request"`
	Balance *Balance `json:"balance"`
}

//Personal.AI order the ending
