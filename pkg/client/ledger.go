package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/pkg/errors"
)

const apiPrefix = "/api/v1"

func escape(id string) string { return url.PathEscape(id) }

func requireID(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.InvalidParam(name + " is required")
	}
	return nil
}

// RatesClient reads exchange rates.
type RatesClient struct {
	client *Client
}

// Get returns the current snapshot for base.
func (r *RatesClient) Get(ctx context.Context, base string) (*RateSnapshot, error) {
	if err := requireID("base currency", base); err != nil {
		return nil, err
	}
	var out RateSnapshot
	if err := r.client.get(ctx, apiPrefix+"/rates/"+escape(strings.ToUpper(base)), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Convert converts amount. A missing rate is not an error: check
// Conversion.Converted.
func (r *RatesClient) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (*Conversion, error) {
	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("from", from)
	q.Set("to", to)
	var out Conversion
	if err := r.client.get(ctx, apiPrefix+"/rates/convert", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevenueClient builds revenue reports.
type RevenueClient struct {
	client *Client
}

// SummaryFilter narrows a revenue summary. Zero fields are ignored.
type SummaryFilter struct {
	PropertyID    string
	Department    string
	CostCenter    string
	BusinessUnit  string
	Status        string
	Type          string
	Category      string
	ChannelSource string
	RevenueStream string
	FiscalYear    int
	DateStart     time.Time
	DateEnd       time.Time
	Tags          []string
}

func (f SummaryFilter) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("property_id", f.PropertyID)
	set("department", f.Department)
	set("cost_center", f.CostCenter)
	set("business_unit", f.BusinessUnit)
	set("status", f.Status)
	set("type", f.Type)
	set("category", f.Category)
	set("channel_source", f.ChannelSource)
	set("revenue_stream", f.RevenueStream)
	if f.FiscalYear != 0 {
		q.Set("fiscal_year", strconv.Itoa(f.FiscalYear))
	}
	if !f.DateStart.IsZero() {
		q.Set("date_start", f.DateStart.Format("2006-01-02"))
	}
	if !f.DateEnd.IsZero() {
		q.Set("date_end", f.DateEnd.Format("2006-01-02"))
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	return q
}

// Summary returns the organisation's revenue report.
func (r *RevenueClient) Summary(ctx context.Context, filter SummaryFilter) (*RevenueReport, error) {
	var out RevenueReport
	if err := r.client.get(ctx, apiPrefix+"/revenue/summary", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommissionsClient runs the commission lifecycle.
type CommissionsClient struct {
	client *Client
}

// Calculate computes the commission of a booking. Repeating the call for
// the same booking returns the existing record.
func (c *CommissionsClient) Calculate(ctx context.Context, bookingID string) (*Commission, error) {
	if err := requireID("booking id", bookingID); err != nil {
		return nil, err
	}
	var out Commission
	if err := c.client.post(ctx, apiPrefix+"/commissions/"+escape(bookingID)+"/calculate", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CommissionsClient) Approve(ctx context.Context, commissionID string) (*Commission, error) {
	if err := requireID("commission id", commissionID); err != nil {
		return nil, err
	}
	var out Commission
	if err := c.client.post(ctx, apiPrefix+"/commissions/"+escape(commissionID)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Finalize finalizes an approved commission and credits the manager.
func (c *CommissionsClient) Finalize(ctx context.Context, commissionID string) (*FinalizeResult, error) {
	if err := requireID("commission id", commissionID); err != nil {
		return nil, err
	}
	var out FinalizeResult
	if err := c.client.post(ctx, apiPrefix+"/commissions/"+escape(commissionID)+"/finalize", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ManagerPeriod totals a manager's commissions for months start..end
// (YYYY-MM), optionally limited to properties.
func (c *CommissionsClient) ManagerPeriod(ctx context.Context, managerID, start, end string, properties ...string) (*PeriodSummary, error) {
	if err := requireID("manager id", managerID); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("start", start)
	q.Set("end", end)
	if len(properties) > 0 {
		q.Set("property_id", strings.Join(properties, ","))
	}
	var out PeriodSummary
	if err := c.client.get(ctx, apiPrefix+"/managers/"+escape(managerID)+"/commissions", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayoutsClient reads balances and moves payout requests through their
// states.
type PayoutsClient struct {
	client *Client
}

func (p *PayoutsClient) Balance(ctx context.Context, managerID string) (*Balance, error) {
	if err := requireID("manager id", managerID); err != nil {
		return nil, err
	}
	var out Balance
	if err := p.client.get(ctx, apiPrefix+"/managers/"+escape(managerID)+"/balance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the manager's payouts, newest first. status may be empty.
func (p *PayoutsClient) List(ctx context.Context, managerID, status string) ([]Payout, error) {
	if err := requireID("manager id", managerID); err != nil {
		return nil, err
	}
	var q url.Values
	if status != "" {
		q = url.Values{"status": {status}}
	}
	out := []Payout{}
	if err := p.client.get(ctx, apiPrefix+"/managers/"+escape(managerID)+"/payouts", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Request opens a payout for amount in the ledger's base currency.
func (p *PayoutsClient) Request(ctx context.Context, managerID string, amount decimal.Decimal, note string) (*Payout, error) {
	if err := requireID("manager id", managerID); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, errors.InvalidParam("amount must be positive").WithDetail(amount.String())
	}
	body := map[string]string{"manager_id": managerID, "amount": amount.String(), "note": note}
	var out Payout
	if err := p.client.post(ctx, apiPrefix+"/payouts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PayoutsClient) Approve(ctx context.Context, payoutID string) (*Payout, error) {
	if err := requireID("payout id", payoutID); err != nil {
		return nil, err
	}
	var out Payout
	if err := p.client.post(ctx, apiPrefix+"/payouts/"+escape(payoutID)+"/approve", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *PayoutsClient) Reject(ctx context.Context, payoutID, reason string) (*Payout, error) {
	if err := requireID("payout id", payoutID); err != nil {
		return nil, err
	}
	var out Payout
	if err := p.client.post(ctx, apiPrefix+"/payouts/"+escape(payoutID)+"/reject", map[string]string{"reason": reason}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pay marks an approved payout paid against an uploaded receipt.
func (p *PayoutsClient) Pay(ctx context.Context, payoutID, receiptRef string) (*PayResult, error) {
	if err := requireID("payout id", payoutID); err != nil {
		return nil, err
	}
	if err := requireID("receipt reference", receiptRef); err != nil {
		return nil, err
	}
	var out PayResult
	if err := p.client.post(ctx, apiPrefix+"/payouts/"+escape(payoutID)+"/pay", map[string]string{"receipt_ref": receiptRef}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

//Personal.AI order the ending
