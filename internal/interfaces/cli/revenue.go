package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/turtacn/StayLedger/internal/application/revenue"
	domainRevenue "github.com/turtacn/StayLedger/internal/domain/revenue"
	"github.com/turtacn/StayLedger/pkg/errors"
)

func newRevenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Revenue reports",
	}
	cmd.AddCommand(newRevenueSummaryCmd())
	return cmd
}

func newRevenueSummaryCmd() *cobra.Command {
	var (
		in       revenue.SummaryInput
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize revenue, expenses and profit in the base currency",
		Example: "  stayledger revenue summary --org acme --fiscal-year 2024\n" +
			"  stayledger revenue summary --org acme --from 2024-01-01 --to 2024-03-31 --channel airbnb -o json",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if in.DateStart, err = parseDay("from", from); err != nil {
				return err
			}
			if in.DateEnd, err = parseDay("to", to); err != nil {
				return err
			}
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			report, err := svc.Revenue.Summary(ctx, &in)
			if err != nil {
				return err
			}
			return PrintResult(cmd, reportView{report})
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.OrgID, "org", "", "organization id (required)")
	f.StringVar(&in.PropertyID, "property", "", "restrict to one property")
	f.StringVar(&in.Department, "department", "", "department filter")
	f.StringVar(&in.CostCenter, "cost-center", "", "cost center filter")
	f.StringVar(&in.BusinessUnit, "business-unit", "", "business unit filter")
	f.StringVar(&in.Status, "status", "", "booking status (confirmed, pending, cancelled)")
	f.StringVar(&in.Type, "type", "", "booking type filter")
	f.StringVar(&in.Category, "category", "", "category filter")
	f.StringVar(&in.ChannelSource, "channel", "", "channel source filter")
	f.StringVar(&in.RevenueStream, "revenue-stream", "", "revenue stream filter")
	f.IntVar(&in.FiscalYear, "fiscal-year", 0, "fiscal year")
	f.StringVar(&from, "from", "", "first check-in day, YYYY-MM-DD")
	f.StringVar(&to, "to", "", "last check-in day, YYYY-MM-DD")
	f.StringSliceVar(&in.Tags, "tags", nil, "bookings must carry all of these tags")
	_ = cmd.MarkFlagRequired("org")
	return cmd
}

// parseDay accepts YYYY-MM-DD. An empty value is the zero time.
func parseDay(flag, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, errors.InvalidParam("invalid date, want YYYY-MM-DD").WithDetail("--" + flag + "=" + v)
	}
	return t, nil
}

type reportView struct {
	r *domainRevenue.Report
}

func (v reportView) JSONValue() interface{} { return v.r }

func (v reportView) TableHeaders() []string { return []string{"METRIC", "VALUE"} }

func (v reportView) TableRows() [][]string {
	r := v.r
	rows := [][]string{
		{"base_currency", r.BaseCurrency},
		{"total_revenue", r.TotalRevenue.String()},
		{"total_expenses", r.TotalExpenses.String()},
		{"net_profit", r.NetProfit.String()},
		{"profit_margin", r.ProfitMargin.String() + "%"},
		{"pending_payments", r.PendingPayments.String()},
		{"bookings", strconv.Itoa(r.BookingCount)},
		{"pending_bookings", strconv.Itoa(r.PendingCount)},
		{"unconverted", strconv.Itoa(len(r.Unconverted))},
	}
	rows = appendBreakdown(rows, "source", r.RevenueBySource)
	rows = appendBreakdown(rows, "channel", r.ChannelBreakdown)
	rows = appendBreakdown(rows, "property", r.PropertyBreakdown)
	rows = appendBreakdown(rows, "month", r.MonthlyBreakdown)
	rows = appendBreakdown(rows, "expense", r.ExpensesByType)
	return rows
}

func (v reportView) String() string {
	return strings.TrimRight(FormatTable(v.TableHeaders(), v.TableRows()), "\n")
}

func appendBreakdown(rows [][]string, prefix string, m map[string]decimal.Decimal) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, []string{fmt.Sprintf("%s:%s", prefix, k), m[k].String()})
	}
	return rows
}

//Personal.AI order the ending
