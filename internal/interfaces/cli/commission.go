package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/StayLedger/internal/application/commission"
	domainCommission "github.com/turtacn/StayLedger/internal/domain/commission"
)

func newCommissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "commission",
		Aliases: []string{"commissions"},
		Short:   "Calculate and settle management commissions",
		Long: `Commission records move pending -> approved -> finalized.
Finalizing credits the manager's payout balance.`,
	}
	cmd.AddCommand(
		newCommissionCalculateCmd(),
		newCommissionApproveCmd(),
		newCommissionFinalizeCmd(),
		newCommissionPeriodCmd(),
	)
	return cmd
}

func newCommissionCalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calculate <booking-id>",
		Short: "Compute or recompute the commission of a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			actor, err := requireActor(cliCtx)
			if err != nil {
				return err
			}

			rec, err := svc.Commissions.Calculate(ctx, &commission.CalculateInput{BookingID: args[0], UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, recordsView{rec})
		},
	}
}

func newCommissionApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <commission-id>",
		Short: "Approve a calculated commission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			actor, err := requireActor(cliCtx)
			if err != nil {
				return err
			}

			rec, err := svc.Commissions.Approve(ctx, &commission.TransitionInput{CommissionID: args[0], UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, recordsView{rec})
		},
	}
}

func newCommissionFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <commission-id>",
		Short: "Finalize an approved commission and credit the manager",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()
			actor, err := requireActor(cliCtx)
			if err != nil {
				return err
			}

			res, err := svc.Commissions.Finalize(ctx, &commission.TransitionInput{CommissionID: args[0], UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, finalizeView{res})
		},
	}
}

func newCommissionPeriodCmd() *cobra.Command {
	var (
		start, end string
		properties []string
	)

	cmd := &cobra.Command{
		Use:     "period <manager-id>",
		Short:   "Total a manager's commissions over a month range",
		Example: "  stayledger commission period mgr-7 --start 2024-01 --end 2024-06",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			sum, err := svc.Commissions.ManagerPeriod(ctx, &commission.PeriodInput{
				ManagerID:  args[0],
				Start:      start,
				End:        end,
				Properties: properties,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, periodView{sum})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first month, YYYY-MM (required)")
	cmd.Flags().StringVar(&end, "end", "", "last month, YYYY-MM (required)")
	cmd.Flags().StringSliceVar(&properties, "property", nil, "restrict to these properties")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

type recordsView struct {
	rec *domainCommission.Record
}

func (v recordsView) JSONValue() interface{} { return v.rec }

func (v recordsView) TableHeaders() []string {
	return []string{"ID", "BOOKING", "PERIOD", "STATUS", "BASE", "RATE", "COMMISSION", "OWNER NET", "CURRENCY"}
}

func (v recordsView) TableRows() [][]string {
	r := v.rec
	return [][]string{{
		r.ID, r.BookingID, r.Period.String(), string(r.Status),
		r.BaseAmount.String(), r.CommissionRate.String() + "%",
		r.CommissionAmount.String(), r.OwnerNetAmount.String(), r.Currency,
	}}
}

func (v recordsView) String() string {
	r := v.rec
	return fmt.Sprintf("commission %s (%s): %s %s at %s%% of %s, owner net %s",
		r.ID, r.Status, r.CommissionAmount, r.Currency, r.CommissionRate, r.BaseAmount, r.OwnerNetAmount)
}

type finalizeView struct {
	res *commission.FinalizeResult
}

func (v finalizeView) JSONValue() interface{} { return v.res }

func (v finalizeView) String() string {
	s := recordsView{v.res.Record}.String()
	if b := v.res.Balance; b != nil {
		s += fmt.Sprintf("\nbalance of %s: %s %s", b.ManagerID, b.CurrentBalance, b.Currency)
	}
	return s
}

type periodView struct {
	sum *domainCommission.PeriodSummary
}

func (v periodView) JSONValue() interface{} { return v.sum }

func (v periodView) TableHeaders() []string {
	return []string{"PROPERTY", "RECORDS", "BASE", "COMMISSION"}
}

func (v periodView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.sum.ByProperty)+1)
	for _, p := range v.sum.ByProperty {
		rows = append(rows, []string{p.PropertyID, strconv.Itoa(p.Records), p.BaseAmount.String(), p.CommissionAmount.String()})
	}
	return append(rows, []string{"TOTAL", strconv.Itoa(v.sum.Records), v.sum.TotalBase.String(), v.sum.TotalCommission.String()})
}

func (v periodView) String() string {
	s := v.sum
	var sb strings.Builder
	fmt.Fprintf(&sb, "manager %s, %s..%s, %s\n", s.ManagerID, s.Start, s.End, s.Currency)
	sb.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))
	if len(s.Unconverted) > 0 {
		fmt.Fprintf(&sb, "unconverted records: %s\n", strings.Join(s.Unconverted, ", "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

//Personal.AI order the ending
