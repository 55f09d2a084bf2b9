package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/StayLedger/internal/application/payout"
	domainPayout "github.com/turtacn/StayLedger/internal/domain/payout"
)

func newPayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payout",
		Aliases: []string{"payouts"},
		Short:   "Manager balances and payout requests",
		Long: `Payout requests move pending -> approved -> paid, or pending -> rejected.
Only a paid request debits the manager's balance.`,
	}
	cmd.AddCommand(
		newPayoutBalanceCmd(),
		newPayoutListCmd(),
		newPayoutRequestCmd(),
		newPayoutApproveCmd(),
		newPayoutRejectCmd(),
		newPayoutPayCmd(),
	)
	return cmd
}

func newPayoutBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance <manager-id>",
		Short: "Show a manager's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			b, err := svc.Payouts.Balance(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, balanceView{b})
		},
	}
}

func newPayoutListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list <manager-id>",
		Short: "List a manager's payout requests, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			reqs, err := svc.Payouts.List(ctx, args[0], status)
			if err != nil {
				return err
			}
			return PrintResult(cmd, requestsView(reqs))
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "pending, approved, paid or rejected")
	return cmd
}

func newPayoutRequestCmd() *cobra.Command {
	var amount, note string

	cmd := &cobra.Command{
		Use:     "request <manager-id>",
		Short:   "Open a payout request against the manager's balance",
		Example: "  stayledger payout request mgr-7 --amount 1250.00 --note \"March payout\"",
		Args:    cobra.ExactArgs(1),
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

			req, err := svc.Payouts.Request(ctx, &payout.RequestInput{
				ManagerID: args[0],
				Amount:    amount,
				Note:      note,
				UserID:    actor,
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, requestView{req})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount in the balance currency (required)")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newPayoutApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <payout-id>",
		Short: "Approve a pending payout request",
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

			req, err := svc.Payouts.Approve(ctx, &payout.TransitionInput{PayoutID: args[0], UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, requestView{req})
		},
	}
}

func newPayoutRejectCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <payout-id>",
		Short: "Reject a pending payout request",
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

			req, err := svc.Payouts.Reject(ctx, &payout.RejectInput{PayoutID: args[0], Reason: reason, UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, requestView{req})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "why the request is rejected (required)")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newPayoutPayCmd() *cobra.Command {
	var receipt string

	cmd := &cobra.Command{
		Use:   "pay <payout-id>",
		Short: "Mark an approved request paid and debit the balance",
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

			res, err := svc.Payouts.Pay(ctx, &payout.PayInput{PayoutID: args[0], ReceiptRef: receipt, UserID: actor})
			if err != nil {
				return err
			}
			return PrintResult(cmd, payView{res})
		},
	}
	cmd.Flags().StringVar(&receipt, "receipt", "", "receipt reference from the upload (required)")
	_ = cmd.MarkFlagRequired("receipt")
	return cmd
}

type balanceView struct {
	b *domainPayout.Balance
}

func (v balanceView) JSONValue() interface{} { return v.b }

func (v balanceView) TableHeaders() []string {
	return []string{"MANAGER", "EARNED", "PAID", "BALANCE", "CURRENCY", "LAST PAYOUT"}
}

func (v balanceView) TableRows() [][]string {
	last := "-"
	if v.b.LastPayoutDate != nil {
		last = v.b.LastPayoutDate.UTC().Format(time.RFC3339)
	}
	return [][]string{{
		v.b.ManagerID, v.b.TotalEarned.String(), v.b.TotalPaid.String(),
		v.b.CurrentBalance.String(), v.b.Currency, last,
	}}
}

func (v balanceView) String() string {
	return fmt.Sprintf("%s: balance %s %s (earned %s, paid %s)",
		v.b.ManagerID, v.b.CurrentBalance, v.b.Currency, v.b.TotalEarned, v.b.TotalPaid)
}

type requestsView []*domainPayout.Request

func (v requestsView) JSONValue() interface{} {
	if v == nil {
		return []*domainPayout.Request{}
	}
	return []*domainPayout.Request(v)
}

func (v requestsView) TableHeaders() []string {
	return []string{"ID", "MANAGER", "AMOUNT", "CURRENCY", "STATUS", "CREATED"}
}

func (v requestsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, r := range v {
		rows = append(rows, []string{
			r.ID, r.ManagerID, r.Amount.String(), r.Currency, string(r.Status),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

type requestView struct {
	r *domainPayout.Request
}

func (v requestView) JSONValue() interface{} { return v.r }

func (v requestView) TableHeaders() []string { return requestsView{}.TableHeaders() }

func (v requestView) TableRows() [][]string { return requestsView{v.r}.TableRows() }

func (v requestView) String() string {
	return fmt.Sprintf("payout %s for %s: %s %s (%s)", v.r.ID, v.r.ManagerID, v.r.Amount, v.r.Currency, v.r.Status)
}

type payView struct {
	res *payout.PayResult
}

func (v payView) JSONValue() interface{} { return v.res }

func (v payView) String() string {
	r := v.res.Request
	s := fmt.Sprintf("payout %s paid: %s %s (receipt %s)", r.ID, r.Amount, r.Currency, r.ReceiptRef)
	if b := v.res.Balance; b != nil {
		s += fmt.Sprintf("\nbalance of %s: %s %s", b.ManagerID, b.CurrentBalance, b.Currency)
	}
	return s
}

//Personal.AI order the ending
