package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/pkg/errors"
)

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect exchange rates and convert amounts",
	}
	cmd.AddCommand(newRatesGetCmd(), newRatesConvertCmd())
	return cmd
}

func newRatesGetCmd() *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "get <base>",
		Short: "Show the current rate snapshot for a base currency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := currency.NormalizeCode(args[0])
			if len(base) != 3 {
				return errors.InvalidParam("base must be a 3-letter currency code").WithDetail(args[0])
			}
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			snap, err := svc.Rates.Rates(ctx, base)
			if err != nil {
				return err
			}
			return PrintResult(cmd, newRatesView(snap, only))
		},
	}
	cmd.Flags().StringSliceVar(&only, "only", nil, "limit output to these currency codes")
	return cmd
}

func newRatesConvertCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert <amount>",
		Short: "Convert an amount between two currencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return errors.InvalidParam("amount must be a decimal number").WithDetail(args[0])
			}
			from, to = currency.NormalizeCode(from), currency.NormalizeCode(to)
			if len(from) != 3 || len(to) != 3 {
				return errors.InvalidParam("--from and --to must be 3-letter currency codes")
			}
			_, svc, ctx, cancel, err := runContext(cmd)
			if err != nil {
				return err
			}
			defer cancel()

			conv := svc.Converter.Convert(ctx, amount, from, to)
			if conv.Converted {
				conv.Amount = currency.Round(conv.Amount, conv.Currency)
			}
			return PrintResult(cmd, conversionView(conv))
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source currency (required)")
	cmd.Flags().StringVar(&to, "to", "", "target currency (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

type ratesView struct {
	snap  *currency.Snapshot
	codes []string
}

func newRatesView(snap *currency.Snapshot, only []string) ratesView {
	var codes []string
	if len(only) > 0 {
		for _, c := range only {
			c = currency.NormalizeCode(c)
			if _, ok := snap.Rates[c]; ok {
				codes = append(codes, c)
			}
		}
	} else {
		for c := range snap.Rates {
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	return ratesView{snap: snap, codes: codes}
}

func (v ratesView) JSONValue() interface{} { return v.snap }

func (v ratesView) TableHeaders() []string { return []string{"CURRENCY", "RATE"} }

func (v ratesView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.codes))
	for _, c := range v.codes {
		rows = append(rows, []string{c, v.snap.Rates[c].String()})
	}
	return rows
}

func (v ratesView) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "base %s from %s at %s\n", v.snap.Base, v.snap.Source, v.snap.FetchedAt.UTC().Format(time.RFC3339))
	sb.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))
	return strings.TrimRight(sb.String(), "\n")
}

type conversionView currency.Conversion

func (v conversionView) JSONValue() interface{} { return currency.Conversion(v) }

func (v conversionView) String() string {
	if !v.Converted {
		return fmt.Sprintf("%s %s unconverted (%s)", v.Original, v.OriginalCurrency, v.Reason)
	}
	return fmt.Sprintf("%s %s = %s %s", v.Original, v.OriginalCurrency, v.Amount.StringFixed(currency.MinorUnits(v.Currency)), v.Currency)
}

//Personal.AI order the ending
