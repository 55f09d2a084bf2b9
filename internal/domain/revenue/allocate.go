package revenue

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/turtacn/StayLedger/internal/domain/currency"
)

// allocate rounds every bucket of exact so that the rounded buckets sum to
// total, which must already be rounded to code's precision. Each bucket is
// floored to the minor unit and the leftover units go to the buckets with
// the largest remainders; ties break on key.
func allocate(exact map[string]decimal.Decimal, total decimal.Decimal, code string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(exact))
	if len(exact) == 0 {
		return out
	}
	places := currency.MinorUnits(code)
	unit := decimal.New(1, -places)

	type rem struct {
		key string
		r   decimal.Decimal
	}
	rems := make([]rem, 0, len(exact))
	floored := decimal.Zero
	for k, v := range exact {
		f := v.RoundFloor(places)
		out[k] = f
		floored = floored.Add(f)
		rems = append(rems, rem{k, v.Sub(f)})
	}

	left := total.Sub(floored).Div(unit).IntPart()
	if left <= 0 {
		return out
	}
	sort.Slice(rems, func(i, j int) bool {
		if c := rems[i].r.Cmp(rems[j].r); c != 0 {
			return c > 0
		}
		return rems[i].key < rems[j].key
	})
	for i := 0; i < int(left) && i < len(rems); i++ {
		k := rems[i].key
		out[k] = out[k].Add(unit)
	}
	return out
}

//Personal.AI order the ending
