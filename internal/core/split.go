package core

import "github.com/shopspring/decimal"

// Allocate distributes total across the given percentage shares and returns
// one amount per share, in the same order.
//
// Every share but the last gets round(total * pct). The last share gets
// round(total - assigned so far), so the amounts always add up to total no
// matter how much rounding the earlier shares produced. Percentages are not
// range-checked here; only a zero sum is rejected.
func Allocate(total decimal.Decimal, shares []decimal.Decimal) ([]decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s)
	}
	if sum.IsZero() {
		return nil, ErrInvalidSplit
	}

	amounts := make([]decimal.Decimal, len(shares))
	assigned := decimal.Zero
	last := len(shares) - 1
	for i, pct := range shares {
		if i == last {
			amounts[i] = RoundCurrency(total.Sub(assigned))
			break
		}
		amounts[i] = RoundCurrency(total.Mul(pct))
		assigned = assigned.Add(amounts[i])
	}
	return amounts, nil
}

// AllocateSplits runs Allocate over the percentages of splits and returns a
// copy with every Amount recomputed. The input slice is left untouched.
func AllocateSplits(total decimal.Decimal, splits []Split) ([]Split, error) {
	shares := make([]decimal.Decimal, len(splits))
	for i, s := range splits {
		shares[i] = s.Percentage
	}
	amounts, err := Allocate(total, shares)
	if err != nil {
		return nil, err
	}
	out := make([]Split, len(splits))
	for i, s := range splits {
		s.Amount = amounts[i]
		out[i] = s
	}
	return out, nil
}
