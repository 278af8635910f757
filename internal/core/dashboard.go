package core

import "github.com/shopspring/decimal"

// Summary is the household overview: what was spent, who paid, who owes
// and how to settle.
type Summary struct {
	TotalExpenses decimal.Decimal
	TotalPaidBy   map[int64]decimal.Decimal
	TotalOwedBy   map[int64]decimal.Decimal
	Settlements   []Transfer
}

// Summarize folds every expense into per-person paid and owed totals and
// derives the settlements from them. Sums are accumulated at full precision
// and rounded once, on the way out.
func Summarize(expenses []Expense) Summary {
	total := decimal.Zero
	paidBy := make(map[int64]decimal.Decimal)
	owedBy := make(map[int64]decimal.Decimal)

	for _, e := range expenses {
		total = total.Add(e.Amount)
		paidBy[e.PaidByID] = paidBy[e.PaidByID].Add(e.Amount)
		for _, s := range e.Splits {
			owedBy[s.PersonID] = owedBy[s.PersonID].Add(s.Amount)
		}
	}

	settlements := Reduce(Balances(paidBy, owedBy))

	return Summary{
		TotalExpenses: RoundCurrency(total),
		TotalPaidBy:   roundAll(paidBy),
		TotalOwedBy:   roundAll(owedBy),
		Settlements:   settlements,
	}
}

func roundAll(m map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	out := make(map[int64]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = RoundCurrency(v)
	}
	return out
}
