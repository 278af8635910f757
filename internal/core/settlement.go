package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Transfer is a directed payment that closes out part of two balances.
type Transfer struct {
	PayerID    int64
	ReceiverID int64
	Amount     decimal.Decimal
}

type position struct {
	person    int64
	remaining decimal.Decimal
}

// Balances nets paid against owed per person. Anyone present in either map
// appears in the result.
func Balances(paidBy, owedBy map[int64]decimal.Decimal) map[int64]decimal.Decimal {
	balances := make(map[int64]decimal.Decimal, len(paidBy)+len(owedBy))
	for id, paid := range paidBy {
		balances[id] = paid
	}
	for id, owed := range owedBy {
		balances[id] = balances[id].Sub(owed)
	}
	return balances
}

// Reduce turns signed balances (positive: is owed, negative: owes) into
// payer -> receiver transfers.
//
// Balances are rounded to cents first. Receivers and payers are each sorted
// by ascending person ID and matched with a two-cursor sweep: each step moves
// min(receiver remaining, payer remaining) and advances whichever side hit
// zero. The result is deterministic but not guaranteed to be the smallest
// possible set of transfers.
func Reduce(balances map[int64]decimal.Decimal) []Transfer {
	ids := make([]int64, 0, len(balances))
	for id := range balances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var receivers, payers []position
	for _, id := range ids {
		b := RoundCurrency(balances[id])
		switch b.Sign() {
		case 1:
			receivers = append(receivers, position{person: id, remaining: b})
		case -1:
			payers = append(payers, position{person: id, remaining: b.Neg()})
		}
	}

	transfers := make([]Transfer, 0, max(len(receivers), len(payers)))
	r, p := 0, 0
	for r < len(receivers) && p < len(payers) {
		payment := RoundCurrency(decimal.Min(receivers[r].remaining, payers[p].remaining))
		transfers = append(transfers, Transfer{
			PayerID:    payers[p].person,
			ReceiverID: receivers[r].person,
			Amount:     payment,
		})

		receivers[r].remaining = receivers[r].remaining.Sub(payment)
		payers[p].remaining = payers[p].remaining.Sub(payment)

		if receivers[r].remaining.Sign() <= 0 {
			r++
		}
		if payers[p].remaining.Sign() <= 0 {
			p++
		}
	}
	return transfers
}
