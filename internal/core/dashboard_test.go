package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	expenses := []Expense{
		{
			Amount:   d("100.00"),
			PaidByID: 1,
			Splits: []Split{
				{PersonID: 1, Percentage: d("0.5"), Amount: d("50.00")},
				{PersonID: 2, Percentage: d("0.5"), Amount: d("50.00")},
			},
		},
		{
			Amount:   d("10.00"),
			PaidByID: 2,
			Splits: []Split{
				{PersonID: 1, Percentage: third(), Amount: d("3.33")},
				{PersonID: 2, Percentage: third(), Amount: d("3.33")},
				{PersonID: 3, Percentage: third(), Amount: d("3.34")},
			},
		},
	}

	s := Summarize(expenses)

	assertMoney(t, "110.00", s.TotalExpenses)
	assertMoney(t, "100.00", s.TotalPaidBy[1])
	assertMoney(t, "10.00", s.TotalPaidBy[2])
	assertMoney(t, "53.33", s.TotalOwedBy[1])
	assertMoney(t, "53.33", s.TotalOwedBy[2])
	assertMoney(t, "3.34", s.TotalOwedBy[3])

	// balances: 1 -> +46.67, 2 -> -43.33, 3 -> -3.34
	require.Len(t, s.Settlements, 2)
	assert.Equal(t, Transfer{PayerID: 2, ReceiverID: 1, Amount: s.Settlements[0].Amount}, s.Settlements[0])
	assertMoney(t, "43.33", s.Settlements[0].Amount)
	assert.Equal(t, int64(3), s.Settlements[1].PayerID)
	assertMoney(t, "3.34", s.Settlements[1].Amount)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.True(t, s.TotalExpenses.IsZero())
	assert.Empty(t, s.TotalPaidBy)
	assert.Empty(t, s.TotalOwedBy)
	assert.NotNil(t, s.Settlements)
	assert.Empty(t, s.Settlements)
}

func TestSummarize_RoundsOnceAtTheEnd(t *testing.T) {
	var expenses []Expense
	for i := 0; i < 3; i++ {
		expenses = append(expenses, Expense{
			Amount:   d("0.004"),
			PaidByID: 1,
			Splits:   []Split{{PersonID: 1, Percentage: decimal.NewFromInt(1), Amount: d("0.004")}},
		})
	}
	s := Summarize(expenses)
	assertMoney(t, "0.01", s.TotalExpenses)
	assertMoney(t, "0.01", s.TotalPaidBy[1])
}
