package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func third() decimal.Decimal {
	return decimal.NewFromInt(1).Div(decimal.NewFromInt(3))
}

func sum(amounts []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func TestAllocate_RemainderGoesToLastShare(t *testing.T) {
	amounts, err := Allocate(d("10.00"), []decimal.Decimal{third(), third(), third()})
	require.NoError(t, err)
	require.Len(t, amounts, 3)

	assertMoney(t, "3.33", amounts[0])
	assertMoney(t, "3.33", amounts[1])
	assertMoney(t, "3.34", amounts[2])
	assertMoney(t, "10.00", sum(amounts))
}

func TestAllocate_SingleShare(t *testing.T) {
	for _, total := range []string{"0.01", "10.00", "99.99", "12345.67"} {
		amounts, err := Allocate(d(total), []decimal.Decimal{d("1.0")})
		require.NoError(t, err)
		require.Len(t, amounts, 1)
		assertMoney(t, total, amounts[0])
	}
}

func TestAllocate_ZeroPercentages(t *testing.T) {
	_, err := Allocate(d("10.00"), []decimal.Decimal{d("0"), d("0")})
	assert.ErrorIs(t, err, ErrInvalidSplit)

	_, err = Allocate(d("10.00"), nil)
	assert.ErrorIs(t, err, ErrInvalidSplit)
}

func TestAllocate_Conservation(t *testing.T) {
	cases := []struct {
		name   string
		total  string
		shares []string
	}{
		{"halves", "100.00", []string{"0.5", "0.5"}},
		{"uneven", "33.33", []string{"0.7", "0.3"}},
		{"under tolerance", "10.00", []string{"0.33", "0.33", "0.33"}},
		{"over tolerance", "10.00", []string{"0.34", "0.34", "0.33"}},
		{"sevenths", "1.00", []string{"0.142857", "0.142857", "0.142857", "0.142857", "0.142857", "0.142857", "0.142858"}},
		{"one cent", "0.01", []string{"0.5", "0.5"}},
		{"large", "987654.32", []string{"0.125", "0.375", "0.5"}},
		{"zero last share", "50.00", []string{"1.0", "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			shares := make([]decimal.Decimal, len(tc.shares))
			for i, s := range tc.shares {
				shares[i] = d(s)
			}
			amounts, err := Allocate(d(tc.total), shares)
			require.NoError(t, err)
			require.Len(t, amounts, len(shares))
			assertMoney(t, tc.total, sum(amounts))
			for _, a := range amounts {
				assert.Equal(t, a.String(), RoundCurrency(a).String(), "amount %s is not rounded to cents", a)
			}
		})
	}
}

func TestAllocate_OutOfRangeDoesNotPanic(t *testing.T) {
	amounts, err := Allocate(d("10.00"), []decimal.Decimal{d("1.5"), d("-0.5")})
	require.NoError(t, err)
	assertMoney(t, "15.00", amounts[0])
	assertMoney(t, "-5.00", amounts[1])
	assertMoney(t, "10.00", sum(amounts))
}

func TestAllocateSplits(t *testing.T) {
	in := []Split{
		{PersonID: 1, Percentage: third()},
		{PersonID: 2, Percentage: third()},
		{PersonID: 3, Percentage: third(), Amount: d("999")},
	}
	out, err := AllocateSplits(d("10.00"), in)
	require.NoError(t, err)

	assert.Equal(t, int64(1), out[0].PersonID)
	assert.Equal(t, int64(3), out[2].PersonID)
	assertMoney(t, "3.33", out[0].Amount)
	assertMoney(t, "3.34", out[2].Amount)
	assertMoney(t, "999", in[2].Amount)
}
