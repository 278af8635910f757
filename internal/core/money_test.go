package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestRoundCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1", "1.00"},
		{"1.234", "1.23"},
		{"1.235", "1.24"},
		{"1.005", "1.01"},
		{"2.675", "2.68"},
		{"0.125", "0.13"},
		{"-1.005", "-1.01"},
		{"-0.004", "0.00"},
		{"3.3333333333333333", "3.33"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := RoundCurrency(d(tc.in))
			assertMoney(t, tc.want, got)
			assert.Equal(t, tc.want, got.StringFixed(2))
		})
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "10.00", FormatMoney(d("10")))
	assert.Equal(t, "0.01", FormatMoney(d("0.005")))
	assert.Equal(t, "-4.50", FormatMoney(d("-4.5")))
}
