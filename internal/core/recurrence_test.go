package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func rule(freq Frequency, interval int, next Date) RecurrenceRule {
	return RecurrenceRule{
		ID:          1,
		Frequency:   freq,
		Interval:    interval,
		AnchorDate:  next,
		NextDueDate: next,
		Active:      true,
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name     string
		rule     RecurrenceRule
		expected Date
	}{
		{"daily", rule(Daily, 1, NewDate(2024, 1, 31)), NewDate(2024, 2, 1)},
		{"daily interval 10", rule(Daily, 10, NewDate(2024, 12, 25)), NewDate(2025, 1, 4)},
		{"weekly", rule(Weekly, 1, NewDate(2024, 2, 26)), NewDate(2024, 3, 4)},
		{"biweekly", rule(Weekly, 2, NewDate(2024, 1, 1)), NewDate(2024, 1, 15)},
		{"monthly jan 31 leap year", rule(Monthly, 1, NewDate(2024, 1, 31)), NewDate(2024, 2, 29)},
		{"monthly jan 31 non-leap year", rule(Monthly, 1, NewDate(2023, 1, 31)), NewDate(2023, 2, 28)},
		{"monthly mar 31 to apr 30", rule(Monthly, 1, NewDate(2024, 3, 31)), NewDate(2024, 4, 30)},
		{"monthly across year end", rule(Monthly, 3, NewDate(2024, 11, 15)), NewDate(2025, 2, 15)},
		{"monthly interval 12", rule(Monthly, 12, NewDate(2024, 2, 29)), NewDate(2025, 2, 28)},
		{"yearly", rule(Yearly, 1, NewDate(2024, 6, 15)), NewDate(2025, 6, 15)},
		{"yearly feb 29 to non-leap", rule(Yearly, 1, NewDate(2024, 2, 29)), NewDate(2025, 2, 28)},
		{"yearly feb 29 to leap", rule(Yearly, 4, NewDate(2024, 2, 29)), NewDate(2028, 2, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDueDate(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.String(), got.String())
		})
	}
}

func TestNextDueDate_UnknownFrequency(t *testing.T) {
	_, err := NextDueDate(rule(Frequency("fortnightly"), 1, NewDate(2024, 1, 1)))

	var freqErr *UnknownFrequencyError
	require.True(t, errors.As(err, &freqErr))
	assert.Equal(t, Frequency("fortnightly"), freqErr.Frequency)
}

func TestAdvance_MonthlyRollover(t *testing.T) {
	r := rule(Monthly, 1, NewDate(2023, 1, 31))
	require.NoError(t, r.Advance())
	assert.Equal(t, "2023-02-28", r.NextDueDate.String())
	assert.Equal(t, 1, r.OccurrencesGenerated)
	assert.True(t, r.Active)

	// the clamped day carries forward
	require.NoError(t, r.Advance())
	assert.Equal(t, "2023-03-28", r.NextDueDate.String())
}

func TestAdvance_OccurrenceCap(t *testing.T) {
	r := rule(Monthly, 1, NewDate(2024, 1, 10))
	r.TotalOccurrences = intPtr(3)

	require.NoError(t, r.Advance())
	require.NoError(t, r.Advance())
	assert.True(t, r.Active)
	assert.Equal(t, "2024-03-10", r.NextDueDate.String())

	require.NoError(t, r.Advance())
	assert.False(t, r.Active)
	assert.Equal(t, 3, r.OccurrencesGenerated)
	assert.Equal(t, "2024-03-10", r.NextDueDate.String())

	err := r.Advance()
	assert.ErrorIs(t, err, ErrRuleInactive)
	assert.Equal(t, 3, r.OccurrencesGenerated)
	assert.Equal(t, "2024-03-10", r.NextDueDate.String())
}

func TestAdvance_SingleOccurrence(t *testing.T) {
	r := rule(Weekly, 1, NewDate(2024, 5, 1))
	r.TotalOccurrences = intPtr(1)

	require.NoError(t, r.Advance())
	assert.False(t, r.Active)
	assert.Equal(t, "2024-05-01", r.NextDueDate.String())
}

func TestAdvance_UnknownFrequencyLeavesRuleUntouched(t *testing.T) {
	r := rule(Frequency("hourly"), 1, NewDate(2024, 5, 1))

	err := r.Advance()

	var freqErr *UnknownFrequencyError
	assert.ErrorAs(t, err, &freqErr)
	assert.Equal(t, 0, r.OccurrencesGenerated)
	assert.True(t, r.Active)
	assert.Equal(t, "2024-05-01", r.NextDueDate.String())
}

func TestIsDue(t *testing.T) {
	r := rule(Monthly, 1, NewDate(2024, 3, 15))

	assert.False(t, r.IsDue(NewDate(2024, 3, 14)))
	assert.True(t, r.IsDue(NewDate(2024, 3, 15)))
	assert.True(t, r.IsDue(NewDate(2024, 4, 1)))

	r.Active = false
	assert.False(t, r.IsDue(NewDate(2024, 4, 1)))
}

func TestInstantiateOccurrence(t *testing.T) {
	r := rule(Monthly, 1, NewDate(2024, 2, 1))
	r.ID = 42
	template := Expense{
		ID:          7,
		Description: "Rent",
		Amount:      d("100.00"),
		Date:        NewDate(2024, 1, 1),
		Category:    "Home",
		Notes:       "landlord",
		PaidByID:    1,
		AccountID:   3,
		Splits: []Split{
			{ID: 11, PersonID: 1, Percentage: d("0.5"), Amount: d("50.00")},
			{ID: 12, PersonID: 2, Percentage: d("0.5"), Amount: d("50.00")},
		},
	}

	got := InstantiateOccurrence(r, template, NewDate(2024, 2, 1))

	assert.Zero(t, got.ID)
	assert.Equal(t, "Rent", got.Description)
	assert.Equal(t, "Home", got.Category)
	assert.Equal(t, "landlord", got.Notes)
	assert.Equal(t, int64(1), got.PaidByID)
	assert.Equal(t, int64(3), got.AccountID)
	require.NotNil(t, got.RecurrenceRuleID)
	assert.Equal(t, int64(42), *got.RecurrenceRuleID)
	assert.Equal(t, "2024-02-01", got.Date.String())
	assertMoney(t, "100.00", got.Amount)

	require.Len(t, got.Splits, 2)
	for i, s := range got.Splits {
		assert.Zero(t, s.ID)
		assert.Equal(t, template.Splits[i].PersonID, s.PersonID)
		assert.True(t, template.Splits[i].Percentage.Equal(s.Percentage))
		assertMoney(t, "50.00", s.Amount)
	}

	// copies, not aliases
	got.Splits[0].Amount = d("1")
	assertMoney(t, "50.00", template.Splits[0].Amount)
}

func TestInstantiateOccurrence_KeepsTemplateAmounts(t *testing.T) {
	// Amounts that no longer match the percentages are reproduced as-is.
	template := Expense{
		Amount:   d("90.00"),
		PaidByID: 1,
		Splits: []Split{
			{PersonID: 1, Percentage: d("0.5"), Amount: d("60.00")},
			{PersonID: 2, Percentage: d("0.5"), Amount: d("30.00")},
		},
	}
	got := InstantiateOccurrence(rule(Daily, 1, NewDate(2024, 1, 1)), template, NewDate(2024, 1, 2))
	assertMoney(t, "60.00", got.Splits[0].Amount)
	assertMoney(t, "30.00", got.Splits[1].Amount)
}
