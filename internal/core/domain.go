package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const dateLayout = "2006-01-02"

type (
	Frequency string

	Date struct {
		time.Time
	}

	Person struct {
		ID           int64
		Name         string
		Email        string
		DefaultShare decimal.Decimal
		Active       bool
	}

	// Account groups expenses and carries the household's default split
	// between its two main members.
	Account struct {
		ID                    int64
		Name                  string
		Description           string
		DefaultSplitPrimary   decimal.Decimal
		DefaultSplitSecondary decimal.Decimal
	}

	// Split apportions one expense to one person. Amount is derived by the
	// allocator from the expense total and the whole percentage set.
	Split struct {
		ID         int64
		PersonID   int64
		Percentage decimal.Decimal
		Amount     decimal.Decimal
	}

	Expense struct {
		ID               int64
		Description      string
		Amount           decimal.Decimal
		Date             Date
		Category         string
		Notes            string
		PaidByID         int64
		AccountID        int64
		RecurrenceRuleID *int64
		CreatedAt        time.Time
		Splits           []Split
	}

	RecurrenceRule struct {
		ID                   int64
		Frequency            Frequency
		Interval             int
		AnchorDate           Date
		NextDueDate          Date
		TotalOccurrences     *int // nil means unbounded
		OccurrencesGenerated int
		Active               bool
	}
)

const maxDescriptionLen = 200

var (
	shareTolerance = decimal.RequireFromString("0.01")
	one            = decimal.NewFromInt(1)
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current UTC calendar date.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// OnOrBefore reports whether d falls on or before other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other.Time)
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func validPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(one)
}

// ValidateShares checks a percentage set at the API boundary: every share in
// [0, 1] and the total within 1.00 ± 0.01.
func ValidateShares(shares ...decimal.Decimal) error {
	total := decimal.Zero
	for _, s := range shares {
		if !validPercentage(s) {
			return ErrInvalidPercentage
		}
		total = total.Add(s)
	}
	if total.Sub(one).Abs().GreaterThan(shareTolerance) {
		return ErrSharesTotal
	}
	return nil
}

func (p Person) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	if !validPercentage(p.DefaultShare) {
		return ErrInvalidPercentage
	}
	return nil
}

func (a Account) Validate() error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > 120 {
		return ErrNameTooLong
	}
	return ValidateShares(a.DefaultSplitPrimary, a.DefaultSplitSecondary)
}

func (e Expense) Validate() error {
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > maxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.PaidByID <= 0 {
		return ErrMissingPayer
	}
	if e.AccountID <= 0 {
		return ErrMissingAccount
	}
	if len(e.Splits) == 0 {
		return ErrNoSplits
	}
	shares := make([]decimal.Decimal, len(e.Splits))
	for i, s := range e.Splits {
		if s.PersonID <= 0 {
			return ErrMissingPerson
		}
		shares[i] = s.Percentage
	}
	return ValidateShares(shares...)
}

func (r RecurrenceRule) Validate() error {
	if !r.Frequency.Valid() {
		return &UnknownFrequencyError{Frequency: r.Frequency}
	}
	if r.Interval < 1 {
		return ErrInvalidInterval
	}
	if r.AnchorDate.IsZero() || r.NextDueDate.IsZero() {
		return ErrInvalidDate
	}
	if r.TotalOccurrences != nil && *r.TotalOccurrences < 1 {
		return ErrInvalidOccurrences
	}
	return nil
}
