package core

import "github.com/shopspring/decimal"

// The patch types carry optional fields for partial updates: a nil field
// leaves the target unchanged.

type PersonPatch struct {
	Name         *string
	Email        *string
	DefaultShare *decimal.Decimal
	Active       *bool
}

func (p PersonPatch) Apply(dst *Person) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Email != nil {
		dst.Email = *p.Email
	}
	if p.DefaultShare != nil {
		dst.DefaultShare = *p.DefaultShare
	}
	if p.Active != nil {
		dst.Active = *p.Active
	}
}

type AccountPatch struct {
	Name                  *string
	Description           *string
	DefaultSplitPrimary   *decimal.Decimal
	DefaultSplitSecondary *decimal.Decimal
}

func (p AccountPatch) Apply(dst *Account) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.DefaultSplitPrimary != nil {
		dst.DefaultSplitPrimary = *p.DefaultSplitPrimary
	}
	if p.DefaultSplitSecondary != nil {
		dst.DefaultSplitSecondary = *p.DefaultSplitSecondary
	}
}

// ExpensePatch replaces the whole split set when Splits is non-nil. Split
// amounts are never patched directly; the caller re-runs allocation.
type ExpensePatch struct {
	Description      *string
	Amount           *decimal.Decimal
	Date             *Date
	Category         *string
	Notes            *string
	PaidByID         *int64
	AccountID        *int64
	RecurrenceRuleID *int64
	Splits           *[]Split
}

func (p ExpensePatch) Apply(dst *Expense) {
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Amount != nil {
		dst.Amount = *p.Amount
	}
	if p.Date != nil {
		dst.Date = *p.Date
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Notes != nil {
		dst.Notes = *p.Notes
	}
	if p.PaidByID != nil {
		dst.PaidByID = *p.PaidByID
	}
	if p.AccountID != nil {
		dst.AccountID = *p.AccountID
	}
	if p.RecurrenceRuleID != nil {
		id := *p.RecurrenceRuleID
		dst.RecurrenceRuleID = &id
	}
	if p.Splits != nil {
		dst.Splits = append([]Split(nil), (*p.Splits)...)
	}
}

type RulePatch struct {
	Frequency        *Frequency
	Interval         *int
	AnchorDate       *Date
	NextDueDate      *Date
	TotalOccurrences *int
	Active           *bool
}

func (p RulePatch) Apply(dst *RecurrenceRule) {
	if p.Frequency != nil {
		dst.Frequency = *p.Frequency
	}
	if p.Interval != nil {
		dst.Interval = *p.Interval
	}
	if p.AnchorDate != nil {
		dst.AnchorDate = *p.AnchorDate
	}
	if p.NextDueDate != nil {
		dst.NextDueDate = *p.NextDueDate
	}
	if p.TotalOccurrences != nil {
		n := *p.TotalOccurrences
		dst.TotalOccurrences = &n
	}
	if p.Active != nil {
		dst.Active = *p.Active
	}
}
