package storage

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Row types mirror the tables one to one. Decimals are stored as TEXT and
// dates as YYYY-MM-DD TEXT.

type PersonRow struct {
	ID           int64
	Name         string
	Email        sql.NullString
	DefaultShare decimal.Decimal
	Active       bool
}

type AccountRow struct {
	ID                    int64
	Name                  string
	Description           string
	DefaultSplitPrimary   decimal.Decimal
	DefaultSplitSecondary decimal.Decimal
}

type ExpenseRow struct {
	ID               int64
	Description      string
	Amount           decimal.Decimal
	Date             string
	Category         string
	Notes            string
	PaidByID         int64
	AccountID        int64
	RecurrenceRuleID sql.NullInt64
	CreatedAt        string
}

type ExpenseSplitRow struct {
	ID         int64
	ExpenseID  int64
	PersonID   int64
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

type RecurrenceRuleRow struct {
	ID                   int64
	Frequency            string
	IntervalCount        int64
	AnchorDate           string
	NextDueDate          string
	TotalOccurrences     sql.NullInt64
	OccurrencesGenerated int64
	Active               bool
}
