package http

import (
	"time"

	"github.com/shopspring/decimal"

	"rateio/internal/core"
)

// Request bodies use pointer fields: on update a missing field leaves the
// stored value alone. Amounts and percentages accept JSON numbers or
// strings; responses always carry money as a two-decimal string.

type personRequest struct {
	Name         *string          `json:"name"`
	Email        *string          `json:"email"`
	DefaultShare *decimal.Decimal `json:"default_share"`
	IsActive     *bool            `json:"is_active"`
}

func (p personRequest) patch() core.PersonPatch {
	return core.PersonPatch{
		Name:         p.Name,
		Email:        p.Email,
		DefaultShare: p.DefaultShare,
		Active:       p.IsActive,
	}
}

type personResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	DefaultShare string  `json:"default_share"`
	IsActive     bool    `json:"is_active"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func toPersonResponse(p core.Person) personResponse {
	return personResponse{
		ID:           p.ID,
		Name:         p.Name,
		Email:        optional(p.Email),
		DefaultShare: p.DefaultShare.String(),
		IsActive:     p.Active,
	}
}

type accountRequest struct {
	Name                  *string          `json:"name"`
	Description           *string          `json:"description"`
	DefaultSplitPrimary   *decimal.Decimal `json:"default_split_primary"`
	DefaultSplitSecondary *decimal.Decimal `json:"default_split_secondary"`
}

func (a accountRequest) patch() core.AccountPatch {
	return core.AccountPatch{
		Name:                  a.Name,
		Description:           a.Description,
		DefaultSplitPrimary:   a.DefaultSplitPrimary,
		DefaultSplitSecondary: a.DefaultSplitSecondary,
	}
}

type accountResponse struct {
	ID                    int64   `json:"id"`
	Name                  string  `json:"name"`
	Description           *string `json:"description"`
	DefaultSplitPrimary   string  `json:"default_split_primary"`
	DefaultSplitSecondary string  `json:"default_split_secondary"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:                    a.ID,
		Name:                  a.Name,
		Description:           optional(a.Description),
		DefaultSplitPrimary:   a.DefaultSplitPrimary.String(),
		DefaultSplitSecondary: a.DefaultSplitSecondary.String(),
	}
}

// splitRequest has no amount: amounts are always derived by allocation.
type splitRequest struct {
	PersonID   int64           `json:"person_id"`
	Percentage decimal.Decimal `json:"percentage"`
}

type expenseRequest struct {
	Description      *string          `json:"description"`
	Amount           *decimal.Decimal `json:"amount"`
	Date             *string          `json:"date"`
	Category         *string          `json:"category"`
	Notes            *string          `json:"notes"`
	PaidByID         *int64           `json:"paid_by_id"`
	AccountID        *int64           `json:"account_id"`
	RecurrenceRuleID *int64           `json:"recurrence_rule_id"`
	Splits           *[]splitRequest  `json:"splits"`
}

func (e expenseRequest) patch() (core.ExpensePatch, error) {
	date, err := parseDatePtr(e.Date)
	if err != nil {
		return core.ExpensePatch{}, err
	}
	p := core.ExpensePatch{
		Description:      e.Description,
		Amount:           e.Amount,
		Date:             date,
		Category:         e.Category,
		Notes:            e.Notes,
		PaidByID:         e.PaidByID,
		AccountID:        e.AccountID,
		RecurrenceRuleID: e.RecurrenceRuleID,
	}
	if e.Splits != nil {
		splits := make([]core.Split, len(*e.Splits))
		for i, s := range *e.Splits {
			splits[i] = core.Split{PersonID: s.PersonID, Percentage: s.Percentage}
		}
		p.Splits = &splits
	}
	return p, nil
}

type splitResponse struct {
	ID         int64  `json:"id"`
	PersonID   int64  `json:"person_id"`
	Percentage string `json:"percentage"`
	Amount     string `json:"amount"`
}

type expenseResponse struct {
	ID               int64           `json:"id"`
	Description      string          `json:"description"`
	Amount           string          `json:"amount"`
	Date             string          `json:"date"`
	Category         *string         `json:"category"`
	Notes            *string         `json:"notes"`
	PaidByID         int64           `json:"paid_by_id"`
	AccountID        int64           `json:"account_id"`
	RecurrenceRuleID *int64          `json:"recurrence_rule_id"`
	CreatedAt        time.Time       `json:"created_at"`
	Splits           []splitResponse `json:"splits"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	splits := make([]splitResponse, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = splitResponse{
			ID:         s.ID,
			PersonID:   s.PersonID,
			Percentage: s.Percentage.String(),
			Amount:     s.Amount.StringFixed(2),
		}
	}
	return expenseResponse{
		ID:               e.ID,
		Description:      e.Description,
		Amount:           e.Amount.StringFixed(2),
		Date:             e.Date.String(),
		Category:         optional(e.Category),
		Notes:            optional(e.Notes),
		PaidByID:         e.PaidByID,
		AccountID:        e.AccountID,
		RecurrenceRuleID: e.RecurrenceRuleID,
		CreatedAt:        e.CreatedAt,
		Splits:           splits,
	}
}

func toExpenseResponses(expenses []core.Expense) []expenseResponse {
	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	return out
}

type ruleRequest struct {
	FrequencyUnit    *core.Frequency `json:"frequency_unit"`
	Interval         *int            `json:"interval"`
	AnchorDate       *string         `json:"anchor_date"`
	NextDueDate      *string         `json:"next_due_date"`
	TotalOccurrences *int            `json:"total_occurrences"`
	IsActive         *bool           `json:"is_active"`
}

func (r ruleRequest) patch() (core.RulePatch, error) {
	anchor, err := parseDatePtr(r.AnchorDate)
	if err != nil {
		return core.RulePatch{}, err
	}
	next, err := parseDatePtr(r.NextDueDate)
	if err != nil {
		return core.RulePatch{}, err
	}
	return core.RulePatch{
		Frequency:        r.FrequencyUnit,
		Interval:         r.Interval,
		AnchorDate:       anchor,
		NextDueDate:      next,
		TotalOccurrences: r.TotalOccurrences,
		Active:           r.IsActive,
	}, nil
}

type ruleResponse struct {
	ID                   int64          `json:"id"`
	FrequencyUnit        core.Frequency `json:"frequency_unit"`
	Interval             int            `json:"interval"`
	AnchorDate           string         `json:"anchor_date"`
	NextDueDate          string         `json:"next_due_date"`
	TotalOccurrences     *int           `json:"total_occurrences"`
	OccurrencesGenerated int            `json:"occurrences_generated"`
	IsActive             bool           `json:"is_active"`
}

func toRuleResponse(r core.RecurrenceRule) ruleResponse {
	return ruleResponse{
		ID:                   r.ID,
		FrequencyUnit:        r.Frequency,
		Interval:             r.Interval,
		AnchorDate:           r.AnchorDate.String(),
		NextDueDate:          r.NextDueDate.String(),
		TotalOccurrences:     r.TotalOccurrences,
		OccurrencesGenerated: r.OccurrencesGenerated,
		IsActive:             r.Active,
	}
}

type transferResponse struct {
	PayerID    int64  `json:"payer_id"`
	ReceiverID int64  `json:"receiver_id"`
	Amount     string `json:"amount"`
}

type summaryResponse struct {
	TotalExpenses string             `json:"total_expenses"`
	TotalPaidBy   map[int64]string   `json:"total_paid_by"`
	TotalOwedBy   map[int64]string   `json:"total_owed_by"`
	Settlements   []transferResponse `json:"settlements"`
}

func fixed(m map[int64]decimal.Decimal) map[int64]string {
	out := make(map[int64]string, len(m))
	for k, v := range m {
		out[k] = v.StringFixed(2)
	}
	return out
}

func toSummaryResponse(s core.Summary) summaryResponse {
	transfers := make([]transferResponse, len(s.Settlements))
	for i, t := range s.Settlements {
		transfers[i] = transferResponse{
			PayerID:    t.PayerID,
			ReceiverID: t.ReceiverID,
			Amount:     t.Amount.StringFixed(2),
		}
	}
	return summaryResponse{
		TotalExpenses: s.TotalExpenses.StringFixed(2),
		TotalPaidBy:   fixed(s.TotalPaidBy),
		TotalOwedBy:   fixed(s.TotalOwedBy),
		Settlements:   transfers,
	}
}
