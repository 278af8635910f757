package core

import "time"

// stepFunc moves a due date forward by interval frequency units.
type stepFunc func(from Date, interval int) Date

// steps maps each frequency unit to its date arithmetic.
var steps = map[Frequency]stepFunc{
	Daily: func(from Date, interval int) Date {
		return Date{Time: from.AddDate(0, 0, interval)}
	},
	Weekly: func(from Date, interval int) Date {
		return Date{Time: from.AddDate(0, 0, 7*interval)}
	},
	Monthly: AddMonths,
	Yearly:  AddYears,
}

func stepFor(f Frequency) (stepFunc, error) {
	step, ok := steps[f]
	if !ok {
		return nil, &UnknownFrequencyError{Frequency: f}
	}
	return step, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds months to d, clamping the day to the last day of the
// resulting month (Jan 31 + 1 -> Feb 28, or Feb 29 in a leap year).
func AddMonths(d Date, months int) Date {
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := min(d.Day(), daysIn(first.Year(), first.Month()))
	return NewDate(first.Year(), int(first.Month()), day)
}

// AddYears adds years to d. Feb 29 lands on Feb 28 in a non-leap year.
func AddYears(d Date, years int) Date {
	year := d.Year() + years
	day := min(d.Day(), daysIn(year, d.Month()))
	return NewDate(year, int(d.Month()), day)
}

// NextDueDate computes the due date following r.NextDueDate without
// touching r.
func NextDueDate(r RecurrenceRule) (Date, error) {
	step, err := stepFor(r.Frequency)
	if err != nil {
		return Date{}, err
	}
	return step(r.NextDueDate, r.Interval), nil
}

// Advance records one generated occurrence. When the occurrence cap is
// reached the rule turns inactive for good and NextDueDate keeps its last
// value; otherwise NextDueDate moves one interval forward.
//
// An unknown frequency or an inactive rule is reported before anything is
// mutated.
func (r *RecurrenceRule) Advance() error {
	if !r.Active {
		return ErrRuleInactive
	}
	step, err := stepFor(r.Frequency)
	if err != nil {
		return err
	}

	r.OccurrencesGenerated++
	if r.TotalOccurrences != nil && *r.TotalOccurrences > 0 && r.OccurrencesGenerated >= *r.TotalOccurrences {
		r.Active = false
		return nil
	}
	r.NextDueDate = step(r.NextDueDate, r.Interval)
	return nil
}

// IsDue reports whether the rule is active and its next due date is on or
// before ref.
func (r RecurrenceRule) IsDue(ref Date) bool {
	return r.Active && r.NextDueDate.OnOrBefore(ref)
}

// InstantiateOccurrence builds a new, unsaved expense from template dated
// due. Splits are copied verbatim, amounts included: an occurrence
// reproduces the template's split amounts rather than re-running the
// allocator.
func InstantiateOccurrence(rule RecurrenceRule, template Expense, due Date) Expense {
	ruleID := rule.ID
	splits := make([]Split, len(template.Splits))
	for i, s := range template.Splits {
		splits[i] = Split{
			PersonID:   s.PersonID,
			Percentage: s.Percentage,
			Amount:     s.Amount,
		}
	}
	return Expense{
		Description:      template.Description,
		Amount:           template.Amount,
		Date:             due,
		Category:         template.Category,
		Notes:            template.Notes,
		PaidByID:         template.PaidByID,
		AccountID:        template.AccountID,
		RecurrenceRuleID: &ruleID,
		Splits:           splits,
	}
}
