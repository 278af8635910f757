package core

import (
	"errors"
	"fmt"
)

// ValidationError marks input rejected at the boundary. Callers match a
// specific rule with errors.Is against the exported values below, or any
// rule with errors.As.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalid(msg string) error { return &ValidationError{msg: msg} }

var (
	ErrInvalidDate        = invalid("invalid date")
	ErrInvalidAmount      = invalid("invalid amount")
	ErrEmptyDescription   = invalid("empty description")
	ErrDescriptionTooLong = invalid("description too long (max 200 characters)")
	ErrEmptyName          = invalid("empty name")
	ErrNameTooLong        = invalid("name too long")
	ErrMissingPayer       = invalid("missing payer")
	ErrMissingAccount     = invalid("missing account")
	ErrMissingPerson      = invalid("split without person")
	ErrNoSplits           = invalid("at least one split is required")
	ErrInvalidPercentage  = invalid("percentage must be between 0 and 1")
	ErrSharesTotal        = invalid("percentages must sum to 1.0")
	ErrInvalidInterval    = invalid("interval must be at least 1")
	ErrInvalidOccurrences = invalid("total occurrences must be at least 1")
)

var (
	// ErrInvalidSplit is returned when an allocation has nothing to divide by.
	ErrInvalidSplit = errors.New("invalid split: percentages sum to zero")

	// ErrRuleInactive is returned when advancing a rule that already
	// reached its occurrence cap or was switched off.
	ErrRuleInactive = errors.New("recurrence rule is inactive")
)

// UnknownFrequencyError reports a rule whose frequency unit is not one of
// daily, weekly, monthly or yearly.
type UnknownFrequencyError struct {
	Frequency Frequency
}

func (e *UnknownFrequencyError) Error() string {
	return fmt.Sprintf("unknown frequency: %q", string(e.Frequency))
}
