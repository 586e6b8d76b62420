package model

// Package model contains domain models/data structures shared across layers.
// No persistence tags and no orchestration logic here.

import "fmt"

// ValidationStatus is the validation state of a document and of its flow.
// A document without a flow is always NoValidation.
type ValidationStatus string

const (
	ValidationNone     ValidationStatus = "NoValidation"
	ValidationPending  ValidationStatus = "Pending"
	ValidationApproved ValidationStatus = "Approved"
	ValidationRejected ValidationStatus = "Rejected"
)

// IsTerminal reports whether no further approval decisions are accepted.
func (s ValidationStatus) IsTerminal() bool {
	return s == ValidationApproved || s == ValidationRejected
}

func (s ValidationStatus) String() string { return string(s) }

// ParseValidationStatus converts a stored value back to a ValidationStatus.
func ParseValidationStatus(v string) (ValidationStatus, error) {
	switch s := ValidationStatus(v); s {
	case ValidationNone, ValidationPending, ValidationApproved, ValidationRejected:
		return s, nil
	}
	return "", fmt.Errorf("unknown validation status %q", v)
}

// StepStatus is the decision state of one approval step.
type StepStatus string

const (
	StepPending  StepStatus = "Pending"
	StepApproved StepStatus = "Approved"
	StepRejected StepStatus = "Rejected"
)

// ActionKind identifies an approver decision recorded on a flow.
type ActionKind string

const (
	ActionApprove ActionKind = "Approve"
	ActionReject  ActionKind = "Reject"
)
