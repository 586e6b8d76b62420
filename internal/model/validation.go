package model

import "time"

// ValidationFlow is the ordered approval process attached to a document.
// Version is incremented on every successful write and guards concurrent decisions.
type ValidationFlow struct {
	ID         string             `json:"id"`
	DocumentID string             `json:"document_id"`
	Status     ValidationStatus   `json:"status"`
	Version    int64              `json:"version"`
	Steps      []ValidationStep   `json:"steps"`
	Actions    []ValidationAction `json:"actions"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// ValidationStep is one approval stage. Order starts at 1.
type ValidationStep struct {
	ID          string     `json:"id"`
	FlowID      string     `json:"flow_id"`
	Order       int        `json:"order"`
	Status      StepStatus `json:"status"`
	ApproverID  string     `json:"approver_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ValidationAction is an append-only record of an approver decision.
// StepID is nil for flow-level actions such as a rejection.
type ValidationAction struct {
	ID        string     `json:"id"`
	FlowID    string     `json:"flow_id"`
	StepID    *string    `json:"step_id,omitempty"`
	Kind      ActionKind `json:"kind"`
	ActorID   string     `json:"actor_id"`
	Reason    *string    `json:"reason,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// CurrentStep returns the lowest-order pending step, or nil when none remain.
func (f *ValidationFlow) CurrentStep() *ValidationStep {
	var cur *ValidationStep
	for i := range f.Steps {
		s := &f.Steps[i]
		if s.Status != StepPending {
			continue
		}
		if cur == nil || s.Order < cur.Order {
			cur = s
		}
	}
	return cur
}

// ApprovedCount returns the number of approved steps.
func (f *ValidationFlow) ApprovedCount() int {
	n := 0
	for _, s := range f.Steps {
		if s.Status == StepApproved {
			n++
		}
	}
	return n
}
