package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docflow/internal/audit"
	"docflow/internal/model"
	"docflow/internal/repository"
)

const maxReasonLength = 500

// ApproveRequest approves the current step of a document's validation flow.
type ApproveRequest struct {
	DocumentID string `json:"document_id"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// RejectRequest rejects a document awaiting validation. Reason is mandatory.
type RejectRequest struct {
	DocumentID string `json:"document_id"`
	RejecterID string `json:"rejecter_id"`
	Reason     string `json:"reason"`
}

// OperationResult reports the outcome of a validation decision.
type OperationResult struct {
	DocumentID string    `json:"document_id"`
	Status     string    `json:"status"`
	Message    string    `json:"message"`
	Success    bool      `json:"success"`
	OperatedAt time.Time `json:"operated_at"`
}

// StepStatusView is the read-only view of one validation step.
type StepStatusView struct {
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	ApproverID  string     `json:"approver_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// ValidationStatusResult projects a document's validation progress.
type ValidationStatusResult struct {
	DocumentID    string           `json:"document_id"`
	Status        string           `json:"status"`
	TotalSteps    int              `json:"total_steps"`
	ApprovedSteps int              `json:"approved_steps"`
	Steps         []StepStatusView `json:"steps"`
}

// ValidationService advances documents through their approval flow.
type ValidationService interface {
	// Approve approves the lowest-order pending step. When no pending step
	// remains the document becomes Approved.
	Approve(ctx context.Context, req ApproveRequest) (*OperationResult, error)

	// Reject rejects the document and every step still pending.
	Reject(ctx context.Context, req RejectRequest) (*OperationResult, error)

	// GetValidationStatus returns the current progress of a document's flow.
	GetValidationStatus(ctx context.Context, documentID string) (*ValidationStatusResult, error)
}

type validationService struct {
	base
	docs  repository.DocumentRepository
	flows repository.ValidationFlowRepository
	tx    repository.Transactor
}

// NewValidationService constructs a ValidationService.
func NewValidationService(docs repository.DocumentRepository, flows repository.ValidationFlowRepository, tx repository.Transactor, opts ...Option) ValidationService {
	return &validationService{
		base:  newBase(opts),
		docs:  docs,
		flows: flows,
		tx:    tx,
	}
}

func (s *validationService) Approve(ctx context.Context, req ApproveRequest) (*OperationResult, error) {
	res, err := s.approve(ctx, req)
	desc := "approve current step"
	if res != nil {
		desc = res.Message
	}
	s.record(ctx, audit.OpApprove, req.DocumentID, req.ApproverID, desc, err)
	return res, err
}

func (s *validationService) approve(ctx context.Context, req ApproveRequest) (*OperationResult, error) {
	if err := validateDecision(req.DocumentID, "approver_id", req.ApproverID, req.Reason, false); err != nil {
		return nil, err
	}
	doc, flow, err := s.loadPending(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	step := flow.CurrentStep()
	if step == nil {
		return nil, fmt.Errorf("%w: flow %s has no pending steps", ErrInvalidState, flow.ID)
	}

	now := s.now()
	step.Status = model.StepApproved
	step.ApproverID = req.ApproverID
	step.CompletedAt = &now
	step.UpdatedAt = now
	approved := step.Order
	stepID := step.ID

	flow.Actions = append(flow.Actions, model.ValidationAction{
		ID:        s.newID(),
		FlowID:    flow.ID,
		StepID:    &stepID,
		Kind:      model.ActionApprove,
		ActorID:   req.ApproverID,
		Reason:    optional(req.Reason),
		CreatedAt: now,
	})

	var msg string
	if next := flow.CurrentStep(); next != nil {
		msg = fmt.Sprintf("step %d approved; step %d is now pending", approved, next.Order)
	} else {
		flow.Status = model.ValidationApproved
		doc.ValidationStatus = model.ValidationApproved
		msg = fmt.Sprintf("step %d approved; document fully approved", approved)
	}
	flow.UpdatedAt = now
	doc.UpdatedAt = now

	if err := s.persist(ctx, doc, flow); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "step_approved",
		"document_id", doc.ID,
		"step", approved,
		"status", doc.ValidationStatus.String(),
	)
	return &OperationResult{
		DocumentID: doc.ID,
		Status:     doc.ValidationStatus.String(),
		Message:    msg,
		Success:    true,
		OperatedAt: now,
	}, nil
}

func (s *validationService) Reject(ctx context.Context, req RejectRequest) (*OperationResult, error) {
	res, err := s.reject(ctx, req)
	desc := "reject document"
	if res != nil {
		desc = res.Message
	}
	s.record(ctx, audit.OpReject, req.DocumentID, req.RejecterID, desc, err)
	return res, err
}

func (s *validationService) reject(ctx context.Context, req RejectRequest) (*OperationResult, error) {
	if err := validateDecision(req.DocumentID, "rejecter_id", req.RejecterID, req.Reason, true); err != nil {
		return nil, err
	}
	doc, flow, err := s.loadPending(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range flow.Steps {
		st := &flow.Steps[i]
		if st.Status != model.StepPending {
			continue
		}
		st.Status = model.StepRejected
		st.CompletedAt = &now
		st.UpdatedAt = now
	}
	flow.Actions = append(flow.Actions, model.ValidationAction{
		ID:        s.newID(),
		FlowID:    flow.ID,
		Kind:      model.ActionReject,
		ActorID:   req.RejecterID,
		Reason:    optional(req.Reason),
		CreatedAt: now,
	})
	flow.Status = model.ValidationRejected
	flow.UpdatedAt = now
	doc.ValidationStatus = model.ValidationRejected
	doc.UpdatedAt = now

	if err := s.persist(ctx, doc, flow); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "document_rejected", "document_id", doc.ID)
	return &OperationResult{
		DocumentID: doc.ID,
		Status:     doc.ValidationStatus.String(),
		Message:    "document rejected: " + strings.TrimSpace(req.Reason),
		Success:    true,
		OperatedAt: now,
	}, nil
}

func (s *validationService) GetValidationStatus(ctx context.Context, documentID string) (*ValidationStatusResult, error) {
	if err := requiredID("document_id", documentID); err != nil {
		return nil, err
	}
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, fromRepo(err, "load document")
	}

	res := &ValidationStatusResult{
		DocumentID: doc.ID,
		Status:     doc.ValidationStatus.String(),
		Steps:      []StepStatusView{},
	}
	if doc.ValidationFlowID == nil {
		return res, nil
	}
	flow, err := s.flows.FindByID(ctx, *doc.ValidationFlowID)
	if errors.Is(err, repository.ErrNotFound) {
		return res, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load validation flow: %w", err)
	}

	reasons := make(map[string]string, len(flow.Actions))
	for _, a := range flow.Actions {
		if a.Kind == model.ActionApprove && a.StepID != nil && a.Reason != nil {
			reasons[*a.StepID] = *a.Reason
		}
	}
	res.TotalSteps = len(flow.Steps)
	res.ApprovedSteps = flow.ApprovedCount()
	for _, st := range flow.Steps {
		v := StepStatusView{
			Order:  st.Order,
			Status: string(st.Status),
			Reason: reasons[st.ID],
		}
		if st.Status != model.StepPending {
			v.ApproverID = st.ApproverID
			v.CompletedAt = st.CompletedAt
		}
		res.Steps = append(res.Steps, v)
	}
	return res, nil
}

// loadPending loads a document awaiting validation together with its flow.
func (s *validationService) loadPending(ctx context.Context, documentID string) (*model.Document, *model.ValidationFlow, error) {
	doc, err := s.docs.FindByID(ctx, documentID)
	if err != nil {
		return nil, nil, fromRepo(err, "load document")
	}
	if doc.ValidationStatus != model.ValidationPending {
		return nil, nil, fmt.Errorf("%w: document %s is %s, expected %s",
			ErrInvalidState, doc.ID, doc.ValidationStatus, model.ValidationPending)
	}
	if doc.ValidationFlowID == nil {
		return nil, nil, fmt.Errorf("%w: document %s has no validation flow", ErrInvalidState, doc.ID)
	}
	flow, err := s.flows.FindByID(ctx, *doc.ValidationFlowID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: validation flow %s is missing", ErrInvalidState, *doc.ValidationFlowID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load validation flow: %w", err)
	}
	return doc, flow, nil
}

// persist writes the flow (version-guarded) and the document in one transaction.
func (s *validationService) persist(ctx context.Context, doc *model.Document, flow *model.ValidationFlow) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Flows.Update(ctx, flow); err != nil {
			return err
		}
		return repos.Documents.Update(ctx, doc)
	})
	if errors.Is(err, repository.ErrConflict) {
		s.logger.WarnContext(ctx, "validation_conflict", "document_id", doc.ID, "flow_id", flow.ID)
	}
	return fromRepo(err, "persist validation")
}

func validateDecision(documentID, actorField, actorID, reason string, reasonRequired bool) error {
	errs := []error{checkID("document_id", documentID), checkID(actorField, actorID)}
	switch {
	case reasonRequired && strings.TrimSpace(reason) == "":
		errs = append(errs, errors.New("reason is required"))
	case len(reason) > maxReasonLength:
		errs = append(errs, fmt.Errorf("reason must be at most %d characters", maxReasonLength))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.ReplaceAll(err.Error(), "\n", "; "))
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
