package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// ValidationFlowPostgres is a PostgreSQL implementation of repository.ValidationFlowRepository.
// Flow, steps and actions live in separate tables; callers wanting atomic
// multi-table writes should obtain it through Transactor.WithinTx.
type ValidationFlowPostgres struct {
	db dbtx
}

// NewValidationFlowPostgres creates a new ValidationFlowPostgres repository.
func NewValidationFlowPostgres(db *sql.DB) *ValidationFlowPostgres {
	return &ValidationFlowPostgres{db: db}
}

var _ repository.ValidationFlowRepository = (*ValidationFlowPostgres)(nil)

// Create inserts the flow row followed by its steps and actions.
func (r *ValidationFlowPostgres) Create(ctx context.Context, flow *model.ValidationFlow) error {
	const q = `
		INSERT INTO document_validation_flows (id, document_id, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if flow.Version == 0 {
		flow.Version = 1
	}
	if _, err := r.db.ExecContext(ctx, q,
		flow.ID,
		flow.DocumentID,
		string(flow.Status),
		flow.Version,
		flow.CreatedAt,
		flow.UpdatedAt,
	); err != nil {
		return mapError(err)
	}
	for i := range flow.Steps {
		if err := r.insertStep(ctx, &flow.Steps[i]); err != nil {
			return err
		}
	}
	for i := range flow.Actions {
		if err := r.insertAction(ctx, &flow.Actions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ValidationFlowPostgres) insertStep(ctx context.Context, s *model.ValidationStep) error {
	const q = `
		INSERT INTO validation_steps (id, flow_id, step_order, status, approver_id, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.FlowID,
		s.Order,
		string(s.Status),
		nullString(s.ApproverID),
		s.CompletedAt,
		s.CreatedAt,
		s.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert step %d: %w", s.Order, mapError(err))
	}
	return nil
}

// insertAction appends an action. Already stored actions are skipped, so the
// action log can only grow.
func (r *ValidationFlowPostgres) insertAction(ctx context.Context, a *model.ValidationAction) error {
	const q = `
		INSERT INTO validation_actions (id, flow_id, step_id, kind, actor_id, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, q,
		a.ID,
		a.FlowID,
		nullStringPtr(a.StepID),
		string(a.Kind),
		a.ActorID,
		nullStringPtr(a.Reason),
		a.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert action: %w", mapError(err))
	}
	return nil
}

// FindByID loads a flow with its steps and actions.
func (r *ValidationFlowPostgres) FindByID(ctx context.Context, id string) (*model.ValidationFlow, error) {
	const qFlow = `
		SELECT id, document_id, status, version, created_at, updated_at
		FROM document_validation_flows
		WHERE id = $1
	`
	var (
		f      model.ValidationFlow
		status string
	)
	if err := r.db.QueryRowContext(ctx, qFlow, id).Scan(
		&f.ID,
		&f.DocumentID,
		&status,
		&f.Version,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	vs, err := model.ParseValidationStatus(status)
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", f.ID, err)
	}
	f.Status = vs

	if f.Steps, err = r.findSteps(ctx, id); err != nil {
		return nil, err
	}
	if f.Actions, err = r.findActions(ctx, id); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *ValidationFlowPostgres) findSteps(ctx context.Context, flowID string) ([]model.ValidationStep, error) {
	const q = `
		SELECT id, flow_id, step_order, status, approver_id, completed_at, created_at, updated_at
		FROM validation_steps
		WHERE flow_id = $1
		ORDER BY step_order
	`
	rows, err := r.db.QueryContext(ctx, q, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]model.ValidationStep, 0)
	for rows.Next() {
		var (
			s          model.ValidationStep
			status     string
			approverID sql.NullString
			completed  sql.NullTime
		)
		if err := rows.Scan(
			&s.ID,
			&s.FlowID,
			&s.Order,
			&status,
			&approverID,
			&completed,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		s.Status = model.StepStatus(status)
		s.ApproverID = approverID.String
		if completed.Valid {
			t := completed.Time
			s.CompletedAt = &t
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

func (r *ValidationFlowPostgres) findActions(ctx context.Context, flowID string) ([]model.ValidationAction, error) {
	const q = `
		SELECT id, flow_id, step_id, kind, actor_id, reason, created_at
		FROM validation_actions
		WHERE flow_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, q, flowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := make([]model.ValidationAction, 0)
	for rows.Next() {
		var (
			a      model.ValidationAction
			stepID sql.NullString
			kind   string
			reason sql.NullString
		)
		if err := rows.Scan(
			&a.ID,
			&a.FlowID,
			&stepID,
			&kind,
			&a.ActorID,
			&reason,
			&a.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.StepID = stringPtr(stepID)
		a.Kind = model.ActionKind(kind)
		a.Reason = stringPtr(reason)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// Update bumps the flow version if it still matches, then writes steps and appends actions.
func (r *ValidationFlowPostgres) Update(ctx context.Context, flow *model.ValidationFlow) error {
	const q = `
		UPDATE document_validation_flows
		SET status = $3, updated_at = $4, version = version + 1
		WHERE id = $1 AND version = $2
	`
	res, err := r.db.ExecContext(ctx, q, flow.ID, flow.Version, string(flow.Status), flow.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		const qExists = `SELECT EXISTS (SELECT 1 FROM document_validation_flows WHERE id = $1)`
		if err := r.db.QueryRowContext(ctx, qExists, flow.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}

	const qStep = `
		UPDATE validation_steps
		SET status = $3, approver_id = $4, completed_at = $5, updated_at = $6
		WHERE id = $1 AND flow_id = $2
	`
	for _, s := range flow.Steps {
		if _, err := r.db.ExecContext(ctx, qStep,
			s.ID,
			flow.ID,
			string(s.Status),
			nullString(s.ApproverID),
			s.CompletedAt,
			s.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update step %d: %w", s.Order, err)
		}
	}
	for i := range flow.Actions {
		if err := r.insertAction(ctx, &flow.Actions[i]); err != nil {
			return err
		}
	}
	flow.Version++
	return nil
}
