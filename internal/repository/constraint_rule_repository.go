package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// ConstraintRuleRepository persists affirmative scheduling rules for workers.
type ConstraintRuleRepository struct {
	db *sqlx.DB
}

// NewConstraintRuleRepository constructs the repository.
func NewConstraintRuleRepository(db *sqlx.DB) *ConstraintRuleRepository {
	return &ConstraintRuleRepository{db: db}
}

// ListByWorker returns every rule attached to one worker.
func (r *ConstraintRuleRepository) ListByWorker(ctx context.Context, workerID string) ([]models.ConstraintRule, error) {
	const query = `SELECT id, worker_id, kind, payload, created_at, updated_at FROM constraint_rules WHERE worker_id = $1 ORDER BY created_at`
	var rules []models.ConstraintRule
	if err := r.db.SelectContext(ctx, &rules, query, workerID); err != nil {
		return nil, fmt.Errorf("list constraint rules: %w", err)
	}
	return rules, nil
}

// ListAll returns every rule across every worker, used to materialize
// availability for a full roster build.
func (r *ConstraintRuleRepository) ListAll(ctx context.Context) ([]models.ConstraintRule, error) {
	const query = `SELECT id, worker_id, kind, payload, created_at, updated_at FROM constraint_rules ORDER BY worker_id, created_at`
	var rules []models.ConstraintRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, fmt.Errorf("list all constraint rules: %w", err)
	}
	return rules, nil
}

// Create inserts a new rule.
func (r *ConstraintRuleRepository) Create(ctx context.Context, rule *models.ConstraintRule) error {
	switch rule.Kind {
	case models.ConstraintKindAvailability, models.ConstraintKindShiftRestriction, models.ConstraintKindCombination:
	default:
		return fmt.Errorf("create constraint rule: unsupported kind %q", rule.Kind)
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}
	rule.UpdatedAt = now

	const query = `INSERT INTO constraint_rules (id, worker_id, kind, payload, created_at, updated_at)
		VALUES (:id, :worker_id, :kind, :payload, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create constraint rule: %w", err)
	}
	return nil
}

// Delete removes a rule.
func (r *ConstraintRuleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM constraint_rules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete constraint rule: %w", err)
	}
	return nil
}
