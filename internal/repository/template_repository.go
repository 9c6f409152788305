package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// TemplateRepository reads recurring shift templates.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs the repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ListActive returns every template currently in rotation.
func (r *TemplateRepository) ListActive(ctx context.Context) ([]models.Template, error) {
	const query = `SELECT id, role, period_id, shift_start, shift_end, days, active FROM templates WHERE active = TRUE ORDER BY id`
	var templates []models.Template
	if err := r.db.SelectContext(ctx, &templates, query); err != nil {
		return nil, fmt.Errorf("list active templates: %w", err)
	}
	return templates, nil
}
