package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// WorkerRepository manages persistence for schedulable staff members.
type WorkerRepository struct {
	db *sqlx.DB
}

// NewWorkerRepository constructs a WorkerRepository.
func NewWorkerRepository(db *sqlx.DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

// List returns workers matching filters along with total count.
func (r *WorkerRepository) List(ctx context.Context, filter models.WorkerFilter) ([]models.Worker, int, error) {
	base := "FROM workers WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"email":      "email",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, badge_id, email, full_name, phone, role, active, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, column, order, size, offset)
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list workers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count workers: %w", err)
	}
	return workers, total, nil
}

// ListActive returns every active worker, unpaginated, for roster builds.
func (r *WorkerRepository) ListActive(ctx context.Context) ([]models.Worker, error) {
	const query = `SELECT id, badge_id, email, full_name, phone, role, active, created_at, updated_at FROM workers WHERE active = TRUE ORDER BY id`
	var workers []models.Worker
	if err := r.db.SelectContext(ctx, &workers, query); err != nil {
		return nil, fmt.Errorf("list active workers: %w", err)
	}
	return workers, nil
}

// FindByID fetches a worker by ID.
func (r *WorkerRepository) FindByID(ctx context.Context, id string) (*models.Worker, error) {
	const query = `SELECT id, badge_id, email, full_name, phone, role, active, created_at, updated_at FROM workers WHERE id = $1`
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, id); err != nil {
		return nil, err
	}
	return &worker, nil
}

// FindByEmail fetches a worker by email.
func (r *WorkerRepository) FindByEmail(ctx context.Context, email string) (*models.Worker, error) {
	const query = `SELECT id, badge_id, email, full_name, phone, role, active, created_at, updated_at FROM workers WHERE LOWER(email) = LOWER($1)`
	var worker models.Worker
	if err := r.db.GetContext(ctx, &worker, query, email); err != nil {
		return nil, err
	}
	return &worker, nil
}

// ExistsByEmail checks if another worker uses the same email.
func (r *WorkerRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM workers WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check worker email: %w", err)
	}
	return true, nil
}

// Create inserts a new worker record.
func (r *WorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	if worker.ID == "" {
		worker.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = now
	}
	worker.UpdatedAt = now

	const query = `INSERT INTO workers (id, badge_id, email, full_name, phone, role, active, created_at, updated_at)
		VALUES (:id, :badge_id, :email, :full_name, :phone, :role, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, worker); err != nil {
		return fmt.Errorf("create worker: %w", err)
	}
	return nil
}

// Update modifies an existing worker record.
func (r *WorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	worker.UpdatedAt = time.Now().UTC()
	const query = `UPDATE workers SET badge_id = :badge_id, email = :email, full_name = :full_name, phone = :phone, role = :role, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, worker); err != nil {
		return fmt.Errorf("update worker: %w", err)
	}
	return nil
}

// Deactivate sets a worker's active flag to false.
func (r *WorkerRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE workers SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate worker: %w", err)
	}
	return nil
}
