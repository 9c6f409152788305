package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/shiftloom/roster-api/internal/models"
)

// RosterAnalyticsRepository exposes read-optimised queries over committed
// plans for dashboard and reporting endpoints.
type RosterAnalyticsRepository struct {
	db *sqlx.DB
}

// NewRosterAnalyticsRepository instantiates the repository.
func NewRosterAnalyticsRepository(db *sqlx.DB) *RosterAnalyticsRepository {
	return &RosterAnalyticsRepository{db: db}
}

// FillSummary aggregates required-vs-assigned headcount per role for the
// given week range, joining the committed plan's assignments against its
// recorded understaffed gaps.
func (r *RosterAnalyticsRepository) FillSummary(ctx context.Context, filter models.RosterFillFilter) ([]models.RosterFillSummary, error) {
	var b strings.Builder
	b.WriteString(`
SELECT p.week_anchor, a.role,
       COUNT(a.id) + COALESCE(SUM(u.required - u.assigned), 0) AS required_total,
       COUNT(a.id) AS assigned_total,
       CASE WHEN COUNT(a.id) + COALESCE(SUM(u.required - u.assigned), 0) = 0 THEN 0
            ELSE COUNT(a.id)::DECIMAL / (COUNT(a.id) + COALESCE(SUM(u.required - u.assigned), 0)) END AS fill_rate,
       COALESCE(SUM(u.required - u.assigned), 0) AS understaffed_qty
FROM plans p
JOIN assignments a ON a.plan_id = p.id
LEFT JOIN understaffed_entries u ON u.plan_id = p.id AND u.role = a.role
WHERE p.status <> 'DRAFT'`)
	var args []interface{}
	if filter.WeekFrom != nil {
		args = append(args, *filter.WeekFrom)
		b.WriteString(fmt.Sprintf(" AND p.week_anchor >= $%d", len(args)))
	}
	if filter.WeekTo != nil {
		args = append(args, *filter.WeekTo)
		b.WriteString(fmt.Sprintf(" AND p.week_anchor <= $%d", len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		b.WriteString(fmt.Sprintf(" AND a.role = $%d", len(args)))
	}
	b.WriteString(" GROUP BY p.week_anchor, a.role ORDER BY p.week_anchor DESC, a.role ASC")

	var summaries []models.RosterFillSummary
	if err := r.db.SelectContext(ctx, &summaries, b.String(), args...); err != nil {
		return nil, fmt.Errorf("query roster fill summary: %w", err)
	}
	return summaries, nil
}

// FillTrend returns the last n weeks' overall fill rate for a dashboard
// sparkline.
func (r *RosterAnalyticsRepository) FillTrend(ctx context.Context, weeks int) ([]models.RosterFillTrendPoint, error) {
	const query = `
SELECT p.week_anchor,
       CASE WHEN COUNT(a.id) + COALESCE(SUM(u.required - u.assigned), 0) = 0 THEN 0
            ELSE COUNT(a.id)::DECIMAL / (COUNT(a.id) + COALESCE(SUM(u.required - u.assigned), 0)) END AS fill_rate
FROM plans p
LEFT JOIN assignments a ON a.plan_id = p.id
LEFT JOIN understaffed_entries u ON u.plan_id = p.id
WHERE p.status <> 'DRAFT'
GROUP BY p.week_anchor
ORDER BY p.week_anchor DESC
LIMIT $1`
	var points []models.RosterFillTrendPoint
	if err := r.db.SelectContext(ctx, &points, query, weeks); err != nil {
		return nil, fmt.Errorf("query roster fill trend: %w", err)
	}
	return points, nil
}
