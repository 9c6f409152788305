package models

import "time"

// RosterFillFilter scopes fill-rate analytics queries.
type RosterFillFilter struct {
	WeekFrom *time.Time
	WeekTo   *time.Time
	Role     string
}

// RosterFillSummary aggregates required-vs-assigned headcount for one week.
type RosterFillSummary struct {
	WeekAnchor      time.Time `db:"week_anchor" json:"week_anchor"`
	Role            string    `db:"role" json:"role"`
	RequiredTotal   int       `db:"required_total" json:"required_total"`
	AssignedTotal   int       `db:"assigned_total" json:"assigned_total"`
	FillRate        float64   `db:"fill_rate" json:"fill_rate"`
	UnderstaffedQty int       `db:"understaffed_qty" json:"understaffed_qty"`
}

// RosterFillTrendPoint is one week's fill rate for a dashboard sparkline.
type RosterFillTrendPoint struct {
	WeekAnchor time.Time `json:"week_anchor"`
	FillRate   float64   `json:"fill_rate"`
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
