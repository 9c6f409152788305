package dto

import "time"

// OperationsDashboardResponse captures the aggregated operations dashboard
// payload for a single week anchor.
type OperationsDashboardResponse struct {
	WeekAnchor      string           `json:"weekAnchor"`
	CurrentPlan     *CurrentPlanInfo `json:"currentPlan,omitempty"`
	UnderstaffedQty int              `json:"understaffedQty"`
	FillRateByRole  []RoleFillRate   `json:"fillRateByRole"`
	FillTrend       []FillTrendPoint `json:"fillTrend"`
}

// CurrentPlanInfo summarises the latest plan version for a week.
type CurrentPlanInfo struct {
	ID        string    `json:"id"`
	Version   int       `json:"version"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// RoleFillRate reports required-vs-assigned headcount for one role.
type RoleFillRate struct {
	Role            string  `json:"role"`
	RequiredTotal   int     `json:"requiredTotal"`
	AssignedTotal   int     `json:"assignedTotal"`
	FillRate        float64 `json:"fillRate"`
	UnderstaffedQty int     `json:"understaffedQty"`
}

// FillTrendPoint is one week's overall fill rate, oldest first.
type FillTrendPoint struct {
	WeekAnchor string  `json:"weekAnchor"`
	FillRate   float64 `json:"fillRate"`
}
