package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/models"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
)

type fakeDashboardCacheRepo struct {
	store map[string][]byte
}

func (f *fakeDashboardCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeDashboardCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if f.store == nil {
		f.store = map[string][]byte{}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.store[key] = raw
	return nil
}

func (f *fakeDashboardCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return nil
}

type fakeDashboardPlans struct {
	summaries []models.PlanSummary
	err       error
}

func (f *fakeDashboardPlans) ListByWeekRange(ctx context.Context, from, to time.Time) ([]models.PlanSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.summaries, nil
}

type fakeDashboardUnderstaffed struct {
	gaps map[string][]models.UnderstaffedEntry
	err  error
}

func (f *fakeDashboardUnderstaffed) ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.gaps[planID], nil
}

type fakeDashboardAnalytics struct {
	fillSummary []models.RosterFillSummary
	trend       []models.RosterFillTrendPoint
	err         error
}

func (f *fakeDashboardAnalytics) FillSummary(ctx context.Context, filter models.RosterFillFilter) ([]models.RosterFillSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.fillSummary, nil
}

func (f *fakeDashboardAnalytics) FillTrend(ctx context.Context, weeks int) ([]models.RosterFillTrendPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.trend, nil
}

func TestDashboardServiceOperations_ComposesAndCaches(t *testing.T) {
	cacheRepo := &fakeDashboardCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)

	weekAnchor := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	plans := &fakeDashboardPlans{summaries: []models.PlanSummary{
		{ID: "plan-1", WeekAnchor: weekAnchor, Version: 2, Status: models.PlanStatusPublished, CreatedAt: weekAnchor},
	}}
	understaffed := &fakeDashboardUnderstaffed{gaps: map[string][]models.UnderstaffedEntry{
		"plan-1": {
			{ShiftID: "s1", Role: "COOK", Required: 3, Assigned: 1},
			{ShiftID: "s2", Role: "SERVER", Required: 2, Assigned: 2},
		},
	}}
	analytics := &fakeDashboardAnalytics{
		fillSummary: []models.RosterFillSummary{
			{WeekAnchor: weekAnchor, Role: "COOK", RequiredTotal: 3, AssignedTotal: 1, FillRate: 0.33, UnderstaffedQty: 2},
			{WeekAnchor: weekAnchor, Role: "SERVER", RequiredTotal: 2, AssignedTotal: 2, FillRate: 1, UnderstaffedQty: 0},
		},
		trend: []models.RosterFillTrendPoint{
			{WeekAnchor: weekAnchor, FillRate: 0.7},
			{WeekAnchor: weekAnchor.AddDate(0, 0, -7), FillRate: 0.6},
		},
	}

	svc := NewDashboardService(DashboardServiceParams{
		Plans:        plans,
		Understaffed: understaffed,
		Analytics:    analytics,
		Cache:        cacheSvc,
		Logger:       zap.NewNop(),
	})

	ctx := context.Background()
	result, cacheHit, err := svc.Operations(ctx, weekAnchor)
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.NotNil(t, result.CurrentPlan)
	assert.Equal(t, "plan-1", result.CurrentPlan.ID)
	assert.Equal(t, 2, result.UnderstaffedQty)
	require.Len(t, result.FillRateByRole, 2)
	assert.Equal(t, "COOK", result.FillRateByRole[0].Role)
	require.Len(t, result.FillTrend, 2)

	resultCached, cacheHit2, err := svc.Operations(ctx, weekAnchor)
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, result, resultCached)
}

func TestDashboardServiceOperations_NoPlanForWeek(t *testing.T) {
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewDashboardService(DashboardServiceParams{
		Plans:     &fakeDashboardPlans{},
		Analytics: &fakeDashboardAnalytics{},
		Cache:     cacheSvc,
		Logger:    zap.NewNop(),
	})

	result, _, err := svc.Operations(context.Background(), time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, result.CurrentPlan)
	assert.Equal(t, 0, result.UnderstaffedQty)
}

func TestDashboardServiceOperationsValidation(t *testing.T) {
	svc := NewDashboardService(DashboardServiceParams{})
	_, _, err := svc.Operations(context.Background(), time.Time{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
