package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/models"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
)

type dashboardPlanLister interface {
	ListByWeekRange(ctx context.Context, from, to time.Time) ([]models.PlanSummary, error)
}

type dashboardUnderstaffedReader interface {
	ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error)
}

type dashboardAnalyticsRepository interface {
	FillSummary(ctx context.Context, filter models.RosterFillFilter) ([]models.RosterFillSummary, error)
	FillTrend(ctx context.Context, weeks int) ([]models.RosterFillTrendPoint, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL   time.Duration
	TrendWeeks int
}

// DashboardService composes the operations dashboard: the current week's
// plan, its understaffed count, per-role fill rates, and a fill-rate trend
// sparkline.
type DashboardService struct {
	plans        dashboardPlanLister
	understaffed dashboardUnderstaffedReader
	analytics    dashboardAnalyticsRepository
	cache        *CacheService
	logger       *zap.Logger
	cfg          DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Plans        dashboardPlanLister
	Understaffed dashboardUnderstaffedReader
	Analytics    dashboardAnalyticsRepository
	Cache        *CacheService
	Logger       *zap.Logger
	Config       DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.TrendWeeks <= 0 {
		cfg.TrendWeeks = 8
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		plans:        params.Plans,
		understaffed: params.Understaffed,
		analytics:    params.Analytics,
		cache:        params.Cache,
		logger:       logger,
		cfg:          cfg,
	}
}

// Operations returns the operations dashboard for the given week anchor and
// indicates whether the result was served from cache.
func (s *DashboardService) Operations(ctx context.Context, weekAnchor time.Time) (*dto.OperationsDashboardResponse, bool, error) {
	if weekAnchor.IsZero() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "weekAnchor is required")
	}
	weekAnchor = weekAnchor.UTC()
	cacheKey := fmt.Sprintf("dash:ops:%s", weekAnchor.Format("2006-01-02"))

	if summary, hit, err := s.tryCache(ctx, cacheKey); err != nil {
		return nil, false, err
	} else if hit {
		return summary, true, nil
	}

	summary, err := s.composeOperationsSummary(ctx, weekAnchor)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string) (*dto.OperationsDashboardResponse, bool, error) {
	if s.cache == nil {
		return nil, false, nil
	}
	var cached dto.OperationsDashboardResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return &cached, true, nil
	}
	return nil, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *DashboardService) composeOperationsSummary(ctx context.Context, weekAnchor time.Time) (*dto.OperationsDashboardResponse, error) {
	response := &dto.OperationsDashboardResponse{
		WeekAnchor: weekAnchor.Format("2006-01-02"),
	}

	plans, err := s.plans.ListByWeekRange(ctx, weekAnchor, weekAnchor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan for week")
	}
	if len(plans) > 0 {
		latest := plans[0]
		response.CurrentPlan = &dto.CurrentPlanInfo{
			ID:        latest.ID,
			Version:   latest.Version,
			Status:    string(latest.Status),
			CreatedAt: latest.CreatedAt,
		}
		if s.understaffed != nil {
			gaps, err := s.understaffed.ListUnderstaffedByPlan(ctx, latest.ID)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load understaffed entries")
			}
			for _, gap := range gaps {
				response.UnderstaffedQty += gap.Required - gap.Assigned
			}
		}
	}

	if s.analytics != nil {
		fillSummary, err := s.analytics.FillSummary(ctx, models.RosterFillFilter{WeekFrom: &weekAnchor, WeekTo: &weekAnchor})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fill summary")
		}
		response.FillRateByRole = buildRoleFillRates(fillSummary)

		trend, err := s.analytics.FillTrend(ctx, s.cfg.TrendWeeks)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fill trend")
		}
		response.FillTrend = buildFillTrend(trend)
	}

	return response, nil
}

func buildRoleFillRates(summaries []models.RosterFillSummary) []dto.RoleFillRate {
	rates := make([]dto.RoleFillRate, 0, len(summaries))
	for _, s := range summaries {
		rates = append(rates, dto.RoleFillRate{
			Role:            s.Role,
			RequiredTotal:   s.RequiredTotal,
			AssignedTotal:   s.AssignedTotal,
			FillRate:        s.FillRate,
			UnderstaffedQty: s.UnderstaffedQty,
		})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Role < rates[j].Role })
	return rates
}

func buildFillTrend(points []models.RosterFillTrendPoint) []dto.FillTrendPoint {
	trend := make([]dto.FillTrendPoint, 0, len(points))
	for _, p := range points {
		trend = append(trend, dto.FillTrendPoint{
			WeekAnchor: p.WeekAnchor.Format("2006-01-02"),
			FillRate:   p.FillRate,
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].WeekAnchor < trend[j].WeekAnchor })
	return trend
}
