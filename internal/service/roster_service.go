package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/engine"
	"github.com/shiftloom/roster-api/internal/models"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
)

type periodReader interface {
	ListAll(ctx context.Context) ([]models.Period, error)
}

type templateReader interface {
	ListActive(ctx context.Context) ([]models.Template, error)
}

type workerReader interface {
	ListActive(ctx context.Context) ([]models.Worker, error)
}

type constraintRuleReader interface {
	ListAll(ctx context.Context) ([]models.ConstraintRule, error)
}

type historyReader interface {
	ListSince(ctx context.Context, since time.Time) ([]models.Assignment, error)
}

type rosterPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.Plan) error
	ListByWeekRange(ctx context.Context, from, to time.Time) ([]models.PlanSummary, error)
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.PlanStatus) error
}

type rosterSlotRepository interface {
	UpsertAssignments(ctx context.Context, exec sqlx.ExtContext, assignments []models.Assignment) error
	ListByPlan(ctx context.Context, planID string) ([]models.Assignment, error)
	UpsertUnderstaffed(ctx context.Context, exec sqlx.ExtContext, gaps []models.UnderstaffedEntry) error
	ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error)
}

type rosterConfigReader interface {
	ListAll(ctx context.Context) ([]models.EngineConfig, error)
}

type rosterTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type buildObserver interface {
	ObserveBuildDuration(duration time.Duration)
}

// RosterConfig governs generator behaviour.
type RosterConfig struct {
	ProposalTTL  time.Duration
	HistoryDays  int
}

// RosterService builds weekly roster proposals and persists committed plans.
type RosterService struct {
	periods     periodReader
	templates   templateReader
	workers     workerReader
	rules       constraintRuleReader
	history     historyReader
	engineCfg   rosterConfigReader
	plans       rosterPlanRepository
	slots       rosterSlotRepository
	tx          rosterTxProvider
	metrics     buildObserver
	validator   *validator.Validate
	logger      *zap.Logger
	store       *proposalStore
	historyDays int
}

// NewRosterService wires the dependencies a build needs.
func NewRosterService(
	periods periodReader,
	templates templateReader,
	workers workerReader,
	rules constraintRuleReader,
	history historyReader,
	engineCfg rosterConfigReader,
	plans rosterPlanRepository,
	slots rosterSlotRepository,
	tx rosterTxProvider,
	metrics buildObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RosterConfig,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = 14
	}
	return &RosterService{
		periods:     periods,
		templates:   templates,
		workers:     workers,
		rules:       rules,
		history:     history,
		engineCfg:   engineCfg,
		plans:       plans,
		slots:       slots,
		tx:          tx,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		store:       newProposalStore(cfg.ProposalTTL),
		historyDays: cfg.HistoryDays,
	}
}

// Preview loads the current catalog and builds a roster proposal, staging it
// for a subsequent Commit.
func (s *RosterService) Preview(ctx context.Context, req dto.BuildRosterRequest) (*dto.BuildRosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid build roster payload")
	}

	periods, err := s.periods.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load templates")
	}
	workers, err := s.workers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load workers")
	}
	rules, err := s.rules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraint rules")
	}

	since := req.WeekAnchor.AddDate(0, 0, -s.historyDays)
	historyRows, err := s.history.ListSince(ctx, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment history")
	}

	cfg, err := s.loadEngineConfig(ctx)
	if err != nil {
		return nil, err
	}

	enginePeriods := toEnginePeriods(periods)
	engineTemplates, err := toEngineTemplates(templates)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode templates")
	}
	engineWorkers := toEngineWorkers(workers)
	engineRules, err := toEngineConstraintRules(rules)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode constraint rules")
	}
	engineHistory := toEngineHistory(historyRows, enginePeriods)

	start := time.Now()
	plan, understaffed, err := engine.Build(req.WeekAnchor, enginePeriods, engineTemplates, engineWorkers, engineRules, engineHistory, cfg)
	if s.metrics != nil {
		s.metrics.ObserveBuildDuration(time.Since(start))
	}
	if err != nil {
		var engErr *engine.Error
		if errors.As(err, &engErr) && engErr.Kind != engine.KindInternal {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, engErr.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build roster")
	}

	proposal := rosterProposal{
		ProposalID:   uuid.NewString(),
		WeekAnchor:   plan.Week.Anchor,
		Assignments:  plan.Assignments,
		Understaffed: understaffed,
		RequestedAt:  time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.BuildRosterResponse{
		ProposalID:   proposal.ProposalID,
		WeekAnchor:   proposal.WeekAnchor,
		Assignments:  toAssignmentProposals(proposal.Assignments, enginePeriods),
		Understaffed: toUnderstaffedProposals(proposal.Understaffed),
	}, nil
}

// Commit persists a previously previewed proposal as a new plan version and
// optionally publishes it.
func (s *RosterService) Commit(ctx context.Context, req dto.CommitRosterRequest) (string, error) {
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit roster payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if s.tx == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	record := &models.Plan{
		WeekAnchor: proposal.WeekAnchor,
		Status:     models.PlanStatusDraft,
		Meta:       types.JSONText(`{"algorithm":"greedy_scarcity_v1"}`),
	}
	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create plan")
		return "", err
	}

	assignmentRows := make([]models.Assignment, 0, len(proposal.Assignments))
	for _, a := range proposal.Assignments {
		assignmentRows = append(assignmentRows, models.Assignment{
			PlanID:   record.ID,
			ShiftID:  a.ShiftID,
			WorkerID: a.WorkerID,
		})
	}
	if err = s.slots.UpsertAssignments(ctx, tx, assignmentRows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist assignments")
		return "", err
	}

	gapRows := make([]models.UnderstaffedEntry, 0, len(proposal.Understaffed))
	for _, u := range proposal.Understaffed {
		gapRows = append(gapRows, models.UnderstaffedEntry{
			PlanID:   record.ID,
			ShiftID:  u.ShiftID,
			Role:     u.Role,
			Date:     u.Date,
			PeriodID: u.PeriodID,
			Required: u.Required,
			Assigned: u.Assigned,
		})
	}
	if err = s.slots.UpsertUnderstaffed(ctx, tx, gapRows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist understaffed entries")
		return "", err
	}

	if req.Publish {
		if err = s.plans.UpdateStatus(ctx, tx, record.ID, models.PlanStatusPublished); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish plan")
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
		return "", err
	}

	s.store.Delete(req.ProposalID)
	return record.ID, nil
}

// List returns plan summaries within a week range.
func (s *RosterService) List(ctx context.Context, query dto.RosterQuery) ([]models.PlanSummary, error) {
	from := time.Time{}
	to := time.Now().AddDate(1, 0, 0)
	if query.WeekFrom != nil {
		from = *query.WeekFrom
	}
	if query.WeekTo != nil {
		to = *query.WeekTo
	}
	list, err := s.plans.ListByWeekRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plans")
	}
	return list, nil
}

// GetSlots returns the assignments recorded for a committed plan.
func (s *RosterService) GetSlots(ctx context.Context, planID string) ([]models.Assignment, error) {
	if planID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	if _, err := s.plans.FindByID(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	assignments, err := s.slots.ListByPlan(ctx, planID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list plan assignments")
	}
	return assignments, nil
}

// Delete removes a draft plan version.
func (s *RosterService) Delete(ctx context.Context, planID string) error {
	record, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if record.Status != models.PlanStatusDraft {
		return appErrors.Clone(appErrors.ErrConflict, "only draft plans can be deleted")
	}
	if err := s.plans.Delete(ctx, planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	return nil
}

func (s *RosterService) loadEngineConfig(ctx context.Context) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if s.engineCfg == nil {
		return cfg, nil
	}
	overrides, err := s.engineCfg.ListAll(ctx)
	if err != nil {
		return cfg, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load engine config overrides")
	}
	for _, o := range overrides {
		switch o.Key {
		case "min_rest_hours":
			var v float64
			if _, err := fmt.Sscanf(o.Value, "%f", &v); err == nil {
				cfg.MinRestHours = v
			}
		case "max_consecutive_days":
			var v int
			if _, err := fmt.Sscanf(o.Value, "%d", &v); err == nil {
				cfg.MaxConsecDays = v
			}
		case "max_weekly_hours":
			var v float64
			if _, err := fmt.Sscanf(o.Value, "%f", &v); err == nil {
				cfg.MaxWeeklyHours = v
			}
		}
	}
	return cfg, nil
}

// --- translation helpers ---

func toEnginePeriods(periods []models.Period) []engine.Period {
	out := make([]engine.Period, 0, len(periods))
	for _, p := range periods {
		out = append(out, engine.Period{ID: p.ID, Name: p.Name, Start: p.Start, End: p.End})
	}
	return out
}

func toEngineTemplates(templates []models.Template) ([]engine.Template, error) {
	out := make([]engine.Template, 0, len(templates))
	for _, t := range templates {
		days, err := t.TemplateDays()
		if err != nil {
			return nil, fmt.Errorf("decode template %s days: %w", t.ID, err)
		}
		out = append(out, engine.Template{ID: t.ID, Role: t.Role, PeriodID: t.PeriodID, ShiftStart: t.ShiftStart, ShiftEnd: t.ShiftEnd, Days: days})
	}
	return out, nil
}

func toEngineWorkers(workers []models.Worker) []engine.Worker {
	out := make([]engine.Worker, 0, len(workers))
	for _, w := range workers {
		out = append(out, engine.Worker{ID: w.ID, Name: w.FullName, Role: w.Role})
	}
	return out
}

func toEngineConstraintRules(rules []models.ConstraintRule) ([]engine.ConstraintRule, error) {
	out := make([]engine.ConstraintRule, 0, len(rules))
	for _, r := range rules {
		rule := engine.ConstraintRule{WorkerID: r.WorkerID, Kind: engine.ConstraintRuleKind(r.Kind)}
		switch r.Kind {
		case models.ConstraintKindAvailability:
			var payload models.AvailabilityRulePayload
			if len(r.Payload) > 0 {
				if err := r.Payload.Unmarshal(&payload); err != nil {
					return nil, fmt.Errorf("decode availability rule %s: %w", r.ID, err)
				}
			}
			rule.Day = payload.Day
			for _, span := range payload.Spans {
				rule.Spans = append(rule.Spans, engine.TimeSpan{Start: span.Start, End: span.End})
			}
		case models.ConstraintKindShiftRestriction:
			var payload models.ShiftRestrictionPayload
			if len(r.Payload) > 0 {
				if err := r.Payload.Unmarshal(&payload); err != nil {
					return nil, fmt.Errorf("decode shift restriction rule %s: %w", r.ID, err)
				}
			}
			rule.Shift = payload.Shift
		case models.ConstraintKindCombination:
			var payload models.CombinationPayload
			if len(r.Payload) > 0 {
				if err := r.Payload.Unmarshal(&payload); err != nil {
					return nil, fmt.Errorf("decode combination rule %s: %w", r.ID, err)
				}
			}
			rule.Day = payload.Day
			rule.Shift = payload.Shift
		}
		out = append(out, rule)
	}
	return out, nil
}

func toEngineHistory(assignments []models.Assignment, periods []engine.Period) []engine.HistoryEntry {
	periodByID := make(map[string]engine.Period, len(periods))
	for _, p := range periods {
		periodByID[p.ID] = p
	}
	out := make([]engine.HistoryEntry, 0, len(assignments))
	for _, a := range assignments {
		hours := 8.0
		if p, ok := periodByID[a.PeriodID]; ok {
			if start, err := time.Parse("15:04", p.Start); err == nil {
				if end, err := time.Parse("15:04", p.End); err == nil {
					hours = end.Sub(start).Hours()
				}
			}
		}
		out = append(out, engine.HistoryEntry{WorkerID: a.WorkerID, Date: a.Date, PeriodID: a.PeriodID, Hours: hours})
	}
	return out
}

func toAssignmentProposals(assignments []engine.Assignment, periods []engine.Period) []dto.AssignmentProposal {
	shiftMeta := shiftMetaFromIDs(assignments)
	out := make([]dto.AssignmentProposal, 0, len(assignments))
	for _, a := range assignments {
		meta := shiftMeta[a.ShiftID]
		out = append(out, dto.AssignmentProposal{
			ShiftID:  a.ShiftID,
			Date:     meta.Date,
			PeriodID: meta.PeriodID,
			Role:     meta.Role,
			WorkerID: a.WorkerID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShiftID < out[j].ShiftID })
	return out
}

func toUnderstaffedProposals(entries []engine.UnderstaffedEntry) []dto.UnderstaffedProposal {
	out := make([]dto.UnderstaffedProposal, 0, len(entries))
	for _, u := range entries {
		out = append(out, dto.UnderstaffedProposal{
			ShiftID:  u.ShiftID,
			Role:     u.Role,
			Date:     u.Date,
			PeriodID: u.PeriodID,
			Required: u.Required,
			Assigned: u.Assigned,
		})
	}
	return out
}

// shiftMetaFromIDs recovers date/period/role from a shift ID, which the
// engine composes deterministically as templateID__date__periodID__role.
func shiftMetaFromIDs(assignments []engine.Assignment) map[string]struct {
	Date     time.Time
	PeriodID string
	Role     string
} {
	out := make(map[string]struct {
		Date     time.Time
		PeriodID string
		Role     string
	}, len(assignments))
	for _, a := range assignments {
		if _, ok := out[a.ShiftID]; ok {
			continue
		}
		out[a.ShiftID] = parseShiftID(a.ShiftID)
	}
	return out
}

func parseShiftID(id string) struct {
	Date     time.Time
	PeriodID string
	Role     string
} {
	var result struct {
		Date     time.Time
		PeriodID string
		Role     string
	}
	parts := splitShiftID(id)
	if len(parts) != 4 {
		return result
	}
	if d, err := time.Parse("2006-01-02", parts[1]); err == nil {
		result.Date = d
	}
	result.PeriodID = parts[2]
	result.Role = parts[3]
	return result
}

func splitShiftID(id string) []string {
	return strings.Split(id, "__")
}

// --- proposal cache ---

type rosterProposal struct {
	ProposalID   string
	WeekAnchor   time.Time
	Assignments  []engine.Assignment
	Understaffed []engine.UnderstaffedEntry
	RequestedAt  time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]rosterProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{ttl: ttl, items: make(map[string]rosterProposal)}
}

func (s *proposalStore) Save(proposal rosterProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (rosterProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return rosterProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return rosterProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}
