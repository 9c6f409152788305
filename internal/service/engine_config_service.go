package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/models"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
)

type engineConfigRepository interface {
	ListAll(ctx context.Context) ([]models.EngineConfig, error)
	ListByKeys(ctx context.Context, keys []string) ([]models.EngineConfig, error)
	Get(ctx context.Context, key string) (*models.EngineConfig, error)
	Upsert(ctx context.Context, cfg *models.EngineConfig) error
}

type engineConfigAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type allowedEngineConfig struct {
	Key         string
	Type        models.EngineConfigType
	Description string
}

var allowedEngineConfigs = map[string]allowedEngineConfig{
	"min_rest_hours": {
		Key:         "min_rest_hours",
		Type:        models.EngineConfigTypeNumber,
		Description: "Minimum rest hours required between a worker's shifts",
	},
	"max_consecutive_days": {
		Key:         "max_consecutive_days",
		Type:        models.EngineConfigTypeNumber,
		Description: "Maximum consecutive days a worker may be scheduled before a rest day",
	},
	"max_weekly_hours": {
		Key:         "max_weekly_hours",
		Type:        models.EngineConfigTypeNumber,
		Description: "Maximum total hours a worker may be scheduled per week",
	},
}

var allowedEngineConfigKeys = []string{"min_rest_hours", "max_consecutive_days", "max_weekly_hours"}

// EngineConfigService orchestrates CRUD over build-knob overrides that
// RosterService.Preview consults before calling engine.Build.
type EngineConfigService struct {
	repo      engineConfigRepository
	audit     engineConfigAuditLogger
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEngineConfigService constructs an EngineConfigService.
func NewEngineConfigService(repo engineConfigRepository, audit engineConfigAuditLogger, validate *validator.Validate, logger *zap.Logger) *EngineConfigService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngineConfigService{repo: repo, audit: audit, validator: validate, logger: logger}
}

// List returns every supported override key. A key with no persisted row
// carries its compiled-in type and description and an empty value.
func (s *EngineConfigService) List(ctx context.Context) ([]dto.EngineConfigItem, error) {
	rows, err := s.repo.ListByKeys(ctx, allowedEngineConfigKeys)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list engine config")
	}
	existing := make(map[string]models.EngineConfig, len(rows))
	for _, row := range rows {
		existing[row.Key] = row
	}

	items := make([]dto.EngineConfigItem, 0, len(allowedEngineConfigKeys))
	for _, key := range allowedEngineConfigKeys {
		meta := allowedEngineConfigs[key]
		item := dto.EngineConfigItem{Key: key, Type: string(meta.Type), Description: meta.Description}
		if row, ok := existing[key]; ok {
			item.Value = row.Value
			if row.Description != nil && *row.Description != "" {
				item.Description = *row.Description
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Get retrieves a single override.
func (s *EngineConfigService) Get(ctx context.Context, key string) (*dto.EngineConfigItem, error) {
	meta, err := s.requireAllowedKey(key)
	if err != nil {
		return nil, err
	}
	cfg, err := s.repo.Get(ctx, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return &dto.EngineConfigItem{Key: key, Type: string(meta.Type), Description: meta.Description}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get engine config")
	}
	description := meta.Description
	if cfg.Description != nil && *cfg.Description != "" {
		description = *cfg.Description
	}
	return &dto.EngineConfigItem{Key: cfg.Key, Value: cfg.Value, Type: string(cfg.Type), Description: description}, nil
}

// Update upserts an override entry.
func (s *EngineConfigService) Update(ctx context.Context, key, value string, actor *models.JWTClaims) (*dto.EngineConfigItem, error) {
	meta, err := s.requireAllowedKey(key)
	if err != nil {
		return nil, err
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s expects a numeric value", key))
	}

	prev, err := s.repo.Get(ctx, key)
	if err != nil && err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch engine config")
	}

	cfg := &models.EngineConfig{
		Key:         key,
		Value:       value,
		Type:        meta.Type,
		Description: strPtr(meta.Description),
		UpdatedBy:   userIDPtr(actor),
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update engine config")
	}

	s.emitAudit(ctx, actor, key, prevEngineConfigValue(prev), value)

	return &dto.EngineConfigItem{Key: key, Value: value, Type: string(meta.Type), Description: meta.Description}, nil
}

func (s *EngineConfigService) requireAllowedKey(key string) (allowedEngineConfig, error) {
	meta, ok := allowedEngineConfigs[key]
	if !ok {
		return allowedEngineConfig{}, appErrors.Clone(appErrors.ErrValidation, "unsupported engine config key")
	}
	return meta, nil
}

func (s *EngineConfigService) emitAudit(ctx context.Context, actor *models.JWTClaims, key, oldValue, newValue string) {
	if s.audit == nil {
		return
	}
	oldBytes, _ := json.Marshal(map[string]string{"key": key, "value": oldValue})
	newBytes, _ := json.Marshal(map[string]string{"key": key, "value": newValue})
	log := &models.AuditLog{
		UserID:     userIDPtr(actor),
		Action:     models.AuditActionEngineConfigUpdate,
		Resource:   "engine_config",
		ResourceID: &key,
		OldValues:  oldBytes,
		NewValues:  newBytes,
		IPAddress:  "system",
		UserAgent:  "engine-config-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record engine config audit", zap.Error(err))
	}
}

func prevEngineConfigValue(cfg *models.EngineConfig) string {
	if cfg == nil {
		return ""
	}
	return cfg.Value
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	result := value
	return &result
}
