package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/internal/service"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
	"github.com/shiftloom/roster-api/pkg/response"
)

type engineConfigurationService interface {
	List(ctx context.Context) ([]dto.EngineConfigItem, error)
	Get(ctx context.Context, key string) (*dto.EngineConfigItem, error)
	Update(ctx context.Context, key, value string, actor *models.JWTClaims) (*dto.EngineConfigItem, error)
}

// EngineConfigHandler exposes engine build-knob override endpoints.
type EngineConfigHandler struct {
	service engineConfigurationService
}

// NewEngineConfigHandler builds a new handler.
func NewEngineConfigHandler(svc *service.EngineConfigService) *EngineConfigHandler {
	return &EngineConfigHandler{service: svc}
}

// List godoc
// @Summary List engine config overrides
// @Tags EngineConfig
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /engine-config [get]
func (h *EngineConfigHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get engine config override by key
// @Tags EngineConfig
// @Produce json
// @Param key path string true "Config key"
// @Success 200 {object} response.Envelope
// @Router /engine-config/{key} [get]
func (h *EngineConfigHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update an engine config override
// @Tags EngineConfig
// @Accept json
// @Produce json
// @Param key path string true "Config key"
// @Param payload body dto.UpdateEngineConfigRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Router /engine-config/{key} [put]
func (h *EngineConfigHandler) Update(c *gin.Context) {
	var req dto.UpdateEngineConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid engine config payload"))
		return
	}
	if req.Key == "" {
		req.Key = c.Param("key")
	}
	if req.Key != c.Param("key") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "key mismatch between path and body"))
		return
	}
	claims := claimsFromContext(c)
	item, err := h.service.Update(c.Request.Context(), req.Key, req.Value, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
