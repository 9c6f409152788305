package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/internal/service"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
	"github.com/shiftloom/roster-api/pkg/response"
)

type rosterBuilder interface {
	Preview(ctx context.Context, req dto.BuildRosterRequest) (*dto.BuildRosterResponse, error)
	Commit(ctx context.Context, req dto.CommitRosterRequest) (string, error)
	List(ctx context.Context, query dto.RosterQuery) ([]models.PlanSummary, error)
	GetSlots(ctx context.Context, planID string) ([]models.Assignment, error)
	Delete(ctx context.Context, planID string) error
}

// RosterHandler exposes the roster preview/commit/list/slots/delete surface.
type RosterHandler struct {
	service rosterBuilder
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(svc *service.RosterService) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Preview godoc
// @Summary Build a roster proposal for a week without persisting it
// @Tags Rosters
// @Accept json
// @Produce json
// @Param payload body dto.BuildRosterRequest true "Preview payload"
// @Success 200 {object} response.Envelope
// @Router /rosters/preview [post]
func (h *RosterHandler) Preview(c *gin.Context) {
	var req dto.BuildRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid preview payload"))
		return
	}
	result, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Commit godoc
// @Summary Persist a previously built roster proposal
// @Tags Rosters
// @Accept json
// @Produce json
// @Param payload body dto.CommitRosterRequest true "Commit payload"
// @Success 201 {object} response.Envelope
// @Router /rosters/commit [post]
func (h *RosterHandler) Commit(c *gin.Context) {
	var req dto.CommitRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid commit payload"))
		return
	}
	planID, err := h.service.Commit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"planId": planID})
}

// List godoc
// @Summary List plan summaries within a week range
// @Tags Rosters
// @Produce json
// @Param weekFrom query string false "Week range start (RFC3339)"
// @Param weekTo query string false "Week range end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /rosters [get]
func (h *RosterHandler) List(c *gin.Context) {
	query := dto.RosterQuery{}
	if raw := c.Query("weekFrom"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekFrom must be RFC3339"))
			return
		}
		query.WeekFrom = &parsed
	}
	if raw := c.Query("weekTo"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "weekTo must be RFC3339"))
			return
		}
		query.WeekTo = &parsed
	}
	result, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Slots godoc
// @Summary Get committed assignments for a plan
// @Tags Rosters
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /rosters/{id}/slots [get]
func (h *RosterHandler) Slots(c *gin.Context) {
	slots, err := h.service.GetSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Delete godoc
// @Summary Delete a draft plan
// @Tags Rosters
// @Param id path string true "Plan ID"
// @Success 204
// @Router /rosters/{id} [delete]
func (h *RosterHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
