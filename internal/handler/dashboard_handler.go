package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/middleware"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
	"github.com/shiftloom/roster-api/pkg/response"
)

type dashboardService interface {
	Operations(ctx context.Context, weekAnchor time.Time) (*dto.OperationsDashboardResponse, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Operations godoc
// @Summary Operations dashboard summary for a week
// @Tags Dashboard
// @Produce json
// @Param weekAnchor query string false "Week anchor date (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Operations(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	dateStr := strings.TrimSpace(c.Query("weekAnchor"))
	var weekAnchor time.Time
	if dateStr == "" {
		weekAnchor = time.Now().UTC()
	} else {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid weekAnchor format, expected YYYY-MM-DD"))
			return
		}
		weekAnchor = parsed
	}
	start := time.Now()
	summary, cacheHit, err := h.service.Operations(c.Request.Context(), weekAnchor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summary, nil, meta)
}
