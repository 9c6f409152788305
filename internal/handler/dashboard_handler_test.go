package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/shiftloom/roster-api/internal/dto"
)

type fakeDashboardSrv struct {
	resp       *dto.OperationsDashboardResponse
	err        error
	hit        bool
	lastAnchor time.Time
}

func (f *fakeDashboardSrv) Operations(_ context.Context, weekAnchor time.Time) (*dto.OperationsDashboardResponse, bool, error) {
	f.lastAnchor = weekAnchor
	return f.resp, f.hit, f.err
}

func TestDashboardHandlerOperationsInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?weekAnchor=99-99-9999", nil)

	handler.Operations(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerOperationsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	service := &fakeDashboardSrv{
		resp: &dto.OperationsDashboardResponse{WeekAnchor: "2026-08-03"},
		hit:  true,
	}
	handler := NewDashboardHandler(service)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?weekAnchor=2026-08-03", nil)

	handler.Operations(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "2026-08-03", envelope.Data["weekAnchor"])
	assert.False(t, service.lastAnchor.IsZero())
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}
