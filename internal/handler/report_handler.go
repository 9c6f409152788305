package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiftloom/roster-api/internal/dto"
	"github.com/shiftloom/roster-api/internal/middleware"
	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/internal/service"
	appErrors "github.com/shiftloom/roster-api/pkg/errors"
	"github.com/shiftloom/roster-api/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, req dto.ReportRequest, actorID string, role models.UserRole) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string, actorID string, role models.UserRole) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes reporting job lifecycle endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reportSvc reportService) *ReportHandler {
	return &ReportHandler{reports: reportSvc}
}

// GenerateReport godoc
// @Summary Queue a new roster export report job
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ReportRequest true "Report request"
// @Success 202 {object} response.Envelope
// @Router /reports/generate [post]
func (h *ReportHandler) GenerateReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "report service not configured"))
		return
	}
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	claimsValue, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	job, err := h.reports.CreateJob(c.Request.Context(), req, claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// ReportStatus godoc
// @Summary Get report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/status/{id} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "report service not configured"))
		return
	}
	claimsValue, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	status, err := h.reports.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DownloadReport godoc
// @Summary Download generated report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "report service not configured"))
		return
	}
	token := c.Param("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, err := h.reports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close() //nolint:errcheck
	info, err := file.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export metadata"))
		return
	}
	contentType := mimeForFormat(file.Format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file.File, nil)
}

func mimeForFormat(format models.ReportFormat) string {
	switch format {
	case models.ReportFormatPDF:
		return "application/pdf"
	default:
		return "text/csv"
	}
}
