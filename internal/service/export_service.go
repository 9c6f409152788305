package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/pkg/export"
	"github.com/shiftloom/roster-api/pkg/storage"
)

type exportPlanReader interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
}

type exportPlanSlotReader interface {
	ListByPlan(ctx context.Context, planID string) ([]models.Assignment, error)
	ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService renders a committed plan's assignments and understaffed
// gaps to CSV or PDF and persists the rendered file.
type ExportService struct {
	plans   exportPlanReader
	slots   exportPlanSlotReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(plans exportPlanReader, slots exportPlanSlotReader, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		plans:   plans,
		slots:   slots,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
	}
}

// Generate builds a dataset for the job's plan and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	planPart := sanitizeFilename(job.Params.PlanID)
	return fmt.Sprintf("%s_%s_%s.%s", strings.ToLower(string(job.Type)), planPart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	plan, err := s.plans.FindByID(ctx, job.Params.PlanID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load plan %s: %w", job.Params.PlanID, err)
	}
	switch job.Type {
	case models.ReportTypeRoster:
		return s.buildRosterDataset(ctx, plan)
	case models.ReportTypeUnderstaffed:
		return s.buildUnderstaffedDataset(ctx, plan)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildRosterDataset(ctx context.Context, plan *models.Plan) (export.Dataset, string, error) {
	assignments, err := s.slots.ListByPlan(ctx, plan.ID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, map[string]string{
			"Date":      a.Date.Format("2006-01-02"),
			"Period":    a.PeriodID,
			"Role":      a.Role,
			"Worker ID": a.WorkerID,
			"Shift ID":  a.ShiftID,
		})
	}
	dataset := export.Dataset{Headers: []string{"Date", "Period", "Role", "Worker ID", "Shift ID"}, Rows: rows}
	title := fmt.Sprintf("Roster %s (week of %s)", plan.ID, plan.WeekAnchor.Format("2006-01-02"))
	return dataset, title, nil
}

func (s *ExportService) buildUnderstaffedDataset(ctx context.Context, plan *models.Plan) (export.Dataset, string, error) {
	gaps, err := s.slots.ListUnderstaffedByPlan(ctx, plan.ID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	rows := make([]map[string]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, map[string]string{
			"Date":     g.Date.Format("2006-01-02"),
			"Period":   g.PeriodID,
			"Role":     g.Role,
			"Required": fmt.Sprintf("%d", g.Required),
			"Assigned": fmt.Sprintf("%d", g.Assigned),
			"Gap":      fmt.Sprintf("%d", g.Required-g.Assigned),
		})
	}
	dataset := export.Dataset{Headers: []string{"Date", "Period", "Role", "Required", "Assigned", "Gap"}, Rows: rows}
	title := fmt.Sprintf("Understaffed Shifts %s (week of %s)", plan.ID, plan.WeekAnchor.Format("2006-01-02"))
	return dataset, title, nil
}
