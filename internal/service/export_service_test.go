package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shiftloom/roster-api/internal/models"
	"github.com/shiftloom/roster-api/pkg/export"
	"github.com/shiftloom/roster-api/pkg/storage"
)

type planReaderStub struct{}

func (planReaderStub) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	return &models.Plan{ID: id, WeekAnchor: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)}, nil
}

type planSlotReaderStub struct{}

func (planSlotReaderStub) ListByPlan(ctx context.Context, planID string) ([]models.Assignment, error) {
	return []models.Assignment{
		{ShiftID: "shift-1", Date: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), PeriodID: "am", Role: "SERVER", WorkerID: "worker-1"},
	}, nil
}

func (planSlotReaderStub) ListUnderstaffedByPlan(ctx context.Context, planID string) ([]models.UnderstaffedEntry, error) {
	return []models.UnderstaffedEntry{
		{ShiftID: "shift-2", Role: "COOK", Date: time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC), PeriodID: "pm", Required: 3, Assigned: 1},
	}, nil
}

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(planReaderStub{}, planSlotReaderStub{}, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-1",
		Type:      models.ReportTypeRoster,
		Params:    models.ReportJobParams{PlanID: "plan-1", Format: models.ReportFormatCSV},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store := newExportServiceForTest(t)
	job := &models.ReportJob{
		ID:        "job-2",
		Type:      models.ReportTypeUnderstaffed,
		Params:    models.ReportJobParams{PlanID: "plan-1", Format: models.ReportFormatPDF},
		CreatedBy: "admin",
	}
	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	require.Equal(t, models.ReportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}
