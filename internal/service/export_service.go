package service

import (
	"alcyxob/fitplan/internal/export"
	"alcyxob/fitplan/internal/repository"
	"alcyxob/fitplan/internal/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ExportService renders saved plans as CSV and archives them to object storage.
type ExportService interface {
	PlansCSV(ctx context.Context) ([]byte, error)
	PlanCSV(ctx context.Context, id string) ([]byte, error)
	// Archive uploads the plan CSV and returns a presigned download URL.
	Archive(ctx context.Context, id string) (string, error)
	// Forget removes the archived export of a plan, if any.
	Forget(ctx context.Context, id string) error
}

type exportService struct {
	planRepo    repository.PlanRepository
	fileStorage storage.FileStorage // nil disables Archive
	logger      *slog.Logger
}

// NewExportService creates a new instance of exportService. fileStorage may be nil.
func NewExportService(planRepo repository.PlanRepository, fileStorage storage.FileStorage, logger *slog.Logger) ExportService {
	return &exportService{
		planRepo:    planRepo,
		fileStorage: fileStorage,
		logger:      logger,
	}
}

// ArchiveKey is the object key of a plan's archived CSV.
func ArchiveKey(planID string) string {
	return fmt.Sprintf("plans/%s.csv", planID)
}

func (s *exportService) PlansCSV(ctx context.Context) ([]byte, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return export.PlansCSV(plans)
}

func (s *exportService) PlanCSV(ctx context.Context, id string) ([]byte, error) {
	plan, err := s.planRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return export.PlanCSV(plan)
}

func (s *exportService) Archive(ctx context.Context, id string) (string, error) {
	if s.fileStorage == nil {
		return "", storage.ErrNotConfigured
	}
	body, err := s.PlanCSV(ctx, id)
	if err != nil {
		return "", err
	}

	key := ArchiveKey(id)
	if err := s.fileStorage.PutObject(ctx, key, export.ContentType, body); err != nil {
		return "", fmt.Errorf("upload plan export: %w", err)
	}
	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, key, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign plan export: %w", err)
	}

	s.logger.Info("Plan export archived", "plan_id", id, "key", key)
	return url, nil
}

func (s *exportService) Forget(ctx context.Context, id string) error {
	if s.fileStorage == nil {
		return nil
	}
	return s.fileStorage.DeleteObject(ctx, ArchiveKey(id))
}
