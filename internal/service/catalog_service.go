package service

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/metrics"
	"alcyxob/fitplan/internal/repository"
	"context"
	"errors"
	"log/slog"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound = errors.New("plan not found")
	ErrInvalidPlan  = errors.New("invalid plan: id, summary and week are required and id must not contain '/'")
)

// CatalogService manages the saved plans.
type CatalogService interface {
	SavePlan(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	ListPlans(ctx context.Context) ([]domain.Plan, error)
	GetPlan(ctx context.Context, id string) (*domain.Plan, error)
	DeletePlan(ctx context.Context, id string) error
}

// catalogService implements the CatalogService interface.
type catalogService struct {
	planRepo repository.PlanRepository
	exports  ExportService // may be nil when archiving is disabled
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewCatalogService creates a new instance of catalogService. exports may be
// nil; otherwise archived exports are removed together with their plan.
func NewCatalogService(planRepo repository.PlanRepository, exports ExportService, logger *slog.Logger, m *metrics.Metrics) CatalogService {
	return &catalogService{
		planRepo: planRepo,
		exports:  exports,
		logger:   logger,
		metrics:  m,
	}
}

// SavePlan upserts a plan into the catalog.
func (s *catalogService) SavePlan(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	stored, err := s.planRepo.Save(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrValidation) {
			return nil, ErrInvalidPlan
		}
		return nil, err
	}
	s.logger.Info("Plan saved", "plan_id", stored.ID)
	s.refreshGauge(ctx)
	return stored, nil
}

// ListPlans returns every saved plan, most recent first. Never nil.
func (s *catalogService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []domain.Plan{}
	}
	return plans, nil
}

// GetPlan retrieves a single saved plan.
func (s *catalogService) GetPlan(ctx context.Context, id string) (*domain.Plan, error) {
	plan, err := s.planRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes a saved plan and, best effort, its archived export.
func (s *catalogService) DeletePlan(ctx context.Context, id string) error {
	if err := s.planRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	s.logger.Info("Plan deleted", "plan_id", id)
	s.refreshGauge(ctx)

	if s.exports != nil {
		if err := s.exports.Forget(ctx, id); err != nil {
			s.logger.Warn("Failed to remove archived export", "plan_id", id, "error", err)
		}
	}
	return nil
}

func (s *catalogService) refreshGauge(ctx context.Context) {
	if n, err := s.planRepo.Count(ctx); err == nil {
		s.metrics.SetSavedPlans(n)
	}
}
