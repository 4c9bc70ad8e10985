package service

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/extract"
	"alcyxob/fitplan/internal/llm"
	"alcyxob/fitplan/internal/metrics"
	"alcyxob/fitplan/internal/prompt"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Generator produces raw model text for a prompt. *llm.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlanService turns a questionnaire into a freshly generated plan.
type PlanService interface {
	// Generate validates q, prompts the model and decodes its answer. The
	// returned plan has a new ID and CreatedAt and is not stored.
	Generate(ctx context.Context, q domain.Questionnaire) (*domain.Plan, error)
}

// planService implements the PlanService interface.
type planService struct {
	generator Generator
	logger    *slog.Logger
	metrics   *metrics.Metrics
	newID     func() string
	now       func() time.Time
}

// NewPlanService creates a new instance of planService.
func NewPlanService(generator Generator, logger *slog.Logger, m *metrics.Metrics) PlanService {
	return &planService{
		generator: generator,
		logger:    logger,
		metrics:   m,
		newID:     NewPlanID,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NewPlanID returns a fresh opaque plan identifier.
func NewPlanID() string {
	return "plan_" + uuid.NewString()
}

// Generate runs validate -> build prompt -> call model -> extract.
// Errors from the model client and the extractor are returned unmodified.
func (s *planService) Generate(ctx context.Context, q domain.Questionnaire) (*domain.Plan, error) {
	if err := q.Validate(); err != nil {
		s.metrics.ObserveGeneration(generationOutcome(err))
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, prompt.Build(q))
	if err != nil {
		s.metrics.ObserveGeneration(generationOutcome(err))
		return nil, err
	}

	plan, err := extract.Plan(raw, s.newID(), s.now())
	if err == nil && len(plan.Week) == 0 {
		err = &extract.ParseError{Reason: "plan has no training days"}
	}
	if err != nil {
		var perr *extract.ParseError
		if errors.As(err, &perr) {
			s.logger.Error("Could not recover plan from model output",
				"reason", perr.Reason, "fragment", perr.Fragment, "error", perr.Err)
		}
		s.metrics.ObserveGeneration(generationOutcome(err))
		return nil, err
	}

	s.checkShape(q, plan)
	s.metrics.ObserveGeneration(generationOutcome(nil))
	s.logger.Info("Plan generated", "plan_id", plan.ID, "days", len(plan.Week))
	return plan, nil
}

// checkShape logs, without rejecting, plans that ignore the requested day
// count or exercise range.
func (s *planService) checkShape(q domain.Questionnaire, plan *domain.Plan) {
	if len(plan.Week) != q.DaysPerWeek {
		s.logger.Warn("Plan day count differs from request",
			"plan_id", plan.ID, "requested", q.DaysPerWeek, "got", len(plan.Week))
	}
	for _, d := range plan.Week {
		if n := len(d.Exercises); n < prompt.MinExercisesPerDay || n > prompt.MaxExercisesPerDay {
			s.logger.Warn("Plan day has exercise count outside requested range",
				"plan_id", plan.ID, "day", d.Day, "exercises", n)
		}
	}
}

func generationOutcome(err error) string {
	var upstream *llm.UpstreamError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrInvalidQuestionnaire):
		return "invalid_input"
	case errors.Is(err, llm.ErrMissingCredential):
		return "missing_credential"
	case errors.As(err, &upstream):
		return "upstream_error"
	case errors.Is(err, llm.ErrTimeout):
		return "timeout"
	case errors.Is(err, llm.ErrNetwork):
		return "network_error"
	case errors.Is(err, llm.ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, extract.ErrParse):
		return "parse_error"
	default:
		return "error"
	}
}
