package repository

import (
	"alcyxob/fitplan/internal/domain"
	"context"
	"strings"
)

// Error constants for the repository layer.
var (
	ErrNotFound   = RepositoryError("plan not found")
	ErrValidation = RepositoryError("plan requires id, summary and week; id must not contain '/'")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// PlanRepository is the catalog of saved plans, ordered most recent first.
// Implementations must be safe for concurrent use.
type PlanRepository interface {
	// Save inserts the plan at the front, or replaces the plan with the same ID
	// in place. A zero CreatedAt is stamped with the current time. The stored
	// copy is independent of the caller's value.
	Save(ctx context.Context, plan *domain.Plan) (*domain.Plan, error)
	List(ctx context.Context) ([]domain.Plan, error)
	Get(ctx context.Context, id string) (*domain.Plan, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ValidatePlan checks the fields every stored plan must carry. IDs are single
// path segments: they appear in /plans/:id routes and archive object keys.
func ValidatePlan(plan *domain.Plan) error {
	if plan == nil || plan.ID == "" || plan.Summary == "" || plan.Week == nil {
		return ErrValidation
	}
	if strings.Contains(plan.ID, "/") {
		return ErrValidation
	}
	return nil
}
