// internal/repository/memory/plan_repo.go
package memory

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/repository"
	"context"
	"sync"
	"time"
)

// planRepository implements repository.PlanRepository in process memory.
// Plans live as long as the process does.
type planRepository struct {
	mu    sync.RWMutex
	plans []*domain.Plan // most recent first
	now   func() time.Time
}

// NewPlanRepository creates an empty in-memory plan catalog.
func NewPlanRepository() repository.PlanRepository {
	return &planRepository{now: func() time.Time { return time.Now().UTC() }}
}

// Save upserts the plan. The lookup and the replace-or-insert happen under one write lock.
func (r *planRepository) Save(_ context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if err := repository.ValidatePlan(plan); err != nil {
		return nil, err
	}
	stored := plan.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(stored.ID); i >= 0 {
		r.plans[i] = stored
	} else {
		r.plans = append([]*domain.Plan{stored}, r.plans...)
	}
	return stored.Clone(), nil
}

// List returns copies of all plans in catalog order.
func (r *planRepository) List(_ context.Context) ([]domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plans := make([]domain.Plan, len(r.plans))
	for i, p := range r.plans {
		plans[i] = *p.Clone()
	}
	return plans, nil
}

// Get returns a copy of the plan with the given ID.
func (r *planRepository) Get(_ context.Context, id string) (*domain.Plan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.plans[i].Clone(), nil
	}
	return nil, repository.ErrNotFound
}

// Delete removes the plan with the given ID.
func (r *planRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	r.plans = append(r.plans[:i:i], r.plans[i+1:]...)
	return nil
}

// Count returns the number of stored plans.
func (r *planRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plans), nil
}

// indexOf must be called with r.mu held.
func (r *planRepository) indexOf(id string) int {
	for i, p := range r.plans {
		if p.ID == id {
			return i
		}
	}
	return -1
}
