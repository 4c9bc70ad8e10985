package memory

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/repository"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePlan(id, summary string) *domain.Plan {
	return &domain.Plan{
		ID:        id,
		Summary:   summary,
		CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		Week: []domain.PlanDay{
			{Day: "Monday", Exercises: []string{"Squat 3x12", "Push-ups 3x10"}},
		},
	}
}

func ids(plans []domain.Plan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.ID
	}
	return out
}

func TestSave_InsertsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()

	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, samplePlan(id, "plan "+id))
		require.NoError(t, err)
	}

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(plans))
}

func TestSave_ReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()
	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, samplePlan(id, "plan "+id))
		require.NoError(t, err)
	}

	_, err := repo.Save(ctx, samplePlan("b", "updated"))
	require.NoError(t, err)

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, ids(plans))
	assert.Equal(t, "updated", plans[1].Summary)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestSave_Validation(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()

	tests := []struct {
		name string
		plan *domain.Plan
	}{
		{name: "nil", plan: nil},
		{name: "missing id", plan: &domain.Plan{Summary: "s", Week: []domain.PlanDay{}}},
		{name: "missing summary", plan: &domain.Plan{ID: "x", Week: []domain.PlanDay{}}},
		{name: "missing week", plan: &domain.Plan{ID: "x", Summary: "s"}},
		{name: "slash in id", plan: &domain.Plan{ID: "a/b", Summary: "s", Week: []domain.PlanDay{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Save(ctx, tt.plan)
			assert.ErrorIs(t, err, repository.ErrValidation)
		})
	}

	n, _ := repo.Count(ctx)
	assert.Zero(t, n)
}

func TestSave_StampsMissingCreatedAt(t *testing.T) {
	repo := NewPlanRepository()
	p := samplePlan("a", "s")
	p.CreatedAt = time.Time{}

	stored, err := repo.Save(context.Background(), p)
	require.NoError(t, err)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestSaveGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()
	p := samplePlan("a", "Full body")

	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestSave_CallerMutationDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()
	p := samplePlan("a", "original")

	returned, err := repo.Save(ctx, p)
	require.NoError(t, err)

	p.Summary = "mutated"
	p.Week[0].Exercises[0] = "mutated"
	returned.Week[0].Day = "mutated"

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", got.Summary)
	assert.Equal(t, "Squat 3x12", got.Week[0].Exercises[0])
	assert.Equal(t, "Monday", got.Week[0].Day)
}

func TestGet_NotFound(t *testing.T) {
	_, err := NewPlanRepository().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()
	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, samplePlan(id, "plan "+id))
		require.NoError(t, err)
	}

	require.NoError(t, repo.Delete(ctx, "b"))

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(plans))
}

func TestDelete_AbsentLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()
	_, err := repo.Save(ctx, samplePlan("a", "s"))
	require.NoError(t, err)

	before, _ := repo.List(ctx)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), repository.ErrNotFound)
	after, _ := repo.List(ctx)
	assert.Equal(t, before, after)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository()

	const writers = 8
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				id := fmt.Sprintf("w%d-%d", w, i%10)
				_, err := repo.Save(ctx, samplePlan(id, fmt.Sprintf("rev %d", i)))
				assert.NoError(t, err)
				_, _ = repo.List(ctx)
				if i%7 == 0 {
					_ = repo.Delete(ctx, id)
				}
			}
		}(w)
	}
	wg.Wait()

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, p := range plans {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
}
