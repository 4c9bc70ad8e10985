package mongo

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/repository"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepository connects to FITPLAN_TEST_MONGO_URI and uses a throwaway database.
func newTestRepository(t *testing.T) repository.PlanRepository {
	t.Helper()
	uri := os.Getenv("FITPLAN_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("FITPLAN_TEST_MONGO_URI not set")
	}

	client, err := ConnectDB(uri)
	require.NoError(t, err)

	db := client.Database("fitplan_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = DisconnectDB(client)
	})

	EnsurePlanIndexes(context.Background(), db, slog.Default())
	return NewMongoPlanRepository(db)
}

func plan(id, summary string) *domain.Plan {
	return &domain.Plan{
		ID:        id,
		Summary:   summary,
		CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
		Week:      []domain.PlanDay{{Day: "Monday", Exercises: []string{"Row 3x10"}}},
	}
}

func TestMongoPlanRepository_Upsert(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, plan(id, "plan "+id))
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	_, err := repo.Save(ctx, plan("b", "updated"))
	require.NoError(t, err)

	plans, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, "c", plans[0].ID)
	assert.Equal(t, "b", plans[1].ID)
	assert.Equal(t, "updated", plans[1].Summary)
	assert.Equal(t, "a", plans[2].ID)
}

func TestMongoPlanRepository_GetDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := plan("a", "Full body")
	_, err := repo.Save(ctx, p)
	require.NoError(t, err)

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, p.Summary, got.Summary)
	assert.Equal(t, p.Week, got.Week)
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), repository.ErrNotFound)
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
