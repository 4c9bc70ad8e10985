// internal/repository/mongo/plan_repo.go
package mongo

import (
	"alcyxob/fitplan/internal/domain"
	"alcyxob/fitplan/internal/repository"
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "plans"

// planDocument is the stored form of a plan. Seq is assigned on first insert
// only, so listing by Seq descending keeps replaced plans in their position.
type planDocument struct {
	domain.Plan `bson:",inline"`
	Seq         int64 `bson:"seq"`
}

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Save upserts the plan in a single UpdateOne, so the existence check and the
// write are atomic on the server.
func (r *mongoPlanRepository) Save(ctx context.Context, plan *domain.Plan) (*domain.Plan, error) {
	if err := repository.ValidatePlan(plan); err != nil {
		return nil, err
	}
	stored := plan.Clone()
	now := r.now()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	// BSON datetimes have millisecond precision.
	stored.CreatedAt = stored.CreatedAt.Truncate(time.Millisecond)

	filter := bson.M{"_id": stored.ID}
	update := bson.M{
		"$set": bson.M{
			"summary":   stored.Summary,
			"createdAt": stored.CreatedAt,
			"week":      stored.Week,
		},
		"$setOnInsert": bson.M{"seq": now.UnixNano()},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return nil, err
	}
	return stored, nil
}

// List retrieves all plans, newest insertion first.
func (r *mongoPlanRepository) List(ctx context.Context) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "seq", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []planDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	plans := make([]domain.Plan, len(docs))
	for i, d := range docs {
		plans[i] = d.Plan
	}
	return plans, nil
}

// Get retrieves a single plan by its ID.
func (r *mongoPlanRepository) Get(ctx context.Context, id string) (*domain.Plan, error) {
	var doc planDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc.Plan, nil
}

// Delete removes a plan by its ID.
func (r *mongoPlanRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Count returns the number of stored plans.
func (r *mongoPlanRepository) Count(ctx context.Context) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return int(n), err
}

// EnsurePlanIndexes creates the index backing List ordering. Call during startup.
func EnsurePlanIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) {
	collection := db.Collection(planCollectionName)
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "seq", Value: -1}},
		Options: options.Index(),
	})
	if err != nil {
		logger.Warn("Failed to create indexes", "collection", collection.Name(), "error", err)
	}
}
