package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.ILikeCounterRepository = (*LikeCounterRepository)(nil)

// LikeCounterRepository maintains one counter document per liked entity.
type LikeCounterRepository struct {
	counters *mongo.Collection
	likes    *mongo.Collection
}

func NewLikeCounterRepository(db *mongo.Database) *LikeCounterRepository {
	return &LikeCounterRepository{
		counters: db.Collection(countersCollection),
		likes:    db.Collection(likesCollection),
	}
}

func refFilter(ref entity.EntityRef) bson.M {
	return bson.M{"entity_type_id": int64(ref.Type), "entity_id": ref.ID}
}

// Add applies delta with an upserting pipeline update so the new count is
// computed server side and never drops below zero.
func (r *LikeCounterRepository) Add(ctx context.Context, ref entity.EntityRef, delta int64) error {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"count": bson.M{"$max": bson.A{
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$count", int64(0)}}, delta}},
				int64(0),
			}},
		}}},
	}
	_, err := r.counters.UpdateOne(ctx, refFilter(ref), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to update like counter: %w", classify(err))
	}
	return nil
}

func (r *LikeCounterRepository) Get(ctx context.Context, ref entity.EntityRef) (*entity.LikeCounter, error) {
	var c entity.LikeCounter
	if err := r.counters.FindOne(ctx, refFilter(ref)).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to get like counter: %w", classify(err))
	}
	return &c, nil
}

func (r *LikeCounterRepository) GetMany(ctx context.Context, entityType entity.EntityTypeID, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}
	if len(ids) == 0 {
		return counts, nil
	}

	cursor, err := r.counters.Find(ctx, bson.M{
		"entity_type_id": int64(entityType),
		"entity_id":      bson.M{"$in": ids},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get like counters: %w", classify(err))
	}
	var found []entity.LikeCounter
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to get like counters: %w", classify(err))
	}
	for _, c := range found {
		counts[c.EntityID] = c.Count
	}
	return counts, nil
}

func (r *LikeCounterRepository) Projection(entityType entity.EntityTypeID, idColumn string) (entity.Projection, error) {
	return entity.Projection{}, contract.ErrNotRelational
}

// Reconcile counts the ledger per entity and rewrites every counter document
// that disagrees with it.
func (r *LikeCounterRepository) Reconcile(ctx context.Context) ([]entity.CounterDrift, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"entity_type_id": "$entity_type_id", "entity_id": "$entity_id"},
			"n":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.likes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", classify(err))
	}
	var groups []struct {
		Ref entity.EntityRef `bson:"_id"`
		N   int64            `bson:"n"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", classify(err))
	}
	actual := make(map[entity.EntityRef]int64, len(groups))
	for _, g := range groups {
		actual[g.Ref] = g.N
	}

	cursor, err = r.counters.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list like counters: %w", classify(err))
	}
	var stored []entity.LikeCounter
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to list like counters: %w", classify(err))
	}

	var drifts []entity.CounterDrift
	for _, c := range stored {
		ref := c.Ref()
		n := actual[ref]
		delete(actual, ref)
		if c.Count != n {
			drifts = append(drifts, entity.CounterDrift{EntityRef: ref, Stored: c.Count, Actual: n})
		}
	}
	for ref, n := range actual {
		drifts = append(drifts, entity.CounterDrift{EntityRef: ref, Stored: 0, Actual: n})
	}

	for _, d := range drifts {
		_, err := r.counters.UpdateOne(ctx, refFilter(d.EntityRef),
			bson.M{"$set": bson.M{"count": d.Actual}}, options.Update().SetUpsert(true))
		if err != nil {
			return nil, fmt.Errorf("failed to correct like counter: %w", classify(err))
		}
	}
	return drifts, nil
}
