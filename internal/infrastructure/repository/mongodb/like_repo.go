package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.ILikeRepository = (*LikeRepository)(nil)

// LikeRepository represents the MongoDB implementation of the like ledger.
type LikeRepository struct {
	collection *mongo.Collection
}

// NewLikeRepository creates and returns a new LikeRepository instance.
func NewLikeRepository(db *mongo.Database) *LikeRepository {
	return &LikeRepository{
		collection: db.Collection(likesCollection),
	}
}

func keyFilter(key entity.LikeKey) bson.M {
	return bson.M{
		"entity_type_id": int64(key.Type),
		"entity_id":      key.ID,
		"user_id":        key.UserID,
	}
}

// GetOrCreate upserts the like. Fields in $setOnInsert are written only when
// the upsert inserts, so an existing like keeps its id and timestamp.
func (r *LikeRepository) GetOrCreate(ctx context.Context, key entity.LikeKey) (*entity.Like, bool, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"created_at": now,
		},
	}

	res, err := r.collection.UpdateOne(ctx, keyFilter(key), update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert like: %w", classify(err))
	}
	if res.UpsertedID != nil {
		id, ok := res.UpsertedID.(string)
		if !ok {
			return nil, false, fmt.Errorf("upserted ID is not a string, got type %T", res.UpsertedID)
		}
		return &entity.Like{
			ID:         id,
			EntityType: key.Type,
			EntityID:   key.ID,
			UserID:     key.UserID,
			CreatedAt:  now,
		}, true, nil
	}

	var like entity.Like
	err = r.collection.FindOne(ctx, keyFilter(key)).Decode(&like)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("%w: like %v changed concurrently", contract.ErrConstraintViolation, key)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to retrieve like: %w", classify(err))
	}
	like.CreatedAt = like.CreatedAt.UTC()
	return &like, false, nil
}

func (r *LikeRepository) Delete(ctx context.Context, key entity.LikeKey) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, keyFilter(key))
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", classify(err))
	}
	return res.DeletedCount > 0, nil
}

func (r *LikeRepository) Exists(ctx context.Context, key entity.LikeKey) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, keyFilter(key), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", classify(err))
	}
	return n > 0, nil
}

func (r *LikeRepository) ListUserIDs(ctx context.Context, ref entity.EntityRef) ([]int64, error) {
	return r.distinct(ctx, "user_id", bson.M{"entity_type_id": int64(ref.Type), "entity_id": ref.ID})
}

func (r *LikeRepository) ListEntityIDs(ctx context.Context, entityType entity.EntityTypeID, userID int64) ([]int64, error) {
	return r.distinct(ctx, "entity_id", bson.M{"entity_type_id": int64(entityType), "user_id": userID})
}

// LikedFilter returns the liked ids as an id-membership condition. idColumn
// has no meaning for a document store.
func (r *LikeRepository) LikedFilter(ctx context.Context, entityType entity.EntityTypeID, userID int64, idColumn string) (entity.Condition, error) {
	ids, err := r.ListEntityIDs(ctx, entityType, userID)
	if err != nil {
		return entity.Condition{}, err
	}
	return entity.Condition{IDs: ids}, nil
}

func (r *LikeRepository) distinct(ctx context.Context, field string, filter bson.M) ([]int64, error) {
	opts := options.Find().SetProjection(bson.M{field: 1, "_id": 0})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", classify(err))
	}
	defer cursor.Close(ctx)

	ids := []int64{}
	for cursor.Next(ctx) {
		var doc map[string]int64
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode like: %w", err)
		}
		ids = append(ids, doc[field])
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", classify(err))
	}
	return ids, nil
}
