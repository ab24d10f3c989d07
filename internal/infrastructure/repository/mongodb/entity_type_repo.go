package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.IEntityTypeRepository = (*EntityTypeRepository)(nil)

// EntityTypeRepository registers entity types under numeric ids drawn from a
// sequence document, matching the ids the relational stores hand out.
type EntityTypeRepository struct {
	types     *mongo.Collection
	sequences *mongo.Collection
}

func NewEntityTypeRepository(db *mongo.Database) *EntityTypeRepository {
	return &EntityTypeRepository{
		types:     db.Collection(entityTypesCollection),
		sequences: db.Collection(sequencesCollection),
	}
}

func (r *EntityTypeRepository) GetOrCreate(ctx context.Context, d entity.TypeDescriptor) (*entity.EntityType, error) {
	et, err := r.find(ctx, d)
	if err == nil {
		return et, nil
	}
	if !errors.Is(err, contract.ErrNotFound) {
		return nil, err
	}

	id, err := r.nextID(ctx)
	if err != nil {
		return nil, err
	}
	et = &entity.EntityType{ID: id, TypeDescriptor: d}
	if _, err := r.types.InsertOne(ctx, et); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// registered concurrently; the sequence value is simply skipped
			return r.find(ctx, d)
		}
		return nil, fmt.Errorf("failed to register entity type: %w", classify(err))
	}
	return et, nil
}

func (r *EntityTypeRepository) GetByID(ctx context.Context, id entity.EntityTypeID) (*entity.EntityType, error) {
	var et entity.EntityType
	if err := r.types.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&et); err != nil {
		return nil, fmt.Errorf("failed to get entity type: %w", classify(err))
	}
	return &et, nil
}

func (r *EntityTypeRepository) find(ctx context.Context, d entity.TypeDescriptor) (*entity.EntityType, error) {
	var et entity.EntityType
	err := r.types.FindOne(ctx, bson.M{"namespace": d.Namespace, "type_name": d.TypeName}).Decode(&et)
	if err != nil {
		return nil, fmt.Errorf("failed to get entity type: %w", classify(err))
	}
	return &et, nil
}

func (r *EntityTypeRepository) nextID(ctx context.Context) (entity.EntityTypeID, error) {
	var seq struct {
		Value int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.sequences.FindOneAndUpdate(ctx,
		bson.M{"_id": entityTypesCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&seq)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate entity type id: %w", classify(err))
	}
	return entity.EntityTypeID(seq.Value), nil
}
