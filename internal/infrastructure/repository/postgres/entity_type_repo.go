package postgres

import (
	"context"
	"fmt"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.IEntityTypeRepository = (*EntityTypeRepository)(nil)

type EntityTypeRepository struct {
	db querier
}

// GetOrCreate registers d if needed. The no-op DO UPDATE makes RETURNING
// yield the id on both paths.
func (r *EntityTypeRepository) GetOrCreate(ctx context.Context, d entity.TypeDescriptor) (*entity.EntityType, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
	INSERT INTO like_entity_types (namespace, type_name) VALUES ($1, $2)
	ON CONFLICT (namespace, type_name) DO UPDATE SET namespace = EXCLUDED.namespace
	RETURNING id`, d.Namespace, d.TypeName).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("registering entity type: %w", classify(err))
	}
	return &entity.EntityType{ID: entity.EntityTypeID(id), TypeDescriptor: d}, nil
}

func (r *EntityTypeRepository) GetByID(ctx context.Context, id entity.EntityTypeID) (*entity.EntityType, error) {
	et := &entity.EntityType{ID: id}
	err := r.db.QueryRow(ctx, `
	SELECT namespace, type_name FROM like_entity_types WHERE id = $1`, int64(id)).
		Scan(&et.Namespace, &et.TypeName)
	if err != nil {
		return nil, fmt.Errorf("getting entity type: %w", classify(err))
	}
	return et, nil
}
