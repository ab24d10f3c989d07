package sqlite

import (
	"context"
	"fmt"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.IEntityTypeRepository = (*EntityTypeRepository)(nil)

type EntityTypeRepository struct {
	db dbtx
}

func (r *EntityTypeRepository) GetOrCreate(ctx context.Context, d entity.TypeDescriptor) (*entity.EntityType, error) {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO like_entity_types (namespace, type_name) VALUES (?, ?)
	ON CONFLICT (namespace, type_name) DO NOTHING`, d.Namespace, d.TypeName)
	if err != nil {
		return nil, fmt.Errorf("registering entity type: %w", classify(err))
	}

	et := &entity.EntityType{TypeDescriptor: d}
	var id int64
	err = r.db.QueryRowContext(ctx, `
	SELECT id FROM like_entity_types WHERE namespace = ? AND type_name = ?`,
		d.Namespace, d.TypeName).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("getting entity type: %w", classify(err))
	}
	et.ID = entity.EntityTypeID(id)
	return et, nil
}

func (r *EntityTypeRepository) GetByID(ctx context.Context, id entity.EntityTypeID) (*entity.EntityType, error) {
	et := &entity.EntityType{ID: id}
	err := r.db.QueryRowContext(ctx, `
	SELECT namespace, type_name FROM like_entity_types WHERE id = ?`, int64(id)).
		Scan(&et.Namespace, &et.TypeName)
	if err != nil {
		return nil, fmt.Errorf("getting entity type: %w", classify(err))
	}
	return et, nil
}
