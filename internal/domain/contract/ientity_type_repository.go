package contract

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

// IEntityTypeRepository is the durable registry of likeable entity types.
type IEntityTypeRepository interface {
	GetOrCreate(ctx context.Context, d entity.TypeDescriptor) (*entity.EntityType, error)
	GetByID(ctx context.Context, id entity.EntityTypeID) (*entity.EntityType, error)
}
