package contract

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

// IUserRepository reads the host's user collection.
type IUserRepository interface {
	GetUsersByIDs(ctx context.Context, ids []int64) ([]entity.User, error)
}

// IEntityFinder queries the host's collection of one entity model.
type IEntityFinder interface {
	// IDColumn is the qualified id column used in SQL conditions, e.g. "posts.id".
	IDColumn() string
	FindWhere(ctx context.Context, cond entity.Condition) ([]entity.Likeable, error)
}
