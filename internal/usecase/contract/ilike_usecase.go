package usecasecontract

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

type ILikeUseCase interface {
	AddLike(ctx context.Context, obj entity.Likeable, userID int64) (*entity.Like, bool, error)
	RemoveLike(ctx context.Context, obj entity.Likeable, userID int64) (bool, error)
	HasLiked(ctx context.Context, obj entity.Likeable, userID int64) (bool, error)
	GetLikesCount(ctx context.Context, obj entity.Likeable) (int64, error)
	GetLikers(ctx context.Context, obj entity.Likeable) ([]entity.User, error)
	GetLiked(ctx context.Context, userID int64, model entity.TypeDescriptor, finder contract.IEntityFinder) ([]entity.Likeable, error)
	GetLikedIDs(ctx context.Context, userID int64, model entity.TypeDescriptor) ([]int64, error)
	AttachLikesCount(ctx context.Context, objs []entity.Likeable) ([]entity.CountedEntity, error)
}

type IRecountUseCase interface {
	Reconcile(ctx context.Context) ([]entity.CounterDrift, error)
}
