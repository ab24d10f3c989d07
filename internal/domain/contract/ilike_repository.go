package contract

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

// ILikeRepository is the durable ledger of individual like facts.
type ILikeRepository interface {
	// GetOrCreate returns the existing like for key, or inserts one. The
	// boolean reports whether a row was inserted.
	GetOrCreate(ctx context.Context, key entity.LikeKey) (*entity.Like, bool, error)
	// Delete removes the like for key and reports whether one existed.
	Delete(ctx context.Context, key entity.LikeKey) (bool, error)
	Exists(ctx context.Context, key entity.LikeKey) (bool, error)
	ListUserIDs(ctx context.Context, ref entity.EntityRef) ([]int64, error)
	ListEntityIDs(ctx context.Context, entityType entity.EntityTypeID, userID int64) ([]int64, error)
	// LikedFilter builds the condition a host applies to its own entity
	// query; idColumn is the host's qualified id column.
	LikedFilter(ctx context.Context, entityType entity.EntityTypeID, userID int64, idColumn string) (entity.Condition, error)
}

// ILikeCounterRepository owns the denormalized per-entity counters.
type ILikeCounterRepository interface {
	// Add creates the counter row if needed and applies count = count + delta
	// as a single store-level update.
	Add(ctx context.Context, ref entity.EntityRef, delta int64) error
	// Get returns ErrNotFound when the entity has no counter row.
	Get(ctx context.Context, ref entity.EntityRef) (*entity.LikeCounter, error)
	// GetMany returns the counts of the given entities; entities without a
	// counter row are reported as 0.
	GetMany(ctx context.Context, entityType entity.EntityTypeID, ids []int64) (map[int64]int64, error)
	// Projection returns a select expression yielding the like count of the
	// host row identified by idColumn.
	Projection(entityType entity.EntityTypeID, idColumn string) (entity.Projection, error)
	// Reconcile recomputes every counter from the ledger and returns the
	// counters it had to correct.
	Reconcile(ctx context.Context) ([]entity.CounterDrift, error)
}

// ITxRepositories are the repositories bound to one transaction.
type ITxRepositories interface {
	Likes() ILikeRepository
	Counters() ILikeCounterRepository
}

// ILikeStore is the transactional store behind the likes feature.
type ILikeStore interface {
	ITxRepositories
	EntityTypes() IEntityTypeRepository
	Users() IUserRepository
	// WithinTx runs fn in a transaction. fn must use the context and the
	// repositories it is given; returning an error rolls back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx ITxRepositories) error) error
	Close(ctx context.Context) error
}
