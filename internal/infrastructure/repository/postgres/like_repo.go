package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeRepository = (*LikeRepository)(nil)

// LikeRepository is the like ledger stored in likes_like.
type LikeRepository struct {
	db querier
}

func (r *LikeRepository) GetOrCreate(ctx context.Context, key entity.LikeKey) (*entity.Like, bool, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `
	INSERT INTO likes_like (entity_type_id, entity_id, user_id)
	VALUES ($1, $2, $3)
	ON CONFLICT (entity_type_id, entity_id, user_id) DO NOTHING
	RETURNING id, created_at`,
		int64(key.Type), key.ID, key.UserID).Scan(&id, &createdAt)
	switch {
	case err == nil:
		return newLike(id, key, createdAt), true, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, false, fmt.Errorf("inserting like: %w", classify(err))
	}

	// the row already existed, RETURNING produced nothing
	like, err := r.get(ctx, key)
	if errors.Is(err, contract.ErrNotFound) {
		return nil, false, fmt.Errorf("%w: like %v changed concurrently", contract.ErrConstraintViolation, key)
	}
	if err != nil {
		return nil, false, err
	}
	return like, false, nil
}

func (r *LikeRepository) get(ctx context.Context, key entity.LikeKey) (*entity.Like, error) {
	var (
		id        int64
		createdAt time.Time
	)
	err := r.db.QueryRow(ctx, `
	SELECT id, created_at FROM likes_like
	WHERE entity_type_id = $1 AND entity_id = $2 AND user_id = $3`,
		int64(key.Type), key.ID, key.UserID).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("getting like: %w", classify(err))
	}
	return newLike(id, key, createdAt), nil
}

func (r *LikeRepository) Delete(ctx context.Context, key entity.LikeKey) (bool, error) {
	tag, err := r.db.Exec(ctx, `
	DELETE FROM likes_like
	WHERE entity_type_id = $1 AND entity_id = $2 AND user_id = $3`,
		int64(key.Type), key.ID, key.UserID)
	if err != nil {
		return false, fmt.Errorf("deleting like: %w", classify(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *LikeRepository) Exists(ctx context.Context, key entity.LikeKey) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM likes_like
		WHERE entity_type_id = $1 AND entity_id = $2 AND user_id = $3
	)`, int64(key.Type), key.ID, key.UserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking like: %w", classify(err))
	}
	return exists, nil
}

func (r *LikeRepository) ListUserIDs(ctx context.Context, ref entity.EntityRef) ([]int64, error) {
	return r.listIDs(ctx, `
	SELECT user_id FROM likes_like
	WHERE entity_type_id = $1 AND entity_id = $2`, int64(ref.Type), ref.ID)
}

func (r *LikeRepository) ListEntityIDs(ctx context.Context, entityType entity.EntityTypeID, userID int64) ([]int64, error) {
	return r.listIDs(ctx, `
	SELECT entity_id FROM likes_like
	WHERE entity_type_id = $1 AND user_id = $2`, int64(entityType), userID)
}

// LikedFilter returns an EXISTS predicate to be run with pgx.NamedArgs(cond.Args).
func (r *LikeRepository) LikedFilter(ctx context.Context, entityType entity.EntityTypeID, userID int64, idColumn string) (entity.Condition, error) {
	return relational.LikedFilter(entityType, userID, idColumn)
}

func (r *LikeRepository) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", classify(err))
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", classify(err))
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

func newLike(id int64, key entity.LikeKey, createdAt time.Time) *entity.Like {
	return &entity.Like{
		ID:         strconv.FormatInt(id, 10),
		EntityType: key.Type,
		EntityID:   key.ID,
		UserID:     key.UserID,
		CreatedAt:  createdAt.UTC(),
	}
}
