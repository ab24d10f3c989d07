package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeRepository = (*LikeRepository)(nil)

// LikeRepository is the SQLite like ledger.
type LikeRepository struct {
	db dbtx
}

func (r *LikeRepository) GetOrCreate(ctx context.Context, key entity.LikeKey) (*entity.Like, bool, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO likes_like (entity_type_id, entity_id, user_id, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (entity_type_id, entity_id, user_id) DO NOTHING`,
		int64(key.Type), key.ID, key.UserID, now.UnixNano())
	if err != nil {
		return nil, false, fmt.Errorf("inserting like: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("inserting like: %w", classify(err))
	}
	if n == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, fmt.Errorf("reading like id: %w", classify(err))
		}
		return newLike(id, key, now), true, nil
	}

	like, err := r.get(ctx, key)
	if errors.Is(err, contract.ErrNotFound) {
		// the conflicting row vanished before we could read it
		return nil, false, fmt.Errorf("%w: like %v changed concurrently", contract.ErrConstraintViolation, key)
	}
	if err != nil {
		return nil, false, err
	}
	return like, false, nil
}

func (r *LikeRepository) get(ctx context.Context, key entity.LikeKey) (*entity.Like, error) {
	var id, createdAt int64
	err := r.db.QueryRowContext(ctx, `
	SELECT id, created_at FROM likes_like
	WHERE entity_type_id = ? AND entity_id = ? AND user_id = ?`,
		int64(key.Type), key.ID, key.UserID).Scan(&id, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("getting like: %w", classify(err))
	}
	return newLike(id, key, time.Unix(0, createdAt).UTC()), nil
}

func (r *LikeRepository) Delete(ctx context.Context, key entity.LikeKey) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM likes_like
	WHERE entity_type_id = ? AND entity_id = ? AND user_id = ?`,
		int64(key.Type), key.ID, key.UserID)
	if err != nil {
		return false, fmt.Errorf("deleting like: %w", classify(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting like: %w", classify(err))
	}
	return n > 0, nil
}

func (r *LikeRepository) Exists(ctx context.Context, key entity.LikeKey) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM likes_like
		WHERE entity_type_id = ? AND entity_id = ? AND user_id = ?
	)`, int64(key.Type), key.ID, key.UserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking like: %w", classify(err))
	}
	return exists == 1, nil
}

func (r *LikeRepository) ListUserIDs(ctx context.Context, ref entity.EntityRef) ([]int64, error) {
	return r.listIDs(ctx, `
	SELECT user_id FROM likes_like
	WHERE entity_type_id = ? AND entity_id = ?`, int64(ref.Type), ref.ID)
}

func (r *LikeRepository) ListEntityIDs(ctx context.Context, entityType entity.EntityTypeID, userID int64) ([]int64, error) {
	return r.listIDs(ctx, `
	SELECT entity_id FROM likes_like
	WHERE entity_type_id = ? AND user_id = ?`, int64(entityType), userID)
}

func (r *LikeRepository) LikedFilter(ctx context.Context, entityType entity.EntityTypeID, userID int64, idColumn string) (entity.Condition, error) {
	return relational.LikedFilter(entityType, userID, idColumn)
}

func (r *LikeRepository) listIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing likes: %w", classify(err))
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning like: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing likes: %w", classify(err))
	}
	return ids, nil
}

func newLike(id int64, key entity.LikeKey, createdAt time.Time) *entity.Like {
	return &entity.Like{
		ID:         strconv.FormatInt(id, 10),
		EntityType: key.Type,
		EntityID:   key.ID,
		UserID:     key.UserID,
		CreatedAt:  createdAt,
	}
}
