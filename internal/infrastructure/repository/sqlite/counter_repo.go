package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeCounterRepository = (*LikeCounterRepository)(nil)

const maxInParams = 500

// LikeCounterRepository maintains the likes_likes counter rows.
type LikeCounterRepository struct {
	db dbtx
}

// Add upserts the counter row and applies the delta in one statement,
// never letting the count drop below zero.
func (r *LikeCounterRepository) Add(ctx context.Context, ref entity.EntityRef, delta int64) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO likes_likes (entity_type_id, entity_id, count)
	VALUES (?, ?, MAX(?, 0))
	ON CONFLICT (entity_type_id, entity_id) DO UPDATE SET count = MAX(likes_likes.count + ?, 0)`,
		int64(ref.Type), ref.ID, delta, delta)
	if err != nil {
		return fmt.Errorf("updating like counter: %w", classify(err))
	}
	return nil
}

func (r *LikeCounterRepository) Get(ctx context.Context, ref entity.EntityRef) (*entity.LikeCounter, error) {
	c := &entity.LikeCounter{EntityType: ref.Type, EntityID: ref.ID}
	err := r.db.QueryRowContext(ctx, `
	SELECT count FROM likes_likes WHERE entity_type_id = ? AND entity_id = ?`,
		int64(ref.Type), ref.ID).Scan(&c.Count)
	if err != nil {
		return nil, fmt.Errorf("getting like counter: %w", classify(err))
	}
	return c, nil
}

func (r *LikeCounterRepository) GetMany(ctx context.Context, entityType entity.EntityTypeID, ids []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(ids))
	for _, id := range ids {
		counts[id] = 0
	}

	for _, chunk := range relational.Chunk(ids, maxInParams) {
		args := make([]any, 0, len(chunk)+1)
		args = append(args, int64(entityType))
		for _, id := range chunk {
			args = append(args, id)
		}
		query := fmt.Sprintf(`
		SELECT entity_id, count FROM likes_likes
		WHERE entity_type_id = ? AND entity_id IN (%s)`,
			strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","))

		if err := r.scanCounts(ctx, counts, query, args...); err != nil {
			return nil, err
		}
	}
	return counts, nil
}

func (r *LikeCounterRepository) scanCounts(ctx context.Context, into map[int64]int64, query string, args ...any) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("getting like counters: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return fmt.Errorf("scanning like counter: %w", err)
		}
		into[id] = count
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("getting like counters: %w", classify(err))
	}
	return nil
}

func (r *LikeCounterRepository) Projection(entityType entity.EntityTypeID, idColumn string) (entity.Projection, error) {
	return relational.CountProjection(entityType, idColumn)
}

func (r *LikeCounterRepository) Reconcile(ctx context.Context) ([]entity.CounterDrift, error) {
	rows, err := r.db.QueryContext(ctx, relational.DriftQuery)
	if err != nil {
		return nil, fmt.Errorf("finding drifted counters: %w", classify(err))
	}
	var drifts []entity.CounterDrift
	for rows.Next() {
		var d entity.CounterDrift
		var typeID int64
		if err := rows.Scan(&typeID, &d.ID, &d.Stored, &d.Actual); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning drifted counter: %w", err)
		}
		d.Type = entity.EntityTypeID(typeID)
		drifts = append(drifts, d)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("finding drifted counters: %w", classify(err))
	}

	for _, d := range drifts {
		_, err := r.db.ExecContext(ctx, `
		INSERT INTO likes_likes (entity_type_id, entity_id, count)
		VALUES (?, ?, ?)
		ON CONFLICT (entity_type_id, entity_id) DO UPDATE SET count = excluded.count`,
			int64(d.Type), d.ID, d.Actual)
		if err != nil {
			return nil, fmt.Errorf("correcting like counter: %w", classify(err))
		}
	}
	return drifts, nil
}
