package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeCounterRepository = (*LikeCounterRepository)(nil)

// LikeCounterRepository maintains the likes_likes counter rows.
type LikeCounterRepository struct {
	db querier
}

// Add upserts the counter row and applies delta atomically, clamping at 0.
func (r *LikeCounterRepository) Add(ctx context.Context, ref entity.EntityRef, delta int64) error {
	_, err := r.db.Exec(ctx, `
	INSERT INTO likes_likes (entity_type_id, entity_id, count)
	VALUES ($1, $2, GREATEST($3::bigint, 0))
	ON CONFLICT (entity_type_id, entity_id)
	DO UPDATE SET count = GREATEST(likes_likes.count + $3::bigint, 0)`,
		int64(ref.Type), ref.ID, delta)
	if err != nil {
		return fmt.Errorf("updating like counter: %w", classify(err))
	}
	return nil
}

func (r *LikeCounterRepository) Get(ctx context.Context, ref entity.EntityRef) (*entity.LikeCounter, error) {
	c := &entity.LikeCounter{EntityType: ref.Type, EntityID: ref.ID}
	err := r.db.QueryRow(ctx, `
	SELECT count FROM likes_likes WHERE entity_type_id = $1 AND entity_id = $2`,
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
	if len(ids) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx, `
	SELECT entity_id, count FROM likes_likes
	WHERE entity_type_id = $1 AND entity_id = ANY($2)`, int64(entityType), ids)
	if err != nil {
		return nil, fmt.Errorf("getting like counters: %w", classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		var id, count int64
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scanning like counter: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("getting like counters: %w", classify(err))
	}
	return counts, nil
}

// Projection returns a select expression to be run with pgx.NamedArgs(p.Args).
func (r *LikeCounterRepository) Projection(entityType entity.EntityTypeID, idColumn string) (entity.Projection, error) {
	return relational.CountProjection(entityType, idColumn)
}

// Reconcile rewrites every counter that disagrees with the ledger. The ledger
// is share-locked for the duration so concurrent likes wait instead of racing
// the correction.
func (r *LikeCounterRepository) Reconcile(ctx context.Context) ([]entity.CounterDrift, error) {
	var drifts []entity.CounterDrift
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE likes_like IN SHARE MODE`); err != nil {
			return fmt.Errorf("locking like ledger: %w", classify(err))
		}

		rows, err := tx.Query(ctx, relational.DriftQuery)
		if err != nil {
			return fmt.Errorf("finding drifted counters: %w", classify(err))
		}
		drifts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.CounterDrift, error) {
			var (
				d      entity.CounterDrift
				typeID int64
			)
			err := row.Scan(&typeID, &d.ID, &d.Stored, &d.Actual)
			d.Type = entity.EntityTypeID(typeID)
			return d, err
		})
		if err != nil {
			return fmt.Errorf("finding drifted counters: %w", classify(err))
		}

		for _, d := range drifts {
			_, err := tx.Exec(ctx, `
			INSERT INTO likes_likes (entity_type_id, entity_id, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (entity_type_id, entity_id) DO UPDATE SET count = EXCLUDED.count`,
				int64(d.Type), d.ID, d.Actual)
			if err != nil {
				return fmt.Errorf("correcting like counter: %w", classify(err))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return drifts, nil
}
