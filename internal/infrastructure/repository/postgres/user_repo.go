package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
)

var _ contract.IUserRepository = (*UserRepository)(nil)

// UserRepository reads likers from the host user table.
type UserRepository struct {
	db    querier
	table string
}

func usersTableDDL(table string) string {
	return fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id        BIGINT PRIMARY KEY,
		username  TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT ''
	)`, table)
}

// ensureTable creates the user table under its configured name. An existing
// host table is left as it is.
func (r *UserRepository) ensureTable(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, usersTableDDL(r.table)); err != nil {
		return fmt.Errorf("creating users table %s: %w", r.table, classify(err))
	}
	return nil
}

func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []int64) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	rows, err := r.db.Query(ctx, fmt.Sprintf(`
	SELECT id, username, COALESCE(full_name, '') FROM %s WHERE id = ANY($1)`, r.table), ids)
	if err != nil {
		return nil, fmt.Errorf("getting users: %w", classify(err))
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		var u entity.User
		err := row.Scan(&u.ID, &u.Username, &u.FullName)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("getting users: %w", classify(err))
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

func (r *UserRepository) UpsertUser(ctx context.Context, u entity.User) error {
	_, err := r.db.Exec(ctx, fmt.Sprintf(`
	INSERT INTO %s (id, username, full_name) VALUES ($1, $2, $3)
	ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, full_name = EXCLUDED.full_name`, r.table),
		u.ID, u.Username, u.FullName)
	if err != nil {
		return fmt.Errorf("upserting user: %w", classify(err))
	}
	return nil
}
