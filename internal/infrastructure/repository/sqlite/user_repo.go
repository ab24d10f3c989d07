package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.IUserRepository = (*UserRepository)(nil)

// UserRepository reads likers from the host user table.
type UserRepository struct {
	db    dbtx
	table string
}

func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []int64) ([]entity.User, error) {
	users := make([]entity.User, 0, len(ids))
	for _, chunk := range relational.Chunk(ids, maxInParams) {
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		query := fmt.Sprintf(`SELECT id, username, full_name FROM %s WHERE id IN (%s)`,
			r.table, strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ","))

		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("getting users: %w", classify(err))
		}
		for rows.Next() {
			var u entity.User
			if err := rows.Scan(&u.ID, &u.Username, &u.FullName); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning user: %w", err)
			}
			users = append(users, u)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("getting users: %w", classify(err))
		}
	}
	return users, nil
}

// UpsertUser stores a host user; the reference host uses it to seed likers.
func (r *UserRepository) UpsertUser(ctx context.Context, u entity.User) error {
	query := fmt.Sprintf(`
	INSERT INTO %s (id, username, full_name) VALUES (?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET username = excluded.username, full_name = excluded.full_name`, r.table)
	if _, err := r.db.ExecContext(ctx, query, u.ID, u.Username, u.FullName); err != nil {
		return fmt.Errorf("upserting user: %w", classify(err))
	}
	return nil
}
