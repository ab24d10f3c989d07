// Package postgres implements the like store on PostgreSQL through pgx.
//
// The like tables are owned by the migrations in the database package. The
// user table belongs to the host and is only created when missing.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeStore = (*Store)(nil)

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Store struct {
	pool *pgxpool.Pool

	likes    *LikeRepository
	counters *LikeCounterRepository
	types    *EntityTypeRepository
	users    *UserRepository
}

// NewStore builds a store over pool. usersTable names the host user table
// likers are read from.
func NewStore(pool *pgxpool.Pool, usersTable string) (*Store, error) {
	if !relational.ValidIdentifier(usersTable) {
		return nil, fmt.Errorf("invalid users table %q", usersTable)
	}
	return &Store{
		pool:     pool,
		likes:    &LikeRepository{db: pool},
		counters: &LikeCounterRepository{db: pool},
		types:    &EntityTypeRepository{db: pool},
		users:    &UserRepository{db: pool, table: usersTable},
	}, nil
}

func (s *Store) Likes() contract.ILikeRepository             { return s.likes }
func (s *Store) Counters() contract.ILikeCounterRepository   { return s.counters }
func (s *Store) EntityTypes() contract.IEntityTypeRepository { return s.types }
func (s *Store) Users() contract.IUserRepository             { return s.users }

// Pool exposes the pool so a host can run its own queries with the
// conditions this store builds.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// EnsureUsersTable creates the configured user table if the host has not.
func (s *Store) EnsureUsersTable(ctx context.Context) error {
	return s.users.ensureTable(ctx)
}

// UpsertUser stores a host user record.
func (s *Store) UpsertUser(ctx context.Context, u entity.User) error {
	return s.users.UpsertUser(ctx, u)
}

func (s *Store) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

type txRepositories struct {
	likes    *LikeRepository
	counters *LikeCounterRepository
}

func (t *txRepositories) Likes() contract.ILikeRepository           { return t.likes }
func (t *txRepositories) Counters() contract.ILikeCounterRepository { return t.counters }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx contract.ITxRepositories) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
		}
	}()

	repos := &txRepositories{
		likes:    &LikeRepository{db: tx},
		counters: &LikeCounterRepository{db: tx},
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", classify(err))
	}
	return nil
}
