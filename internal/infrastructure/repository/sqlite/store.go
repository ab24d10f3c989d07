// Package sqlite implements the like store on an embedded SQLite database.
//
// SQLite allows a single writer, so the pool is limited to one connection and
// transactions are serialized by database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/relational"
)

var _ contract.ILikeStore = (*Store)(nil)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db         *sql.DB
	usersTable string

	likes    *LikeRepository
	counters *LikeCounterRepository
	types    *EntityTypeRepository
	users    *UserRepository
}

// New opens the database at dsn (sqlite://path or sqlite://:memory:) and
// creates the schema if needed. usersTable names the host user table.
func New(ctx context.Context, dsn, usersTable string) (*Store, error) {
	if !relational.ValidIdentifier(usersTable) {
		return nil, fmt.Errorf("invalid users table %q", usersTable)
	}
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}

	s := &Store{
		db:         db,
		usersTable: usersTable,
		likes:      &LikeRepository{db: db},
		counters:   &LikeCounterRepository{db: db},
		types:      &EntityTypeRepository{db: db},
		users:      &UserRepository{db: db, table: usersTable},
	}
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Likes() contract.ILikeRepository             { return s.likes }
func (s *Store) Counters() contract.ILikeCounterRepository   { return s.counters }
func (s *Store) EntityTypes() contract.IEntityTypeRepository { return s.types }
func (s *Store) Users() contract.IUserRepository             { return s.users }

// DB exposes the underlying handle so a host can run its own queries with
// the conditions this store builds.
func (s *Store) DB() *sql.DB { return s.db }

// UpsertUser stores a host user record.
func (s *Store) UpsertUser(ctx context.Context, u entity.User) error {
	return s.users.UpsertUser(ctx, u)
}

func (s *Store) Close(ctx context.Context) error {
	return s.db.Close()
}

type txRepositories struct {
	likes    *LikeRepository
	counters *LikeCounterRepository
}

func (t *txRepositories) Likes() contract.ILikeRepository           { return t.likes }
func (t *txRepositories) Counters() contract.ILikeCounterRepository { return t.counters }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx contract.ITxRepositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	repos := &txRepositories{
		likes:    &LikeRepository{db: tx},
		counters: &LikeCounterRepository{db: tx},
	}
	if err = fn(ctx, repos); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", classify(err))
	}
	return nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS like_entity_types (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		namespace TEXT NOT NULL,
		type_name TEXT NOT NULL,
		CONSTRAINT uq_like_entity_type UNIQUE (namespace, type_name)
	);

	CREATE TABLE IF NOT EXISTS likes_like (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type_id INTEGER NOT NULL REFERENCES like_entity_types(id),
		entity_id      INTEGER NOT NULL,
		user_id        INTEGER NOT NULL,
		created_at     INTEGER NOT NULL,
		CONSTRAINT uq_likes_like UNIQUE (entity_type_id, entity_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS likes_likes (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type_id INTEGER NOT NULL REFERENCES like_entity_types(id),
		entity_id      INTEGER NOT NULL,
		count          INTEGER NOT NULL DEFAULT 0,
		CONSTRAINT uq_likes_likes UNIQUE (entity_type_id, entity_id)
	);

	CREATE INDEX IF NOT EXISTS idx_likes_like_user ON likes_like (user_id, entity_type_id);

	CREATE TABLE IF NOT EXISTS %s (
		id        INTEGER PRIMARY KEY,
		username  TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT ''
	);
	`, s.usersTable)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
