package usecase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/logger"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/sqlite"
)

var (
	blogPost    = entity.TypeDescriptor{Namespace: "blog", TypeName: "post"}
	blogComment = entity.TypeDescriptor{Namespace: "blog", TypeName: "comment"}

	errBoom = errors.New("boom")
)

var quietLogger = logger.New("error", io.Discard)

type stubConfig struct {
	refreshCountOnRead bool
	conflictRetries    int
}

func (c stubConfig) GetRefreshCountOnRead() bool { return c.refreshCountOnRead }
func (c stubConfig) GetConflictRetries() int     { return c.conflictRetries }

// fakeCache is an in-memory ICache that records every operation and can be
// switched into an outage.
type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ops  []string
	down bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, "get "+key)
	if c.down {
		return "", false, contract.ErrCacheUnavailable
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, "set "+key)
	if c.down {
		return contract.ErrCacheUnavailable
	}
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, "delete "+key)
	if c.down {
		return contract.ErrCacheUnavailable
	}
	delete(c.data, key)
	return nil
}

func (c *fakeCache) value(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

func (c *fakeCache) put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// writes returns the recorded set and delete operations.
func (c *fakeCache) writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, op := range c.ops {
		if !strings.HasPrefix(op, "get ") {
			out = append(out, op)
		}
	}
	return out
}

func (c *fakeCache) resetOps() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = nil
}

// faultyStore wraps a real store and injects failures into its transactions.
type faultyStore struct {
	contract.ILikeStore

	mu             sync.Mutex
	conflicts      int
	failCounterAdd bool
	txCalls        int
}

func (s *faultyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx contract.ITxRepositories) error) error {
	s.mu.Lock()
	s.txCalls++
	conflict := s.conflicts > 0
	if conflict {
		s.conflicts--
	}
	failAdd := s.failCounterAdd
	s.mu.Unlock()

	if conflict {
		return fmt.Errorf("inserting like: %w", contract.ErrConstraintViolation)
	}
	return s.ILikeStore.WithinTx(ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
		if failAdd {
			tx = failingCountersTx{tx}
		}
		return fn(ctx, tx)
	})
}

func (s *faultyStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCalls
}

type failingCountersTx struct {
	contract.ITxRepositories
}

func (t failingCountersTx) Counters() contract.ILikeCounterRepository {
	return failingCounters{t.ITxRepositories.Counters()}
}

type failingCounters struct {
	contract.ILikeCounterRepository
}

func (failingCounters) Add(context.Context, entity.EntityRef, int64) error {
	return errBoom
}

// post is a host entity with a hashtag.
type post struct {
	ID    int64
	Title string
	Tag   string
}

func (p post) LikeableID() int64                   { return p.ID }
func (p post) LikeableType() entity.TypeDescriptor { return blogPost }
func (p post) Hashtag() string                     { return p.Tag }

// postFinder queries a host posts table with the conditions the use case builds.
type postFinder struct {
	db *sql.DB
}

func (f postFinder) IDColumn() string { return "posts.id" }

func (f postFinder) FindWhere(ctx context.Context, cond entity.Condition) ([]entity.Likeable, error) {
	args := make([]any, 0, len(cond.Args))
	for name, v := range cond.Args {
		args = append(args, sql.Named(name, v))
	}
	rows, err := f.db.QueryContext(ctx, "SELECT posts.id, posts.title, posts.tag FROM posts WHERE "+cond.SQL+" ORDER BY posts.id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Likeable
	for rows.Next() {
		var p post
		if err := rows.Scan(&p.ID, &p.Title, &p.Tag); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.New(ctx, "sqlite://:memory:", "users")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })
	return store
}

func sortedIDs(users []entity.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
