//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/database"
	"github.com/mikiasgoitom/likes/internal/testutils"
)

type StoreIntegrationSuite struct {
	suite.Suite
	ctx   context.Context
	dsn   string
	store *Store
	post  entity.EntityTypeID
}

func TestStoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.dsn = testutils.StartPostgres(s.T())

	pool, err := database.NewPostgresPool(s.ctx, s.dsn)
	s.Require().NoError(err)
	s.store, err = NewStore(pool, "users")
	s.Require().NoError(err)
	s.Require().NoError(s.store.EnsureUsersTable(s.ctx))
}

func (s *StoreIntegrationSuite) TearDownSuite() {
	if s.store != nil {
		_ = s.store.Close(s.ctx)
	}
}

func (s *StoreIntegrationSuite) SetupTest() {
	_, err := s.store.Pool().Exec(s.ctx, `TRUNCATE likes_like, likes_likes, like_entity_types, users RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	et, err := s.store.EntityTypes().GetOrCreate(s.ctx, entity.TypeDescriptor{Namespace: "blog", TypeName: "post"})
	s.Require().NoError(err)
	s.post = et.ID
}

func (s *StoreIntegrationSuite) key(entityID, userID int64) entity.LikeKey {
	return entity.LikeKey{EntityRef: entity.EntityRef{Type: s.post, ID: entityID}, UserID: userID}
}

func (s *StoreIntegrationSuite) like(key entity.LikeKey) bool {
	var created bool
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
		var err error
		_, created, err = tx.Likes().GetOrCreate(ctx, key)
		if err != nil || !created {
			return err
		}
		return tx.Counters().Add(ctx, key.EntityRef, 1)
	})
	s.Require().NoError(err)
	return created
}

func (s *StoreIntegrationSuite) TestEntityTypeGetOrCreateIsStable() {
	again, err := s.store.EntityTypes().GetOrCreate(s.ctx, entity.TypeDescriptor{Namespace: "blog", TypeName: "post"})
	s.Require().NoError(err)
	s.Equal(s.post, again.ID)

	got, err := s.store.EntityTypes().GetByID(s.ctx, s.post)
	s.Require().NoError(err)
	s.Equal("blog", got.Namespace)

	_, err = s.store.EntityTypes().GetByID(s.ctx, s.post+100)
	s.ErrorIs(err, contract.ErrNotFound)
}

func (s *StoreIntegrationSuite) TestLikeLifecycle() {
	s.True(s.like(s.key(42, 1)))
	s.False(s.like(s.key(42, 1)))
	s.True(s.like(s.key(42, 2)))

	c, err := s.store.Counters().Get(s.ctx, entity.EntityRef{Type: s.post, ID: 42})
	s.Require().NoError(err)
	s.Equal(int64(2), c.Count)

	exists, err := s.store.Likes().Exists(s.ctx, s.key(42, 2))
	s.Require().NoError(err)
	s.True(exists)

	removed, err := s.store.Likes().Delete(s.ctx, s.key(42, 2))
	s.Require().NoError(err)
	s.True(removed)
	removed, err = s.store.Likes().Delete(s.ctx, s.key(42, 2))
	s.Require().NoError(err)
	s.False(removed)

	ids, err := s.store.Likes().ListUserIDs(s.ctx, entity.EntityRef{Type: s.post, ID: 42})
	s.Require().NoError(err)
	s.Equal([]int64{1}, ids)
}

func (s *StoreIntegrationSuite) TestConcurrentLikesCountExactly() {
	const n = 25
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			s.like(s.key(7, userID))
		}(int64(i))
	}
	wg.Wait()

	c, err := s.store.Counters().Get(s.ctx, entity.EntityRef{Type: s.post, ID: 7})
	s.Require().NoError(err)
	s.Equal(int64(n), c.Count)
}

func (s *StoreIntegrationSuite) TestCounterClampsAtZero() {
	ref := entity.EntityRef{Type: s.post, ID: 3}
	s.Require().NoError(s.store.Counters().Add(s.ctx, ref, -1))
	c, err := s.store.Counters().Get(s.ctx, ref)
	s.Require().NoError(err)
	s.Equal(int64(0), c.Count)
}

func (s *StoreIntegrationSuite) TestGetMany() {
	s.like(s.key(1, 1))
	s.like(s.key(1, 2))
	s.like(s.key(2, 1))

	counts, err := s.store.Counters().GetMany(s.ctx, s.post, []int64{1, 2, 3})
	s.Require().NoError(err)
	s.Equal(map[int64]int64{1: 2, 2: 1, 3: 0}, counts)
}

func (s *StoreIntegrationSuite) TestHostQueriesWithFilterAndProjection() {
	_, err := s.store.Pool().Exec(s.ctx, `
	DROP TABLE IF EXISTS posts;
	CREATE TABLE posts (id BIGINT PRIMARY KEY, title TEXT NOT NULL);
	INSERT INTO posts VALUES (1, 'one'), (2, 'two'), (3, 'three');`)
	s.Require().NoError(err)
	s.like(s.key(1, 5))
	s.like(s.key(3, 5))
	s.like(s.key(3, 6))

	cond, err := s.store.Likes().LikedFilter(s.ctx, s.post, 5, "posts.id")
	s.Require().NoError(err)
	proj, err := s.store.Counters().Projection(s.post, "posts.id")
	s.Require().NoError(err)

	rows, err := s.store.Pool().Query(s.ctx,
		"SELECT posts.title, "+proj.SQL+" FROM posts WHERE "+cond.SQL+" ORDER BY posts.id",
		pgx.NamedArgs(cond.Args))
	s.Require().NoError(err)
	type row struct {
		Title string
		Count int64
	}
	got, err := pgx.CollectRows(rows, func(r pgx.CollectableRow) (row, error) {
		var out row
		err := r.Scan(&out.Title, &out.Count)
		return out, err
	})
	s.Require().NoError(err)
	s.Equal([]row{{"one", 1}, {"three", 2}}, got)
}

func (s *StoreIntegrationSuite) TestReconcile() {
	s.like(s.key(1, 1))
	s.like(s.key(1, 2))
	s.Require().NoError(s.store.Counters().Add(s.ctx, entity.EntityRef{Type: s.post, ID: 1}, 3))
	s.Require().NoError(s.store.Counters().Add(s.ctx, entity.EntityRef{Type: s.post, ID: 9}, 4))

	var drifts []entity.CounterDrift
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
		var err error
		drifts, err = tx.Counters().Reconcile(ctx)
		return err
	})
	s.Require().NoError(err)
	s.Len(drifts, 2)

	counts, err := s.store.Counters().GetMany(s.ctx, s.post, []int64{1, 9})
	s.Require().NoError(err)
	s.Equal(map[int64]int64{1: 2, 9: 0}, counts)
}

func (s *StoreIntegrationSuite) TestGetUsersByIDs() {
	s.Require().NoError(s.store.UpsertUser(s.ctx, entity.User{ID: 1, Username: "ana", FullName: "Ana A"}))
	s.Require().NoError(s.store.UpsertUser(s.ctx, entity.User{ID: 2, Username: "ben"}))

	users, err := s.store.Users().GetUsersByIDs(s.ctx, []int64{2, 1, 99})
	s.Require().NoError(err)
	s.ElementsMatch([]entity.User{{ID: 1, Username: "ana", FullName: "Ana A"}, {ID: 2, Username: "ben"}}, users)
}

func (s *StoreIntegrationSuite) TestCustomUsersTable() {
	members, err := NewStore(s.store.Pool(), "members")
	s.Require().NoError(err)
	s.Require().NoError(members.EnsureUsersTable(s.ctx))
	s.Require().NoError(members.EnsureUsersTable(s.ctx))
	s.T().Cleanup(func() {
		_, _ = s.store.Pool().Exec(context.Background(), `DROP TABLE IF EXISTS members`)
	})

	s.Require().NoError(members.UpsertUser(s.ctx, entity.User{ID: 5, Username: "cy"}))
	users, err := members.Users().GetUsersByIDs(s.ctx, []int64{5})
	s.Require().NoError(err)
	s.Equal([]entity.User{{ID: 5, Username: "cy"}}, users)

	users, err = s.store.Users().GetUsersByIDs(s.ctx, []int64{5})
	s.Require().NoError(err)
	s.Empty(users)
}
