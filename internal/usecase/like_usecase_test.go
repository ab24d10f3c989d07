package usecase

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	"github.com/mikiasgoitom/likes/internal/infrastructure/repository/sqlite"
)

type LikeUsecaseSuite struct {
	suite.Suite
	ctx   context.Context
	store *sqlite.Store
	cache *fakeCache
	uc    *LikeUsecase
}

func TestLikeUsecaseSuite(t *testing.T) {
	suite.Run(t, new(LikeUsecaseSuite))
}

func (s *LikeUsecaseSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newSQLiteStore(s.T())
	s.cache = newFakeCache()
	s.uc = s.newUsecase(s.store, stubConfig{conflictRetries: 3})

	s.Require().NoError(s.store.UpsertUser(s.ctx, entity.User{ID: 1, Username: "alice", FullName: "Alice A."}))
	s.Require().NoError(s.store.UpsertUser(s.ctx, entity.User{ID: 2, Username: "bob"}))
}

func (s *LikeUsecaseSuite) newUsecase(store contract.ILikeStore, cfg stubConfig) *LikeUsecase {
	resolver := NewEntityTypeResolver(store.EntityTypes(), s.cache, quietLogger)
	return NewLikeUsecase(store, s.cache, resolver, quietLogger, cfg)
}

func (s *LikeUsecaseSuite) ref(obj entity.Likeable) entity.EntityRef {
	typeID, err := s.uc.resolver.Resolve(s.ctx, obj.LikeableType())
	s.Require().NoError(err)
	return entity.EntityRef{Type: typeID, ID: obj.LikeableID()}
}

func (s *LikeUsecaseSuite) count(obj entity.Likeable) int64 {
	n, err := s.uc.GetLikesCount(s.ctx, obj)
	s.Require().NoError(err)
	return n
}

func (s *LikeUsecaseSuite) liked(obj entity.Likeable, userID int64) bool {
	ok, err := s.uc.HasLiked(s.ctx, obj, userID)
	s.Require().NoError(err)
	return ok
}

func (s *LikeUsecaseSuite) TestScenario() {
	e := entity.Object{Type: blogPost, ID: 42}

	_, created, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(int64(1), s.count(e))
	s.True(s.liked(e, 1))
	s.False(s.liked(e, 2))

	_, created, err = s.uc.AddLike(s.ctx, e, 2)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(int64(2), s.count(e))

	removed, err := s.uc.RemoveLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(removed)
	s.Equal(int64(1), s.count(e))
	s.False(s.liked(e, 1))

	likers, err := s.uc.GetLikers(s.ctx, e)
	s.Require().NoError(err)
	s.Equal([]int64{2}, sortedIDs(likers))
	s.Equal("bob", likers[0].Username)
}

func (s *LikeUsecaseSuite) TestAddLikeIsIdempotent() {
	e := entity.Object{Type: blogPost, ID: 7}

	first, created, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(created)

	s.cache.resetOps()
	second, created, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)
	s.Empty(s.cache.writes(), "a no-op add must not touch the cache")

	s.Equal(int64(1), s.count(e))
	ids, err := s.store.Likes().ListUserIDs(s.ctx, s.ref(e))
	s.Require().NoError(err)
	s.Equal([]int64{1}, ids)
}

func (s *LikeUsecaseSuite) TestRemoveLikeWithoutLikeIsNoop() {
	e := entity.Object{Type: blogPost, ID: 7}
	_, _, err := s.uc.AddLike(s.ctx, e, 2)
	s.Require().NoError(err)

	s.cache.resetOps()
	removed, err := s.uc.RemoveLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.False(removed)
	s.Empty(s.cache.writes())
	s.Equal(int64(1), s.count(e))
}

func (s *LikeUsecaseSuite) TestRoundTripRestoresCount() {
	e := entity.Object{Type: blogPost, ID: 9}
	s.Equal(int64(0), s.count(e))
	s.False(s.liked(e, 1))

	_, _, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	_, err = s.uc.RemoveLike(s.ctx, e, 1)
	s.Require().NoError(err)

	s.Equal(int64(0), s.count(e))
	s.False(s.liked(e, 1))
}

func (s *LikeUsecaseSuite) TestWritesKeepCacheCoherent() {
	e := entity.Object{Type: blogPost, ID: 3}
	ref := s.ref(e)
	likeKey := objectLikeKey(entity.LikeKey{EntityRef: ref, UserID: 1})
	countKey := objectLikeCountKey(ref)

	// warm both entries with the pre-write truth
	s.False(s.liked(e, 1))
	s.Equal(int64(0), s.count(e))
	v, ok := s.cache.value(countKey)
	s.Require().True(ok)
	s.Equal("0", v)

	_, _, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)

	v, ok = s.cache.value(likeKey)
	s.True(ok)
	s.Equal("true", v)
	_, ok = s.cache.value(countKey)
	s.False(ok, "count must be invalidated, not updated")

	s.True(s.liked(e, 1))
	s.Equal(int64(1), s.count(e))

	_, err = s.uc.RemoveLike(s.ctx, e, 1)
	s.Require().NoError(err)
	v, _ = s.cache.value(likeKey)
	s.Equal("false", v)
	s.Equal(int64(0), s.count(e))
}

func (s *LikeUsecaseSuite) TestReadsAreServedFromCache() {
	e := entity.Object{Type: blogPost, ID: 5}
	ref := s.ref(e)
	s.cache.put(objectLikeCountKey(ref), "17")
	s.cache.put(objectLikeKey(entity.LikeKey{EntityRef: ref, UserID: 2}), "true")

	s.Equal(int64(17), s.count(e))
	s.True(s.liked(e, 2))
}

func (s *LikeUsecaseSuite) TestUnparsableCacheEntryIsAMiss() {
	e := entity.Object{Type: blogPost, ID: 5}
	s.cache.put(objectLikeCountKey(s.ref(e)), "garbage")

	s.Equal(int64(0), s.count(e))
	v, _ := s.cache.value(objectLikeCountKey(s.ref(e)))
	s.Equal("0", v)
}

func (s *LikeUsecaseSuite) TestRefreshCountOnRead() {
	e := entity.Object{Type: blogPost, ID: 5}
	countKey := objectLikeCountKey(s.ref(e))
	s.cache.put(countKey, "4")

	s.cache.resetOps()
	s.Equal(int64(4), s.count(e))
	s.Empty(s.cache.writes())

	refreshing := s.newUsecase(s.store, stubConfig{refreshCountOnRead: true})
	s.cache.resetOps()
	n, err := refreshing.GetLikesCount(s.ctx, e)
	s.Require().NoError(err)
	s.Equal(int64(4), n)
	s.Equal([]string{"set " + countKey}, s.cache.writes())
}

func (s *LikeUsecaseSuite) TestRollbackLeavesCacheUntouched() {
	e := entity.Object{Type: blogPost, ID: 11}
	ref := s.ref(e)
	likeKey := objectLikeKey(entity.LikeKey{EntityRef: ref, UserID: 1})
	s.False(s.liked(e, 1))
	s.Equal(int64(0), s.count(e))

	faulty := &faultyStore{ILikeStore: s.store, failCounterAdd: true}
	uc := s.newUsecase(faulty, stubConfig{conflictRetries: 3})

	s.cache.resetOps()
	_, _, err := uc.AddLike(s.ctx, e, 1)
	s.Require().Error(err)
	s.True(errors.Is(err, errBoom))
	s.Equal(1, faulty.calls(), "only constraint violations are retried")
	s.Empty(s.cache.writes())

	v, _ := s.cache.value(likeKey)
	s.Equal("false", v)
	exists, err := s.store.Likes().Exists(s.ctx, entity.LikeKey{EntityRef: ref, UserID: 1})
	s.Require().NoError(err)
	s.False(exists, "the ledger insert must roll back with the counter update")
}

func (s *LikeUsecaseSuite) TestConflictIsRetried() {
	e := entity.Object{Type: blogPost, ID: 12}
	faulty := &faultyStore{ILikeStore: s.store, conflicts: 2}
	uc := s.newUsecase(faulty, stubConfig{conflictRetries: 3})

	_, created, err := uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(created)
	s.Equal(3, faulty.calls())
	s.Equal(int64(1), s.count(e))
}

func (s *LikeUsecaseSuite) TestConflictRetriesAreBounded() {
	e := entity.Object{Type: blogPost, ID: 12}
	faulty := &faultyStore{ILikeStore: s.store, conflicts: 100}
	uc := s.newUsecase(faulty, stubConfig{conflictRetries: 2})

	_, err := uc.RemoveLike(s.ctx, e, 1)
	s.Require().Error(err)
	s.True(errors.Is(err, contract.ErrConstraintViolation))
	s.Equal(3, faulty.calls())
}

func (s *LikeUsecaseSuite) TestCacheOutageDoesNotFailWrites() {
	e := entity.Object{Type: blogPost, ID: 13}
	s.cache.down = true

	_, created, err := s.uc.AddLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(created)
	s.True(s.liked(e, 1))
	s.Equal(int64(1), s.count(e))

	removed, err := s.uc.RemoveLike(s.ctx, e, 1)
	s.Require().NoError(err)
	s.True(removed)
	s.Equal(int64(0), s.count(e))
}

func (s *LikeUsecaseSuite) TestConcurrentLikers() {
	e := entity.Object{Type: blogPost, ID: 99}
	const n = 25

	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 1; i <= n; i++ {
		wg.Add(2)
		go func(userID int64) {
			defer wg.Done()
			_, _, err := s.uc.AddLike(s.ctx, e, userID)
			errs <- err
		}(int64(i))
		// a duplicate of every like races the original
		go func(userID int64) {
			defer wg.Done()
			_, _, err := s.uc.AddLike(s.ctx, e, userID)
			errs <- err
		}(int64(i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal(int64(n), s.count(e))
	ids, err := s.store.Likes().ListUserIDs(s.ctx, s.ref(e))
	s.Require().NoError(err)
	s.Len(ids, n)
}

func (s *LikeUsecaseSuite) TestInvalidEntity() {
	_, _, err := s.uc.AddLike(s.ctx, nil, 1)
	s.True(errors.Is(err, ErrInvalidEntity))

	_, err = s.uc.GetLikesCount(s.ctx, entity.Object{Type: entity.TypeDescriptor{Namespace: "blog"}, ID: 1})
	s.True(errors.Is(err, ErrInvalidEntity))

	_, err = s.uc.HasLiked(s.ctx, entity.Object{Type: entity.TypeDescriptor{Namespace: "a:b", TypeName: "c"}, ID: 1}, 1)
	s.True(errors.Is(err, ErrInvalidEntity))
}

func (s *LikeUsecaseSuite) TestNilPointerEntityIsInvalid() {
	var p *post

	s.NotPanics(func() {
		_, _, err := s.uc.AddLike(s.ctx, p, 1)
		s.True(errors.Is(err, ErrInvalidEntity))

		_, err = s.uc.RemoveLike(s.ctx, p, 1)
		s.True(errors.Is(err, ErrInvalidEntity))

		_, err = s.uc.GetLikesCount(s.ctx, p)
		s.True(errors.Is(err, ErrInvalidEntity))

		_, err = s.uc.AttachLikesCount(s.ctx, []entity.Likeable{post{ID: 1}, p})
		s.True(errors.Is(err, ErrInvalidEntity))
	})
}

func (s *LikeUsecaseSuite) TestLikeCarriesHashtag() {
	p := post{ID: 21, Title: "hello", Tag: "#golang"}

	like, _, err := s.uc.AddLike(s.ctx, p, 1)
	s.Require().NoError(err)
	tag, ok := like.Hashtag()
	s.True(ok)
	s.Equal("#golang", tag)
	s.Equal(int64(21), like.EntityID)
	s.Equal(int64(1), like.UserID)
}

func (s *LikeUsecaseSuite) createPosts() {
	_, err := s.store.DB().ExecContext(s.ctx, `
	CREATE TABLE posts (id INTEGER PRIMARY KEY, title TEXT NOT NULL, tag TEXT NOT NULL DEFAULT '');
	INSERT INTO posts (id, title, tag) VALUES (1, 'one', '#a'), (2, 'two', ''), (3, 'three', '#c');`)
	s.Require().NoError(err)
}

func (s *LikeUsecaseSuite) TestGetLiked() {
	s.createPosts()
	for _, id := range []int64{1, 3} {
		_, _, err := s.uc.AddLike(s.ctx, post{ID: id}, 2)
		s.Require().NoError(err)
	}
	_, _, err := s.uc.AddLike(s.ctx, post{ID: 2}, 1)
	s.Require().NoError(err)

	liked, err := s.uc.GetLiked(s.ctx, 2, blogPost, postFinder{db: s.store.DB()})
	s.Require().NoError(err)
	s.Require().Len(liked, 2)
	s.Equal("one", liked[0].(post).Title)
	s.Equal("three", liked[1].(post).Title)

	ids, err := s.uc.GetLikedIDs(s.ctx, 2, blogPost)
	s.Require().NoError(err)
	s.ElementsMatch([]int64{1, 3}, ids)

	none, err := s.uc.GetLiked(s.ctx, 2, blogComment, postFinder{db: s.store.DB()})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *LikeUsecaseSuite) TestAttachLikesCount() {
	comment := entity.Object{Type: blogComment, ID: 1}
	for _, userID := range []int64{1, 2} {
		_, _, err := s.uc.AddLike(s.ctx, post{ID: 1}, userID)
		s.Require().NoError(err)
	}
	_, _, err := s.uc.AddLike(s.ctx, comment, 1)
	s.Require().NoError(err)

	counted, err := s.uc.AttachLikesCount(s.ctx, []entity.Likeable{
		post{ID: 1, Tag: "#first"},
		post{ID: 2},
		comment,
	})
	s.Require().NoError(err)
	s.Require().Len(counted, 3)
	s.Equal(int64(2), counted[0].LikesCount)
	s.Equal(int64(0), counted[1].LikesCount)
	s.Equal(int64(1), counted[2].LikesCount)

	tag, ok := counted[0].Hashtag()
	s.True(ok)
	s.Equal("#first", tag)
	_, ok = counted[2].Hashtag()
	s.False(ok)

	_, err = s.uc.AttachLikesCount(s.ctx, []entity.Likeable{post{ID: 1}, nil})
	s.True(errors.Is(err, ErrInvalidEntity))
}

func (s *LikeUsecaseSuite) TestLikesCountProjection() {
	s.createPosts()
	_, _, err := s.uc.AddLike(s.ctx, post{ID: 3}, 1)
	s.Require().NoError(err)

	p, err := s.uc.LikesCountProjection(s.ctx, blogPost, "posts.id")
	s.Require().NoError(err)

	args := make([]any, 0, len(p.Args))
	for name, v := range p.Args {
		args = append(args, sql.Named(name, v))
	}
	rows, err := s.store.DB().QueryContext(s.ctx, "SELECT posts.id, "+p.SQL+" FROM posts ORDER BY posts.id", args...)
	s.Require().NoError(err)
	defer rows.Close()

	got := map[int64]int64{}
	for rows.Next() {
		var id, n int64
		s.Require().NoError(rows.Scan(&id, &n))
		got[id] = n
	}
	s.Require().NoError(rows.Err())
	s.Equal(map[int64]int64{1: 0, 2: 0, 3: 1}, got)

	_, err = s.uc.LikesCountProjection(s.ctx, blogPost, "posts.id; DROP TABLE posts")
	s.Error(err)
}

func (s *LikeUsecaseSuite) TestGetLikersWithoutLikes() {
	likers, err := s.uc.GetLikers(s.ctx, entity.Object{Type: blogPost, ID: 404})
	s.Require().NoError(err)
	s.NotNil(likers)
	s.Empty(likers)
}
