package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// LikeUsecase keeps the like ledger, the per-entity counters and the cache
// consistent with each other.
//
// Writes change the ledger and the counter in one transaction and touch the
// cache only after that transaction has committed. Reads are served from the
// cache and repopulate it from the store on a miss.
type LikeUsecase struct {
	store    contract.ILikeStore
	cache    bestEffortCache
	resolver *EntityTypeResolver
	logger   usecasecontract.IAppLogger

	refreshCountOnRead bool
	conflictRetries    int
}

var _ usecasecontract.ILikeUseCase = (*LikeUsecase)(nil)

// NewLikeUsecase creates and returns a new LikeUsecase instance. cache may be nil.
func NewLikeUsecase(store contract.ILikeStore, cache contract.ICache, resolver *EntityTypeResolver, logger usecasecontract.IAppLogger, config usecasecontract.IConfigProvider) *LikeUsecase {
	return &LikeUsecase{
		store:              store,
		cache:              bestEffortCache{cache: cache, logger: logger},
		resolver:           resolver,
		logger:             logger,
		refreshCountOnRead: config.GetRefreshCountOnRead(),
		conflictRetries:    config.GetConflictRetries(),
	}
}

// AddLike records that userID likes obj. Liking twice is a no-op: the
// existing like is returned with created set to false.
func (u *LikeUsecase) AddLike(ctx context.Context, obj entity.Likeable, userID int64) (*entity.Like, bool, error) {
	key, err := u.likeKey(ctx, obj, userID)
	if err != nil {
		return nil, false, err
	}

	var (
		like    *entity.Like
		created bool
	)
	err = u.retryOnConflict(ctx, func() error {
		return u.store.WithinTx(ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
			var err error
			like, created, err = tx.Likes().GetOrCreate(ctx, key)
			if err != nil {
				return err
			}
			if !created {
				return nil
			}
			return tx.Counters().Add(ctx, key.EntityRef, 1)
		})
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to add like: %w", err)
	}

	if created {
		u.cache.set(ctx, objectLikeKey(key), strconv.FormatBool(true))
		u.cache.delete(ctx, objectLikeCountKey(key.EntityRef))
		u.logger.Debugf("user %d liked %s:%d", userID, obj.LikeableType(), obj.LikeableID())
	}
	like.Target = obj
	return like, created, nil
}

// RemoveLike withdraws userID's like of obj and reports whether there was one.
func (u *LikeUsecase) RemoveLike(ctx context.Context, obj entity.Likeable, userID int64) (bool, error) {
	key, err := u.likeKey(ctx, obj, userID)
	if err != nil {
		return false, err
	}

	var removed bool
	err = u.retryOnConflict(ctx, func() error {
		return u.store.WithinTx(ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
			var err error
			removed, err = tx.Likes().Delete(ctx, key)
			if err != nil || !removed {
				return err
			}
			return tx.Counters().Add(ctx, key.EntityRef, -1)
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove like: %w", err)
	}

	if removed {
		u.cache.set(ctx, objectLikeKey(key), strconv.FormatBool(false))
		u.cache.delete(ctx, objectLikeCountKey(key.EntityRef))
		u.logger.Debugf("user %d unliked %s:%d", userID, obj.LikeableType(), obj.LikeableID())
	}
	return removed, nil
}

// HasLiked reports whether userID likes obj.
func (u *LikeUsecase) HasLiked(ctx context.Context, obj entity.Likeable, userID int64) (bool, error) {
	key, err := u.likeKey(ctx, obj, userID)
	if err != nil {
		return false, err
	}

	cacheKey := objectLikeKey(key)
	if v, ok := u.cache.get(ctx, cacheKey); ok {
		if liked, err := strconv.ParseBool(v); err == nil {
			return liked, nil
		}
	}

	liked, err := u.store.Likes().Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	u.cache.set(ctx, cacheKey, strconv.FormatBool(liked))
	return liked, nil
}

// GetLikesCount returns the number of likes of obj, 0 if it has none.
func (u *LikeUsecase) GetLikesCount(ctx context.Context, obj entity.Likeable) (int64, error) {
	ref, err := u.entityRef(ctx, obj)
	if err != nil {
		return 0, err
	}

	cacheKey := objectLikeCountKey(ref)
	if v, ok := u.cache.get(ctx, cacheKey); ok {
		if count, err := strconv.ParseInt(v, 10, 64); err == nil {
			if u.refreshCountOnRead {
				u.cache.set(ctx, cacheKey, v)
			}
			return count, nil
		}
	}

	var count int64
	counter, err := u.store.Counters().Get(ctx, ref)
	switch {
	case err == nil:
		count = counter.Count
	case errors.Is(err, contract.ErrNotFound):
		count = 0
	default:
		return 0, fmt.Errorf("failed to get likes count: %w", err)
	}
	u.cache.set(ctx, cacheKey, strconv.FormatInt(count, 10))
	return count, nil
}

// GetLikers returns the users who like obj, in no particular order.
func (u *LikeUsecase) GetLikers(ctx context.Context, obj entity.Likeable) ([]entity.User, error) {
	ref, err := u.entityRef(ctx, obj)
	if err != nil {
		return nil, err
	}

	ids, err := u.store.Likes().ListUserIDs(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to list likers: %w", err)
	}
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	users, err := u.store.Users().GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load likers: %w", err)
	}
	return users, nil
}

// GetLiked returns the entities of model that userID likes, as found by the
// host's finder.
func (u *LikeUsecase) GetLiked(ctx context.Context, userID int64, model entity.TypeDescriptor, finder contract.IEntityFinder) ([]entity.Likeable, error) {
	cond, err := u.LikedFilter(ctx, userID, model, finder.IDColumn())
	if err != nil {
		return nil, err
	}
	objs, err := finder.FindWhere(ctx, cond)
	if err != nil {
		return nil, fmt.Errorf("failed to find liked %s: %w", model, err)
	}
	return objs, nil
}

// LikedFilter returns the condition restricting a host query on idColumn to
// the entities of model that userID likes.
func (u *LikeUsecase) LikedFilter(ctx context.Context, userID int64, model entity.TypeDescriptor, idColumn string) (entity.Condition, error) {
	typeID, err := u.resolver.Resolve(ctx, model)
	if err != nil {
		return entity.Condition{}, err
	}
	cond, err := u.store.Likes().LikedFilter(ctx, typeID, userID, idColumn)
	if err != nil {
		return entity.Condition{}, fmt.Errorf("failed to build liked filter: %w", err)
	}
	return cond, nil
}

// GetLikedIDs returns the ids of the entities of model that userID likes.
func (u *LikeUsecase) GetLikedIDs(ctx context.Context, userID int64, model entity.TypeDescriptor) ([]int64, error) {
	typeID, err := u.resolver.Resolve(ctx, model)
	if err != nil {
		return nil, err
	}
	ids, err := u.store.Likes().ListEntityIDs(ctx, typeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liked %s: %w", model, err)
	}
	return ids, nil
}

// AttachLikesCount pairs every entity with its like count using one counter
// lookup per entity type. Entities without a counter get 0.
func (u *LikeUsecase) AttachLikesCount(ctx context.Context, objs []entity.Likeable) ([]entity.CountedEntity, error) {
	byType := make(map[entity.TypeDescriptor][]int64)
	for _, obj := range objs {
		if isNilEntity(obj) {
			return nil, ErrInvalidEntity
		}
		d := obj.LikeableType()
		byType[d] = append(byType[d], obj.LikeableID())
	}

	counts := make(map[entity.TypeDescriptor]map[int64]int64, len(byType))
	for d, ids := range byType {
		typeID, err := u.resolver.Resolve(ctx, d)
		if err != nil {
			return nil, err
		}
		m, err := u.store.Counters().GetMany(ctx, typeID, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to get likes counts of %s: %w", d, err)
		}
		counts[d] = m
	}

	out := make([]entity.CountedEntity, len(objs))
	for i, obj := range objs {
		out[i] = entity.CountedEntity{
			Likeable:   obj,
			LikesCount: counts[obj.LikeableType()][obj.LikeableID()],
		}
	}
	return out, nil
}

// LikesCountProjection returns a SQL select expression yielding the like
// count of the host row identified by idColumn, 0 when it has none.
func (u *LikeUsecase) LikesCountProjection(ctx context.Context, model entity.TypeDescriptor, idColumn string) (entity.Projection, error) {
	typeID, err := u.resolver.Resolve(ctx, model)
	if err != nil {
		return entity.Projection{}, err
	}
	return u.store.Counters().Projection(typeID, idColumn)
}

func (u *LikeUsecase) entityRef(ctx context.Context, obj entity.Likeable) (entity.EntityRef, error) {
	typeID, err := u.resolver.ResolveEntity(ctx, obj)
	if err != nil {
		return entity.EntityRef{}, err
	}
	return entity.EntityRef{Type: typeID, ID: obj.LikeableID()}, nil
}

func (u *LikeUsecase) likeKey(ctx context.Context, obj entity.Likeable, userID int64) (entity.LikeKey, error) {
	ref, err := u.entityRef(ctx, obj)
	if err != nil {
		return entity.LikeKey{}, err
	}
	return entity.LikeKey{EntityRef: ref, UserID: userID}, nil
}

// retryOnConflict reruns op while it fails with a constraint violation. Any
// other error ends the loop immediately.
func (u *LikeUsecase) retryOnConflict(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	retries := u.conflictRetries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if errors.Is(err, contract.ErrConstraintViolation) {
			u.logger.Warnf("like write conflicted, retrying: %v", err)
			return err
		}
		return backoff.Permanent(err)
	}, policy)
}
