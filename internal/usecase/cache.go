package usecase

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// bestEffortCache never lets a cache failure reach the caller: read errors
// count as misses and write errors are logged and dropped.
type bestEffortCache struct {
	cache  contract.ICache
	logger usecasecontract.IAppLogger
}

func (c bestEffortCache) get(ctx context.Context, key string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	v, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warnf("cache get %s failed: %v", key, err)
		return "", false
	}
	return v, ok
}

func (c bestEffortCache) set(ctx context.Context, key, value string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, key, value); err != nil {
		c.logger.Warnf("cache set %s failed: %v", key, err)
	}
}

func (c bestEffortCache) delete(ctx context.Context, key string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, key); err != nil {
		c.logger.Warnf("cache delete %s failed: %v", key, err)
	}
}
