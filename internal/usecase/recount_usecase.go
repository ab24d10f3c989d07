package usecase

import (
	"context"
	"fmt"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// RecountUsecase repairs counters that drifted away from the ledger.
type RecountUsecase struct {
	store  contract.ILikeStore
	cache  bestEffortCache
	logger usecasecontract.IAppLogger
}

var _ usecasecontract.IRecountUseCase = (*RecountUsecase)(nil)

func NewRecountUsecase(store contract.ILikeStore, cache contract.ICache, logger usecasecontract.IAppLogger) *RecountUsecase {
	return &RecountUsecase{
		store:  store,
		cache:  bestEffortCache{cache: cache, logger: logger},
		logger: logger,
	}
}

// Reconcile recomputes all counters from the ledger in one transaction and
// invalidates the cached counts of the corrected entities once it commits.
func (u *RecountUsecase) Reconcile(ctx context.Context) ([]entity.CounterDrift, error) {
	var drifts []entity.CounterDrift
	err := u.store.WithinTx(ctx, func(ctx context.Context, tx contract.ITxRepositories) error {
		var err error
		drifts, err = tx.Counters().Reconcile(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile like counters: %w", err)
	}

	for _, d := range drifts {
		u.cache.delete(ctx, objectLikeCountKey(d.EntityRef))
		u.logger.Infof("corrected like counter %d:%d from %d to %d", d.Type, d.ID, d.Stored, d.Actual)
	}
	return drifts, nil
}
