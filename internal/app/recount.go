package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// ScheduleRecount runs recount on the cron spec (seconds field included, or a
// descriptor such as "@every 1h") until the returned cron is stopped. A run
// that is still going when the next one is due causes that one to be skipped.
// onDrifts may be nil.
func ScheduleRecount(ctx context.Context, spec string, recount usecasecontract.IRecountUseCase, logger usecasecontract.IAppLogger, onDrifts func([]entity.CounterDrift)) (*cron.Cron, error) {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	_, err := c.AddFunc(spec, func() {
		drifts, err := recount.Reconcile(ctx)
		if err != nil {
			logger.Errorf("scheduled recount failed: %v", err)
			return
		}
		logger.Infof("scheduled recount corrected %d counter(s)", len(drifts))
		if onDrifts != nil {
			onDrifts(drifts)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid recount schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
