package cache

import (
	"context"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
)

// Recorder receives one observation per cache operation.
type Recorder interface {
	ObserveCache(backend, op, result string)
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultOK    = "ok"
	resultError = "error"
)

// Instrumented decorates a cache with per-operation metrics.
type Instrumented struct {
	inner    contract.ICache
	backend  string
	recorder Recorder
}

var _ contract.ICache = (*Instrumented)(nil)

func NewInstrumented(inner contract.ICache, backend string, recorder Recorder) *Instrumented {
	return &Instrumented{inner: inner, backend: backend, recorder: recorder}
}

func (i *Instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := i.inner.Get(ctx, key)
	switch {
	case err != nil:
		i.recorder.ObserveCache(i.backend, "get", resultError)
	case ok:
		i.recorder.ObserveCache(i.backend, "get", resultHit)
	default:
		i.recorder.ObserveCache(i.backend, "get", resultMiss)
	}
	return v, ok, err
}

func (i *Instrumented) Set(ctx context.Context, key, value string) error {
	err := i.inner.Set(ctx, key, value)
	i.recorder.ObserveCache(i.backend, "set", result(err))
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	err := i.inner.Delete(ctx, key)
	i.recorder.ObserveCache(i.backend, "delete", result(err))
	return err
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}
