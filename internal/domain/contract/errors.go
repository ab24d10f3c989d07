package contract

import "errors"

var (
	// ErrConstraintViolation is returned when a uniqueness constraint rejects
	// a concurrent duplicate write. The operation is safe to retry.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrNotFound is returned when a counter, type or user row is absent.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable is returned when the durable store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCacheUnavailable is returned when the cache backend cannot be reached.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrNotRelational is returned for SQL-only features on a document store.
	ErrNotRelational = errors.New("operation requires a relational store")
)
