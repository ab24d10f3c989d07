package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
)

const (
	uniqueViolation      = "23505"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"
)

// classify maps driver errors onto the domain error sentinels. Serialization
// failures and deadlocks count as constraint violations so writers retry them.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %w", contract.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == uniqueViolation, pgErr.Code == serializationFailure, pgErr.Code == deadlockDetected:
			return fmt.Errorf("%w: %w", contract.ErrConstraintViolation, err)
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			// connection exceptions and operator intervention
			return fmt.Errorf("%w: %w", contract.ErrStoreUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", contract.ErrStoreUnavailable, err)
	}
	return err
}
