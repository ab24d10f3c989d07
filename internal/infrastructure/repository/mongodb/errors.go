package mongodb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
)

// classify maps driver errors onto the domain error sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, contract.ErrConstraintViolation),
		errors.Is(err, contract.ErrNotFound),
		errors.Is(err, contract.ErrStoreUnavailable):
		return err
	case errors.Is(err, mongo.ErrNoDocuments):
		return fmt.Errorf("%w: %w", contract.ErrNotFound, err)
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %w", contract.ErrConstraintViolation, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err):
		return fmt.Errorf("%w: %w", contract.ErrStoreUnavailable, err)
	}

	var le mongo.LabeledError
	if errors.As(err, &le) && le.HasErrorLabel("TransientTransactionError") {
		return fmt.Errorf("%w: %w", contract.ErrConstraintViolation, err)
	}
	return err
}
