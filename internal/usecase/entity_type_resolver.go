package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// ErrInvalidEntity is returned for a nil entity or a malformed type descriptor.
var ErrInvalidEntity = errors.New("invalid likeable entity")

// EntityTypeResolver maps host type descriptors to registry ids and memoizes
// the mapping in the cache.
type EntityTypeResolver struct {
	types contract.IEntityTypeRepository
	cache bestEffortCache
}

// NewEntityTypeResolver creates a resolver. cache may be nil.
func NewEntityTypeResolver(types contract.IEntityTypeRepository, cache contract.ICache, logger usecasecontract.IAppLogger) *EntityTypeResolver {
	return &EntityTypeResolver{
		types: types,
		cache: bestEffortCache{cache: cache, logger: logger},
	}
}

// Resolve returns the id of the type described by d, registering it on first use.
func (r *EntityTypeResolver) Resolve(ctx context.Context, d entity.TypeDescriptor) (entity.EntityTypeID, error) {
	if err := validateDescriptor(d); err != nil {
		return 0, err
	}

	key := objTypeKey(d)
	if v, ok := r.cache.get(ctx, key); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return entity.EntityTypeID(id), nil
		}
	}

	et, err := r.types.GetOrCreate(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve entity type %s: %w", d, err)
	}
	r.cache.set(ctx, key, et.ID.String())
	return et.ID, nil
}

// ResolveEntity resolves the type of a host entity.
func (r *EntityTypeResolver) ResolveEntity(ctx context.Context, obj entity.Likeable) (entity.EntityTypeID, error) {
	if isNilEntity(obj) {
		return 0, ErrInvalidEntity
	}
	return r.Resolve(ctx, obj.LikeableType())
}

// isNilEntity also catches a nil pointer stored in a non-nil interface.
func isNilEntity(obj entity.Likeable) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func validateDescriptor(d entity.TypeDescriptor) error {
	if d.Namespace == "" || d.TypeName == "" {
		return fmt.Errorf("%w: empty type descriptor %q", ErrInvalidEntity, d)
	}
	if strings.Contains(d.Namespace, ":") || strings.Contains(d.TypeName, ":") {
		return fmt.Errorf("%w: type descriptor %q contains ':'", ErrInvalidEntity, d)
	}
	return nil
}
