package usecasecontract

import "github.com/mikiasgoitom/likes/internal/domain/entity"

// IValidator checks caller supplied identifiers before they reach a store.
type IValidator interface {
	ValidateDescriptor(d entity.TypeDescriptor) error
	ValidateID(id int64) error
}
