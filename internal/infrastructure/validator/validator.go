package validator

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mikiasgoitom/likes/internal/domain/entity"
	usecasecontract "github.com/mikiasgoitom/likes/internal/usecase/contract"
)

// typeNameRe admits the characters allowed in namespaces and type names.
// ':' is excluded because it separates the parts of cache keys.
var typeNameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// AppValidator implements the usecase IValidator interface.
type AppValidator struct {
	validate *validator.Validate
}

// NewValidator creates a new validator that implements the IValidator interface.
func NewValidator() usecasecontract.IValidator {
	v := validator.New()
	_ = v.RegisterValidation("typename", typeNameFL)
	return &AppValidator{validate: v}
}

// ValidateDescriptor checks both halves of a type descriptor.
func (av *AppValidator) ValidateDescriptor(d entity.TypeDescriptor) error {
	if err := av.validate.Var(d.Namespace, "required,max=100,typename"); err != nil {
		return fmt.Errorf("invalid namespace %q: %w", d.Namespace, err)
	}
	if err := av.validate.Var(d.TypeName, "required,max=100,typename"); err != nil {
		return fmt.Errorf("invalid type name %q: %w", d.TypeName, err)
	}
	return nil
}

// ValidateID checks that an entity or user id is positive.
func (av *AppValidator) ValidateID(id int64) error {
	if err := av.validate.Var(id, "gt=0"); err != nil {
		return fmt.Errorf("invalid id %d: %w", id, err)
	}
	return nil
}

// RegisterCustomValidators registers custom validation functions with the Gin validator.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("typename", typeNameFL)
	}
}

func typeNameFL(fl validator.FieldLevel) bool {
	return typeNameRe.MatchString(fl.Field().String())
}
