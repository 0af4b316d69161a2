package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

type structValidator struct {
	v *validator.Validate
}

func New() Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return &structValidator{v: v}
}

// Validate checks obj against its `validate` tags. Slices are checked
// element by element.
func (s *structValidator) Validate(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() == reflect.Slice {
		for i := 0; i < value.Len(); i++ {
			if err := s.Validate(value.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}

	if err := s.v.Struct(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatErrors(verrs)
		}
		return err
	}
	return nil
}

func formatErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s", e.Field(), e.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must not exceed %s", e.Field(), e.Param()))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must match %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
