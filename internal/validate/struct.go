package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	sv   *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		sv = validator.New(validator.WithRequiredStructEnabled())
		_ = sv.RegisterValidation("bookyear", func(fl validator.FieldLevel) bool {
			y := fl.Field().Int()
			return y == 0 || (y >= 1000 && y <= 2100)
		})
		sv.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return sv
}

// Struct runs the `validate` tags on s.
func Struct(s any) error {
	return instance().Struct(s)
}

// Issue is one failed rule on one field.
type Issue struct {
	Field   string
	Tag     string
	Message string
}

// Issues flattens a validation error. Non-validation errors become a single
// issue with an empty field.
func Issues(err error) []Issue {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Message: err.Error()}}
	}
	out := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, Issue{Field: fieldPath(fe), Tag: fe.Tag(), Message: message(fe)})
	}
	return out
}

// Messages renders validation failures as short human sentences keyed by the
// JSON field name.
func Messages(err error) []string {
	issues := Issues(err)
	if issues == nil {
		return nil
	}
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Message)
	}
	return out
}

// fieldPath drops the root struct name: "Patch.authors[1]" -> "authors[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "bookyear":
		return field + " must be between 1000 and 2100"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}
