package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

// FailedMessage is the top level message of every validation failure.
const FailedMessage = "Validation failed"

// TagHTTPURLOrEmpty accepts an http(s) URL or the empty string, which callers
// use to clear an optional link.
const TagHTTPURLOrEmpty = "http_url_or_empty"

// Validator checks request structs and reports every violated field.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator that names fields after their json tags.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation(TagHTTPURLOrEmpty, func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || v.Var(value, "http_url") == nil
	})
	return &Validator{validate: v}
}

// Struct validates s. The returned error is a VALIDATION_FAILED DomainError
// listing one message per violation in declaration order.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}
	return apperrors.NewValidationError(FailedMessage, messages)
}

// Fail builds a validation error from preformatted messages.
func Fail(messages ...string) error {
	return apperrors.NewValidationError(FailedMessage, messages)
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isList {
			return fmt.Sprintf("%q must contain at least %s items", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("%q must contain less than or equal to %s items", field, fe.Param())
		}
		return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
	case "len":
		return fmt.Sprintf("%q length must be %s characters long", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%q must be a valid GUID", field)
	case "email":
		return fmt.Sprintf("%q must be a valid email", field)
	case "url", "http_url", TagHTTPURLOrEmpty:
		return fmt.Sprintf("%q must be a valid uri", field)
	case "numeric":
		return fmt.Sprintf("%q must only contain digits", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// fieldPath drops the struct name from the namespace: members[0].userId.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}
