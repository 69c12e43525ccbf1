package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// emailShape matches local@domain.tld with no whitespace. Looser than RFC 5322.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// rules are the custom tags available to every payload.
var rules = map[string]validator.Func{
	"emailshape": func(fl validator.FieldLevel) bool {
		return IsEmailShape(strings.TrimSpace(fl.Field().String()))
	},
	"notblank": func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	},
}

var (
	instance     *validator.Validate
	instanceOnce sync.Once
)

// ValidationError is one failed rule, reported under the field's JSON name.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param"`
}

func (e ValidationError) String() string {
	if e.Param == "" {
		return fmt.Sprintf("%s failed on %s", e.Field, e.Tag)
	}
	return fmt.Sprintf("%s failed on %s=%s", e.Field, e.Tag, e.Param)
}

// ValidationErrors lists every failed rule of a payload in field order.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(v))
	for _, failure := range v {
		parts = append(parts, failure.String())
	}
	return strings.Join(parts, "; ")
}

// IsEmailShape reports whether value looks like local@domain.tld.
func IsEmailShape(value string) bool {
	return emailShape.MatchString(value)
}

// ValidateStruct runs the validate tags of s. Rule failures come back as ValidationErrors.
func ValidateStruct(s interface{}) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	failures := make(ValidationErrors, len(fieldErrors))
	for i, fe := range fieldErrors {
		failures[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return failures
}

// RegisterValidation adds a custom tag.
func RegisterValidation(tag string, fn validator.Func) error {
	return engine().RegisterValidation(tag, fn)
}

func engine() *validator.Validate {
	instanceOnce.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(jsonFieldName)
		for tag, fn := range rules {
			if err := instance.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("validator: register %s: %v", tag, err))
			}
		}
	})
	return instance
}

// jsonFieldName names fields as clients send them.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
