// ABOUTME: Input validation for calculator requests using go-playground/validator
// ABOUTME: Reports field errors keyed by JSON name with English messages

package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"

	"github.com/sparkcalc/sparkcalc/backend/models"
)

// ErrInvalidInput marks input outside an engine's domain; engines return no result
var ErrInvalidInput = errors.New("invalid input")

// custom validation tags
const (
	enumTag          = "enum"
	deviceRatingTag  = "device_rating"
	faultDurationTag = "fault_duration"
)

// enumerated is satisfied by the closed string enums in models
type enumerated interface {
	Valid() bool
}

// ValidationError carries per-field messages keyed by JSON field path
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator checks calculator inputs before they reach an engine
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// NewValidator builds a validator with JSON field names and English messages
func NewValidator() *Validator {
	v := validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	trans, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	// Use JSON tag names for errors instead of Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(enumTag, enumValidation)
	_ = v.RegisterValidation(deviceRatingTag, deviceRatingValidation)
	_ = v.RegisterValidation(faultDurationTag, faultDurationValidation)

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{enumTag, deviceRatingTag, faultDurationTag} {
		_ = v.RegisterTranslation(tag, trans, registerFn, translateCustomErrs)
	}

	return &Validator{validate: v, translator: trans}
}

// Validate returns a *ValidationError describing every failing field, or nil
func (v *Validator) Validate(input any) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fieldPath(fe.Namespace())] = fe.Translate(v.translator)
	}
	return &ValidationError{Fields: fields}
}

// fieldPath drops the top-level struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case enumTag:
		return fmt.Sprintf("%s is not a recognised option", sanitizeForLog(fmt.Sprint(fe.Value())))
	case deviceRatingTag:
		return fmt.Sprintf("must be a standard device rating %v", models.StandardDeviceRatings)
	case faultDurationTag:
		return fmt.Sprintf("must be one of the tabulated fault durations %v", FaultDurations())
	default:
		return ""
	}
}

func enumValidation(fl validator.FieldLevel) bool {
	if e, ok := fl.Field().Interface().(enumerated); ok {
		return e.Valid()
	}
	return false
}

func deviceRatingValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	return models.IsStandardDeviceRating(fl.Field().Float())
}

func faultDurationValidation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Float64 {
		return false
	}
	_, ok := permissibleVoltages(fl.Field().Float())
	return ok
}

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateID checks that a saved calculation id is a canonical UUID
func ValidateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("invalid calculation id: %s", sanitizeForLog(id))
	}
	return nil
}
