package validator

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	playground "github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// DateLayout is the only accepted date format
const DateLayout = "2006-01-02"

var (
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// Checker is implemented by request types with rules that span several fields.
// Check runs after the tag rules and its errors are merged into the same ValidationError.
type Checker interface {
	Check() []FieldError
}

// Validator decodes raw JSON payloads into typed request structs and validates them.
// It is safe for concurrent use.
type Validator struct {
	validate *playground.Validate
	phones   *PhoneValidator
}

// New creates a validator with the custom date, clock, phone and strong_password rules registered
func New() *Validator {
	v := &Validator{
		validate: playground.New(playground.WithRequiredStructEnabled()),
		phones:   NewPhoneValidator(),
	}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v.validate, "date", isDate)
	mustRegister(v.validate, "clock", isClock)
	mustRegister(v.validate, "phone", v.isPhone)
	mustRegister(v.validate, "strong_password", isStrongPassword)

	return v
}

func mustRegister(v *playground.Validate, tag string, fn playground.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
	}
}

// Decode fills dst (a pointer to a request struct) from raw and validates the result.
// Empty strings and nulls are treated as absent. Every failing field is reported,
// either as a decoding failure (invalid_type) or as a rule violation.
func (v *Validator) Decode(raw map[string]interface{}, dst interface{}) error {
	fields := Normalize(raw)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []FieldError
	failed := make(map[string]bool)

	for _, key := range keys {
		if err := decodeField(key, fields[key], dst); err != nil {
			errs = append(errs, FieldError{
				Field:   key,
				Reason:  ReasonInvalidType,
				Message: "has an invalid type",
			})
			failed[key] = true
		}
	}

	if err := v.validate.Struct(dst); err != nil {
		var verrs playground.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate %T: %w", dst, err)
		}
		for _, fe := range verrs {
			field := fieldPath(fe.Namespace())
			if failed[rootField(field)] {
				continue
			}
			errs = append(errs, translate(fe, field))
		}
	}

	if checker, ok := dst.(Checker); ok {
		for _, fe := range checker.Check() {
			if !failed[rootField(fe.Field)] {
				errs = append(errs, fe)
			}
		}
	}

	if len(errs) > 0 {
		return NewValidationError(errs...)
	}
	return nil
}

// Normalize trims strings and drops keys holding null or blank strings, recursing into
// nested objects and arrays of objects.
func Normalize(raw map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		if normalized, ok := normalizeValue(value); ok {
			out[key] = normalized
		}
	}
	return out
}

func normalizeValue(value interface{}) (interface{}, bool) {
	switch val := value.(type) {
	case nil:
		return nil, false
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return nil, false
		}
		return trimmed, true
	case map[string]interface{}:
		return Normalize(val), true
	case []interface{}:
		items := make([]interface{}, len(val))
		for i, item := range val {
			if nested, ok := item.(map[string]interface{}); ok {
				items[i] = Normalize(nested)
				continue
			}
			items[i] = item
		}
		return items, true
	default:
		return value, true
	}
}

func decodeField(key string, value interface{}, dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     dst,
		TagName:    "json",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(numericStringHook, integerHook),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]interface{}{key: value})
}

// numericStringHook accepts numbers sent as strings ("75.5", "4") for numeric targets.
// Every other cross-kind conversion is left to the decoder, which rejects it.
func numericStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	s, ok := data.(string)
	if !ok || from.Kind() != reflect.String {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected a number, got %q", s)
		}
		return f, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("expected an integer, got %q", s)
		}
		return f, nil
	}
	return data, nil
}

// integerHook rejects fractional JSON numbers for integer targets instead of truncating them
func integerHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if f, ok := data.(float64); ok && f != math.Trunc(f) {
			return nil, fmt.Errorf("expected an integer, got %v", f)
		}
	}
	return data, nil
}

// fieldPath drops the struct name from a validator namespace: CreateRoutine.exercises[0].name
// becomes exercises[0].name
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func rootField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

func translate(fe playground.FieldError, field string) FieldError {
	out := FieldError{Field: field}
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		out.Reason, out.Message = ReasonRequired, "is required"
	case "min":
		if isString {
			out.Reason, out.Message = ReasonTooShort, fmt.Sprintf("must be at least %s characters", fe.Param())
		} else {
			out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be at least %s", fe.Param())
		}
	case "max":
		if isString {
			out.Reason, out.Message = ReasonTooLong, fmt.Sprintf("must be at most %s characters", fe.Param())
		} else {
			out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "gt":
		out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be at least %s", fe.Param())
	case "lt":
		out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be less than %s", fe.Param())
	case "lte":
		out.Reason, out.Message = ReasonOutOfRange, fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		out.Reason, out.Message = ReasonInvalidEmail, "must be a valid email address"
	case "oneof":
		out.Reason, out.Message = ReasonInvalidEnum, "must be one of: "+strings.Join(strings.Fields(fe.Param()), ", ")
	case "date":
		out.Reason, out.Message = ReasonInvalidDate, "must be a valid date in YYYY-MM-DD format"
	case "clock":
		out.Reason, out.Message = ReasonInvalidTime, "must be a valid time in HH:MM or HH:MM:SS format"
	case "uuid", "uuid4":
		out.Reason, out.Message = ReasonInvalidUUID, "must be a valid UUID"
	case "phone":
		out.Reason, out.Message = ReasonInvalidPhone, fmt.Sprintf("must contain between %d and %d digits", minPhoneDigits, maxPhoneDigits)
	case "strong_password":
		out.Reason, out.Message = ReasonWeakPassword, "must be at least 8 characters and contain upper-case, lower-case and numeric characters"
	default:
		out.Reason, out.Message = ReasonInvalid, "is invalid"
	}
	return out
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time
func ParseDate(s string) (time.Time, error) {
	if !dateRegex.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Parse(DateLayout, s)
}

func isDate(fl playground.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

func isClock(fl playground.FieldLevel) bool {
	return clockRegex.MatchString(fl.Field().String())
}

func (v *Validator) isPhone(fl playground.FieldLevel) bool {
	return v.phones.IsValid(fl.Field().String())
}

func isStrongPassword(fl playground.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
