package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kinds of validation failure. Every FieldError unwraps to exactly one of
// these, possibly through one of the more specific sentinels below.
var (
	ErrRequiredField       = errors.New("required field")
	ErrRepeatedUniqueField = errors.New("repeated unique field")
	ErrForeignKey          = errors.New("foreign key")
	ErrInvalidLength       = errors.New("invalid length")
	ErrInvalidValue        = errors.New("invalid value")
	ErrDeleteForeignKey    = errors.New("delete foreign key")
)

var (
	ErrRepeatedEmail        = fmt.Errorf("%w: email", ErrRepeatedUniqueField)
	ErrRepeatedUsername     = fmt.Errorf("%w: username", ErrRepeatedUniqueField)
	ErrRepeatedLocationName = fmt.Errorf("%w: location description", ErrRepeatedUniqueField)
	ErrRepeatedItemName     = fmt.Errorf("%w: item description", ErrRepeatedUniqueField)
	ErrRepeatedUsage        = fmt.Errorf("%w: usage start date", ErrRepeatedUniqueField)

	ErrInvalidEmail    = fmt.Errorf("%w: email", ErrInvalidValue)
	ErrInvalidUsername = fmt.Errorf("%w: username", ErrInvalidValue)
	ErrItemInUse       = fmt.Errorf("%w: item in use", ErrInvalidValue)
	ErrItemNotInUse    = fmt.Errorf("%w: item not in use", ErrInvalidValue)
)

// Range is an inclusive length bound.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) Contains(n int) bool { return n >= r.Min && n <= r.Max }

// FieldError is a single validation failure tied to a field or, for
// deletion rules, to the name of a referencing relationship.
type FieldError struct {
	field string
	code  string
	msg   string
	kind  error
	rng   *Range
}

func (e *FieldError) Error() string { return e.msg }
func (e *FieldError) Unwrap() error { return e.kind }

// Field returns the offending field or relationship name.
func (e *FieldError) Field() string { return e.field }

// Code is a short machine readable name such as "required" or "repeated_email".
func (e *FieldError) Code() string { return e.code }

// Range returns the allowed bound for length errors.
func (e *FieldError) Range() (Range, bool) {
	if e.rng == nil {
		return Range{}, false
	}
	return *e.rng, true
}

func (e *FieldError) MarshalJSON() ([]byte, error) {
	out := struct {
		Field   string `json:"field"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Min     *int   `json:"min,omitempty"`
		Max     *int   `json:"max,omitempty"`
	}{Field: e.field, Code: e.code, Message: e.msg}
	if e.rng != nil {
		out.Min, out.Max = &e.rng.Min, &e.rng.Max
	}
	return json.Marshal(out)
}

func RequiredField(field string) *FieldError {
	return &FieldError{field: field, code: "required", kind: ErrRequiredField,
		msg: field + " is required"}
}

func RepeatedUniqueField(field string) *FieldError {
	return &FieldError{field: field, code: "repeated", kind: ErrRepeatedUniqueField,
		msg: field + " is repeated"}
}

func RepeatedEmail() *FieldError {
	return &FieldError{field: "email", code: "repeated_email", kind: ErrRepeatedEmail,
		msg: "E-mail address is repeated"}
}

func RepeatedUsername() *FieldError {
	return &FieldError{field: "username", code: "repeated_username", kind: ErrRepeatedUsername,
		msg: "Username is repeated"}
}

func RepeatedLocationName() *FieldError {
	return &FieldError{field: "description", code: "repeated_location_name", kind: ErrRepeatedLocationName,
		msg: "Location name repeated"}
}

func RepeatedItemName() *FieldError {
	return &FieldError{field: "description", code: "repeated_item_name", kind: ErrRepeatedItemName,
		msg: "Item name repeated"}
}

func RepeatedUsage() *FieldError {
	return &FieldError{field: "start_date", code: "repeated_usage", kind: ErrRepeatedUsage,
		msg: "Item was already used today"}
}

func ForeignKey(field string) *FieldError {
	return &FieldError{field: field, code: "foreign_key", kind: ErrForeignKey,
		msg: "Foreign key " + field + " doesn't exist"}
}

func InvalidLength(field string, r Range) *FieldError {
	return &FieldError{field: field, code: "invalid_length", kind: ErrInvalidLength, rng: &r,
		msg: fmt.Sprintf("%s length must be between %d and %d", field, r.Min, r.Max)}
}

func InvalidValue(field string) *FieldError {
	return &FieldError{field: field, code: "invalid_value", kind: ErrInvalidValue,
		msg: field + " value is invalid"}
}

func InvalidEmail() *FieldError {
	return &FieldError{field: "email", code: "invalid_email", kind: ErrInvalidEmail,
		msg: "Invalid e-mail address"}
}

func InvalidUsername() *FieldError {
	return &FieldError{field: "username", code: "invalid_username", kind: ErrInvalidUsername,
		msg: "username must be made of lowercase letters, digits and underscores"}
}

func ItemInUse() *FieldError {
	return &FieldError{field: "usage", code: "item_in_use", kind: ErrItemInUse,
		msg: "Item is already in use"}
}

func ItemNotInUse() *FieldError {
	return &FieldError{field: "usage", code: "item_not_in_use", kind: ErrItemNotInUse,
		msg: "Item is not in use"}
}

// DeleteForeignKey reports that relationship still references the entity
// being deleted.
func DeleteForeignKey(relationship string) *FieldError {
	return &FieldError{field: relationship, code: "delete_foreign_key", kind: ErrDeleteForeignKey,
		msg: "There's still some " + relationship + " referencing this"}
}

// Exception carries every error accumulated by one operation.
type Exception struct {
	Errors []*FieldError
}

func (e *Exception) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Unwrap exposes the batch so errors.Is matches any contained kind.
func (e *Exception) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// AsException extracts the *Exception from err's chain.
func AsException(err error) (*Exception, bool) {
	var ex *Exception
	if errors.As(err, &ex) {
		return ex, true
	}
	return nil, false
}
