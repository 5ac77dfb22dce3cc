package validation

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field describes one validated attribute of T.
type Field[T any] struct {
	Name     string
	Required bool
	Present  func(T) bool
}

// Present computes which fields of v are set.
func Present[T any](fields []Field[T], v T) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Present(v) {
			set[f.Name] = true
		}
	}
	return set
}

// RequireFields adds one RequiredField error per mandatory field missing
// from present. All missing fields are reported.
func RequireFields[T any](b *Batch, fields []Field[T], present map[string]bool) bool {
	ok := true
	for _, f := range fields {
		if f.Required && !present[f.Name] {
			ok = b.Add(RequiredField(f.Name))
		}
	}
	return ok
}

// Text marks a string field present when non-empty.
func Text[T any](get func(T) string) func(T) bool {
	return func(v T) bool { return get(v) != "" }
}

// ID marks a reference field present when non-zero.
func ID[T any](get func(T) int64) func(T) bool {
	return func(v T) bool { return get(v) != 0 }
}

// CheckLength verifies the rune count of value lies within r.
func CheckLength(b *Batch, field, value string, r Range) bool {
	if r.Contains(utf8.RuneCountInString(value)) {
		return true
	}
	return b.Add(InvalidLength(field, r))
}

// CheckEmail verifies the address shape. Deliverability is not checked.
func CheckEmail(b *Batch, email string) bool {
	if validate.Var(email, "required,email") == nil {
		return true
	}
	return b.Add(InvalidEmail())
}

// CheckPattern adds fe unless value matches re.
func CheckPattern(b *Batch, re *regexp.Regexp, value string, fe *FieldError) bool {
	if re.MatchString(value) {
		return true
	}
	return b.Add(fe)
}
