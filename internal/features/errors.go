package features

import (
	"fmt"
	"strings"
)

// FieldError is a validation failure attributable to one request field.
type FieldError interface {
	error
	Field() string
	Type() string
}

// MissingRequiredFeatureError is returned when a required feature is absent or null.
type MissingRequiredFeatureError struct {
	Name string
}

func (e *MissingRequiredFeatureError) Error() string {
	return fmt.Sprintf("%s: field required", e.Name)
}

func (e *MissingRequiredFeatureError) Field() string { return e.Name }
func (e *MissingRequiredFeatureError) Type() string  { return "missing" }

// TypeMismatchError is returned when a value cannot be coerced to the feature's kind.
type TypeMismatchError struct {
	Name     string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Name, e.Expected, e.Got)
}

func (e *TypeMismatchError) Field() string { return e.Name }

func (e *TypeMismatchError) Type() string {
	if e.Expected == KindInt.String() {
		return "int_parsing"
	}
	return "float_parsing"
}

// ValidationErrors collects every field violation of one request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid prediction request: " + strings.Join(msgs, "; ")
}

// Fields returns the offending field names in order.
func (v ValidationErrors) Fields() []string {
	names := make([]string, len(v))
	for i, e := range v {
		names[i] = e.Field()
	}
	return names
}

// OnlyMissing reports whether the violations are exactly "required field
// missing" for each of names and nothing else.
func (v ValidationErrors) OnlyMissing(names ...string) bool {
	if len(v) != len(names) {
		return false
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	for _, e := range v {
		missing, ok := e.(*MissingRequiredFeatureError)
		if !ok || !want[missing.Name] {
			return false
		}
		delete(want, missing.Name)
	}
	return len(want) == 0
}
