// Package validation holds client-side validation failures. They are shown
// next to the offending field and block submission.
package validation

import (
	"errors"
	"strings"
)

// Error is a single field failure
type Error struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects field failures
type Errors []Error

// Add appends a field failure
func (e *Errors) Add(field, message string) {
	*e = append(*e, Error{Field: field, Message: message})
}

// Required records a failure when value is blank
func (e *Errors) Required(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, message)
	}
}

// Any reports whether any failure was recorded
func (e Errors) Any() bool {
	return len(e) > 0
}

// Err returns nil when empty so callers can return it directly
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Error())
	}
	return strings.Join(parts, "; ")
}

// Fields groups messages by field for the JSON response
func (e Errors) Fields() map[string][]string {
	out := make(map[string][]string, len(e))
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// As extracts validation failures from err
func As(err error) (Errors, bool) {
	var errs Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	var single Error
	if errors.As(err, &single) {
		return Errors{single}, true
	}
	return nil, false
}
