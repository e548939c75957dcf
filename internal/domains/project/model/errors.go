package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrInvalidProject   = errors.New("invalid project")
	ErrPinLimitExceeded = errors.New("pin limit exceeded")
	ErrInvalidProjectID = errors.New("invalid project id")
)

// Error codes returned in the response envelope.
const (
	CodeProjectNotFound  = "PROJECT_NOT_FOUND"
	CodeValidationError  = "VALIDATION_ERROR"
	CodeDecodeError      = "DECODE_ERROR"
	CodePinLimitExceeded = "PIN_LIMIT_EXCEEDED"
)

// Issue is a single failed rule. Field uses the wire path, e.g. features[0].imageAlt.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a request or aggregate broke.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Issues: []Issue{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.Field+": "+is.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProject }

// PinLimitError is returned when pinning would exceed the global cap.
type PinLimitError struct {
	Pinned int `json:"pinned"`
	Limit  int `json:"limit"`
}

func (e *PinLimitError) Error() string {
	return fmt.Sprintf("pin limit exceeded: %d of %d projects already pinned", e.Pinned, e.Limit)
}

func (e *PinLimitError) Unwrap() error { return ErrPinLimitExceeded }

// FromValidation converts ozzo-validation errors into a *ValidationError.
// Internal rule errors and non-validation errors are returned unchanged.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		var single validation.Error
		if errors.As(err, &single) {
			return NewValidationError("", single.Error())
		}
		return err
	}

	out := &ValidationError{}
	flatten("", errs, out)
	sort.Slice(out.Issues, func(i, j int) bool { return out.Issues[i].Field < out.Issues[j].Field })
	return out
}

func flatten(prefix string, errs validation.Errors, out *ValidationError) {
	for key, err := range errs {
		if err == nil {
			continue
		}
		field := joinField(prefix, key)
		var nested validation.Errors
		if errors.As(err, &nested) {
			flatten(field, nested, out)
			continue
		}
		out.Issues = append(out.Issues, Issue{Field: field, Message: err.Error()})
	}
}

func joinField(prefix, key string) string {
	if key != "" && strings.Trim(key, "0123456789") == "" {
		return prefix + "[" + key + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
