// Package domainerrors defines the typed error taxonomy shared by services and
// transport. Services return these; transport maps the Code to a status.
package domainerrors

import (
	"errors"
	"fmt"
	"maps"
)

// Code classifies an error for translation at the edge.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeBusinessRule Code = "business_rule_violation"
	CodeNotFound     Code = "not_found"
	CodeRateLimited  Code = "rate_limited"
	CodeUnavailable  Code = "service_unavailable"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error carrying a Code, a client-facing message and, for
// validation failures, the offending fields.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error. A nil err yields nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// NewValidation builds a CodeValidation error listing every faulty field.
func NewValidation(msg string, fields map[string]string) error {
	return &Error{Code: CodeValidation, Message: msg, Fields: maps.Clone(fields)}
}

// WithFields returns a copy of err with the field map merged in. Non-domain
// errors are wrapped as CodeValidation.
func WithFields(err error, fields map[string]string) error {
	if err == nil {
		return nil
	}
	var de *Error
	if !errors.As(err, &de) {
		return NewValidation(err.Error(), fields)
	}
	merged := maps.Clone(de.Fields)
	if merged == nil {
		merged = make(map[string]string, len(fields))
	}
	maps.Copy(merged, fields)
	return &Error{Code: de.Code, Message: de.Message, Fields: merged, Err: de.Err}
}

// HasCode reports whether the outermost domain error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// Is reports whether err is a domain error with the given code.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of the outermost domain error, CodeInternal otherwise.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldsOf returns the validation fields attached to err, if any.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// MessageOf returns the client-facing message of a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
