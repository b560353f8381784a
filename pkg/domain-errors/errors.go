// Package domainerrors carries coded errors from services to the transport
// layer. A code names the failure class; an optional field names the request
// input that caused it.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Codes are part of the public JSON contract.
type Code string

const (
	CodeValidation           Code = "validation_error"
	CodeBadRequest           Code = "bad_request"
	CodeInvalidSiteID        Code = "invalid_site_id"
	CodeMissingConfig        Code = "missing_config"
	CodeRemoteCall           Code = "remote_call_failed"
	CodeIdentityMismatch     Code = "identity_mismatch"
	CodeCreateNoIdentifier   Code = "create_no_identifier"
	CodeAttributeWrite       Code = "attribute_write_failed"
	CodeNoExistingAccount    Code = "no_existing_account"
	CodeDirectoryUnavailable Code = "directory_unavailable"
	CodeInternal             Code = "internal_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewField creates a coded error attributed to a request field.
func NewField(code Code, field, message string) *Error {
	return &Error{Code: code, Message: message, Field: field}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the first coded error in the chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// FieldOf returns the offending field name, if any.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}

// MessageOf returns the client-safe message. Uncoded errors never leak their
// text.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "Something went wrong"
}
