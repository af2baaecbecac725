package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorCode string

const (
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationError  ErrorCode = "VALIDATION_ERROR"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported     ErrorCode = "NOT_SUPPORTED"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// Unit-level failures of the stub engine. Each one aborts the current
	// source unit only.
	CodeMalformedSignature ErrorCode = "MALFORMED_SIGNATURE"
	CodeArityMismatch      ErrorCode = "SIGNATURE_ARITY_MISMATCH"
	CodeUnresolvedTypes    ErrorCode = "UNRESOLVED_TYPES"
	CodeMalformedSource    ErrorCode = "MALFORMED_SOURCE"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxSymbol    = "symbol"
	CtxSignature = "signature"
	CtxTypes     = "types"
	CtxLine      = "line"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key to err, promoting plain errors to internal
// domain errors.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// MalformedSignature reports a grammar violation in a signature string.
func MalformedSignature(signature string, reason string) error {
	return (&DomainError{
		Code:    CodeMalformedSignature,
		Message: reason,
	}).WithContext(CtxSignature, signature)
}

// ArityMismatch reports a callable whose parameter names and signature
// types do not line up.
func ArityMismatch(symbol string, names, types int) error {
	return (&DomainError{
		Code:    CodeArityMismatch,
		Message: fmt.Sprintf("parameter names and types don't match: %s (%d names, %d types)", symbol, names, types),
	}).WithContext(CtxSymbol, symbol)
}

// UnresolvedTypes lists every type name that could not be attributed to
// any provenance.
func UnresolvedTypes(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return (&DomainError{
		Code:    CodeUnresolvedTypes,
		Message: "unknown types: " + strings.Join(sorted, ", "),
	}).WithContext(CtxTypes, sorted)
}

// Names returns the unresolved type names carried by err, if any.
func Names(err error) []string {
	var de *DomainError
	if !errors.As(err, &de) || de.Code != CodeUnresolvedTypes {
		return nil
	}
	names, _ := de.Context[CtxTypes].([]string)
	return names
}

// MalformedSource reports a source unit the parser could not read.
func MalformedSource(line int, reason string) error {
	return (&DomainError{
		Code:    CodeMalformedSource,
		Message: reason,
	}).WithContext(CtxLine, line)
}
