package apperr

import (
	"errors"
	"fmt"
)

// Kind groups failures by how a caller should react to them.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindUpstream    Kind = "upstream"
	KindTimeout     Kind = "timeout"
	KindPersistence Kind = "persistence"
	KindUnavailable Kind = "unavailable"
	KindInternal    Kind = "internal"
)

// Code is a sentinel identifying one failure of the relay.
type Code struct {
	name string
	kind Kind
}

func (c *Code) Error() string { return c.name }

// Kind returns the class the code belongs to.
func (c *Code) Kind() Kind { return c.kind }

func newCode(name string, kind Kind) *Code {
	return &Code{name: name, kind: kind}
}

var (
	ErrEmptyMessage   = newCode("empty message", KindValidation)
	ErrInvalidUpload  = newCode("invalid upload", KindValidation)
	ErrEmptyAudio     = newCode("empty audio", KindValidation)
	ErrUploadTooLarge = newCode("upload too large", KindValidation)

	ErrUploadFailed          = newCode("audio upload failed", KindUpstream)
	ErrJobCreationFailed     = newCode("transcription job creation failed", KindUpstream)
	ErrTranscriptionFailed   = newCode("transcription failed", KindUpstream)
	ErrCompletionUnavailable = newCode("completion unavailable", KindUpstream)
	ErrMalformedResponse     = newCode("malformed completion response", KindUpstream)
	ErrExtractionFailed      = newCode("document extraction failed", KindUpstream)

	ErrTranscriptionTimeout = newCode("transcription timeout", KindTimeout)

	ErrPersistenceFailed = newCode("persistence failed", KindPersistence)

	ErrTranscriptionDisabled = newCode("transcription not configured", KindUnavailable)
)

// Error pairs a Code with the underlying cause.
type Error struct {
	Code *Code
	Err  error
}

// New wraps cause under code. A nil cause is allowed.
func New(code *Code, cause error) *Error {
	return &Error{Code: code, Err: cause}
}

// Newf wraps a formatted message under code.
func Newf(code *Code, format string, args ...any) *Error {
	return &Error{Code: code, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code.name
	}
	return e.Code.name + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the code carried by e.
func (e *Error) Is(target error) bool {
	code, ok := target.(*Code)
	return ok && code == e.Code
}

// KindOf classifies err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code.kind
	}
	var code *Code
	if errors.As(err, &code) {
		return code.kind
	}
	return KindInternal
}

// CodeOf returns the code name of err, or "internal".
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code.name
	}
	var code *Code
	if errors.As(err, &code) {
		return code.name
	}
	return string(KindInternal)
}
