package ingest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized      = errors.New("Invalid admin secret")
	ErrNoBody            = errors.New("No file uploaded")
	ErrInvalidBody       = errors.New("Invalid request body")
	ErrNoFileContent     = errors.New("Could not extract file content")
	ErrUnsupportedFormat = errors.New("Unsupported file format. Use CSV, JSON, or XLSX.")
	ErrFormatUnavailable = errors.New("XLSX parsing is not available")
	ErrNoTools           = errors.New("No valid tools found in file")
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthorized
	KindBadRequest
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "Unauthorized"
	case KindBadRequest:
		return "Bad Request"
	case KindValidation:
		return "Validation Error"
	default:
		return "Internal server error"
	}
}

// Error is the terminal failure of an upload. Detail is safe to show to the
// admin caller; Rows lists per-row validation messages.
type Error struct {
	Kind   Kind
	Detail string
	Rows   []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Detail {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindBadRequest, KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error payload returned to callers.
func (e *Error) Body() map[string]any {
	body := map[string]any{
		"error":  e.Kind.String(),
		"detail": e.Detail,
	}
	if e.Kind == KindValidation {
		body["errors"] = e.Rows
	}
	return body
}

// ParseError reports content a format parser could not read.
type ParseError struct {
	Format string
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Invalid %s format: %s", e.Format, e.Detail)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func badRequest(err error) *Error {
	return &Error{Kind: KindBadRequest, Detail: err.Error(), Err: err}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Detail: err.Error(), Err: err}
}

// AsError classifies any error from the pipeline into an *Error.
func AsError(err error) *Error {
	var target *Error
	if errors.As(err, &target) {
		return target
	}
	return internal(err)
}
