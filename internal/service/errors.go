package service

import "errors"

var (
	// ErrNotFound signals a missing document, tag, or association. Mapped to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrFileTooLarge signals an upload over the configured ceiling. Mapped to 413.
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	// ErrReaderNil signals a programming error at the call site.
	ErrReaderNil = errors.New("reader is nil")
)

// ValidationError reports malformed or disallowed input detected before any
// side effect. Mapped to 400; Reason is safe to return to clients.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErr(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
