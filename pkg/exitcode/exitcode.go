// Package exitcode provides standardized exit codes for rgd
package exitcode

import "errors"

// Exit codes for the rgd CLI
const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2
	ValidationError   = 3
	FileSystemError   = 4
	IntegrityMismatch = 5
	UnsupportedFormat = 8
	UsageError        = 64
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case IntegrityMismatch:
		return "Integrity mismatch"
	case UnsupportedFormat:
		return "Unsupported format"
	case UsageError:
		return "Usage error"
	default:
		return "Unknown error"
	}
}

// Error attaches an exit code to an error returned by a command.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// WithCode wraps err so that Code(err) reports code. A nil err stays nil.
func WithCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// Code extracts the exit code carried by err, GeneralError when none is
// attached and Success for nil.
func Code(err error) int {
	if err == nil {
		return Success
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return GeneralError
}
