package core

import "errors"

// Error kinds surfaced by every domain operation. Callers wrap them with
// context (fmt.Errorf("%w: ...")) and match with errors.Is.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Stable kind labels for logs, metrics and transport encoding.
const (
	KindInvalidInput     = "invalid_input"
	KindDuplicate        = "duplicate"
	KindNotFound         = "not_found"
	KindInvalidOperation = "invalid_operation"
	KindInternal         = "internal"
)

// ErrorKind classifies err into one of the Kind* labels. A nil error
// returns the empty string.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	default:
		return KindInternal
	}
}
