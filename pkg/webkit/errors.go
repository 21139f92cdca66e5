package webkit

import "errors"

var (
	ErrWindowNotInitialized = errors.New("webkit: window not initialized")
	ErrWindowDestroyed      = errors.New("webkit: window destroyed")
	ErrInvalidURL           = errors.New("webkit: invalid URL")
	ErrNotImplemented       = errors.New("webkit: not implemented in this build")
)
