package randomworld

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per concern. Callers should use errors.Is against
// these rather than matching on message text.
var (
	ErrStore      = errors.New("store")
	ErrNCM        = errors.New("ncm")
	ErrCP         = errors.New("cp")
	ErrMartingale = errors.New("martingale")
	ErrIO         = errors.New("io")
)

// Wrapper annotates a sentinel error with a message, preserving errors.Is
// matching against kind.
func Wrapper(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}
