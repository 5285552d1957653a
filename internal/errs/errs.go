// Package errs defines the domain error taxonomy shared by all services.
// Handlers map the kind to an HTTP status; services never import net/http.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: a referenced session/order/product/variant/invoice does not exist.
	KindNotFound
	// KindConflict: duplicate open session, duplicate register code, etc.
	KindConflict
	// KindInvalidState: operation against a session/invoice not in the required state.
	KindInvalidState
	// KindInsufficient: stock shortfall, insufficient till cash, insufficient tendered cash.
	KindInsufficient
	// KindValidation: malformed input that passed transport binding but fails domain rules.
	KindValidation
)

// Error is a domain error carrying its taxonomy kind.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func Insufficient(format string, args ...any) error {
	return &Error{Kind: KindInsufficient, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind from err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
