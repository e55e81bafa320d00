package room

import (
	"errors"
	"fmt"

	"github.com/musicroom/musicroom/internal/identity"
	"github.com/musicroom/musicroom/internal/repository"
)

// Kind classifies an orchestrator failure. The request layer maps kinds to
// transport-specific outcomes; the orchestrator never panics or retries
// outside the documented self-healing paths.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNotFound: unknown room or user id.
	KindNotFound
	// KindForbidden: a non-owner attempted an owner-only action.
	KindForbidden
	// KindInvalid: malformed input, e.g. a rating outside {-1,+1}.
	KindInvalid
	// KindPrecondition: the operation's stated precondition does not hold,
	// e.g. starting an empty room or advancing one never started.
	KindPrecondition
	// KindAuthExpired: the identity provider rejected the caller's token.
	KindAuthExpired
	// KindExternal: the recommendation engine, streaming catalog or message
	// bus failed or answered with an unexpected shape.
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalid:
		return "invalid_argument"
	case KindPrecondition:
		return "precondition_failed"
	case KindAuthExpired:
		return "authentication_expired"
	case KindExternal:
		return "external_service_error"
	default:
		return "internal"
	}
}

// Error is the discriminated failure every orchestrator operation returns.
// Op names the failing operation, Err carries the cause chain.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a classified error.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from an error chain; unclassified errors are
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// coerce wraps an error crossing the orchestrator boundary, classifying
// store sentinels and provider token failures. Already-classified errors
// pass through untouched so the innermost classification wins.
func coerce(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return E(KindNotFound, op, err)
	case errors.Is(err, identity.ErrTokenExpired):
		return E(KindAuthExpired, op, err)
	}
	return E(KindUnknown, op, err)
}
