package settings

import (
	"errors"
	"fmt"
)

// Kind classifies failures crossing the fetch, store, version and package boundaries.
type Kind int

const (
	KindUnknown Kind = iota
	KindHostNotFound
	KindTransport
	KindContent
	KindStoreWrite
	KindVersionRead
	KindPackage
)

// String returns the kind name used in logs and metrics labels
func (k Kind) String() string {
	switch k {
	case KindHostNotFound:
		return "host_not_found"
	case KindTransport:
		return "transport"
	case KindContent:
		return "content"
	case KindStoreWrite:
		return "store_write"
	case KindVersionRead:
		return "version_read"
	case KindPackage:
		return "package"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Key is set for store errors.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

// NewError creates a classified error for the given operation
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Key != "" {
		msg = fmt.Sprintf("%s %q", msg, e.Key)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s error", msg, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
