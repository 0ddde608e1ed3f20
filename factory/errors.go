package factory

import "errors"

// Kind discriminates contract failures.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidIdentity
	KindNotInitialized
	KindAlreadyInitialized
	KindTemplateLookupFailed
	KindInvalidSalt
	KindAddressEncodingFailed
	KindInvalidMessage
	KindStorage
)

var kindNames = [...]string{
	KindUnknown:               "unknown",
	KindInvalidIdentity:       "invalid identity",
	KindNotInitialized:        "not initialized",
	KindAlreadyInitialized:    "already initialized",
	KindTemplateLookupFailed:  "template lookup failed",
	KindInvalidSalt:           "invalid salt",
	KindAddressEncodingFailed: "address encoding failed",
	KindInvalidMessage:        "invalid message",
	KindStorage:               "storage error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Error is returned by every contract entry point. Err carries the
// underlying cause, if any.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* values below work
// with errors.Is regardless of the wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidIdentity       = &Error{Kind: KindInvalidIdentity}
	ErrNotInitialized        = &Error{Kind: KindNotInitialized}
	ErrAlreadyInitialized    = &Error{Kind: KindAlreadyInitialized}
	ErrTemplateLookupFailed  = &Error{Kind: KindTemplateLookupFailed}
	ErrInvalidSalt           = &Error{Kind: KindInvalidSalt}
	ErrAddressEncodingFailed = &Error{Kind: KindAddressEncodingFailed}
	ErrInvalidMessage        = &Error{Kind: KindInvalidMessage}
	ErrStorage               = &Error{Kind: KindStorage}
)

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of a contract error, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
