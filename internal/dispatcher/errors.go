package dispatcher

import "errors"

// Kind distinguishes the ways Execute can fail.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidMethod
	KindTransport
	KindBodyRead
)

func (k Kind) String() string {
	switch k {
	case KindInvalidMethod:
		return "invalid method"
	case KindTransport:
		return "transport error"
	case KindBodyRead:
		return "body read error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidMethod = errors.New("invalid method")
	ErrTransport     = errors.New("transport error")
	ErrBodyRead      = errors.New("body read error")
)

// Error is returned by Execute for every failure. Err holds the cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidMethod:
		return e.Kind == KindInvalidMethod
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrBodyRead:
		return e.Kind == KindBodyRead
	}
	return false
}

// KindOf reports the Kind of a dispatcher error anywhere in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
