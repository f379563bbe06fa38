package service

import "errors"

// ErrorKind classifies the degraded paths of the widget. None of them is
// fatal: callers fall back to a neutral value and may inspect the kind.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindStorageUnavailable
	KindNoCurrentIteration
	KindCookieUnsupported
	KindOther
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindStorageUnavailable:
		return "storage_unavailable"
	case KindNoCurrentIteration:
		return "no_current_iteration"
	case KindCookieUnsupported:
		return "cookie_unsupported"
	default:
		return "other"
	}
}

var (
	ErrStorageUnavailable = errors.New("extension data storage unavailable")
	ErrNoCurrentIteration = errors.New("no current iteration")
	ErrCookieUnsupported  = errors.New("cookies not supported")
)

// KindOf returns the kind of err, KindNone for nil.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	case errors.Is(err, ErrNoCurrentIteration):
		return KindNoCurrentIteration
	case errors.Is(err, ErrCookieUnsupported):
		return KindCookieUnsupported
	default:
		return KindOther
	}
}
