package llm

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies provider failures for the retry and rotation layers.
type ErrorKind int

const (
	// KindUnavailable covers server errors, network failures and anything
	// the vendor SDK did not explain.
	KindUnavailable ErrorKind = iota
	// KindRateLimited is an HTTP 429. The key should rest before reuse.
	KindRateLimited
	// KindEmpty means the call succeeded but carried no text.
	KindEmpty
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindEmpty:
		return "empty reply"
	default:
		return "unavailable"
	}
}

// Error is returned by every Provider in this package.
type Error struct {
	Kind       ErrorKind
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := e.Provider + ": " + e.Kind.String()
	if e.Provider == "" {
		msg = "llm: " + e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err. ok is false for errors that did not come
// from a provider, such as context cancellation.
func KindOf(err error) (kind ErrorKind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsRateLimited reports whether err is an HTTP 429 from a provider.
func IsRateLimited(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindRateLimited
}

// fromStatus maps a vendor HTTP status to an *Error.
func fromStatus(provider string, status int, err error) *Error {
	if status == http.StatusTooManyRequests {
		return &Error{Kind: KindRateLimited, Provider: provider, Err: err}
	}
	return &Error{Kind: KindUnavailable, Provider: provider, Err: err}
}

func emptyReply(provider string) *Error {
	return &Error{Kind: KindEmpty, Provider: provider, Err: fmt.Errorf("no text in response")}
}
