// Package transport issues wire requests to the portal backend, classifying
// failures into a stable taxonomy and retrying transient ones with
// exponential backoff.
package transport

import (
	"errors"
	"fmt"
)

// Kind classifies a transport failure. It is assigned once at the transport
// boundary so downstream logic switches on a stable tag instead of matching
// substrings of human-readable messages.
type Kind int

// Failure kinds.
const (
	// KindTransient covers HTTP 5xx and generic network failures
	// (refused connections, DNS errors, resets). Retried with backoff.
	KindTransient Kind = iota + 1
	// KindPermission covers HTTP 401/403 and HTML/auth-page responses:
	// the deployment exists but is not publicly accessible.
	KindPermission
	// KindNotFound covers HTTP 404: the URL points at nothing.
	KindNotFound
	// KindBlocked covers TLS/handshake failures: something between the
	// client and the deployment refuses the connection outright.
	KindBlocked
	// KindParse covers responses that are neither valid JSON nor a
	// recognizable auth page.
	KindParse
	// KindOffline means the runtime reported no connectivity; no request
	// was attempted.
	KindOffline
	// KindTimeout means the per-request timeout elapsed. Fatal for the
	// in-flight call (the budget is generous), though callers may treat
	// it as a connectivity failure for queueing purposes.
	KindTimeout
)

// Human-actionable messages per kind. The UI renders these verbatim.
const (
	msgTransient  = "server error, please retry shortly"
	msgPermission = "permission error - set the deployment to be accessible by anyone"
	msgNotFound   = "script not found - check the backend URL"
	msgBlocked    = "connection blocked - check deployment visibility"
	msgParse      = "invalid server response"
	msgOffline    = "no network connection"
	msgTimeout    = "request timed out"
)

// Error is a classified transport failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an Error with the canonical message for kind.
func newError(kind Kind, err error) *Error {
	msg := msgParse
	switch kind {
	case KindTransient:
		msg = msgTransient
	case KindPermission:
		msg = msgPermission
	case KindNotFound:
		msg = msgNotFound
	case KindBlocked:
		msg = msgBlocked
	case KindParse:
		msg = msgParse
	case KindOffline:
		msg = msgOffline
	case KindTimeout:
		msg = msgTimeout
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the classification of err, or 0 if err did not come from
// this package.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return 0
}

// IsRetryable reports whether the executor retries this failure.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransient
}

// IsConnectivity reports whether the failure indicates the backend is
// unreachable (rather than misconfigured). Mutations safelisted for the
// offline queue enqueue on these instead of failing.
func IsConnectivity(err error) bool {
	switch KindOf(err) {
	case KindOffline, KindTimeout, KindTransient:
		return true
	default:
		return false
	}
}
