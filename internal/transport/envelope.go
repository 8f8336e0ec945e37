package transport

import (
	"encoding/json"
	"strings"
)

// Envelope status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the decoded shape of every backend response:
// {"status":"success"|"error","message":...,...operation fields}.
// Operation-specific fields stay raw; callers decode them with Decode.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`

	raw json.RawMessage
}

// OK reports whether the backend signaled success.
func (e *Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// Decode unmarshals the full response body (including operation-specific
// fields) into v.
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.raw, v)
}

// Raw returns the full response body.
func (e *Envelope) Raw() json.RawMessage {
	return e.raw
}

// parseEnvelope turns a raw response body into a structured Envelope.
// A body that fails to decode is inspected: an HTML/auth page means the
// deployment is not publicly accessible (a fixable configuration problem,
// surfaced as such); anything else is an opaque parse failure.
func parseEnvelope(body []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		if looksLikeHTML(body) {
			return nil, newError(KindPermission, nil)
		}
		return nil, newError(KindParse, err)
	}
	e.raw = json.RawMessage(body)
	return &e, nil
}

// looksLikeHTML reports whether body appears to be an HTML page - typically
// a login or error page returned instead of the JSON API response.
func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body)))
	if len(head) > 256 {
		head = head[:256]
	}
	return strings.HasPrefix(head, "<!doctype") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<title>sign in") ||
		strings.Contains(head, "accounts.google.com")
}
