// Package transport executes wire requests against the backend deployment:
// per-attempt timeouts, doubling-backoff retries of transient failures, and
// a typed error taxonomy produced once at this boundary so callers switch
// on kinds instead of parsing strings.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Defaults for the executor.
const (
	// DefaultTimeout bounds a single attempt. The backend is a spreadsheet
	// deployment and cold invocations are slow, hence the generous budget.
	DefaultTimeout = 25 * time.Second
	// DefaultMaxAttempts is the retry budget (first attempt included).
	DefaultMaxAttempts = 3
	// DefaultBaseBackoff is the wait before the first retry; it doubles
	// on each subsequent retry.
	DefaultBaseBackoff = 500 * time.Millisecond

	maxResponseBytes = 4 << 20
)

// Request is a single wire operation.
type Request struct {
	Method string     // http.MethodGet or http.MethodPost
	Action string     // backend operation name
	Params url.Values // GET query parameters
	Body   any        // POST payload (JSON-encoded into {action, payload})
}

// Client executes portal requests with per-attempt timeouts and
// exponential-backoff retries of transient failures.
type Client struct {
	HTTP        *http.Client
	Timeout     time.Duration
	MaxAttempts int
	BaseBackoff time.Duration

	// Online, when set, is consulted before every attempt; a false return
	// fails fast with KindOffline and no backoff is wasted on a machine
	// that knows it has no network.
	Online func() bool
}

// New creates a Client with default executor settings.
func New() *Client {
	return &Client{
		HTTP:        &http.Client{},
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// Get issues a read: GET base?action=<action>&t=<unixms>&params.
// The t parameter defeats any intermediary response caching.
func (c *Client) Get(ctx context.Context, base, action string, params url.Values) (*Envelope, error) {
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("action", action)
	q.Set("t", strconv.FormatInt(time.Now().UnixMilli(), 10))

	return c.execute(ctx, base, Request{Method: http.MethodGet, Action: action, Params: q})
}

// Post issues a mutation: POST base with body {"action":..., "payload":...}.
// The body is sent as text/plain so the original browser deployment avoids
// a CORS preflight; the backend parses it as JSON regardless.
func (c *Client) Post(ctx context.Context, base, action string, payload any) (*Envelope, error) {
	return c.execute(ctx, base, Request{Method: http.MethodPost, Action: action, Body: payload})
}

// execute runs the retry loop around a single logical request.
func (c *Client) execute(ctx context.Context, base string, req Request) (*Envelope, error) {
	target, body, err := c.build(base, req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := range c.maxAttempts() {
		if c.Online != nil && !c.Online() {
			return nil, newError(KindOffline, nil)
		}
		if attempt > 0 {
			// Doubling backoff: base, 2*base, 4*base, ...
			delay := c.baseBackoff() << (attempt - 1)
			if sleepErr := sleep(ctx, delay); sleepErr != nil {
				return nil, sleepErr
			}
		}

		env, attemptErr := c.attempt(ctx, req.Method, target, body)
		if attemptErr == nil {
			return env, nil
		}
		lastErr = attemptErr
		if !IsRetryable(attemptErr) {
			return nil, attemptErr
		}
	}
	return nil, lastErr
}

// build resolves the target URL and pre-encodes the POST body so every
// retry sends identical bytes.
func (c *Client) build(base string, req Request) (string, []byte, error) {
	if base == "" {
		return "", nil, errors.New("transport: empty base URL")
	}
	target := base

	switch req.Method {
	case http.MethodGet:
		if req.Params != nil {
			target += "?" + req.Params.Encode()
		}
		return target, nil, nil
	case http.MethodPost:
		body, err := json.Marshal(map[string]any{
			"action":  req.Action,
			"payload": req.Body,
		})
		if err != nil {
			return "", nil, fmt.Errorf("marshal request: %w", err)
		}
		return target, body, nil
	default:
		return "", nil, fmt.Errorf("transport: unsupported method %s", req.Method)
	}
}

// attempt issues one HTTP request within the per-attempt timeout and
// classifies the outcome.
func (c *Client) attempt(ctx context.Context, method, target string, body []byte) (*Envelope, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if method == http.MethodPost {
		httpReq.Header.Set("Content-Type", "text/plain;charset=utf-8")
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return nil, c.classifyRequestError(ctx, attemptCtx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, newError(KindTransient, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return parseEnvelope(raw)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, newError(KindPermission, fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		return nil, newError(KindNotFound, fmt.Errorf("http %d", resp.StatusCode))
	case resp.StatusCode >= 500:
		return nil, newError(KindTransient, fmt.Errorf("http %d", resp.StatusCode))
	default:
		return nil, newError(KindParse, fmt.Errorf("unexpected http %d", resp.StatusCode))
	}
}

// classifyRequestError maps a failed round trip onto the taxonomy.
func (c *Client) classifyRequestError(parent, attempt context.Context, err error) error {
	// Caller cancellation propagates untouched.
	if parent.Err() != nil {
		return parent.Err()
	}
	// The per-attempt deadline elapsed: the budget is generous, so a
	// timeout is raised as fatal rather than retried.
	if attempt.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindTimeout, err)
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthErr x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthErr) {
		return newError(KindBlocked, err)
	}

	// Refused connections, DNS failures, resets: transient.
	return newError(KindTransient, err)
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Client) maxAttempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return DefaultMaxAttempts
}

func (c *Client) baseBackoff() time.Duration {
	if c.BaseBackoff > 0 {
		return c.BaseBackoff
	}
	return DefaultBaseBackoff
}
