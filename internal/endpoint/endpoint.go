// Package endpoint resolves and normalizes the backend deployment URL.
// Users habitually paste the editor URL of their deployment (ending in /edit
// or /dev); only the /exec form is invocable, so every URL entering the
// client is normalized before use or persistence.
package endpoint

import (
	"net"
	"net/url"
	"strings"

	"github.com/hanzihome/portal/internal/storage"
)

// ExecSuffix is the canonical invocable path suffix for a deployment.
const ExecSuffix = "/exec"

// editSuffixes are path suffixes that identify a non-invocable deployment URL.
var editSuffixes = []string{"/edit", "/dev"}

// Resolver determines the active backend URL from persisted state,
// falling back to a compiled-in default.
type Resolver struct {
	store    storage.Store
	fallback string
}

// New creates a Resolver backed by store with the given default URL.
func New(store storage.Store, fallback string) *Resolver {
	return &Resolver{store: store, fallback: fallback}
}

// URL returns the active backend URL in normalized form.
// Returns "" when neither a persisted URL nor a default is configured;
// callers must treat "" as not configured and skip network calls.
func (r *Resolver) URL() string {
	if v := r.store.Get(storage.KeyBackendURL); v != "" {
		return Normalize(v)
	}
	return Normalize(r.fallback)
}

// Save normalizes raw, persists it, and returns the normalized value.
// An empty input is persisted as empty (explicit de-configuration).
func (r *Resolver) Save(raw string) (string, error) {
	normalized := Normalize(raw)
	if err := r.store.Set(storage.KeyBackendURL, normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// Clear removes the persisted URL, reverting URL() to the default.
func (r *Resolver) Clear() error {
	return r.store.Delete(storage.KeyBackendURL)
}

// Normalize rewrites raw into its canonical invocable form:
// https scheme enforced (plain http is allowed only for loopback hosts,
// so a local stub backend stays reachable), query and fragment stripped,
// a trailing /edit or /dev segment rewritten to /exec, and any trailing
// slash removed. Empty input normalizes to empty.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		// Not parseable as a URL; best effort on the raw string.
		return strings.TrimSuffix(raw, "/")
	}
	if u.Scheme != "http" || !isLoopback(u.Hostname()) {
		u.Scheme = "https"
	}
	u.RawQuery = ""
	u.Fragment = ""

	path := strings.TrimSuffix(u.Path, "/")
	for _, suffix := range editSuffixes {
		if strings.HasSuffix(path, suffix) {
			path = strings.TrimSuffix(path, suffix) + ExecSuffix
			break
		}
	}
	u.Path = path

	return strings.TrimSuffix(u.String(), "/")
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
