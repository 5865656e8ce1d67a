package provider

import (
	"fmt"
	"strings"
)

// Request is the fully-resolved send request for one target. It is built
// once per service URL and never mutated after construction; adapters and
// report formatters treat it as read-only.
type Request struct {
	// Scheme is the alias the URL was written with (e.g. "xbmcs").
	Scheme string `json:"scheme"`
	// Provider is the canonical provider name (e.g. "xbmc").
	Provider string `json:"provider"`
	// Host and Port address the target service. Port is always resolved
	// (explicit, shorthand or default) unless the provider has no port.
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
	// User and Password are the resolved credentials.
	User     string `json:"user,omitempty"`
	Password string `json:"-"`
	// Secure is the resolved transport flag.
	Secure bool `json:"secure"`
	// VerifyTLS is false when the URL opted out with verify=no.
	VerifyTLS bool `json:"verify_tls"`
	// Recipients are provider-specific addressing tokens (device IDs,
	// channels, emails) in encounter order, duplicates preserved.
	Recipients []string `json:"recipients,omitempty"`
	// Path preserves the decoded URL path segments for providers that
	// address an endpoint rather than recipients (webhooks).
	Path []string `json:"path,omitempty"`
	// Fields carries every remaining canonical field (tokens, channel
	// names, smtp overrides, format switches...).
	Fields map[string]string `json:"fields,omitempty"`
}

// Field returns the named extra field, or "" when unset.
func (r *Request) Field(name string) string {
	return r.Fields[name]
}

// HasField reports whether the named extra field carries a value.
func (r *Request) HasField(name string) bool {
	return r.Fields[name] != ""
}

// Summary returns a short, credential-free description of the target for
// report lines and logs.
func (r *Request) Summary() string {
	var b strings.Builder
	b.WriteString(r.Scheme)
	b.WriteString("://")
	if r.User != "" {
		b.WriteString(r.User)
		b.WriteString("@")
	}
	b.WriteString(r.Host)
	if r.Port > 0 {
		fmt.Fprintf(&b, ":%d", r.Port)
	}
	return b.String()
}
