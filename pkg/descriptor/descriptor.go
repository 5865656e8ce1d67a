// Package descriptor decomposes service URLs into a provider-agnostic
// structure. Parsing here is purely syntactic; whether a scheme is known
// or a field is required is decided later by the provider registry and
// request builder.
package descriptor

import (
	"fmt"
	"strings"
)

// Descriptor is the structured decomposition of a single service URL.
type Descriptor struct {
	// Scheme is the lowercased scheme token (the part before "://").
	Scheme string `json:"scheme"`
	// User is the userinfo username, percent-decoded. Empty when absent.
	User string `json:"user,omitempty"`
	// Password is the userinfo password, percent-decoded. Empty when absent.
	Password string `json:"password,omitempty"`
	// Host is the authority hostname. May legitimately be empty, or hold a
	// token rather than a hostname (e.g. faast://authtoken).
	Host string `json:"host,omitempty"`
	// Port is the explicit port, or 0 when the URL did not carry one.
	Port int `json:"port,omitempty"`
	// PathSegments are the non-empty, individually percent-decoded path
	// components in URL order.
	PathSegments []string `json:"path_segments,omitempty"`
	// Query holds the parsed query string. Keys are lowercased; a repeated
	// key keeps its last occurrence; a bare key parses as "true".
	Query map[string]string `json:"query,omitempty"`
	// Raw is the original input string, kept for error reporting.
	Raw string `json:"-"`
}

// QueryBool interprets the named query parameter as a boolean flag using
// the forgiving yes/no/on/off conventions download clients use. Returns
// def when the key is absent.
func (d *Descriptor) QueryBool(key string, def bool) bool {
	v, ok := d.Query[key]
	if !ok {
		return def
	}
	return ParseBool(v, def)
}

// Summary returns a short, credential-free description of the target,
// suitable for report lines and logs.
func (d *Descriptor) Summary() string {
	var b strings.Builder
	b.WriteString(d.Scheme)
	b.WriteString("://")
	if d.User != "" {
		b.WriteString(d.User)
		b.WriteString("@")
	}
	b.WriteString(d.Host)
	if d.Port > 0 {
		fmt.Fprintf(&b, ":%d", d.Port)
	}
	for _, seg := range d.PathSegments {
		b.WriteString("/")
		b.WriteString(seg)
	}
	return b.String()
}

// ParseBool converts the yes/no style strings used in service URLs and
// download-client settings into a boolean. Accepts variations such as
// "yes", "no", "on", "off", "true", "false", "0", "1", "enable",
// "disable", "deny" and "never". Returns def when the value is
// unrecognizable.
func ParseBool(arg string, def bool) bool {
	s := strings.ToLower(strings.TrimSpace(arg))
	if s == "" {
		return def
	}
	switch {
	case hasAnyPrefix(s, "de", "di", "ne", "f", "n", "of", "0"):
		return false
	case hasAnyPrefix(s, "al", "en", "t", "y", "on", "1", "ok"):
		return true
	}
	return def
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
