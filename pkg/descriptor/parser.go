package descriptor

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/kart-io/notifycast/pkg/errors"
)

// schemeDelimiter separates the scheme token from the rest of the URL.
const schemeDelimiter = "://"

// Parse decomposes a single service URL of the form
//
//	scheme://[user[:password]@]host[:port][/segment...][?key=value&...]
//
// into a Descriptor. The scheme is matched case-insensitively and stored
// lowercased. Hash marks following a slash are treated as literal channel
// tokens (pushbullet/slack style) rather than fragment delimiters.
//
// Parse fails with CodeMalformedURL when the scheme delimiter is absent,
// the scheme token is empty or carries invalid characters, a percent
// escape is broken, or the port is not a number in the 1-65535 range.
func Parse(raw string) (*Descriptor, error) {
	trimmed := strings.TrimSpace(raw)
	idx := strings.Index(trimmed, schemeDelimiter)
	if idx < 0 {
		return nil, errors.Newf(errors.CodeMalformedURL,
			"missing %q delimiter in %q", schemeDelimiter, raw)
	}

	scheme := strings.ToLower(strings.TrimSpace(trimmed[:idx]))
	if !validScheme(scheme) {
		return nil, errors.Newf(errors.CodeMalformedURL, "invalid scheme token in %q", raw)
	}

	// Channel tokens are given as "/#name"; escape them so the hash is not
	// read as a fragment delimiter.
	rest := strings.ReplaceAll(trimmed[idx+len(schemeDelimiter):], "/#", "/%23")

	d := &Descriptor{
		Scheme: scheme,
		Query:  map[string]string{},
		Raw:    raw,
	}

	// Split off the query string.
	var qs string
	if qIdx := strings.Index(rest, "?"); qIdx >= 0 {
		qs = rest[qIdx+1:]
		rest = rest[:qIdx]
	}

	// Split authority from path.
	authority := rest
	var path string
	if pIdx := strings.Index(rest, "/"); pIdx >= 0 {
		authority = rest[:pIdx]
		path = rest[pIdx+1:]
	}

	if err := parseAuthority(d, authority); err != nil {
		return nil, err
	}
	if err := parsePath(d, path); err != nil {
		return nil, err
	}
	if err := parseQuery(d, qs); err != nil {
		return nil, err
	}
	return d, nil
}

// parseAuthority fills user, password, host and port from the
// "[user[:password]@]host[:port]" section.
func parseAuthority(d *Descriptor, authority string) error {
	hostport := authority
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		userinfo := authority[:at]
		hostport = authority[at+1:]

		user := userinfo
		if colon := strings.Index(userinfo, ":"); colon >= 0 {
			user = userinfo[:colon]
			password, err := unescape(d, userinfo[colon+1:])
			if err != nil {
				return err
			}
			d.Password = password
		}
		decoded, err := unescape(d, user)
		if err != nil {
			return err
		}
		d.User = decoded
	}

	host := hostport
	if colon := strings.LastIndex(hostport, ":"); colon >= 0 {
		port, err := strconv.Atoi(hostport[colon+1:])
		if err != nil || port < 1 || port > 65535 {
			return errors.Newf(errors.CodeMalformedURL,
				"invalid port %q in %q", hostport[colon+1:], d.Raw)
		}
		d.Port = port
		host = hostport[:colon]
	}

	decoded, err := unescape(d, host)
	if err != nil {
		return err
	}
	d.Host = strings.TrimSpace(decoded)
	return nil
}

// parsePath splits the path on "/", percent-decodes each segment and
// discards empties.
func parsePath(d *Descriptor, path string) error {
	if path == "" {
		return nil
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		decoded, err := unescape(d, seg)
		if err != nil {
			return err
		}
		if decoded = strings.TrimSpace(decoded); decoded != "" {
			d.PathSegments = append(d.PathSegments, decoded)
		}
	}
	return nil
}

// parseQuery parses "key=value&..." pairs. Keys are lowercased and the
// last occurrence of a repeated key wins. A key without "=" is recorded
// as a boolean-true flag.
func parseQuery(d *Descriptor, qs string) error {
	if qs == "" {
		return nil
	}
	for _, pair := range strings.Split(qs, "&") {
		if pair == "" {
			continue
		}
		key, value := pair, "true"
		if eq := strings.Index(pair, "="); eq >= 0 {
			key = pair[:eq]
			decoded, err := unescape(d, pair[eq+1:])
			if err != nil {
				return err
			}
			value = decoded
		}
		decodedKey, err := unescape(d, key)
		if err != nil {
			return err
		}
		decodedKey = strings.ToLower(strings.TrimSpace(decodedKey))
		if decodedKey == "" {
			continue
		}
		d.Query[decodedKey] = value
	}
	return nil
}

func unescape(d *Descriptor, s string) (string, error) {
	decoded, err := url.QueryUnescape(strings.ReplaceAll(s, "+", "%2B"))
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeMalformedURL,
			"invalid percent escape in %q", d.Raw)
	}
	return decoded, nil
}

// validScheme reports whether the token conforms to scheme syntax:
// a letter followed by letters, digits, "+", "-" or ".".
func validScheme(scheme string) bool {
	if scheme == "" {
		return false
	}
	for i, r := range scheme {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
