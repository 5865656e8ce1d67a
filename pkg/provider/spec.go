// Package provider defines the provider registry, the per-scheme provider
// specification, and the adapter interface every notification transport
// implements. It also builds the fully-resolved request handed to an
// adapter at send time.
package provider

// Field names the builder treats as canonical URL-derived values. Any
// other field name lives in Request.Fields.
const (
	FieldHost       = "host"
	FieldPort       = "port"
	FieldUser       = "user"
	FieldPassword   = "password"
	FieldSecure     = "secure"
	FieldRecipients = "recipients"
)

// HostShorthand maps a recognized host pattern onto connection defaults.
// The classic example is a well-known mail domain implying the SMTP
// relay, port and security mode. Expansion is pure data: a shorthand
// never overwrites a field the URL supplied explicitly.
type HostShorthand struct {
	// HostSuffix matches when the descriptor host equals the suffix or
	// ends with "." + suffix.
	HostSuffix string `json:"host_suffix" koanf:"host_suffix"`
	// Fields are the canonical field defaults to fill in when absent.
	Fields map[string]string `json:"fields" koanf:"fields"`
}

// Spec describes one provider's URL dialect. Specs are registered once at
// process start and are immutable afterward; a single Spec may claim
// several scheme aliases (e.g. "xbmc", "xbmcs", "kodi", "kodis").
type Spec struct {
	// Name is the canonical provider name.
	Name string
	// Aliases are every scheme token resolving to this spec.
	Aliases []string
	// SecureAliases is the subset of Aliases that imply secure transport.
	// Aliases not listed here fall back to SecureDefault.
	SecureAliases []string
	// DefaultPort is applied when the URL carries no port. Zero means the
	// provider has no port concept.
	DefaultPort int
	// SecurePort optionally replaces DefaultPort when the resolved scheme
	// is secure (e.g. 80 vs 443 style pairs).
	SecurePort int
	// SecureDefault is the secure flag for aliases outside SecureAliases.
	SecureDefault bool
	// RequiredFields are canonical field names that must have a value
	// after the builder merges URL structure, query and shorthand.
	RequiredFields []string
	// FieldSynonyms maps query keys onto canonical field names, e.g.
	// "pass" -> "password", "device" -> "recipients".
	FieldSynonyms map[string]string
	// RecipientsFromPath appends every URL path segment to the recipient
	// list. Providers that use the path for tokens instead (slack,
	// telegram) leave this false and consume Request.Fields themselves.
	RecipientsFromPath bool
	// Shorthand is the host-pattern defaulting table.
	Shorthand []HostShorthand
	// Normalize optionally rewrites the raw URL before parsing. Used for
	// dialects that are not valid generic URLs, such as telegram bot
	// tokens carrying a colon.
	Normalize func(raw string) string
}

// IsSecureAlias reports the secure flag implied by resolving this spec
// through the given (already lowercased) alias.
func (s *Spec) IsSecureAlias(alias string) bool {
	for _, a := range s.SecureAliases {
		if a == alias {
			return true
		}
	}
	return s.SecureDefault
}

// expandShorthand returns the defaults matching host, or nil.
func (s *Spec) expandShorthand(host string) map[string]string {
	for _, sh := range s.Shorthand {
		if host == sh.HostSuffix || hasDomainSuffix(host, sh.HostSuffix) {
			return sh.Fields
		}
	}
	return nil
}

func hasDomainSuffix(host, suffix string) bool {
	return len(host) > len(suffix)+1 &&
		host[len(host)-len(suffix)-1] == '.' &&
		host[len(host)-len(suffix):] == suffix
}
