package provider

import (
	"sort"
	"strconv"

	"github.com/kart-io/notifycast/pkg/descriptor"
	"github.com/kart-io/notifycast/pkg/errors"
)

// builtinSynonyms are honored for every provider: credentials may always
// be supplied inline as query parameters, superseding userinfo values.
var builtinSynonyms = map[string]string{
	"user":     FieldUser,
	"pass":     FieldPassword,
	"password": FieldPassword,
	"secure":   FieldSecure,
}

// Build merges a parsed descriptor with the resolved provider spec into
// an immutable Request.
//
// Precedence, strictest first:
//  1. explicit query parameters (a "user=" query value supersedes a
//     userinfo-derived user)
//  2. values positionally derived from the URL (userinfo, host, port,
//     path segments)
//  3. host shorthand expansion (fills absent fields only)
//  4. spec defaults (port, secure flag)
//
// Build fails with CodeMissingRequiredField when a field listed in the
// spec's RequiredFields still has no value after all four stages.
func Build(desc *descriptor.Descriptor, binding *Binding) (*Request, error) {
	spec := binding.Spec
	req := &Request{
		Scheme:    binding.Scheme,
		Provider:  spec.Name,
		Host:      desc.Host,
		Port:      desc.Port,
		User:      desc.User,
		Password:  desc.Password,
		Secure:    binding.Secure,
		VerifyTLS: desc.QueryBool("verify", true),
		Fields:    make(map[string]string),
	}

	if len(desc.PathSegments) > 0 {
		req.Path = append(req.Path, desc.PathSegments...)
	}

	// Stage 2: positional recipients from the path.
	if spec.RecipientsFromPath {
		for _, seg := range desc.PathSegments {
			req.Recipients = append(req.Recipients, descriptor.SplitList(seg)...)
		}
	}

	// Whether the URL itself pinned the secure flag (secure alias or an
	// explicit secure= parameter). Shorthand must not override either.
	_, secureParam := desc.Query[FieldSecure]
	secureExplicit := secureParam || aliasListed(spec.SecureAliases, binding.Scheme)

	// Stage 1: query parameters. Keys are walked in sorted order so that
	// recipient accumulation from several synonym keys is deterministic.
	if err := applyQuery(req, desc, spec); err != nil {
		return nil, err
	}

	// Stage 3: shorthand expansion, a pure function of (host, declared
	// fields). Explicitly supplied fields are never overwritten.
	applyShorthand(req, spec, secureExplicit)

	// Stage 4: spec defaults.
	if req.Port == 0 {
		if req.Secure && spec.SecurePort > 0 {
			req.Port = spec.SecurePort
		} else {
			req.Port = spec.DefaultPort
		}
	}

	if err := checkRequired(req, spec); err != nil {
		return nil, err
	}
	return req, nil
}

func applyQuery(req *Request, desc *descriptor.Descriptor, spec *Spec) error {
	keys := make([]string, 0, len(desc.Query))
	for k := range desc.Query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if key == "verify" {
			continue // already captured as VerifyTLS
		}
		value := desc.Query[key]

		canonical, ok := spec.FieldSynonyms[key]
		if !ok {
			if canonical, ok = builtinSynonyms[key]; !ok {
				canonical = key
			}
		}

		switch canonical {
		case FieldHost:
			req.Host = value
		case FieldUser:
			req.User = value
		case FieldPassword:
			req.Password = value
		case FieldSecure:
			req.Secure = descriptor.ParseBool(value, req.Secure)
		case FieldPort:
			port, err := strconv.Atoi(value)
			if err != nil || port < 1 || port > 65535 {
				return errors.Newf(errors.CodeMalformedURL,
					"invalid port parameter %q", value).WithScheme(req.Scheme)
			}
			req.Port = port
		case FieldRecipients:
			req.Recipients = append(req.Recipients, descriptor.SplitList(value)...)
		default:
			req.Fields[canonical] = value
		}
	}
	return nil
}

func applyShorthand(req *Request, spec *Spec, secureExplicit bool) {
	defaults := spec.expandShorthand(req.Host)
	if defaults == nil {
		return
	}
	for field, value := range defaults {
		switch field {
		case FieldUser:
			if req.User == "" {
				req.User = value
			}
		case FieldPassword:
			if req.Password == "" {
				req.Password = value
			}
		case FieldPort:
			if req.Port == 0 {
				if port, err := strconv.Atoi(value); err == nil {
					req.Port = port
				}
			}
		case FieldSecure:
			if !secureExplicit {
				req.Secure = descriptor.ParseBool(value, req.Secure)
			}
		default:
			if req.Fields[field] == "" {
				req.Fields[field] = value
			}
		}
	}
}

func checkRequired(req *Request, spec *Spec) error {
	for _, field := range spec.RequiredFields {
		missing := false
		switch field {
		case FieldHost:
			missing = req.Host == ""
		case FieldUser:
			missing = req.User == ""
		case FieldPassword:
			missing = req.Password == ""
		case FieldPort:
			missing = req.Port == 0
		case FieldRecipients:
			missing = len(req.Recipients) == 0
		default:
			missing = req.Fields[field] == ""
		}
		if missing {
			return errors.Newf(errors.CodeMissingRequiredField,
				"%s:// requires a %s value", req.Scheme, field).WithScheme(req.Scheme)
		}
	}
	return nil
}

func aliasListed(aliases []string, alias string) bool {
	for _, a := range aliases {
		if a == alias {
			return true
		}
	}
	return false
}
