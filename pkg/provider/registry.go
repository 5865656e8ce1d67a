package provider

import (
	"sort"
	"strings"
	"sync"

	"github.com/kart-io/notifycast/pkg/errors"
	"github.com/kart-io/notifycast/pkg/logger"
)

// Binding is the result of resolving a scheme: the owning spec, its
// adapter, and the secure flag implied by the particular alias used.
// Secure variants ("xbmcs://") share a spec with their insecure
// counterpart; the flag is threaded here at resolution time rather than
// through a second copy of the spec.
type Binding struct {
	Scheme  string
	Spec    *Spec
	Adapter Adapter
	Secure  bool
}

// Registry maps scheme aliases onto provider bindings. It is an
// explicitly constructed instance, filled during process initialization
// and read-only afterward, which makes unsynchronized concurrent reads
// safe by convention; the mutex only guards against racy registration.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]*Binding
	logger   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard
	}
	return &Registry{
		bindings: make(map[string]*Binding),
		logger:   log,
	}
}

// Register binds every alias of the spec to the adapter. Re-registering
// an existing alias replaces it — last registration wins — so host
// applications can override built-in providers. Registration order never
// affects resolution.
func (r *Registry) Register(spec *Spec, adapter Adapter) error {
	if spec == nil || adapter == nil {
		return errors.New(errors.CodeInvalidConfiguration, "spec and adapter must be non-nil")
	}
	if spec.Name == "" || len(spec.Aliases) == 0 {
		return errors.New(errors.CodeInvalidConfiguration, "spec requires a name and at least one alias")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alias := range spec.Aliases {
		normalized := strings.ToLower(strings.TrimSpace(alias))
		if normalized == "" {
			continue
		}
		r.bindings[normalized] = &Binding{
			Scheme:  normalized,
			Spec:    spec,
			Adapter: adapter,
			Secure:  spec.IsSecureAlias(normalized),
		}
		r.logger.Debug("provider registered", "scheme", normalized, "provider", spec.Name)
	}
	return nil
}

// Resolve looks up the binding for a scheme token, matched
// case-insensitively. Fails with CodeUnsupportedScheme when no provider
// claims the scheme.
func (r *Registry) Resolve(scheme string) (*Binding, error) {
	normalized := strings.ToLower(strings.TrimSpace(scheme))

	r.mu.RLock()
	binding, ok := r.bindings[normalized]
	r.mu.RUnlock()

	if !ok {
		return nil, errors.Newf(errors.CodeUnsupportedScheme,
			"%q is not a supported service scheme", scheme).WithScheme(normalized)
	}
	return binding, nil
}

// Schemes returns every registered scheme alias, sorted.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemes := make([]string, 0, len(r.bindings))
	for scheme := range r.bindings {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}
