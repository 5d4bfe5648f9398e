package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/andywolf/stigmergy/internal/security"
)

// Override enumerates the descriptor fields a user may customize via
// configuration, per spec: binary, invocation template, auto-approve
// flags, and fallback.
type Override struct {
	Binary             string   `mapstructure:"binary"`
	InvocationTemplate string   `mapstructure:"invocation_template"`
	AutoApproveFlags   []string `mapstructure:"auto_approve_flags"`
	Fallback           string   `mapstructure:"fallback"`
	// AuthToken sets CliDescriptor.AuthToken, typically via a "secret://"
	// reference resolved by ResolveSecretRefs rather than as a plaintext
	// JWT sitting in the YAML config.
	AuthToken string `mapstructure:"auth_token"`
}

// Registry is the static, read-mostly table of CliDescriptors. It starts
// from the built-in table and is mutated only by an explicit config
// reload (Apply), never by any other component.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]CliDescriptor
}

// New creates a Registry seeded with the built-in descriptor table.
func New() *Registry {
	r := &Registry{descriptors: make(map[string]CliDescriptor, len(builtin))}
	for name, d := range builtin {
		r.descriptors[name] = d
	}
	return r
}

// Apply merges configuration overrides onto the current descriptor table.
// Unknown CLI names in overrides are ignored: the registry only customizes
// CLIs it already knows about, it does not learn new ones from config. An
// override whose Binary fails security.ValidateBinaryName (a path instead
// of a bare executable name, or one containing shell-meaningful characters)
// is skipped and reported rather than applied, since Override comes
// straight from a user-editable YAML file. Apply still applies every other
// valid override before returning the combined error.
func (r *Registry) Apply(overrides map[string]Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var invalid []string

	for name, o := range overrides {
		d, ok := r.descriptors[name]
		if !ok {
			continue
		}
		if o.Binary != "" {
			if err := security.ValidateBinaryName(o.Binary); err != nil {
				invalid = append(invalid, fmt.Sprintf("%s: %v", name, err))
			} else {
				d.Binary = o.Binary
			}
		}
		if o.InvocationTemplate != "" {
			d.InvocationTemplate = InvocationTemplate(o.InvocationTemplate)
		}
		if len(o.AutoApproveFlags) > 0 {
			d.AutoApproveFlags = o.AutoApproveFlags
		}
		if o.Fallback != "" {
			d.Fallback = o.Fallback
		}
		if o.AuthToken != "" {
			d.AuthToken = o.AuthToken
		}
		r.descriptors[name] = d
	}

	if len(invalid) > 0 {
		return fmt.Errorf("rejected registry overrides: %v", invalid)
	}
	return nil
}

// List returns all registered descriptors, sorted by name for deterministic
// iteration.
func (r *Registry) List() []CliDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.descriptors))
	for name := range r.descriptors {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]CliDescriptor, 0, len(names))
	for _, name := range names {
		out = append(out, r.descriptors[name])
	}
	return out
}

// Get returns the descriptor for name, or false if it is not registered.
func (r *Registry) Get(name string) (CliDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.descriptors[name]
	return d, ok
}

// FallbackOf returns the descriptor of name's configured fallback CLI, or
// false if none is configured or the fallback is itself unknown.
func (r *Registry) FallbackOf(name string) (CliDescriptor, bool) {
	r.mu.RLock()
	d, ok := r.descriptors[name]
	r.mu.RUnlock()
	if !ok || d.Fallback == "" {
		return CliDescriptor{}, false
	}
	return r.Get(d.Fallback)
}
