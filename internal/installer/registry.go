package installer

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	deverrors "devutils/internal/errors"
)

// Registry indexes installers by name and alias.
type Registry struct {
	byName map[string]*Installer
	names  []string
}

// NewRegistry builds a registry from installers.
func NewRegistry(installers ...*Installer) *Registry {
	r := &Registry{byName: make(map[string]*Installer)}
	for _, inst := range installers {
		r.Register(inst)
	}
	return r
}

// Default returns the registry of every built-in installer.
func Default() *Registry {
	return NewRegistry(BalenaEtcher, DBeaver, Docker, Git, Terraform, Vim, VLC, YtDlp)
}

// Register adds inst under its name and aliases. Later registrations win.
func (r *Registry) Register(inst *Installer) {
	key := strings.ToLower(inst.Name)
	if _, exists := r.byName[key]; !exists {
		r.names = append(r.names, inst.Name)
		sort.Strings(r.names)
	}
	r.byName[key] = inst
	for _, alias := range inst.Aliases {
		r.byName[strings.ToLower(alias)] = inst
	}
}

// Lookup finds an installer by name or alias, ignoring case.
func (r *Registry) Lookup(name string) (*Installer, error) {
	if inst, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return inst, nil
	}
	return nil, errors.Wrapf(deverrors.ErrUnknownTool, "%q", name)
}

// Names returns the canonical installer names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// All returns the installers in name order.
func (r *Registry) All() []*Installer {
	out := make([]*Installer, 0, len(r.names))
	for _, n := range r.names {
		out = append(out, r.byName[strings.ToLower(n)])
	}
	return out
}
