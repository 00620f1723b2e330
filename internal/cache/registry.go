package cache

// DefaultResourceTypes returns the resource type names registered when the
// configuration doesn't override them.
func DefaultResourceTypes() []string {
	return []string{
		"paintoppresets",
		"brushes",
		"gradients",
		"palettes",
		"patterns",
		"workspaces",
		"layerstyles",
	}
}

// TypeRegistry holds the authoritative list of resource type names. The
// resource_types lookup table is filled from it at schema creation and is
// immutable afterwards.
type TypeRegistry struct {
	names []string
	seen  map[string]bool
}

// NewTypeRegistry creates a registry with the given names, deduplicated,
// preserving first-occurrence order.
func NewTypeRegistry(names ...string) *TypeRegistry {
	r := &TypeRegistry{seen: make(map[string]bool)}
	for _, n := range names {
		r.Register(n)
	}
	return r
}

// Register adds a name to the registry. Duplicates and empty names are ignored.
func (r *TypeRegistry) Register(name string) {
	if name == "" || r.seen[name] {
		return
	}
	r.seen[name] = true
	r.names = append(r.names, name)
}

// Names returns the registered names in registration order.
func (r *TypeRegistry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Contains reports whether a name is registered.
func (r *TypeRegistry) Contains(name string) bool {
	return r.seen[name]
}
