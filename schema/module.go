package schema

import "fmt"

// Revision is one `revision` statement on a Module.
type Revision struct {
	Date string // ISO date string; "" is a valid, distinct revision
	Description string
}

// Import records a module this Module imports, establishing a prefix that
// must resolve to it: every referenced prefix resolves to an imports entry
// or the module's own prefix.
type Import struct {
	ModuleName string
	Prefix string
	RevisionDate string
	Module *Module // weak; populated once the imported module is loaded
}

// Include records a submodule this Module includes via `belongs-to`.
type Include struct {
	SubmoduleName string
	RevisionDate string
	Submodule *Module // weak
}

// Feature is a named `if-feature` gate. Enabled is resolved
// state, not parse-time state: a feature starts disabled until the worklist
// resolves its own (possibly chained) if-feature expression and the
// context's feature set says it is turned on.
type Feature struct {
	Name string
	Module *Module
	Status Status
	IfFeatures []string
	enabled bool
	resolved bool
}

// Identity is a named identity statement. Base names the parent
// identity this one derives from (weak, nil until resolved); Derived is the
// maintained back-link list of every identity that (transitively) derives
// from this one, populated by the resolver exactly as it discovers them.
type Identity struct {
	Name string
	Module *Module
	Status Status
	BaseName string
	Base *Identity // weak
	Derived []*Identity // weak back-links, resolver-maintained
	resolving bool // cycle-detection sentinel, see ResolveIdentityBase
}

// PrefixedName returns "prefix:name" for id using its owning module's
// prefix, the key identities are looked up by across module boundaries.
func (id *Identity) PrefixedName() string {
	if id.Module == nil {
		return id.Name
	}
	return fmt.Sprintf("%s:%s", id.Module.Prefix, id.Name)
}

// DerivesFrom reports whether id is other or transitively derives from
// other, by walking id's Base chain (used to validate identityref values).
func (id *Identity) DerivesFrom(other *Identity) bool {
	for cur := id; cur != nil; cur = cur.Base {
		if cur == other {
			return true
		}
	}
	return false
}

// Grouping is a named, reusable subtree. PendingUses is the dependency
// counter UnresSchema's grouping pre-phase maintains: the count of
// not-yet-resolved `uses` statements nested anywhere within this grouping's
// own subtree.
type Grouping struct {
	Node *SchemaNode // Kind == KindGrouping
	Name string
	Module *Module
	PendingUses int32
}

// Module is the root container for one module or submodule. The same
// struct represents both; IsSubmodule and BelongsTo distinguish them.
type Module struct {
	Name string
	Namespace string
	Prefix string
	Revisions []Revision // newest first

	Imports []*Import
	Includes []*Include

	Typedefs []*Typedef
	Identities []*Identity
	Features []*Feature
	Groupings []*Grouping

	// DataNodes are the module's own top-level schema children (owned).
	DataNodes []*SchemaNode
	RPCs []*SchemaNode
	Notifs []*SchemaNode

	Augments []*Augment
	Deviations []*Deviation

	// IsSubmodule and BelongsTo implement the submodule/belongs-to
	// relationship: a submodule's top-level entities are semantically merged
	// into the parent for lookup but retain origin.
	IsSubmodule bool
	BelongsTo *Module // weak; nil unless IsSubmodule

	// Implemented marks the at-most-one "implement" conformance module per
	// name; all other revisions of the same name are "import".
	Implemented bool

	ctx *Context
}

// FullName returns "name@revision" using the newest revision, or bare name
// if no revision is recorded.
func (m *Module) FullName() string {
	if len(m.Revisions) == 0 || m.Revisions[0].Date == "" {
		return m.Name
	}
	return fmt.Sprintf("%s@%s", m.Name, m.Revisions[0].Date)
}

// Revision returns the newest revision date, or "" if none was declared.
func (m *Module) Revision() string {
	if len(m.Revisions) == 0 {
		return ""
	}
	return m.Revisions[0].Date
}

// EffectiveModule returns m.BelongsTo for a submodule, or m itself
// otherwise.
func (m *Module) EffectiveModule() *Module {
	if m.IsSubmodule && m.BelongsTo != nil {
		return m.BelongsTo
	}
	return m
}

// ConformanceType reports "implement" or "import" for ietf-yang-library
// reporting.
func (m *Module) ConformanceType() string {
	if m.Implemented {
		return "implement"
	}
	return "import"
}

// ResolvePrefix resolves a YANG prefix to the Module it denotes, searching
// m's own prefix first, then its imports. Returns nil if unresolved.
func (m *Module) ResolvePrefix(prefix string) *Module {
	if prefix == "" || prefix == m.Prefix {
		return m
	}
	for _, imp := range m.Imports {
		if imp.Prefix == prefix {
			return imp.Module
		}
	}
	if m.IsSubmodule && m.BelongsTo != nil {
		return m.BelongsTo.ResolvePrefix(prefix)
	}
	return nil
}

// FindTypedef searches m's own typedefs (and, if m is a submodule, its
// belongs-to parent is searched by the caller walking lexical scope
// separately) for name.
func (m *Module) FindTypedef(name string) *Typedef {
	for _, td := range m.Typedefs {
		if td.Name == name {
			return td
		}
	}
	return nil
}

// FindFeature searches m's own features for name.
func (m *Module) FindFeature(name string) *Feature {
	for _, f := range m.Features {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindGrouping searches m's own groupings for name.
func (m *Module) FindGrouping(name string) *Grouping {
	for _, g := range m.Groupings {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// FindIdentity searches m's own identities for name.
func (m *Module) FindIdentity(name string) *Identity {
	for _, id := range m.Identities {
		if id.Name == name {
			return id
		}
	}
	return nil
}

// AllGroupingsInScope returns every grouping visible from within m,
// including those of included submodules: lexical scope for `uses`.
func (m *Module) AllGroupingsInScope() []*Grouping {
	var out []*Grouping
	out = append(out, m.Groupings...)
	for _, inc := range m.Includes {
		if inc.Submodule != nil {
			out = append(out, inc.Submodule.Groupings...)
		}
	}
	return out
}
