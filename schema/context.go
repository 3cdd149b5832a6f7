package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/derekparker/trie"

	"github.com/yangcore/yangcore/diag"
)

// moduleKey uniquely identifies a loaded module or submodule by name and
// revision: names are unique within a context but multiple revisions of
// the same name may coexist.
type moduleKey struct {
	name string
	revision string
}

// Context is the root container owning a set of Modules and a string
// interning table. A Context is single-threaded: callers must not share one
// across goroutines without external synchronization.
type Context struct {
	modules map[moduleKey]*Module
	byName map[string]*Module // newest revision per bare name
	byNS map[string]*Module
	searchDirs []string

	dict *dictionary
	logger *diag.Logger
	featureConfig map[string][]string

	// pathIndex maps a fully-resolved schema path ("/mod:a/mod:b/...") to
	// its SchemaNode. Entries are added through RegisterPath; ResolveAugment
	// registers each augment target it splices into, and rejects an augment
	// child whose name duplicates an existing child with DuplicateId.
	pathIndex *trie.Trie

	moduleSetID int64

	mu sync.Mutex
}

// Options configures NewContext.
type Options struct {
	SearchDirs []string
	LogLevel diag.Level
	// Features lists, per module name, which of that module's features the
	// caller enables; a module absent from the map has every one of its
	// features enabled by default (goyang's own --features flag is the
	// same "allow list per module, default all" shape).
	Features map[string][]string
}

// NewContext creates a Context preloaded with ietf-inet-types,
// ietf-yang-types, ietf-yang-library, and the built-in YANG module. Each
// entry of opts.SearchDirs is converted to an absolute path; a
// non-existent directory produces a System diagnostic and NewContext
// returns nil, consuming no further directories after the first failure —
// callers that want best-effort loading should call AddSearchDir
// individually instead.
func NewContext(opts Options) (*Context, *diag.Diagnostic) {
	ctx := &Context{
		modules: map[moduleKey]*Module{},
		byName: map[string]*Module{},
		byNS: map[string]*Module{},
		dict: newDictionary(),
		logger: diag.NewLogger(opts.LogLevel),
		pathIndex: trie.New(),
		featureConfig: opts.Features,
	}
	for _, d := range opts.SearchDirs {
		if dg := ctx.AddSearchDir(d); dg != nil {
			return nil, dg
		}
	}
	preloadBuiltins(ctx)
	return ctx, nil
}

// AddSearchDir appends dir (converted to an absolute path) to the ordered
// search-path list module loading walks; earlier entries win on collision.
// A non-existent directory is a System diagnostic.
func (c *Context) AddSearchDir(dir string) *diag.Diagnostic {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return diag.New(diag.System, diag.VecodeNone, "cannot resolve search directory %q: %v", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return diag.New(diag.System, diag.VecodeNone, "search directory %q does not exist", abs)
	}
	c.searchDirs = append(c.searchDirs, abs)
	return nil
}

// SearchDirs returns the ordered search-path list.
func (c *Context) SearchDirs() []string {
	return append([]string(nil), c.searchDirs...)
}

// Logger returns the Context's logger, used to install a log callback.
func (c *Context) Logger() *diag.Logger { return c.logger }

// featureConfigEnabled reports whether the caller's configuration enables
// feature name within mod: a module never named in the map has every
// feature enabled; a module that is named only enables the features
// explicitly listed for it.
func (c *Context) featureConfigEnabled(mod *Module, name string) bool {
	if c.featureConfig == nil {
		return true
	}
	list, ok := c.featureConfig[mod.Name]
	if !ok {
		return true
	}
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

// ModuleSetID returns the Context's monotonically-assigned integer,
// stringified for ietf-yang-library's module-set-id leaf. It is bumped on
// every successful module load rather than derived from module content.
func (c *Context) ModuleSetID() string {
	return fmt.Sprintf("%d", atomic.LoadInt64(&c.moduleSetID))
}

// AddModule registers m, keyed by (name, revision). It is an error to add a
// second "implemented" module of the same name.
func (c *Context) AddModule(m *Module) *diag.Diagnostic {
	key := moduleKey{name: m.Name, revision: m.Revision()}
	bucket := c.modules
	if m.IsSubmodule {
		key.name = m.Name // submodules share the same keyspace by name+revision
	}
	if existing, ok := bucket[key]; ok {
		return diag.New(diag.Validation, diag.VecodeDuplicateID,
			"duplicate module %s@%s (previously loaded from %p)", m.Name, key.revision, existing)
	}
	if m.Implemented {
		for k, other := range c.modules {
			if k.name == m.Name && other.Implemented {
				return diag.New(diag.Validation, diag.VecodeDuplicateID,
					"module %s is already implemented at revision %s", m.Name, k.revision)
			}
		}
	}
	bucket[key] = m
	m.ctx = c
	if prev, ok := c.byName[m.Name]; !ok || m.Revision() > prev.Revision() {
		c.byName[m.Name] = m
	}
	if m.Namespace != "" && !m.IsSubmodule {
		c.byNS[m.Namespace] = m
	}
	atomic.AddInt64(&c.moduleSetID, 1)
	return nil
}

// GetModule returns the module named name, optionally pinned to revision.
// An empty revision returns the newest loaded revision.
func (c *Context) GetModule(name, revision string) *Module {
	if revision == "" {
		return c.byName[name]
	}
	return c.modules[moduleKey{name: name, revision: revision}]
}

// GetModuleByNS returns the module whose namespace is ns.
func (c *Context) GetModuleByNS(ns, revision string) *Module {
	m := c.byNS[ns]
	if m == nil || revision == "" || m.Revision() == revision {
		return m
	}
	return c.GetModule(m.Name, revision)
}

// GetSubmodule returns the submodule named name.
func (c *Context) GetSubmodule(name, revision string) *Module {
	m := c.GetModule(name, revision)
	if m != nil && m.IsSubmodule {
		return m
	}
	return nil
}

// Modules returns every loaded module (not submodules), for iteration.
func (c *Context) Modules() []*Module {
	seen := map[*Module]bool{}
	var out []*Module
	for _, m := range c.modules {
		if !m.IsSubmodule && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// OlderRevision returns the next-older loaded revision of m's module name,
// or nil if m is the oldest (or only) revision loaded.
func (c *Context) OlderRevision(m *Module) *Module {
	var best *Module
	for _, other := range c.modules {
		if other.IsSubmodule || other.Name != m.Name || other == m {
			continue
		}
		if other.Revision() >= m.Revision() {
			continue
		}
		if best == nil || other.Revision() > best.Revision() {
			best = other
		}
	}
	return best
}

// RegisterPath indexes path (a fully-resolved schema-nodeid string) against
// node so GetNode and augment-collision detection can find it.
func (c *Context) RegisterPath(path string, node *SchemaNode) {
	c.pathIndex.Add(path, node)
}

// GetNode resolves a JSON-schema-nodeid lookup, absolute when start is nil.
func (c *Context) GetNode(start *SchemaNode, path string) (*SchemaNode, *diag.Diagnostic) {
	if start == nil {
		if n, ok := c.pathIndex.Find(path); ok {
			if node, ok := n.Meta().(*SchemaNode); ok {
				return node, nil
			}
		}
		return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "no such node: %s", path)
	}
	full := buildPath(start) + path
	if n, ok := c.pathIndex.Find(full); ok {
		if node, ok := n.Meta().(*SchemaNode); ok {
			return node, nil
		}
	}
	return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "no such node: %s (relative to %s)", path, buildPath(start))
}

// CollidingAugmentTargets returns every previously-registered path that
// shares path as a strict prefix, used to detect duplicate augment/unique
// targets landing on the same node.
func (c *Context) CollidingAugmentTargets(path string) []string {
	return c.pathIndex.PrefixSearch(path)
}

// preloadBuiltins registers the four modules a fresh context always starts
// with. Their textual definitions would ordinarily come from the YIN/YANG
// parser front-end; here each is constructed directly as a partially-built
// Module with just enough structure (namespace, prefix, revision) to
// satisfy lookups and Info() reporting.
func preloadBuiltins(c *Context) {
	builtins := []*Module{
		builtinYANG(),
		builtinInetTypes(),
		builtinYangTypes(),
		builtinYangLibrary(),
	}
	for _, m := range builtins {
		m.Implemented = true
		_ = c.AddModule(m)
	}
}

func builtinYANG() *Module {
	return &Module{
		Name: "yang",
		Namespace: "urn:ietf:params:xml:ns:yang:1",
		Prefix: "yang",
		Revisions: []Revision{{Date: "2017-02-20"}},
	}
}

func builtinInetTypes() *Module {
	return &Module{
		Name: "ietf-inet-types",
		Namespace: "urn:ietf:params:xml:ns:yang:ietf-inet-types",
		Prefix: "inet",
		Revisions: []Revision{{Date: "2013-07-15"}},
	}
}

func builtinYangTypes() *Module {
	return &Module{
		Name: "ietf-yang-types",
		Namespace: "urn:ietf:params:xml:ns:yang:ietf-yang-types",
		Prefix: "yang",
		Revisions: []Revision{{Date: "2013-07-15"}},
	}
}

func builtinYangLibrary() *Module {
	return &Module{
		Name: "ietf-yang-library",
		Namespace: "urn:ietf:params:xml:ns:yang:ietf-yang-library",
		Prefix: "ylib",
		Revisions: []Revision{{Date: "2016-02-01"}},
	}
}

// ModuleInfo is one entry of the ietf-yang-library modules-state report.
// Info() returns a slice of these instead of a literal DataNode tree:
// building real instance data is a data-parser concern outside this
// package, so Context.Info summarizes the same content structurally
// instead.
type ModuleInfo struct {
	Name string
	Revision string
	Namespace string
	SchemaURL string
	Features []string
	Deviations []string
	ConformanceType string
	Submodules []string
}

// Info produces the ietf-yang-library modules-state summary: one
// ModuleInfo per loaded module plus the Context's module-set-id.
type ContextInfo struct {
	ModuleSetID string
	Modules []ModuleInfo
}

func (c *Context) Info() ContextInfo {
	info := ContextInfo{ModuleSetID: c.ModuleSetID()}
	for _, m := range c.Modules() {
		mi := ModuleInfo{
			Name: m.Name,
			Revision: m.Revision(),
			Namespace: m.Namespace,
			ConformanceType: m.ConformanceType(),
		}
		for _, f := range m.Features {
			if f.enabled {
				mi.Features = append(mi.Features, f.Name)
			}
		}
		for _, d := range m.Deviations {
			mi.Deviations = append(mi.Deviations, d.TargetName)
		}
		for _, inc := range m.Includes {
			mi.Submodules = append(mi.Submodules, inc.SubmoduleName)
		}
		info.Modules = append(info.Modules, mi)
	}
	return info
}
