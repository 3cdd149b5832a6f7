package schema

import (
	"strings"

	"github.com/yangcore/yangcore/diag"
	"github.com/yangcore/yangcore/pathlex"
	"github.com/yangcore/yangcore/rangesolve"
)

// Resolver groups the pure-function cross-linking passes: each
// takes a fully-formed (but not-yet-cross-linked) SchemaNode tree plus a
// Context for module/prefix lookups, and either completes its one
// resolution concern or returns a Diagnostic that UnresSchema's worklist
// (unres.go) will retry on a later pass.
type Resolver struct {
	ctx *Context
}

// NewResolver returns a Resolver bound to ctx.
func NewResolver(ctx *Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// ResolveSchemaNodeID resolves a schema-nodeid string starting from start (nil for an absolute path
// evaluated against the module's own top level). It is the shared
// implementation behind augment-target, leafref-without-predicates, and
// deviation-target resolution.
func (r *Resolver) ResolveSchemaNodeID(start *SchemaNode, startMod *Module, path string, opt WalkOpt) (*SchemaNode, *diag.Diagnostic) {
	var rel pathlex.Relativity
	cur := start
	curMod := startMod
	rest := path
	first := true
	for rest != "" {
		seg, n := pathlex.ParseSchemaNodeIDSegment(rest, &rel)
		if !pathlex.Ok(n) {
			return nil, diag.New(diag.Syntax, diag.VecodeNone, "malformed schema-nodeid at %q", rest)
		}
		rest = rest[n:]
		mod := curMod
		if seg.ModName != "" {
			if curMod == nil {
				return nil, diag.New(diag.Validation, diag.VecodeInMod, "no context module to resolve prefix %q", seg.ModName)
			}
			m := curMod.ResolvePrefix(seg.ModName)
			if m == nil {
				return nil, diag.New(diag.Validation, diag.VecodeInMod, "unresolvable prefix %q", seg.ModName)
			}
			mod = m.EffectiveModule()
		}
		if first && rel == pathlex.RelAbsolute {
			cur = findTopLevel(mod, seg.Name, opt)
		} else {
			cur = FindChild(cur, seg.Name, opt)
		}
		if cur == nil {
			return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "no such node %q", seg.Name).WithPath(func() string { return path })
		}
		curMod = mod
		first = false
	}
	if cur == nil {
		return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "empty schema-nodeid")
	}
	return cur, nil
}

func findTopLevel(mod *Module, name string, opt WalkOpt) *SchemaNode {
	if mod == nil {
		return nil
	}
	for _, n := range mod.DataNodes {
		for _, cand := range expand(n, opt) {
			if cand.Name == name {
				return cand
			}
		}
	}
	for _, n := range mod.RPCs {
		if n.Name == name {
			return n
		}
	}
	for _, n := range mod.Notifs {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// ResolveUses splices uses.Grouping's subtree (a deep copy) as children of
// site.Parent in place of site, applies refine statements, and inherits
// config from site.Parent. site must have Kind == KindUses.
func (r *Resolver) ResolveUses(site *SchemaNode) *diag.Diagnostic {
	u := site.UsesInfo
	if u == nil || u.Grouping == nil {
		return diag.New(diag.Internal, diag.VecodeNone, "ResolveUses called on non-uses or unresolved grouping node")
	}
	parent := site.Parent
	clone := make([]*SchemaNode, 0, len(u.Grouping.Children))
	for _, child := range u.Grouping.Children {
		c := deepCopy(child)
		c.Parent = parent
		clone = append(clone, c)
	}
	for _, refine := range u.Refines {
		target := findByRelativePath(clone, refine.TargetName)
		if target == nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "refine target %q not found under uses %q", refine.TargetName, u.GroupingName)
		}
		applyRefine(target, refine)
	}
	if parent != nil {
		idx := -1
		for i, c := range parent.Children {
			if c == site {
				idx = i
				break
			}
		}
		if idx >= 0 {
			out := append([]*SchemaNode{}, parent.Children[:idx]...)
			out = append(out, clone...)
			out = append(out, parent.Children[idx+1:]...)
			parent.Children = out
		}
		for _, c := range clone {
			cfg := parent.Config
			c.InheritConfig(cfg)
		}
	}
	for _, aug := range u.Augments {
		target := findByRelativePath(clone, aug.TargetName)
		if target == nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "uses-augment target %q not found", aug.TargetName)
		}
		aug.Target = target
	}
	return nil
}

func deepCopy(n *SchemaNode) *SchemaNode {
	cp := *n
	cp.Children = make([]*SchemaNode, len(n.Children))
	for i, c := range n.Children {
		child := deepCopy(c)
		child.Parent = &cp
		cp.Children[i] = child
	}
	return &cp
}

func findByRelativePath(roots []*SchemaNode, path string) *SchemaNode {
	names := strings.Split(strings.TrimPrefix(path, "/"), "/")
	var cur *SchemaNode
	for _, root := range roots {
		if stripPrefix(root.Name) == stripPrefix(names[0]) {
			cur = root
			break
		}
	}
	if cur == nil {
		return nil
	}
	for _, seg := range names[1:] {
		cur = FindChild(cur, stripPrefix(seg), WithCase)
		if cur == nil {
			return nil
		}
	}
	return cur
}

func stripPrefix(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func applyRefine(n *SchemaNode, ref *Refine) {
	if ref.Description != nil {
		n.Description = *ref.Description
	}
	if ref.Reference != nil {
		n.Reference = *ref.Reference
	}
	if ref.Default != nil {
		n.Default = *ref.Default
	}
	if ref.Mandatory != nil {
		n.Mandatory = *ref.Mandatory
	}
	if ref.Presence != nil {
		n.Presence = *ref.Presence
	}
	if ref.MinElements != nil && n.ListAttr != nil {
		n.ListAttr.MinElements = *ref.MinElements
	}
	if ref.MaxElements != nil && n.ListAttr != nil {
		n.ListAttr.MaxElements = *ref.MaxElements
	}
	if len(ref.Must) > 0 {
		n.Must = append(n.Must, ref.Must...)
	}
	if ref.Config != nil {
		if *ref.Config {
			n.SetConfig(TSTrue)
		} else {
			n.SetConfig(TSFalse)
		}
	}
}

// ResolveAugment locates target and splices augment's children onto it,
// inheriting target's config. augNode.AugmentInfo must be
// non-nil and already hold the yet-to-be-resolved TargetName.
func (r *Resolver) ResolveAugment(augNode *SchemaNode, inModule *Module) *diag.Diagnostic {
	a := augNode.AugmentInfo
	if len(a.IfFeatures) > 0 {
		enabled, dg := r.evalIfFeatureSet(a.IfFeatures, inModule)
		if dg != nil {
			return dg
		}
		if !enabled {
			return nil
		}
	}
	target, dg := r.ResolveSchemaNodeID(nil, inModule, a.TargetName, WithCase)
	if dg != nil {
		return dg
	}
	if colliding := r.ctx.CollidingAugmentTargets(buildPath(target)); len(colliding) > 1 {
		return diag.New(diag.Validation, diag.VecodeDuplicateID, "augment target %s already populated", a.TargetName)
	}
	for _, child := range augNode.Children {
		if FindChild(target, child.Name, 0) != nil {
			return diag.New(diag.Validation, diag.VecodeDuplicateID, "augment %s adds duplicate node %q", a.TargetName, child.Name)
		}
	}
	a.Target = target
	for _, child := range augNode.Children {
		child.Parent = target
		target.AddChild(child)
		child.InheritConfig(target.Config)
	}
	r.ctx.RegisterPath(buildPath(target), target)
	return nil
}

// ResolveLeafref resolves t.LeafrefPath relative
// to fromNode, binding t.LeafrefTarget on success.
func (r *Resolver) ResolveLeafref(t *Type, fromNode *SchemaNode) *diag.Diagnostic {
	arg, n := pathlex.ParsePathArg(t.LeafrefPath)
	if !pathlex.Ok(n) {
		return diag.New(diag.Syntax, diag.VecodeNone, "malformed leafref path %q", t.LeafrefPath)
	}
	var start *SchemaNode
	var mod *Module
	rest := t.LeafrefPath[n:]
	if arg.ParentTimes < 0 {
		mod = fromNode.EffectiveModule()
		start = nil
	} else {
		start = fromNode
		for i := 0; i < arg.ParentTimes; i++ {
			if start == nil {
				return diag.New(diag.Validation, diag.VecodeNoResolv, "leafref ascends above root")
			}
			start = start.Parent
		}
		if start != nil {
			mod = start.EffectiveModule()
		} else {
			mod = fromNode.EffectiveModule()
		}
	}
	target, dg := r.ResolveSchemaNodeID(start, mod, rest, WithCase)
	if dg != nil {
		return dg
	}
	if target.Kind != KindLeaf && target.Kind != KindLeafList {
		return diag.New(diag.Validation, diag.VecodeNoLeafref, "leafref target %q is not a leaf or leaf-list", rest)
	}
	t.LeafrefTarget = target
	return nil
}

// ResolveIdentityBase resolves id.BaseName to an Identity, detecting
// circular derivation chains. The resolving
// sentinel flags an identity currently on the call stack; encountering one
// again means a cycle.
func (r *Resolver) ResolveIdentityBase(id *Identity, lookup func(prefixedName string) *Identity) *diag.Diagnostic {
	if id.Base != nil || id.BaseName == "" {
		return nil
	}
	if id.resolving {
		return diag.New(diag.Validation, diag.VecodeCircular, "identity %q participates in a circular base chain", id.PrefixedName())
	}
	id.resolving = true
	defer func() { id.resolving = false }()
	base := lookup(id.BaseName)
	if base == nil {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "identity base %q not found", id.BaseName)
	}
	if base.Base == nil && base.BaseName != "" {
		if dg := r.ResolveIdentityBase(base, lookup); dg != nil {
			return dg
		}
	}
	if base.DerivesFrom(id) {
		return diag.New(diag.Validation, diag.VecodeCircular, "identity %q participates in a circular base chain", id.PrefixedName())
	}
	id.Base = base
	for anc := base; anc != nil; anc = anc.Base {
		anc.Derived = append(anc.Derived, id)
	}
	return nil
}

// ValidateListKeys checks that every name in n.KeyNames names a direct,
// mandatory-compatible, config-consistent leaf child and binds n.KeyLeafs
//.
func (r *Resolver) ValidateListKeys(n *SchemaNode) *diag.Diagnostic {
	if n.Kind != KindList || len(n.KeyNames) == 0 {
		return nil
	}
	seen := map[string]bool{}
	n.KeyLeafs = n.KeyLeafs[:0]
	for _, name := range n.KeyNames {
		if seen[name] {
			return diag.New(diag.Validation, diag.VecodeKeyDup, "duplicate key leaf %q in list %q", name, n.Name)
		}
		seen[name] = true
		leaf := FindChild(n, name, 0)
		if leaf == nil || leaf.Kind != KindLeaf {
			return diag.New(diag.Validation, diag.VecodeKeyMissing, "key leaf %q not found as a direct child of list %q", name, n.Name)
		}
		if leaf.Type != nil && (leaf.Type.Base == BaseEmpty) {
			return diag.New(diag.Validation, diag.VecodeKeyType, "key leaf %q may not be of type empty", name)
		}
		if leaf.ConfigSet() && leaf.Config != n.Config {
			return diag.New(diag.Validation, diag.VecodeKeyConfig, "key leaf %q config disagrees with list %q", name, n.Name)
		}
		n.KeyLeafs = append(n.KeyLeafs, leaf)
	}
	return nil
}

// ValidateUnique checks each `unique` statement's schema-nodeids resolve to
// leafs reachable from n, binds n.UniqueLeafs, and flags each resolved leaf
// (SchemaNode.IsUniquePart). A path may descend through containers, cases,
// and choices but may not cross into a descendant List: `unique` identifies
// a leaf within one list instance, and a list boundary would make that leaf
// multi-valued.
func (r *Resolver) ValidateUnique(n *SchemaNode) *diag.Diagnostic {
	n.UniqueLeafs = n.UniqueLeafs[:0]
	for _, group := range n.Unique {
		leafs := make([]*SchemaNode, 0, len(group))
		for _, descPath := range group {
			leaf, dg := resolveUniqueLeaf(n, descPath)
			if dg != nil {
				return dg
			}
			leaf.flagUnique = true
			leafs = append(leafs, leaf)
		}
		n.UniqueLeafs = append(n.UniqueLeafs, leafs)
	}
	return nil
}

// resolveUniqueLeaf walks descPath (a '/'-separated descendant-schema-nodeid,
// relative to list n) one segment at a time, rejecting any intermediate
// segment that resolves to a List.
func resolveUniqueLeaf(n *SchemaNode, descPath string) (*SchemaNode, *diag.Diagnostic) {
	segs := strings.Split(descPath, "/")
	cur := n
	for i, seg := range segs {
		if seg == "" {
			return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "malformed unique path %q under list %q", descPath, n.Name)
		}
		child := FindChild(cur, seg, WithCase)
		if child == nil {
			return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "unique descendant %q not found under list %q", descPath, n.Name)
		}
		if child.Kind == KindList && i < len(segs)-1 {
			return nil, diag.New(diag.Validation, diag.VecodeUniqueCross, "unique path %q may not cross into descendant list %q", descPath, child.Name)
		}
		cur = child
	}
	if cur.Kind != KindLeaf {
		return nil, diag.New(diag.Validation, diag.VecodeNoResolv, "unique descendant %q does not name a leaf", descPath)
	}
	return cur, nil
}

// IdentityLookup returns a prefix-aware lookup closure over mod's visible
// identities, the shape ResolveIdentityBase's lookup parameter expects.
func IdentityLookup(mod *Module) func(string) *Identity {
	return func(name string) *Identity {
		targetMod := mod
		idName := name
		if i := strings.IndexByte(name, ':'); i >= 0 {
			prefix, rest := name[:i], name[i+1:]
			m := mod.ResolvePrefix(prefix)
			if m == nil {
				return nil
			}
			targetMod = m.EffectiveModule()
			idName = rest
		}
		return targetMod.FindIdentity(idName)
	}
}

// ResolveTypeIdentref resolves t.IdentityBaseName to an Identity, binding
// t.IdentityBase. mod is the module t's enclosing leaf/typedef belongs to,
// for prefix resolution.
func (r *Resolver) ResolveTypeIdentref(t *Type, mod *Module) *diag.Diagnostic {
	if t.IdentityBase != nil || t.IdentityBaseName == "" {
		return nil
	}
	id := IdentityLookup(mod)(t.IdentityBaseName)
	if id == nil {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "identity %q not found", t.IdentityBaseName)
	}
	t.IdentityBase = id
	return nil
}

// findTypedefInScope resolves name (bare, or prefix-qualified for an
// imported module) to a Typedef visible from mod.
func findTypedefInScope(mod *Module, name string) *Typedef {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		prefix, rest := name[:i], name[i+1:]
		m := mod.ResolvePrefix(prefix)
		if m == nil {
			return nil
		}
		return m.EffectiveModule().FindTypedef(rest)
	}
	if td := mod.FindTypedef(name); td != nil {
		return td
	}
	if mod.IsSubmodule && mod.BelongsTo != nil {
		return mod.BelongsTo.FindTypedef(name)
	}
	return nil
}

func typedefDerivesFrom(td, other *Typedef) bool {
	for cur := td; cur != nil; cur = cur.Der {
		if cur == other {
			return true
		}
	}
	return false
}

// ResolveTypeDer resolves t.Name to a user typedef (binding t.Typedef) when
// it does not already name a builtin; both a leaf's own type and a
// typedef's restricting type go through this.
func (r *Resolver) ResolveTypeDer(t *Type, mod *Module) *diag.Diagnostic {
	if t.Typedef != nil || t.Name == "" {
		return nil
	}
	if _, ok := baseKindByName(t.Name); ok {
		return nil
	}
	td := findTypedefInScope(mod, t.Name)
	if td == nil {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "typedef %q not found", t.Name)
	}
	t.Typedef = td
	return nil
}

// ResolveTypedefChain resolves td.BaseTypeName to td.Der, the typedef this
// one directly derives from, left nil when BaseTypeName already names a
// builtin. Detects circular derivation chains the way ResolveIdentityBase
// detects circular identity bases.
func (r *Resolver) ResolveTypedefChain(td *Typedef, mod *Module) *diag.Diagnostic {
	if td.Der != nil || td.BaseTypeName == "" {
		return nil
	}
	if _, ok := baseKindByName(td.BaseTypeName); ok {
		return nil
	}
	found := findTypedefInScope(mod, td.BaseTypeName)
	if found == nil {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "typedef %q not found", td.BaseTypeName)
	}
	if found == td || typedefDerivesFrom(found, td) {
		return diag.New(diag.Validation, diag.VecodeCircular, "typedef %q participates in a circular derivation chain", td.Name)
	}
	td.Der = found
	return nil
}

// ResolveChoiceDefault resolves a choice's `default` case name to the
// actual Case (or shorthand-case) child, binding n.DefaultCase.
func (r *Resolver) ResolveChoiceDefault(n *SchemaNode) *diag.Diagnostic {
	if n.Kind != KindChoice || n.Default == "" || n.DefaultCase != nil {
		return nil
	}
	c := FindChild(n, n.Default, WithCase)
	if c == nil {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "choice %q default case %q not found", n.Name, n.Default)
	}
	if c.Kind != KindCase && !c.IsShorthandCase() {
		return diag.New(diag.Validation, diag.VecodeNoResolv, "choice %q default %q does not name a case", n.Name, n.Default)
	}
	n.DefaultCase = c
	return nil
}

// ResolveTypeDefault validates n's `default` value against n's (by then
// fully resolved) type, covering the facets that are cheap to check
// structurally: enum/bit name existence, numeric/length range membership,
// identityref derivation, and union alternation. leafref and
// instance-identifier defaults are not checked here since that requires an
// actual data tree, not just the schema.
func (r *Resolver) ResolveTypeDefault(n *SchemaNode) *diag.Diagnostic {
	if n.Default == "" || n.Type == nil {
		return nil
	}
	return validateDefaultAgainstType(n.Type, n.Default, n.EffectiveModule())
}

func validateDefaultAgainstType(t *Type, val string, mod *Module) *diag.Diagnostic {
	switch t.Base {
	case BaseEnumeration:
		for _, e := range t.Enums {
			if e.Name == val {
				return nil
			}
		}
		return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q does not name a declared enum", val)
	case BaseBits:
		for _, tok := range strings.Fields(val) {
			found := false
			for _, b := range t.Bits {
				if b.Name == tok {
					found = true
					break
				}
			}
			if !found {
				return diag.New(diag.Validation, diag.VecodeNoResolv, "default bit %q not declared", tok)
			}
		}
		return nil
	case BaseBoolean:
		if val != "true" && val != "false" {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q is not a boolean", val)
		}
		return nil
	case BaseIdentityref:
		if t.IdentityBase == nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "identityref default %q: base not yet resolved", val)
		}
		id := IdentityLookup(mod)(val)
		if id == nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "identityref default %q not found", val)
		}
		if !id.DerivesFrom(t.IdentityBase) {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "identityref default %q does not derive from %q", val, t.IdentityBase.PrefixedName())
		}
		return nil
	case BaseString, BaseBinary:
		if t.Length == nil {
			return nil
		}
		n := rangesolve.FromUint(uint64(len(val)))
		valRange := rangesolve.Range{Kind: rangesolve.Unsigned, Intervals: []rangesolve.Interval{{Min: n, Max: n}}}
		if _, err := rangesolve.Narrow(*t.Length, valRange); err != nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q: %v", val, err)
		}
		return nil
	case BaseUnion:
		for _, member := range t.Union {
			if validateDefaultAgainstType(member, val, mod) == nil {
				return nil
			}
		}
		return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q does not match any union member type", val)
	case BaseLeafref, BaseInstanceIdentifier:
		return nil
	default:
		eff, err := t.EffectiveRange()
		if err != nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q: %v", val, err)
		}
		if eff == nil {
			return nil
		}
		valRange, err := rangesolve.Parse(val, t.Base.rangeKind(), t.FractionDigits)
		if err != nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q: %v", val, err)
		}
		if _, err := rangesolve.Narrow(*eff, valRange); err != nil {
			return diag.New(diag.Validation, diag.VecodeNoResolv, "default %q: %v", val, err)
		}
		return nil
	}
}

// CheckStatusConsistency reports a diagnostic if n (with status n.Status)
// references target, whose status must be at least as stable.
func CheckStatusConsistency(n *SchemaNode, target *SchemaNode, what string) *diag.Diagnostic {
	if target == nil {
		return nil
	}
	if !n.Status.Allows(target.Status) {
		return diag.New(diag.Validation, diag.VecodeNone,
			"%s status %s may not reference %s status %s (%s)", n.Status, n.Name, target.Status, target.Name, what)
	}
	return nil
}
