package schema

import "github.com/yangcore/yangcore/diag"

// UnresKind enumerates the pending-item kinds a SchemaWorklist
// resolves.
type UnresKind int

const (
	UnresIdentityBase UnresKind = iota
	UnresTypeIdentref
	UnresTypeLeafref
	UnresTypeDer
	UnresTypeDefault
	UnresChoiceDefault
	UnresIfFeature
	UnresUses
	UnresAugment
	UnresListKeys
	UnresListUnique
)

func (k UnresKind) String() string {
	names := [...]string{
		"identity-base", "type-identityref", "type-leafref", "type-derivation",
		"type-default", "choice-default", "if-feature", "uses", "augment",
		"list-keys", "list-unique",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// UnresSchemaItem is one pending forward reference in the worklist.
// Resolve is called by the worklist driver; a
// successful call must be idempotent-safe to not be called again (the
// driver removes it from the pending set once Resolve returns nil).
type UnresSchemaItem struct {
	Kind UnresKind
	Node *SchemaNode
	Module *Module

	// Resolve performs the one resolution step this item represents. hide
	// is true while the worklist is still making progress elsewhere and
	// wants to suppress (diag.Diagnostic.Suppress) the cost of path
	// construction on a failure that will just be retried.
	Resolve func(r *Resolver, hide bool) *diag.Diagnostic

	attempts int
}

// SchemaWorklist drives the fixpoint resolution algorithm: a grouping
// pre-phase (dependency-counted via Grouping.PendingUses, grounded on
// libyang resolve.c's resolve_unres_schema per-grouping counter), a general
// worklist phase iterated to a fixpoint, and a final replay pass with
// diagnostics enabled (hide_errors off) to produce the real error list for
// whatever could not be resolved.
type SchemaWorklist struct {
	ctx *Context
	resolver *Resolver
	items []*UnresSchemaItem
	modules []*Module
}

// NewSchemaWorklist returns an empty worklist bound to ctx.
func NewSchemaWorklist(ctx *Context) *SchemaWorklist {
	return &SchemaWorklist{ctx: ctx, resolver: NewResolver(ctx)}
}

// Add enqueues item.
func (w *SchemaWorklist) Add(item *UnresSchemaItem) {
	w.items = append(w.items, item)
}

// RegisterModule records m so Run's final phase applies its deviations once
// base resolution has produced a stable, fully-spliced tree.
func (w *SchemaWorklist) RegisterModule(m *Module) {
	w.modules = append(w.modules, m)
}

// Pending returns the count of items not yet resolved.
func (w *SchemaWorklist) Pending() int {
	return len(w.items)
}

// Run executes the grouping pre-phase followed by the general fixpoint
// phase, then one final replay with diagnostics enabled. It returns the
// diagnostics for every item still unresolved after the final pass.
func (w *SchemaWorklist) Run() diag.List {
	w.groupingPrephase()
	w.fixpoint(true)
	out := w.fixpoint(false)
	for _, m := range w.modules {
		out = append(out, w.resolver.ApplyDeviations(m)...)
	}
	return out
}

// groupingPrephase resolves `uses` items nested within groupings before any
// other uses, decrementing the PendingUses counter of the item module's
// Grouping whose Node encloses each nested uses as it resolves. Nested uses
// still unresolved after this phase are retried in the general phase ahead
// of the other items; a use site is not held back there while its
// grouping's counter is above zero, so it copies the grouping body as it
// stands at that point. This mirrors resolve.c's
// two-phase dependency counting in libyang.
func (w *SchemaWorklist) groupingPrephase() {
	var nested, other []*UnresSchemaItem
	for _, it := range w.items {
		if it.Kind == UnresUses && usesWithinGrouping(it.Node) {
			nested = append(nested, it)
		} else {
			other = append(other, it)
		}
	}
	remaining := nested
	for progress := true; progress && len(remaining) > 0; {
		progress = false
		var next []*UnresSchemaItem
		for _, it := range remaining {
			if dg := it.Resolve(w.resolver, true); dg != nil {
				it.attempts++
				next = append(next, it)
				continue
			}
			if gn := enclosingGrouping(it.Node); gn != nil && it.Module != nil {
				for _, g := range it.Module.AllGroupingsInScope() {
					if g.Node == gn {
						g.PendingUses--
						break
					}
				}
			}
			progress = true
		}
		remaining = next
	}
	w.items = append(remaining, other...)
}

func usesWithinGrouping(n *SchemaNode) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindGrouping {
			return true
		}
	}
	return false
}

func enclosingGrouping(n *SchemaNode) *SchemaNode {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind == KindGrouping {
			return p
		}
	}
	return nil
}

// fixpoint repeatedly attempts every remaining item until a full pass makes
// no further progress, returning diagnostics for whatever is still pending.
// When hide is true, failures are marked Suppress() since they are expected
// to be retried ; the returned list is
// only meaningful when hide is false.
func (w *SchemaWorklist) fixpoint(hide bool) diag.List {
	var out diag.List
	for {
		progress := false
		var remaining []*UnresSchemaItem
		out = nil
		for _, it := range w.items {
			dg := it.Resolve(w.resolver, hide)
			if dg == nil {
				progress = true
				continue
			}
			it.attempts++
			if hide {
				dg.Suppress()
			} else {
				out = append(out, dg)
			}
			remaining = append(remaining, it)
		}
		w.items = remaining
		if !progress || len(w.items) == 0 {
			break
		}
	}
	return out
}
