package data

import (
	"github.com/yangcore/yangcore/diag"
	"github.com/yangcore/yangcore/pathlex"
	"github.com/yangcore/yangcore/schema"
	"github.com/yangcore/yangcore/xpath"
)

// UnresDataKind enumerates the five per-DataNode pending item kinds.
type UnresDataKind int

const (
	ItemLeafref UnresDataKind = iota
	ItemInstid
	ItemWhen
	ItemMust
	ItemEmptyContainer
)

func (k UnresDataKind) String() string {
	names := [...]string{"leafref", "instance-identifier", "when", "must", "empty-container"}
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// UnresDataItem is one pending data-tree resolution.
type UnresDataItem struct {
	Kind UnresDataKind
	Node *DataNode
	// MustIndex, when Kind == ItemMust, names which of Node.Schema.Must this item
	// checks (by index), since a node may carry several must statements.
	MustIndex int
}

// Options configures an UnresData worklist.
type Options struct {
	Eval xpath.Evaluator
	// AutoDelete, when true, silently unlinks a WhenFalse subtree instead of
	// surfacing a Validation error.
	AutoDelete bool
	// KeepEmptyContainers disables the post-deletion empty-non-presence-
	// container pruning pass.
	KeepEmptyContainers bool
}

// UnresData drives instance-tree resolution scheduling: when-stmts resolve first to a
// fixpoint (honoring ancestor when_status before evaluating a node),
// WhenFalse subtrees are collected and unlinked only after the whole
// when-phase completes, non-presence ancestor containers left empty are
// pruned, and finally leafref/instid/must run in one pass.
type UnresData struct {
	eval xpath.Evaluator
	autoDelete bool
	keepEmptyContainers bool
	items []*UnresDataItem
}

// NewUnresData returns an empty worklist.
func NewUnresData(opts Options) *UnresData {
	eval := opts.Eval
	if eval == nil {
		eval = xpath.NullEvaluator{}
	}
	return &UnresData{eval: eval, autoDelete: opts.AutoDelete, keepEmptyContainers: opts.KeepEmptyContainers}
}

// Add enqueues item.
func (w *UnresData) Add(item *UnresDataItem) {
	w.items = append(w.items, item)
}

// Run executes the when-phase fixpoint, deletes WhenFalse subtrees (and any
// non-presence ancestor containers left empty, unless KeepEmptyContainers),
// then resolves leafref/instid/must in a single pass. It returns every
// diagnostic produced (When/Must validation failures, NoLeafref failures for
// required leafref and NoResolv failures for required instid).
func (w *UnresData) Run() diag.List {
	var out diag.List

	whens := partitionByKind(w.items, ItemWhen)
	falseNodes, dg := w.runWhenPhase(whens)
	out = append(out, dg...)

	for _, n := range falseNodes {
		n.unlink()
	}
	if !w.keepEmptyContainers {
		pruneEmptyContainers(falseNodes)
	}

	rest := nonWhenItems(w.items)
	for _, it := range rest {
		if it.Node.deleted {
			continue
		}
		switch it.Kind {
		case ItemLeafref:
			if dg := w.resolveLeafref(it.Node); dg != nil {
				out = append(out, dg)
			}
		case ItemInstid:
			if dg := w.resolveInstid(it.Node); dg != nil {
				out = append(out, dg)
			}
		case ItemMust:
			if dg := w.resolveMust(it.Node, it.MustIndex); dg != nil {
				out = append(out, dg)
			}
		case ItemEmptyContainer:
			// handled by pruneEmptyContainers above; nothing further to do.
		}
	}
	return out
}

func partitionByKind(items []*UnresDataItem, kind UnresDataKind) []*UnresDataItem {
	var out []*UnresDataItem
	for _, it := range items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

func nonWhenItems(items []*UnresDataItem) []*UnresDataItem {
	var out []*UnresDataItem
	for _, it := range items {
		if it.Kind != ItemWhen {
			out = append(out, it)
		}
	}
	return out
}

// runWhenPhase iteratively evaluates pending when items, skipping a node
// until every ancestor's WhenStatus is no longer Unevaluated; an ancestor
// already WhenFalse marks this node WhenFalse too, without evaluation
// ("resolved by inheritance"). A pass making no progress while items remain
// is an Internal error (the fixpoint cannot be hanging on anything else,
// since ancestors are processed top-down by construction). Returns the set
// of nodes that ended up WhenFalse, for the caller to unlink after the
// whole phase completes.
func (w *UnresData) runWhenPhase(items []*UnresDataItem) ([]*DataNode, diag.List) {
	var falseNodes []*DataNode
	var out diag.List
	remaining := items
	for progress := true; progress && len(remaining) > 0; {
		progress = false
		var next []*UnresDataItem
		for _, it := range remaining {
			anc := ancestorStatus(it.Node)
			if anc == WhenUnevaluated {
				next = append(next, it)
				continue
			}
			progress = true
			if anc == WhenFalse {
				it.Node.WhenStatus = WhenFalse
				falseNodes = append(falseNodes, it.Node)
				continue
			}
			ok, err := w.eval.EvalBoolean(it.Node.Schema.When.Expr, asXPathNode(it.Node))
			if err != nil {
				out = append(out, diag.New(diag.Validation, diag.VecodeInWhen, "when expression error: %v", err).WithPath(func() string { return it.Node.CanonicalPath() }))
				it.Node.WhenStatus = WhenFalse
				falseNodes = append(falseNodes, it.Node)
				continue
			}
			if ok {
				it.Node.WhenStatus = WhenTrue
			} else {
				it.Node.WhenStatus = WhenFalse
				if !w.autoDelete {
					out = append(out, diag.New(diag.Validation, diag.VecodeNoWhen, "when %q is false", it.Node.Schema.When.Expr).WithPath(func() string { return it.Node.CanonicalPath() }))
				}
				falseNodes = append(falseNodes, it.Node)
			}
		}
		remaining = next
	}
	if len(remaining) > 0 {
		out = append(out, diag.New(diag.Internal, diag.VecodeNone, "when-phase made no progress with %d item(s) pending", len(remaining)))
	}
	return falseNodes, out
}

// ancestorStatus reports the WhenStatus governing n from its ancestors. It
// skips ancestors whose schema is not a data node per IsDataNode (Uses/
// Grouping/Augment; such layers never appear as DataNodes in practice, so
// this is a guard), returns WhenUnevaluated or WhenFalse for the nearest
// ancestor carrying a when that is still unevaluated or false, and otherwise
// keeps walking up. A node with no such ancestor, including the root, is
// governed by nothing and gets WhenTrue.
func ancestorStatus(n *DataNode) WhenStatus {
	if n.Parent == nil {
		return WhenTrue
	}
	p := n.Parent
	for p != nil && !p.Schema.IsDataNode() {
		p = p.Parent
	}
	if p == nil {
		return WhenTrue
	}
	if p.Schema.When == nil {
		return ancestorStatus(p)
	}
	if p.WhenStatus == WhenUnevaluated {
		return WhenUnevaluated
	}
	if p.WhenStatus == WhenFalse {
		return WhenFalse
	}
	return ancestorStatus(p)
}

func (n *DataNode) unlink() {
	n.deleted = true
	if n.Parent != nil {
		idx := -1
		for i, c := range n.Parent.Children {
			if c == n {
				idx = i
				break
			}
		}
		if idx >= 0 {
			n.Parent.Children = append(n.Parent.Children[:idx], n.Parent.Children[idx+1:]...)
		}
	}
}

// pruneEmptyContainers walks upward from each deleted node's former
// parent, removing any non-presence container left with no children
//.
func pruneEmptyContainers(deleted []*DataNode) {
	seen := map[*DataNode]bool{}
	for _, n := range deleted {
		p := n.Parent
		for p != nil && !seen[p] {
			seen[p] = true
			if p.Schema.Kind == schema.KindContainer && p.Schema.Presence == "" && len(p.Children) == 0 {
				grandparent := p.Parent
				p.unlink()
				p = grandparent
				continue
			}
			break
		}
	}
}

// resolveLeafref checks n against the instances of its type's resolved
// target schema node: it collects every DataNode of that schema node
// anywhere in n's tree and accepts n if at least one of them has a string
// value equal to n's. The leafref path is not evaluated from n, so its
// predicates do not narrow the candidates.
func (w *UnresData) resolveLeafref(n *DataNode) *diag.Diagnostic {
	t := n.Schema.Type
	if t == nil || t.Base != schema.BaseLeafref || t.LeafrefTarget == nil {
		return nil
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	var candidates []*DataNode
	collectBySchema(root, t.LeafrefTarget, &candidates)
	for _, c := range candidates {
		if c.ValueStr == n.ValueStr {
			return nil
		}
	}
	if t.EffectiveRequireInstance() {
		return diag.New(diag.Validation, diag.VecodeNoLeafref, "leafref value %q does not match any instance of %s", n.ValueStr, t.LeafrefPath).
		WithPath(func() string { return n.CanonicalPath() })
	}
	return nil
}

func collectBySchema(n *DataNode, target *schema.SchemaNode, out *[]*DataNode) {
	if n.Schema == target {
		*out = append(*out, n)
	}
	for _, c := range n.Children {
		collectBySchema(c, target, out)
	}
}

// resolveInstid parses n's instance-identifier value against the full
// data tree starting at root, requiring exactly one match.
func (w *UnresData) resolveInstid(n *DataNode) *diag.Diagnostic {
	t := n.Schema.Type
	if t == nil || t.Base != schema.BaseInstanceIdentifier {
		return nil
	}
	root := n
	for root.Parent != nil {
		root = root.Parent
	}
	matches := resolveInstanceIdentifier(root, n.ValueStr)
	if len(matches) == 1 {
		return nil
	}
	if len(matches) == 0 && !t.EffectiveRequireInstance() {
		return nil
	}
	return diag.New(diag.Validation, diag.VecodeNoResolv, "instance-identifier %q resolved to %d node(s), want 1", n.ValueStr, len(matches)).
	WithPath(func() string { return n.CanonicalPath() })
}

func resolveInstanceIdentifier(root *DataNode, path string) []*DataNode {
	rest := path
	cur := []*DataNode{root}
	for rest != "" {
		seg, n := pathlex.ParseInstanceIdentifier(rest)
		if !pathlex.Ok(n) {
			return nil
		}
		rest = rest[n:]
		var next []*DataNode
		for _, c := range cur {
			for _, child := range c.Children {
				if child.Schema.Name != seg.Name {
					continue
				}
				if matchesPredicates(child, seg.Predicates) {
					next = append(next, child)
				}
			}
		}
		cur = next
	}
	return cur
}

func matchesPredicates(n *DataNode, preds []pathlex.Predicate) bool {
	for _, p := range preds {
		switch {
		case p.Self:
			if n.ValueStr != p.Value {
				return false
			}
		case p.Position >= 0:
			idx := -1
			for _, sib := range n.Parent.Children {
				if sib.Schema == n.Schema {
					idx++
					if sib == n {
						break
					}
				}
			}
			if idx != p.Position {
				return false
			}
		default:
			found := false
			for _, c := range n.Children {
				if c.Schema.Name == p.Key.Name && c.ValueStr == p.Value {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// resolveMust evaluates the must-index'th WhenMust on n's schema against n
// itself, surfacing the statement's error-app-tag/error-message on failure
//.
func (w *UnresData) resolveMust(n *DataNode, idx int) *diag.Diagnostic {
	if idx < 0 || idx >= len(n.Schema.Must) {
		return nil
	}
	m := n.Schema.Must[idx]
	ok, err := w.eval.EvalBoolean(m.Expr, asXPathNode(n))
	if err != nil {
		return diag.New(diag.Validation, diag.VecodeNoMust, "must expression error: %v", err).WithPath(func() string { return n.CanonicalPath() })
	}
	if ok {
		return nil
	}
	return diag.New(diag.Validation, diag.VecodeNoMust, "must %q is false", m.Expr).
	WithAppTag(m.ErrAppTag, m.ErrMessage).
	WithPath(func() string { return n.CanonicalPath() })
}
