package schema

import "strings"

// WalkOpt is a bitmask controlling which normally-transparent structural
// nodes a next_sibling/find_sibling traversal should stop on instead of
// descending straight through.
type WalkOpt int

const (
	// WithChoice makes a traversal stop on Choice nodes themselves instead
	// of transparently descending into their Case children.
	WithChoice WalkOpt = 1 << iota
	// WithCase makes a traversal stop on (or expose) Case nodes themselves
	// instead of transparently exposing their children as if they were
	// direct children of the choice.
	WithCase
	// WithInputOutput includes an RPC/action's Input/Output pseudo-children
	// in sibling iteration; by default they are skipped (no ordinary data
	// path ever descends through them implicitly).
	WithInputOutput
	// WithGrouping includes Uses/Grouping bookkeeping nodes themselves in
	// iteration, instead of only the data nodes they expanded into.
	WithGrouping
)

func (o WalkOpt) has(flag WalkOpt) bool { return o&flag != 0 }

// buildPath constructs the schema-nodeid path for n by walking Parent
// links to the root, qualifying every segment with its effective module's
// name. The
// result is cached nowhere here — callers needing memoization (diagnostic
// paths) wrap this in a diag.PathFunc closure so path construction stays
// deferred until a diagnostic is actually rendered.
func buildPath(n *SchemaNode) string {
	if n == nil {
		return ""
	}
	var segs []string
	for cur := n; cur != nil; cur = cur.Parent {
		mod := ""
		if m := cur.EffectiveModule(); m != nil {
			mod = m.Name
		}
		segs = append(segs, mod+":"+cur.Name)
	}
	// segs was built leaf-to-root; reverse it.
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}

// Children returns n's immediate children the way a consumer configured by
// opt would see them: Choice/Case layers are transparently flattened unless
// opt requests otherwise, and Uses/Grouping/Input/Output nodes are likewise
// filtered unless requested.
func Children(n *SchemaNode, opt WalkOpt) []*SchemaNode {
	if n == nil {
		return nil
	}
	var out []*SchemaNode
	for _, c := range n.Children {
		out = append(out, expand(c, opt)...)
	}
	return out
}

func expand(n *SchemaNode, opt WalkOpt) []*SchemaNode {
	switch n.Kind {
	case KindChoice:
		if opt.has(WithChoice) {
			return []*SchemaNode{n}
		}
		var out []*SchemaNode
		for _, c := range n.Children {
			out = append(out, expand(c, opt)...)
		}
		return out
	case KindCase:
		if opt.has(WithCase) {
			return []*SchemaNode{n}
		}
		var out []*SchemaNode
		for _, c := range n.Children {
			out = append(out, expand(c, opt)...)
		}
		return out
	case KindInput, KindOutput:
		if opt.has(WithInputOutput) {
			return []*SchemaNode{n}
		}
		return nil
	case KindUses, KindGrouping:
		if opt.has(WithGrouping) {
			return []*SchemaNode{n}
		}
		return nil
	default:
		return []*SchemaNode{n}
	}
}

// FindChild searches n's effective children (per opt) for one named name,
// the by-name sibling lookup used during schema-nodeid resolution.
func FindChild(n *SchemaNode, name string, opt WalkOpt) *SchemaNode {
	for _, c := range Children(n, opt) {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NextSibling returns the next node after n in n.Parent's effective child
// list (per opt), or nil if n is last or has no parent. A nil Parent means
// n is a module top-level node; siblings for that case are found by the
// resolver walking Module.DataNodes directly.
func NextSibling(n *SchemaNode, opt WalkOpt) *SchemaNode {
	if n == nil || n.Parent == nil {
		return nil
	}
	sibs := Children(n.Parent, opt)
	for i, s := range sibs {
		if s == n && i+1 < len(sibs) {
			return sibs[i+1]
		}
	}
	return nil
}

// Walk calls fn for n and every descendant reachable under opt's
// visibility rules, depth-first, stopping early if fn returns false.
func Walk(n *SchemaNode, opt WalkOpt, fn func(*SchemaNode) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range Children(n, opt) {
		if !Walk(c, opt, fn) {
			return false
		}
	}
	return true
}
