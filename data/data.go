// Package data implements DataNode and the UnresData worklist:
// per-instance-tree resolution of leafref/instance-identifier/when/must
// references, plus the when-triggered auto-delete semantics.
//
// DataNode follows the same pointer-tree philosophy as package schema: it
// owns its children directly, with weak pointers back to Parent and across
// to its SchemaNode.
package data

import (
	"fmt"
	"strings"

	"github.com/yangcore/yangcore/diag"
	"github.com/yangcore/yangcore/schema"
	"github.com/yangcore/yangcore/xpath"
)

// WhenStatus is the tri-state result of evaluating a node's (or an
// ancestor's) `when` expression.
type WhenStatus int

const (
	WhenUnevaluated WhenStatus = iota
	WhenTrue
	WhenFalse
)

func (s WhenStatus) String() string {
	switch s {
	case WhenTrue:
		return "true"
	case WhenFalse:
		return "false"
	default:
		return "unevaluated"
	}
}

// DataNode is one instance in a data tree, corresponding to a SchemaNode
//. value_str is the lexical (not yet type-validated beyond
// leafref/instid) string value for a terminal node.
type DataNode struct {
	Schema *schema.SchemaNode
	Parent *DataNode
	Children []*DataNode

	ValueStr string
	WhenStatus WhenStatus

	deleted bool
}

// Name returns the DataNode's schema name.
func (n *DataNode) Name() string { return n.Schema.Name }

// Value returns n's lexical value.
func (n *DataNode) Value() string { return n.ValueStr }

// AddChild appends child to n's owned children.
func (n *DataNode) AddChild(child *DataNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// CanonicalPath builds the data-tree path of n: /mod:name segments, with
// list instances carrying [key='value'] predicates in schema key order
//.
func (n *DataNode) CanonicalPath() string {
	var segs []string
	for cur := n; cur != nil; cur = cur.Parent {
		seg := fmt.Sprintf("%s:%s", moduleName(cur.Schema), cur.Schema.Name)
		if cur.Schema.Kind == schema.KindList {
			seg += cur.keyPredicate()
		}
		segs = append(segs, seg)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}

func (n *DataNode) keyPredicate() string {
	var sb strings.Builder
	for _, keyLeaf := range n.Schema.KeyLeafs {
		for _, c := range n.Children {
			if c.Schema == keyLeaf {
				sb.WriteString(fmt.Sprintf("[%s='%s']", keyLeaf.Name, c.ValueStr))
			}
		}
	}
	return sb.String()
}

func moduleName(n *schema.SchemaNode) string {
	if m := n.EffectiveModule(); m != nil {
		return m.Name
	}
	return ""
}

// xpathAdapter satisfies xpath.Node fully by delegating the two
// differently-named methods (the Children()/Parent() xpath.Node contract
// clashes with DataNode's own struct fields of the same name, so Resolve*
// constructs one of these instead of implementing xpath.Node on *DataNode
// directly).
type xpathAdapter struct{ n *DataNode }

func (a xpathAdapter) Name() string { return a.n.Name() }
func (a xpathAdapter) Value() string { return a.n.Value() }
func (a xpathAdapter) Parent() xpath.Node {
	if a.n.Parent == nil {
		return nil
	}
	return xpathAdapter{a.n.Parent}
}
func (a xpathAdapter) Children() []xpath.Node {
	out := make([]xpath.Node, 0, len(a.n.Children))
	for _, c := range a.n.Children {
		out = append(out, xpathAdapter{c})
	}
	return out
}
func (a xpathAdapter) Root() xpath.Node {
	cur := a.n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return xpathAdapter{cur}
}

func asXPathNode(n *DataNode) xpath.Node { return xpathAdapter{n} }
