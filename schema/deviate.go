package schema

import (
	"strings"

	"github.com/yangcore/yangcore/diag"
)

// ApplyDeviations resolves and applies every `deviation` statement declared
// in m, after base resolution has produced a stable, fully-spliced tree:
// not-supported prunes the target outright, add/replace/delete adjust its
// facets. Unlike the forward-reference worklist this is not retried — a
// deviation whose target cannot be found is a hard failure, since nothing
// else in the schema can make that target appear later.
func (r *Resolver) ApplyDeviations(m *Module) diag.List {
	var out diag.List
	for _, dv := range m.Deviations {
		if dv.Target == nil {
			target, dg := r.ResolveSchemaNodeID(nil, m, dv.TargetName, WithCase)
			if dg != nil {
				out = append(out, dg)
				continue
			}
			dv.Target = target
		}
		for _, d := range dv.Deviates {
			applyDeviate(dv.Target, d)
			if d.Op == DeviateNotSupported {
				break
			}
		}
		if dv.Target.Kind == KindList && !dv.Target.flagNotSupported {
			if dg := r.ValidateListKeys(dv.Target); dg != nil {
				out = append(out, dg)
			}
			if dg := r.ValidateUnique(dv.Target); dg != nil {
				out = append(out, dg)
			}
		}
	}
	return out
}

// applyDeviate applies one ordered deviate entry to n, in the style of
// refine's field-by-field conditional overrides.
func applyDeviate(n *SchemaNode, d *Deviate) {
	switch d.Op {
	case DeviateNotSupported:
		n.flagNotSupported = true
		unlinkSchemaNode(n)
	case DeviateAdd:
		if d.Config != nil {
			n.SetConfig(*d.Config)
		}
		if d.Default != nil && n.Default == "" {
			n.Default = *d.Default
		}
		if d.Mandatory != nil {
			n.Mandatory = *d.Mandatory
		}
		if d.MinElements != nil && n.ListAttr != nil {
			n.ListAttr.MinElements = *d.MinElements
		}
		if d.MaxElements != nil && n.ListAttr != nil {
			n.ListAttr.MaxElements = *d.MaxElements
		}
		if d.Type != nil {
			n.Type = d.Type
		}
		if len(d.Must) > 0 {
			n.Must = append(n.Must, d.Must...)
		}
		if len(d.Unique) > 0 {
			n.Unique = append(n.Unique, d.Unique)
		}
	case DeviateReplace:
		if d.Config != nil {
			n.SetConfig(*d.Config)
		}
		if d.Default != nil {
			n.Default = *d.Default
		}
		if d.Mandatory != nil {
			n.Mandatory = *d.Mandatory
		}
		if d.MinElements != nil && n.ListAttr != nil {
			n.ListAttr.MinElements = *d.MinElements
		}
		if d.MaxElements != nil && n.ListAttr != nil {
			n.ListAttr.MaxElements = *d.MaxElements
		}
		if d.Type != nil {
			n.Type = d.Type
		}
	case DeviateDelete:
		if d.Default != nil && n.Default == *d.Default {
			n.Default = ""
		}
		if len(d.Must) > 0 {
			n.Must = removeMatchingMusts(n.Must, d.Must)
		}
		if len(d.Unique) > 0 {
			n.Unique = removeMatchingUniqueGroup(n.Unique, d.Unique)
		}
	}
}

func removeMatchingMusts(have, remove []*WhenMust) []*WhenMust {
	out := have[:0:0]
	for _, h := range have {
		drop := false
		for _, r := range remove {
			if h.Expr == r.Expr {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, h)
		}
	}
	return out
}

func removeMatchingUniqueGroup(have [][]string, remove []string) [][]string {
	target := strings.Join(remove, " ")
	out := have[:0:0]
	for _, h := range have {
		if strings.Join(h, " ") != target {
			out = append(out, h)
		}
	}
	return out
}

// unlinkSchemaNode removes n from its owning parent's Children, or from its
// effective module's top-level DataNodes/RPCs/Notifs when n has no parent.
func unlinkSchemaNode(n *SchemaNode) {
	if n.Parent != nil {
		n.Parent.Children = removeSchemaNode(n.Parent.Children, n)
		return
	}
	owner := n.EffectiveModule()
	if owner == nil {
		return
	}
	owner.DataNodes = removeSchemaNode(owner.DataNodes, n)
	owner.RPCs = removeSchemaNode(owner.RPCs, n)
	owner.Notifs = removeSchemaNode(owner.Notifs, n)
}

func removeSchemaNode(list []*SchemaNode, n *SchemaNode) []*SchemaNode {
	for i, c := range list {
		if c == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
