package schema

import (
	"testing"

	"github.com/yangcore/yangcore/diag"
)

// TestSchemaWorklistResolvesInDependencyOrder checks a forward
// reference: an identity whose base is declared later in the same module
// gets its Base bound by a worklist run.
func TestSchemaWorklistResolvesInDependencyOrder(t *testing.T) {
	mod := newTestModule("m")
	early := &Identity{Name: "early", Module: mod, BaseName: "m:late"}
	late := &Identity{Name: "late", Module: mod}
	mod.Identities = []*Identity{early, late}

	w := NewSchemaWorklist(nil)
	w.Add(&UnresSchemaItem{
			Kind: UnresIdentityBase,
			Module: mod,
			Resolve: func(r *Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveIdentityBase(early, func(name string) *Identity { return mod.FindIdentity(stripPrefix(name)) })
			},
	})

	diags := w.Run()
	if len(diags) != 0 {
		t.Fatalf("expected full resolution, got diagnostics: %v", diags)
	}
	if early.Base != late {
		t.Error("expected early.Base == late after worklist resolution")
	}
}

func TestSchemaWorklistReportsUnresolvable(t *testing.T) {
	mod := newTestModule("m")
	orphan := &Identity{Name: "orphan", Module: mod, BaseName: "m:missing"}
	mod.Identities = []*Identity{orphan}

	w := NewSchemaWorklist(nil)
	w.Add(&UnresSchemaItem{
			Kind: UnresIdentityBase,
			Module: mod,
			Resolve: func(r *Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveIdentityBase(orphan, func(name string) *Identity { return mod.FindIdentity(stripPrefix(name)) })
			},
	})

	diags := w.Run()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one unresolved diagnostic, got %d", len(diags))
	}
}

// TestGroupingPrephaseDependencyCounter covers the libyang-derived
// pending-uses counter: a grouping containing a nested uses is only
// considered ready once that nested uses resolves.
func TestGroupingPrephaseDependencyCounter(t *testing.T) {
	mod := newTestModule("m")
	innerLeaf := &SchemaNode{Kind: KindLeaf, Name: "y", Module: mod, Type: &Type{Base: BaseString}}
	innerGrouping := &SchemaNode{Kind: KindGrouping, Name: "inner", Module: mod}
	innerGrouping.AddChild(innerLeaf)

	outerGroupingNode := &SchemaNode{Kind: KindGrouping, Name: "outer", Module: mod}
	nestedUsesSite := &SchemaNode{Kind: KindUses, Name: "inner", Module: mod,
		UsesInfo: &Uses{GroupingName: "inner", Grouping: innerGrouping}}
	outerGroupingNode.AddChild(nestedUsesSite)
	outerGrouping := &Grouping{Node: outerGroupingNode, Name: "outer", Module: mod, PendingUses: 1}
	mod.Groupings = []*Grouping{outerGrouping}

	topUsesSite := &SchemaNode{Kind: KindUses, Name: "outer", Module: mod,
		UsesInfo: &Uses{GroupingName: "outer", Grouping: outerGroupingNode}}
	container := &SchemaNode{Kind: KindContainer, Name: "c", Module: mod}
	container.AddChild(topUsesSite)

	w := NewSchemaWorklist(nil)
	w.Add(&UnresSchemaItem{Kind: UnresUses, Node: nestedUsesSite, Module: mod, Resolve: func(r *Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveUses(nestedUsesSite)
	}})
	w.Add(&UnresSchemaItem{Kind: UnresUses, Node: topUsesSite, Module: mod, Resolve: func(r *Resolver, hide bool) *diag.Diagnostic {
				return r.ResolveUses(topUsesSite)
	}})

	diags := w.Run()
	if len(diags) != 0 {
		t.Fatalf("expected both uses sites to resolve, got: %v", diags)
	}
	if outerGrouping.PendingUses != 0 {
		t.Errorf("expected PendingUses decremented to 0, got %d", outerGrouping.PendingUses)
	}
	if len(container.Children) != 1 || container.Children[0].Name != "y" {
		t.Fatalf("expected container to end up with leaf y after both expansions, got %+v", container.Children)
	}
}
