package schema

import "testing"

func newTestModule(name string) *Module {
	return &Module{Name: name, Namespace: "urn:test:" + name, Prefix: name, Revisions: []Revision{{Date: "2024-01-01"}}}
}

// TestResolveIdentityBaseCycle checks a derivation cycle: identity a
// derives from b, b derives from a.
func TestResolveIdentityBaseCycle(t *testing.T) {
	mod := newTestModule("m")
	a := &Identity{Name: "a", Module: mod, BaseName: "m:b"}
	b := &Identity{Name: "b", Module: mod, BaseName: "m:a"}
	mod.Identities = []*Identity{a, b}

	lookup := func(name string) *Identity {
		n := stripPrefix(name)
		for _, id := range mod.Identities {
			if id.Name == n {
				return id
			}
		}
		return nil
	}

	r := NewResolver(nil)
	dg := r.ResolveIdentityBase(a, lookup)
	if dg == nil {
		t.Fatal("expected circular-derivation diagnostic")
	}
	if dg.Vecode.String() != "Circular" {
		t.Errorf("vecode = %s, want Circular", dg.Vecode)
	}
}

func TestResolveIdentityBaseChain(t *testing.T) {
	mod := newTestModule("m")
	base := &Identity{Name: "base", Module: mod}
	mid := &Identity{Name: "mid", Module: mod, BaseName: "m:base"}
	leaf := &Identity{Name: "leaf", Module: mod, BaseName: "m:mid"}
	mod.Identities = []*Identity{base, mid, leaf}

	lookup := func(name string) *Identity {
		n := stripPrefix(name)
		for _, id := range mod.Identities {
			if id.Name == n {
				return id
			}
		}
		return nil
	}

	r := NewResolver(nil)
	if dg := r.ResolveIdentityBase(mid, lookup); dg != nil {
		t.Fatalf("ResolveIdentityBase(mid): %v", dg)
	}
	if dg := r.ResolveIdentityBase(leaf, lookup); dg != nil {
		t.Fatalf("ResolveIdentityBase(leaf): %v", dg)
	}
	if !leaf.DerivesFrom(base) {
		t.Error("expected leaf to transitively derive from base")
	}
}

// TestResolveUsesExpandsGroupingChildren checks that a uses site is
// replaced by its grouping's children.
func TestResolveUsesExpandsGroupingChildren(t *testing.T) {
	mod := newTestModule("m")
	groupingLeaf := &SchemaNode{Kind: KindLeaf, Name: "x", Module: mod, Type: &Type{Base: BaseString}}
	grouping := &SchemaNode{Kind: KindGrouping, Name: "g", Module: mod}
	grouping.AddChild(groupingLeaf)

	container := &SchemaNode{Kind: KindContainer, Name: "c", Module: mod}
	usesSite := &SchemaNode{Kind: KindUses, Name: "g", Module: mod, UsesInfo: &Uses{GroupingName: "g", Grouping: grouping}}
	container.AddChild(usesSite)

	r := NewResolver(nil)
	if dg := r.ResolveUses(usesSite); dg != nil {
		t.Fatalf("ResolveUses: %v", dg)
	}
	if len(container.Children) != 1 || container.Children[0].Name != "x" {
		t.Fatalf("expected uses site replaced by grouping leaf x, got %+v", container.Children)
	}
	if container.Children[0] == groupingLeaf {
		t.Error("expected a deep copy of the grouping's leaf, not the original")
	}
}

func TestValidateListKeysRejectsMissingKey(t *testing.T) {
	mod := newTestModule("m")
	list := &SchemaNode{Kind: KindList, Name: "l", Module: mod, KeyNames: []string{"id"}}
	r := NewResolver(nil)
	dg := r.ValidateListKeys(list)
	if dg == nil || dg.Vecode.String() != "KeyMissing" {
		t.Fatalf("expected KeyMissing, got %v", dg)
	}
}

func TestValidateListKeysRejectsDuplicateKey(t *testing.T) {
	mod := newTestModule("m")
	list := &SchemaNode{Kind: KindList, Name: "l", Module: mod, KeyNames: []string{"id", "id"}}
	idLeaf := &SchemaNode{Kind: KindLeaf, Name: "id", Module: mod, Type: &Type{Base: BaseString}}
	list.AddChild(idLeaf)
	r := NewResolver(nil)
	dg := r.ValidateListKeys(list)
	if dg == nil || dg.Vecode.String() != "KeyDup" {
		t.Fatalf("expected KeyDup, got %v", dg)
	}
}

func TestValidateListKeysSucceeds(t *testing.T) {
	mod := newTestModule("m")
	list := &SchemaNode{Kind: KindList, Name: "l", Module: mod, KeyNames: []string{"id"}}
	idLeaf := &SchemaNode{Kind: KindLeaf, Name: "id", Module: mod, Type: &Type{Base: BaseString}}
	list.AddChild(idLeaf)
	r := NewResolver(nil)
	if dg := r.ValidateListKeys(list); dg != nil {
		t.Fatalf("ValidateListKeys: %v", dg)
	}
	if len(list.KeyLeafs) != 1 || list.KeyLeafs[0] != idLeaf {
		t.Errorf("expected KeyLeafs bound to idLeaf, got %+v", list.KeyLeafs)
	}
}

func TestStatusConsistency(t *testing.T) {
	mod := newTestModule("m")
	current := &SchemaNode{Kind: KindLeaf, Name: "a", Module: mod, Status: StatusCurrent}
	obsolete := &SchemaNode{Kind: KindLeaf, Name: "b", Module: mod, Status: StatusObsolete}
	if dg := CheckStatusConsistency(current, obsolete, "leafref"); dg == nil {
		t.Error("expected current-referencing-obsolete to be flagged")
	}
	deprecated := &SchemaNode{Kind: KindLeaf, Name: "c", Module: mod, Status: StatusDeprecated}
	if dg := CheckStatusConsistency(deprecated, obsolete, "leafref"); dg == nil {
		t.Error("expected deprecated-referencing-obsolete to be flagged")
	}
	if dg := CheckStatusConsistency(current, deprecated, "leafref"); dg == nil {
		t.Error("expected current-referencing-deprecated to be flagged")
	}
	if dg := CheckStatusConsistency(obsolete, current, "leafref"); dg != nil {
		t.Errorf("obsolete referencing current should be allowed, got %v", dg)
	}
}
