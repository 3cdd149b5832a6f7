package data

import (
	"testing"

	"github.com/yangcore/yangcore/schema"
	"github.com/yangcore/yangcore/xpath"
)

func testModule() *schema.Module {
	return &schema.Module{Name: "m", Namespace: "urn:test:m", Prefix: "m", Revisions: []schema.Revision{{Date: "2024-01-01"}}}
}

// fakeEvaluator reports a fixed boolean per expression, used to drive the
// when/must scheduling tests deterministically without a real XPath engine.
type fakeEvaluator struct {
	results map[string]bool
}

func (f fakeEvaluator) EvalBoolean(expr string, ctx xpath.Node) (bool, error) {
	return f.results[expr], nil
}

// TestWhenFalseDeletesSubtree checks that container c with
// when "../enable = 'true'"; data <enable>false</enable><c><x>1</x></c>
// validated with auto-delete yields a tree containing only <enable>.
func TestWhenFalseDeletesSubtree(t *testing.T) {
	mod := testModule()
	enableSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "enable", Module: mod, Type: &schema.Type{Base: schema.BaseString}}
	xSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "x", Module: mod, Type: &schema.Type{Base: schema.BaseString}}
	cSchema := &schema.SchemaNode{Kind: schema.KindContainer, Name: "c", Module: mod,
		When: &schema.WhenMust{Expr: "../enable = 'true'"}}
	cSchema.AddChild(xSchema)

	root := &DataNode{Schema: &schema.SchemaNode{Kind: schema.KindContainer, Name: "root", Module: mod}}
	enable := &DataNode{Schema: enableSchema, ValueStr: "false"}
	root.AddChild(enable)
	c := &DataNode{Schema: cSchema}
	root.AddChild(c)
	x := &DataNode{Schema: xSchema, ValueStr: "1"}
	c.AddChild(x)

	w := NewUnresData(Options{
			Eval: fakeEvaluator{results: map[string]bool{"../enable = 'true'": false}},
			AutoDelete: true,
	})
	w.Add(&UnresDataItem{Kind: ItemWhen, Node: c})

	diags := w.Run()
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics under auto-delete, got: %v", diags)
	}
	if len(root.Children) != 1 || root.Children[0] != enable {
		t.Fatalf("expected only <enable> to survive, got %+v", root.Children)
	}
}

func TestWhenFalseWithoutAutoDeleteIsValidationError(t *testing.T) {
	mod := testModule()
	cSchema := &schema.SchemaNode{Kind: schema.KindContainer, Name: "c", Module: mod,
		When: &schema.WhenMust{Expr: "false()"}}
	root := &DataNode{Schema: &schema.SchemaNode{Kind: schema.KindContainer, Name: "root", Module: mod}}
	c := &DataNode{Schema: cSchema}
	root.AddChild(c)

	w := NewUnresData(Options{Eval: fakeEvaluator{results: map[string]bool{"false()": false}}, AutoDelete: false})
	w.Add(&UnresDataItem{Kind: ItemWhen, Node: c})

	diags := w.Run()
	if len(diags) != 1 {
		t.Fatalf("expected exactly one Validation diagnostic, got %d: %v", len(diags), diags)
	}
}

// TestMustFalseCarriesAppTag checks that a failing must-statement's
// error-app-tag is carried onto the resulting diagnostic.
func TestMustFalseCarriesAppTag(t *testing.T) {
	mod := testModule()
	leafSchema := &schema.SchemaNode{
		Kind: schema.KindLeaf, Name: "age", Module: mod, Type: &schema.Type{Base: schema.BaseInt32},
		Must: []*schema.WhenMust{{Expr: ". >= 0", ErrAppTag: "bad-age", ErrMessage: "age must be non-negative"}},
	}
	leaf := &DataNode{Schema: leafSchema, ValueStr: "-5"}

	w := NewUnresData(Options{Eval: fakeEvaluator{results: map[string]bool{". >= 0": false}}})
	w.Add(&UnresDataItem{Kind: ItemMust, Node: leaf, MustIndex: 0})

	diags := w.Run()
	if len(diags) != 1 {
		t.Fatalf("expected one Validation diagnostic, got %d", len(diags))
	}
	if diags[0].ErrAppTag != "bad-age" || diags[0].ErrMsg != "age must be non-negative" {
		t.Errorf("expected app-tag/message to be carried through, got %+v", diags[0])
	}
}

func TestLeafrefResolvesAgainstMatchingInstance(t *testing.T) {
	mod := testModule()
	targetSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "name", Module: mod, Type: &schema.Type{Base: schema.BaseString}}
	refSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "ref", Module: mod, Type: &schema.Type{
			Base: schema.BaseLeafref, LeafrefTarget: targetSchema,
	}}
	refSchema.Type.SetRequireInstance(true)

	root := &DataNode{Schema: &schema.SchemaNode{Kind: schema.KindContainer, Name: "root", Module: mod}}
	target := &DataNode{Schema: targetSchema, ValueStr: "alice"}
	root.AddChild(target)
	ref := &DataNode{Schema: refSchema, ValueStr: "alice"}
	root.AddChild(ref)

	w := NewUnresData(Options{})
	w.Add(&UnresDataItem{Kind: ItemLeafref, Node: ref})
	diags := w.Run()
	if len(diags) != 0 {
		t.Fatalf("expected leafref to resolve, got: %v", diags)
	}
}

func TestLeafrefRequireInstanceFailsWhenUnmatched(t *testing.T) {
	mod := testModule()
	targetSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "name", Module: mod, Type: &schema.Type{Base: schema.BaseString}}
	refSchema := &schema.SchemaNode{Kind: schema.KindLeaf, Name: "ref", Module: mod, Type: &schema.Type{
			Base: schema.BaseLeafref, LeafrefTarget: targetSchema,
	}}
	refSchema.Type.SetRequireInstance(true)

	root := &DataNode{Schema: &schema.SchemaNode{Kind: schema.KindContainer, Name: "root", Module: mod}}
	ref := &DataNode{Schema: refSchema, ValueStr: "nobody"}
	root.AddChild(ref)

	w := NewUnresData(Options{})
	w.Add(&UnresDataItem{Kind: ItemLeafref, Node: ref})
	diags := w.Run()
	if len(diags) != 1 {
		t.Fatalf("expected one NoLeafref diagnostic, got %d", len(diags))
	}
}
