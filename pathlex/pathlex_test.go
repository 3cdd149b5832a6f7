package pathlex

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseIdentifier(t *testing.T) {
	tests := map[string]struct {
		in string
		wantN int
		wantErr bool
	}{
		"simple": {in: "foo", wantN: 3},
		"with digits and dash": {in: "foo-bar2.baz", wantN: 12},
		"underscore start": {in: "_leading", wantN: 8},
		"stops at colon": {in: "foo:bar", wantN: 3},
		"empty is error": {in: "", wantErr: true},
		"starts with digit": {in: "1abc", wantErr: true},
		"xml lower": {in: "xml-thing", wantErr: true},
		"XML upper": {in: "XML-thing", wantErr: true},
		"Xml mixed": {in: "Xml-thing", wantErr: true},
		"xML mixed": {in: "xML-thing", wantErr: true},
		"XmL mixed": {in: "XmL-thing", wantErr: true},
		"xMl mixed": {in: "xMl-thing", wantErr: true},
		"XML all upper": {in: "XML", wantErr: true},
		"xml exact": {in: "xml", wantErr: true},
		"xml-prefixed longer": {in: "xmlSomething", wantErr: true},
		"not xml, just x": {in: "xm", wantN: 2},
		"contains xml mid-word": {in: "prefixml", wantN: 8},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				n := ParseIdentifier(tc.in)
				if tc.wantErr {
					if Ok(n) {
						t.Fatalf("ParseIdentifier(%q) = %d, want failure", tc.in, n)
					}
					return
				}
				if !Ok(n) {
					t.Fatalf("ParseIdentifier(%q) failed at offset %d, want success", tc.in, Offset(n))
				}
				if n != tc.wantN {
					t.Errorf("ParseIdentifier(%q) = %d, want %d", tc.in, n, tc.wantN)
				}
		})
	}
}

func TestParseNodeIdentifier(t *testing.T) {
	tests := map[string]struct {
		in string
		want NodeIdentifier
		wantN int
		wantErr bool
	}{
		"no prefix": {in: "leaf-a", want: NodeIdentifier{Name: "leaf-a"}, wantN: 6},
		"prefixed": {in: "oc-if:interface", want: NodeIdentifier{ModName: "oc-if", Name: "interface"}, wantN: 15},
		"trailing": {in: "a:b/c", want: NodeIdentifier{ModName: "a", Name: "b"}, wantN: 3},
		"empty": {in: "", wantErr: true},
		"bad prefix": {in: "1bad:ok", wantErr: true},
		"dangling :": {in: "a:", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				got, n := ParseNodeIdentifier(tc.in)
				if tc.wantErr {
					if Ok(n) {
						t.Fatalf("ParseNodeIdentifier(%q) = %d, want failure", tc.in, n)
					}
					return
				}
				if !Ok(n) {
					t.Fatalf("ParseNodeIdentifier(%q) failed at %d", tc.in, Offset(n))
				}
				if n != tc.wantN || got != tc.want {
					t.Errorf("ParseNodeIdentifier(%q) = %+v, %d, want %+v, %d", tc.in, got, n, tc.want, tc.wantN)
				}
		})
	}
}

func TestParseSchemaNodeIDSegment(t *testing.T) {
	t.Run("absolute then descendant", func(t *testing.T) {
			var rel Relativity
			seg1, n1 := ParseSchemaNodeIDSegment("/oc-if:interfaces", &rel)
			if !Ok(n1) {
				t.Fatalf("first segment failed: %d", Offset(n1))
			}
			if rel != RelAbsolute {
				t.Errorf("rel = %v, want RelAbsolute", rel)
			}
			if seg1.ModName != "oc-if" || seg1.Name != "interfaces" {
				t.Errorf("seg1 = %+v", seg1)
			}

			rest := "/interface"
			seg2, n2 := ParseSchemaNodeIDSegment(rest, &rel)
			if !Ok(n2) {
				t.Fatalf("second segment failed: %d", Offset(n2))
			}
			if seg2.Name != "interface" {
				t.Errorf("seg2 = %+v", seg2)
			}
	})

	t.Run("bare descendant sets relative", func(t *testing.T) {
			var rel Relativity
			seg, n := ParseSchemaNodeIDSegment("config", &rel)
			if !Ok(n) {
				t.Fatalf("failed: %d", Offset(n))
			}
			if rel != RelRelative {
				t.Errorf("rel = %v, want RelRelative", rel)
			}
			if seg.Name != "config" {
				t.Errorf("seg = %+v", seg)
			}
	})

	t.Run("dot-slash only valid as first segment", func(t *testing.T) {
			rel := RelRelative
			_, n := ParseSchemaNodeIDSegment("./config", &rel)
			if Ok(n) {
				t.Fatalf("expected failure when rel already set, got %d", n)
			}
	})

	t.Run("predicate flagged but not consumed", func(t *testing.T) {
			var rel Relativity
			seg, n := ParseSchemaNodeIDSegment("/a:b[name='x']", &rel)
			if !Ok(n) {
				t.Fatalf("failed: %d", Offset(n))
			}
			if !seg.HasPredicate {
				t.Error("expected HasPredicate true")
			}
	})
}

func TestParsePathArg(t *testing.T) {
	tests := map[string]struct {
		in string
		want PathArg
		wantN int
		wantErr bool
	}{
		"absolute": {in: "/a:b/c", want: PathArg{ParentTimes: -1}, wantN: 0},
		"one parent": {in: "../b", want: PathArg{ParentTimes: 1}, wantN: 3},
		"three parents": {in: "../../../b", want: PathArg{ParentTimes: 3}, wantN: 9},
		"no parents, bare": {in: "b", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				got, n := ParsePathArg(tc.in)
				if tc.wantErr {
					if Ok(n) {
						t.Fatalf("expected failure, got %d", n)
					}
					return
				}
				if !Ok(n) || n != tc.wantN || got != tc.want {
					t.Errorf("ParsePathArg(%q) = %+v, %d, want %+v, %d", tc.in, got, n, tc.want, tc.wantN)
				}
		})
	}
}

func TestParsePathKeyExpr(t *testing.T) {
	got, n := ParsePathKeyExpr("current()/../../a:b/c")
	if !Ok(n) {
		t.Fatalf("failed at %d", Offset(n))
	}
	want := PathKeyExpr{
		ParentTimes: 2,
		Path: []NodeIdentifier{
			{ModName: "a", Name: "b"},
			{Name: "c"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParsePathKeyExpr mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePathPredicate(t *testing.T) {
	got, n := ParsePathPredicate("[name = current()/../name]")
	if !Ok(n) {
		t.Fatalf("failed at %d", Offset(n))
	}
	if got.Key.Name != "name" {
		t.Errorf("Key = %+v", got.Key)
	}
	if got.Expr.ParentTimes != 1 || len(got.Expr.Path) != 1 || got.Expr.Path[0].Name != "name" {
		t.Errorf("Expr = %+v", got.Expr)
	}
}

func TestParseSchemaJSONPredicate(t *testing.T) {
	tests := map[string]struct {
		in string
		want Predicate
		wantErr bool
	}{
		"single quoted key": {in: "[name='eth0']", want: Predicate{Position: -1, Key: NodeIdentifier{Name: "name"}, Value: "eth0"}},
		"double quoted key": {in: `[name="eth0"]`, want: Predicate{Position: -1, Key: NodeIdentifier{Name: "name"}, Value: "eth0"}},
		"self predicate": {in: "[.='1.1.1.1']", want: Predicate{Self: true, Position: -1, Value: "1.1.1.1"}},
		"position predicate": {in: "[3]", want: Predicate{Position: 3}},
		"position zero": {in: "[0]", want: Predicate{Position: 0}},
		"mismatched quotes": {in: `[name='eth0"]`, wantErr: true},
		"whitespace inside": {in: "[ name = 'eth0' ]", want: Predicate{Position: -1, Key: NodeIdentifier{Name: "name"}, Value: "eth0"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				got, n := ParseSchemaJSONPredicate(tc.in)
				if tc.wantErr {
					if Ok(n) {
						t.Fatalf("expected failure, got %d", n)
					}
					return
				}
				if !Ok(n) {
					t.Fatalf("failed at %d", Offset(n))
				}
				if diff := cmp.Diff(tc.want, got); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
		})
	}
}

func TestParseInstanceIdentifier(t *testing.T) {
	got, n := ParseInstanceIdentifier("/oc-if:interfaces[name='eth0']")
	if !Ok(n) {
		t.Fatalf("failed at %d", Offset(n))
	}
	if got.ModName != "oc-if" || got.Name != "interfaces" {
		t.Errorf("segment = %+v", got.NodeIdentifier)
	}
	if len(got.Predicates) != 1 || got.Predicates[0].Value != "eth0" {
		t.Errorf("predicates = %+v", got.Predicates)
	}
}

func TestOffsetPanicsOnSuccess(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic calling Offset on a success value")
		}
	}()
	Offset(ParseIdentifier("ok"))
}
