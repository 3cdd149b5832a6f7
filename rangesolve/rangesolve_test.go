package rangesolve

import "testing"

func TestParseAndString(t *testing.T) {
	tests := map[string]struct {
		in string
		kind Kind
		want string
	}{
		"single range": {in: "1..20", kind: Signed, want: "1..20"},
		"two ranges": {in: "1..20|50..max", kind: Signed, want: "1..20|50..max"},
		"coalesces adjacent": {in: "1..5|6..10", kind: Signed, want: "1..10"},
		"single value": {in: "42", kind: Unsigned, want: "42"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				r, err := Parse(tc.in, tc.kind, 0)
				if err != nil {
					t.Fatalf("Parse(%q) error: %v", tc.in, err)
				}
				if got := r.String(); got != tc.want {
					t.Errorf("Parse(%q).String() = %q, want %q", tc.in, got, tc.want)
				}
		})
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"out of order": "20..1",
		"overlapping": "1..10|5..15",
		"too many dots": "1..2..3",
		"unparseable token": "abc..10",
		"empty": "",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
				if _, err := Parse(in, Signed, 0); err == nil {
					t.Errorf("Parse(%q) succeeded, want error", in)
				}
		})
	}
}

// TestNarrowSubsetOfParent checks a typedef chain narrowing its range:
// typedef t1 { type int16 { range "1..100"; }}
// typedef t2 { type t1 { range "10..50 | 80..90"; }}
func TestNarrowSubsetOfParent(t *testing.T) {
	parent, err := Parse("1..100", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	child, err := Parse("10..50|80..90", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Narrow(parent, child)
	if err != nil {
		t.Fatalf("Narrow failed: %v", err)
	}
	if got.String() != "10..50|80..90" {
		t.Errorf("Narrow result = %s, want 10..50|80..90", got)
	}
}

func TestNarrowRejectsEscapingParent(t *testing.T) {
	parent, err := Parse("1..100", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	child, err := Parse("10..200", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Narrow(parent, child); err == nil {
		t.Error("Narrow(1..100, 10..200) succeeded, want error ")
	}
}

func TestNarrowBindsMinMaxToParent(t *testing.T) {
	parent, err := Parse("10..90", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	child, err := Parse("min..max", Signed, 0)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Narrow(parent, child)
	if err != nil {
		t.Fatalf("Narrow failed: %v", err)
	}
	if got.String() != "10..90" {
		t.Errorf("Narrow(min..max against 10..90) = %s, want 10..90", got)
	}
}

func TestBuiltinDomains(t *testing.T) {
	if Int8Range.String() != "-128..127" {
		t.Errorf("Int8Range = %s", Int8Range)
	}
	if Uint8Range.String() != "0..255" {
		t.Errorf("Uint8Range = %s", Uint8Range)
	}
	d := Decimal64Domain(2)
	if len(d.Intervals) != 1 {
		t.Fatalf("Decimal64Domain intervals = %d, want 1", len(d.Intervals))
	}
}

func TestNumberString(t *testing.T) {
	tests := map[string]struct {
		n Number
		want string
	}{
		"positive int": {n: FromInt(42), want: "42"},
		"negative int": {n: FromInt(-42), want: "-42"},
		"min keyword": {n: Number{Kind: MinKeyword}, want: "min"},
		"max keyword": {n: Number{Kind: MaxKeyword}, want: "max"},
		"decimal value": {n: Number{Kind: Positive, Value: 150, FractionDigits: 2}, want: "1.50"},
		"decimal padded": {n: Number{Kind: Positive, Value: 5, FractionDigits: 2}, want: "0.05"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
				if got := tc.n.String(); got != tc.want {
					t.Errorf("String() = %q, want %q", got, tc.want)
				}
		})
	}
}

func TestRangeEqual(t *testing.T) {
	a, _ := Parse("1..10", Signed, 0)
	b, _ := Parse("1..10", Signed, 0)
	c, _ := Parse("1..11", Signed, 0)
	if !a.Equal(b) {
		t.Error("expected a.Equal(b)")
	}
	if a.Equal(c) {
		t.Error("expected !a.Equal(c)")
	}
}
