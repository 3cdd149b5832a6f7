// Package rangesolve parses and intersects `range`/`length` restriction
// chains over signed, unsigned, and decimal64 domains.
//
// A restricted type must always narrow its parent's effective range, never
// merely redefine it in isolation; Narrow enforces that subset relationship
// explicitly rather than leaving it to be checked elsewhere.
package rangesolve

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind tags which domain a Range was parsed against.
type Kind int

const (
	Signed Kind = iota
	Unsigned
	FP
)

// NumberKind classifies a single Number value: a finite positive or
// negative number, or the `min`/`max` keyword.
type NumberKind int

const (
	Positive NumberKind = iota
	Negative
	MinKeyword
	MaxKeyword
)

const (
	maxFractionDigits uint8 = 18
	space18 = "000000000000000000"
)

// Number is either an integer magnitude in [-(2^64-1), 2^64-1] or a YANG
// decimal64 value, or the "min"/"max" keywords that bind to the domain's
// (or parent's) effective endpoints.
type Number struct {
	Kind NumberKind
	Value uint64
	FractionDigits uint8
}

func (n Number) isDecimal() bool { return n.FractionDigits != 0 }

// String renders n using YANG notation.
func (n Number) String() string {
	switch n.Kind {
	case MinKeyword:
		return "min"
	case MaxKeyword:
		return "max"
	}
	out := strconv.FormatUint(n.Value, 10)
	if n.Kind == Negative && n.Value != 0 {
		out = "-" + out
	}
	if n.isDecimal() {
		sign := ""
		if strings.HasPrefix(out, "-") {
			sign, out = "-", out[1:]
		}
		fd := int(n.FractionDigits)
		if fd > len(out) {
			out = space18[:fd-len(out)] + out
		}
		split := len(out) - fd
		if split == 0 {
			out = "0." + out
		} else {
			out = out[:split] + "." + out[split:]
		}
		out = sign + out
	}
	return out
}

// Less reports whether n sorts strictly before m, treating MinKeyword as
// less than everything and MaxKeyword as greater than everything.
func (n Number) Less(m Number) bool {
	if n.Kind == MinKeyword {
		return m.Kind != MinKeyword
	}
	if m.Kind == MinKeyword {
		return false
	}
	if n.Kind == MaxKeyword {
		return false
	}
	if m.Kind == MaxKeyword {
		return true
	}
	return n.signedValue() < m.signedValue()
}

// Equal reports whether n and m denote the same value.
func (n Number) Equal(m Number) bool {
	return n.Kind == m.Kind && n.Value == m.Value && (n.Kind != Positive && n.Kind != Negative || n.FractionDigits == m.FractionDigits)
}

// signedValue returns n as a float64 for ordering. Every value goes through
// float64, so ordering is exact only for magnitudes up to 2^53; larger values
// closer together than float64's spacing compare as equal.
func (n Number) signedValue() float64 {
	v := float64(n.Value)
	if n.Kind == Negative {
		v = -v
	}
	return v
}

func fromInt(i int64) Number {
	if i < 0 {
		return Number{Kind: Negative, Value: uint64(-i)}
	}
	return Number{Kind: Positive, Value: uint64(i)}
}

func fromUint(u uint64) Number {
	return Number{Kind: Positive, Value: u}
}

func parseNumber(s string, decimal bool, fracDigits uint8) (Number, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "min":
		return Number{Kind: MinKeyword}, nil
	case "max":
		return Number{Kind: MaxKeyword}, nil
	case "", "+", "-":
		return Number{}, errors.New("rangesolve: empty or sign-only number")
	}
	if decimal {
		return parseDecimal(s, fracDigits)
	}
	return parseInt(s)
}

func parseInt(s string) (Number, error) {
	kind := Positive
	rest := s
	switch s[0] {
	case '+':
		rest = s[1:]
	case '-':
		kind = Negative
		rest = s[1:]
	}
	v, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return Number{}, fmt.Errorf("rangesolve: %q is not a valid integer: %w", s, err)
	}
	return Number{Kind: kind, Value: v}, nil
}

func parseDecimal(s string, fracDigits uint8) (Number, error) {
	if fracDigits < 1 || fracDigits > maxFractionDigits {
		return Number{}, fmt.Errorf("rangesolve: fraction-digits %d out of range [1,%d]", fracDigits, maxFractionDigits)
	}
	kind := Positive
	rest := s
	switch s[0] {
	case '+':
		rest = s[1:]
	case '-':
		kind = Negative
		rest = s[1:]
	}
	dot := strings.IndexByte(rest, '.')
	var seen uint8
	digits := rest
	if dot >= 0 {
		seen = uint8(len(rest) - dot - 1)
		digits = rest[:dot] + rest[dot+1:]
	}
	if seen > fracDigits {
		return Number{}, fmt.Errorf("rangesolve: %q has more than %d fractional digits", s, fracDigits)
	}
	digits += space18[:fracDigits-seen]
	v, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return Number{}, fmt.Errorf("rangesolve: %q is not a valid decimal64: %w", s, err)
	}
	return Number{Kind: kind, Value: v, FractionDigits: fracDigits}, nil
}

// Interval is a single inclusive [Min, Max] bound, tagged with the domain it
// was parsed against.
type Interval struct {
	Min, Max Number
}

func (iv Interval) String() string {
	if iv.Min.Equal(iv.Max) {
		return iv.Min.String()
	}
	return iv.Min.String() + ".." + iv.Max.String()
}

// Range is an ascending, disjoint set of Intervals, as produced by Parse.
type Range struct {
	Kind Kind
	Intervals []Interval
}

func (r Range) String() string {
	parts := make([]string, len(r.Intervals))
	for i, iv := range r.Intervals {
		parts[i] = iv.String()
	}
	return strings.Join(parts, "|")
}

func (r Range) Len() int { return len(r.Intervals) }
func (r Range) Swap(i, j int) { r.Intervals[i], r.Intervals[j] = r.Intervals[j], r.Intervals[i] }
func (r Range) Less(i, j int) bool {
	a, b := r.Intervals[i], r.Intervals[j]
	if a.Min.Less(b.Min) {
		return true
	}
	if b.Min.Less(a.Min) {
		return false
	}
	return a.Max.Less(b.Max)
}

// Equal reports whether r and s contain identical interval sequences.
func (r Range) Equal(s Range) bool {
	if len(r.Intervals) != len(s.Intervals) {
		return false
	}
	for i, iv := range r.Intervals {
		o := s.Intervals[i]
		if !iv.Min.Equal(o.Min) || !iv.Max.Equal(o.Max) {
			return false
		}
	}
	return true
}

// Parse parses a textual restriction like "1..20 | 50..max" into a Range.
// kind selects the integer/decimal domain; fracDigits is ignored unless
// kind == FP. The result is sorted, adjacent intervals are coalesced, and it
// is validated for internal
// well-formedness (ascending, non-overlapping, min<=max per interval) but is
// NOT checked against any parent range — use Narrow for that.
func Parse(s string, kind Kind, fracDigits uint8) (Range, error) {
	decimal := kind == FP
	segments := strings.Split(s, "|")
	intervals := make([]Interval, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		bounds := strings.SplitN(seg, "..", 2)
		min, err := parseNumber(bounds[0], decimal, fracDigits)
		if err != nil {
			return Range{}, err
		}
		max := min
		if len(bounds) == 2 {
			max, err = parseNumber(bounds[1], decimal, fracDigits)
			if err != nil {
				return Range{}, err
			}
		}
		if max.Less(min) {
			return Range{}, fmt.Errorf("rangesolve: range boundaries out of order in %q", seg)
		}
		intervals = append(intervals, Interval{Min: min, Max: max})
	}
	r := Range{Kind: kind, Intervals: intervals}
	sort.Sort(r)
	r.Intervals = coalesce(r.Intervals)
	if err := validate(r.Intervals); err != nil {
		return Range{}, err
	}
	return r, nil
}

func validate(intervals []Interval) error {
	for i, iv := range intervals {
		if iv.Max.Less(iv.Min) {
			return fmt.Errorf("rangesolve: invalid interval %s", iv)
		}
		if i > 0 && !intervals[i-1].Max.Less(iv.Min) {
			return errors.New("rangesolve: overlapping or out-of-order intervals")
		}
	}
	return nil
}

func coalesce(intervals []Interval) []Interval {
	if len(intervals) < 2 {
		return intervals
	}
	out := make([]Interval, 1, len(intervals))
	out[0] = intervals[0]
	for _, iv := range intervals[1:] {
		last := &out[len(out)-1]
		if last.Max.Less(iv.Min) && adjacentOrOverlapping(*last, iv) {
			if last.Max.Less(iv.Max) {
				last.Max = iv.Max
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

func adjacentOrOverlapping(a, b Interval) bool {
	if a.Max.Kind == MaxKeyword {
		return true
	}
	return !a.Max.addOne().Less(b.Min)
}

func (n Number) addOne() Number {
	if n.Kind == MinKeyword || n.Kind == MaxKeyword {
		return n
	}
	if n.Kind == Negative {
		if n.Value == 0 {
			return Number{Kind: Positive, Value: 1, FractionDigits: n.FractionDigits}
		}
		return Number{Kind: Negative, Value: n.Value - 1, FractionDigits: n.FractionDigits}
	}
	return Number{Kind: Positive, Value: n.Value + 1, FractionDigits: n.FractionDigits}
}

// Narrow resolves child against a parent Range: each interval of child must
// be a subset of some interval of parent. min/max keywords in child are first bound to parent's
// effective endpoints. An error is returned if any child interval escapes
// every parent interval.
func Narrow(parent, child Range) (Range, error) {
	if len(parent.Intervals) == 0 {
		return child, nil
	}
	bound := make([]Interval, len(child.Intervals))
	for i, iv := range child.Intervals {
		b := iv
		if b.Min.Kind == MinKeyword {
			b.Min = parent.Intervals[0].Min
		}
		if b.Max.Kind == MaxKeyword {
			b.Max = parent.Intervals[len(parent.Intervals)-1].Max
		}
		bound[i] = b
	}
	for _, iv := range bound {
		if !containedInAny(parent.Intervals, iv) {
			return Range{}, fmt.Errorf("rangesolve: interval %s is not a subset of the parent range %s", iv, parent)
		}
	}
	return Range{Kind: child.Kind, Intervals: bound}, nil
}

func containedInAny(parents []Interval, iv Interval) bool {
	for _, p := range parents {
		if !iv.Min.Less(p.Min) && !p.Max.Less(iv.Max) {
			return true
		}
	}
	return false
}

// Builtin domain ranges, fixed by the YANG base types.
var (
	Int8Range = mustParse("-128..127", Signed, 0)
	Int16Range = mustParse("-32768..32767", Signed, 0)
	Int32Range = mustParse("-2147483648..2147483647", Signed, 0)
	Int64Range = mustParse("-9223372036854775808..9223372036854775807", Signed, 0)
	Uint8Range = mustParse("0..255", Unsigned, 0)
	Uint16Range = mustParse("0..65535", Unsigned, 0)
	Uint32Range = mustParse("0..4294967295", Unsigned, 0)
	Uint64Range = mustParse("0..18446744073709551615", Unsigned, 0)
	// LengthDomain is the unsigned [0, 2^64-1] domain string/binary length
	// restrictions are intersected against.
	LengthDomain = Uint64Range
)

// Decimal64Domain returns the ±(2^63-1)/10^fractionDigits domain for a
// decimal64 type with the given number of fraction digits.
func Decimal64Domain(fractionDigits uint8) Range {
	bound := uint64(1)<<63 - 1
	return Range{
		Kind: FP,
		Intervals: []Interval{{
				Min: Number{Kind: Negative, Value: bound, FractionDigits: fractionDigits},
				Max: Number{Kind: Positive, Value: bound, FractionDigits: fractionDigits},
		}},
	}
}

func mustParse(s string, kind Kind, fracDigits uint8) Range {
	r, err := Parse(s, kind, fracDigits)
	if err != nil {
		panic(err)
	}
	return r
}

// FromInt and FromUint construct a bare Number from a machine integer,
// useful for callers building Intervals programmatically rather than via
// Parse (e.g. the Resolver building a one-value range from a default's
// length).
func FromInt(i int64) Number { return fromInt(i) }
func FromUint(u uint64) Number { return fromUint(u) }
