package schema

import (
	"github.com/google/go-cmp/cmp"

	"github.com/yangcore/yangcore/rangesolve"
)

// BaseKind enumerates the YANG built-in base types a Type ultimately reduces
// to.
type BaseKind int

const (
	BaseInt8 BaseKind = iota
	BaseInt16
	BaseInt32
	BaseInt64
	BaseUint8
	BaseUint16
	BaseUint32
	BaseUint64
	BaseDecimal64
	BaseString
	BaseBinary
	BaseBits
	BaseEnumeration
	BaseBoolean
	BaseEmpty
	BaseUnion
	BaseLeafref
	BaseInstanceIdentifier
	BaseIdentityref
)

func (b BaseKind) String() string {
	names := [...]string{
		"int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64",
		"decimal64", "string", "binary", "bits", "enumeration", "boolean", "empty",
		"union", "leafref", "instance-identifier", "identityref",
	}
	if int(b) < len(names) {
		return names[b]
	}
	return "unknown"
}

func (b BaseKind) isInteger() bool {
	return b >= BaseInt8 && b <= BaseUint64
}

// baseKindByName reverses BaseKind.String, reporting whether name is one of
// the nineteen YANG built-in type names rather than a typedef reference.
func baseKindByName(name string) (BaseKind, bool) {
	for k := BaseInt8; k <= BaseIdentityref; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

func (b BaseKind) rangeKind() rangesolve.Kind {
	switch {
	case b == BaseInt8 || b == BaseInt16 || b == BaseInt32 || b == BaseInt64:
		return rangesolve.Signed
	case b == BaseDecimal64:
		return rangesolve.FP
	default:
		return rangesolve.Unsigned
	}
}

// EnumValue is one `enum` statement value within an enumeration type.
type EnumValue struct {
	Name string
	Value int32
}

// BitValue is one `bit` statement value within a bits type.
type BitValue struct {
	Name string
	Position uint32
}

// Type is a variant over the built-in base kinds. Only the
// facets relevant to Base are populated; the rest are left at zero value.
type Type struct {
	Base BaseKind
	Name string // the type name as written (builtin name or typedef name)

	// Typedef is set when Type names a user typedef rather than a builtin
	// directly; resolution walks Typedef.Der recursively.
	Typedef *Typedef

	// Numeric / string-length facets.
	Range *rangesolve.Range
	Length *rangesolve.Range
	FractionDigits uint8

	Patterns []string // regular expressions, ANDed together

	Enums []EnumValue
	Bits []BitValue

	// Union facet.
	Union []*Type

	// Leafref facet.
	LeafrefPath string
	LeafrefTarget *SchemaNode // weak; resolved Leaf/LeafList
	RequireInstance bool
	requireInstSet bool

	// Identityref facet.
	IdentityBaseName string
	IdentityBase *Identity // weak
}

// SetRequireInstance explicitly records a require-instance statement; the
// default (when unset) is true for instance-identifier/leafref per RFC 7950.
func (t *Type) SetRequireInstance(v bool) {
	t.RequireInstance = v
	t.requireInstSet = true
}

// EffectiveRequireInstance returns the require-instance value to enforce,
// applying the RFC default of true when not explicitly stated.
func (t *Type) EffectiveRequireInstance() bool {
	if !t.requireInstSet {
		return true
	}
	return t.RequireInstance
}

// Equal compares t and u by Base and Name, by their Enums/Bits facets (with
// go-cmp), and recursively by their Union members. Range, Length,
// FractionDigits, Patterns, the leafref and identityref facets, and the
// resolved Typedef pointer are not compared.
func (t *Type) Equal(u *Type) bool {
	if t == nil || u == nil {
		return t == u
	}
	if t.Base != u.Base || t.Name != u.Name {
		return false
	}
	if !cmp.Equal(t.Enums, u.Enums) || !cmp.Equal(t.Bits, u.Bits) {
		return false
	}
	if len(t.Union) != len(u.Union) {
		return false
	}
	for i := range t.Union {
		if !t.Union[i].Equal(u.Union[i]) {
			return false
		}
	}
	return true
}

// EffectiveRange computes t's fully-intersected range the same way
// Typedef.EffectiveRange does, for a leaf/leaf-list Type that names a
// typedef directly rather than restricting a builtin inline.
func (t *Type) EffectiveRange() (*rangesolve.Range, error) {
	if t == nil {
		return nil, nil
	}
	var parent *rangesolve.Range
	if t.Typedef != nil {
		p, err := t.Typedef.EffectiveRange()
		if err != nil {
			return nil, err
		}
		parent = p
	} else {
		parent = builtinRange(t.Base, t.FractionDigits)
	}
	if t.Range == nil {
		return parent, nil
	}
	if parent == nil {
		return t.Range, nil
	}
	narrowed, err := rangesolve.Narrow(*parent, *t.Range)
	if err != nil {
		return nil, err
	}
	return &narrowed, nil
}

// Typedef is a named, derivable type definition. Der points at
// the typedef it derives from (nil if it derives directly from a builtin);
// the chain must be acyclic and terminate at a builtin, enforced by
// UnresSchema's TypeDer resolution.
type Typedef struct {
	Name string
	Module *Module
	Status Status
	Description string
	Default string

	// BaseTypeName is the type name as written in source (could be another
	// typedef's name or a builtin name); Der is the resolved typedef it
	// names, or nil if BaseTypeName already names a builtin.
	BaseTypeName string
	Der *Typedef // weak

	Type *Type // this typedef's own (possibly restricting) Type
}

// EffectiveRange walks the typedef chain to compute td's fully-intersected
// range, applying Narrow at each link from the base type's domain outward
//. Returns nil if no range restriction applies anywhere in
// the chain.
func (td *Typedef) EffectiveRange() (*rangesolve.Range, error) {
	if td == nil || td.Type == nil {
		return nil, nil
	}
	var parent *rangesolve.Range
	if td.Der != nil {
		p, err := td.Der.EffectiveRange()
		if err != nil {
			return nil, err
		}
		parent = p
	} else {
		parent = builtinRange(td.Type.Base, td.Type.FractionDigits)
	}
	if td.Type.Range == nil {
		return parent, nil
	}
	if parent == nil {
		return td.Type.Range, nil
	}
	narrowed, err := rangesolve.Narrow(*parent, *td.Type.Range)
	if err != nil {
		return nil, err
	}
	return &narrowed, nil
}

func builtinRange(base BaseKind, fracDigits uint8) *rangesolve.Range {
	var r rangesolve.Range
	switch base {
	case BaseInt8:
		r = rangesolve.Int8Range
	case BaseInt16:
		r = rangesolve.Int16Range
	case BaseInt32:
		r = rangesolve.Int32Range
	case BaseInt64:
		r = rangesolve.Int64Range
	case BaseUint8:
		r = rangesolve.Uint8Range
	case BaseUint16:
		r = rangesolve.Uint16Range
	case BaseUint32:
		r = rangesolve.Uint32Range
	case BaseUint64:
		r = rangesolve.Uint64Range
	case BaseDecimal64:
		r = rangesolve.Decimal64Domain(fracDigits)
	default:
		return nil
	}
	return &r
}
