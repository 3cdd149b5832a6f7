// Package schema implements the Context/Module/SchemaNode data model: the
// in-memory representation of modules, submodules, nodes, typedefs,
// identities, features, groupings, augments, uses, and deviations, with the
// navigation the Resolver and UnresSchema worklist need.
//
// SchemaNode is a tagged variant (Kind plus kind-specific facet pointers)
// rather than one large struct with every field populated, and is built as
// a plain pointer tree rather than an index arena: Go's garbage collector
// already resolves the cyclic-ownership problem an arena exists to solve in
// manually-memory-managed languages, so owned children are `[]*SchemaNode`
// and cross-module references (leafref targets, identity bases, augment
// targets, uses-to-grouping) are plain `*SchemaNode`/`*Identity` weak
// pointers.
package schema

import "fmt"

// Kind discriminates the SchemaNode variants.
type Kind int

const (
	KindContainer Kind = iota
	KindLeaf
	KindLeafList
	KindList
	KindChoice
	KindCase
	KindAnyXML
	KindUses
	KindGrouping
	KindAugment
	KindRPC
	KindInput
	KindOutput
	KindNotif
)

func (k Kind) String() string {
	names := [...]string{
		"container", "leaf", "leaf-list", "list", "choice", "case", "anyxml",
		"uses", "grouping", "augment", "rpc", "input", "output", "notification",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("kind-%d", int(k))
}

// TriState is a true/false/unset flag, used for the `config` flag which
// inherits from an ancestor when unset.
type TriState int

const (
	TSUnset TriState = iota
	TSTrue
	TSFalse
)

func (t TriState) Value() bool { return t == TSTrue }

func (t TriState) String() string {
	switch t {
	case TSTrue:
		return "true"
	case TSFalse:
		return "false"
	default:
		return "unset"
	}
}

// Status is the current/deprecated/obsolete partial order status-consistency
// checks are validated against.
type Status int

const (
	StatusCurrent Status = iota
	StatusDeprecated
	StatusObsolete
)

func (s Status) String() string {
	switch s {
	case StatusDeprecated:
		return "deprecated"
	case StatusObsolete:
		return "obsolete"
	default:
		return "current"
	}
}

// Allows reports whether a definition with status s may reference a
// definition with status other, per the partial order current >= deprecated
// >= obsolete: current content may not reference deprecated/obsolete, and
// deprecated may not reference obsolete.
func (s Status) Allows(other Status) bool {
	return other <= s
}

// ListAttr carries min/max-elements, shared by List and LeafList.
type ListAttr struct {
	MinElements int
	MaxElements int // -1 means "unbounded"
}

// WhenMust captures a when/must XPath-boolean expression and its optional
// error-app-tag/error-message.
type WhenMust struct {
	Expr string
	ErrAppTag string
	ErrMessage string
	Description string
}

// Uses records a pending or resolved `uses` directive. After
// resolution Grouping holds the weak target and the grouping's subtree has
// already been duplicated as siblings of the Uses node's parent with refines
// applied; Uses itself remains as metadata (StoreUses-style bookkeeping).
type Uses struct {
	GroupingName string
	Grouping *SchemaNode // weak; resolved grouping node (Kind == KindGrouping)
	Refines []*Refine
	Augments []*Augment
}

// Refine is one `refine` sub-statement against a descendant of a uses site.
type Refine struct {
	TargetName string
	Description *string
	Reference *string
	Default *string
	Mandatory *bool
	Presence *string
	MinElements *int
	MaxElements *int
	Must []*WhenMust
	Config *bool
}

// Augment records a pending or resolved `augment` directive.
// After resolution Target is the weak pointer to the spliced-into node, and
// the children that were owned by the Augment are reparented onto Target;
// the Augment node survives only as metadata.
type Augment struct {
	TargetName string
	Target *SchemaNode // weak
	IfFeatures []string
	When *WhenMust
	// ChildNames lists the node names originally owned by this augment, for
	// diagnostics after splicing transfers ownership to Target.
	ChildNames []string
}

// Deviate is one ordered deviate entry within a Deviation.
type DeviateOp int

const (
	DeviateNotSupported DeviateOp = iota
	DeviateAdd
	DeviateReplace
	DeviateDelete
)

type Deviate struct {
	Op DeviateOp
	Config *TriState
	Default *string
	Mandatory *bool
	MinElements *int
	MaxElements *int
	Type *Type
	Must []*WhenMust
	Unique []string
}

// Deviation is a `deviation` statement targeting another module's node,
// applied after base resolution.
type Deviation struct {
	TargetName string
	Target *SchemaNode // weak
	Deviates []*Deviate
}

// SchemaNode is the tagged-variant node type spanning every Kind. Common
// fields (Name, Module, Parent, Children, flags) apply to every kind;
// kind-specific data lives in the pointer-typed facet fields below, left
// nil when not applicable to Kind.
type SchemaNode struct {
	Kind Kind
	Name string
	Module *Module // owning module (origin, for effective_module)
	Parent *SchemaNode // weak; nil for a top-level data node or grouping
	// Children are owned, ordered, and exclusively parented here.
	Children []*SchemaNode

	Config TriState
	Status Status
	Mandatory bool
	Presence string // non-empty string means "presence container"; only meaningful for Container

	Description string
	Reference string

	When *WhenMust
	Must []*WhenMust

	IfFeatures []string

	// Leaf / LeafList facets.
	Type *Type
	Default string

	// Choice facet: DefaultCase is the resolved Case (or shorthand-case)
	// child named by Default, bound by ResolveChoiceDefault.
	DefaultCase *SchemaNode

	// List facets.
	KeyNames []string // raw key leaf names, whitespace-separated in source order
	KeyLeafs []*SchemaNode // resolved; weak pointers into Children
	Unique [][]string // each inner slice is one unique statement's schema-nodeids
	UniqueLeafs [][]*SchemaNode // resolved leafs, one slice per Unique group, parallel to it
	ListAttr *ListAttr

	// Uses / Augment / Grouping facets.
	UsesInfo *Uses
	AugmentInfo *Augment

	// RPC/action facets: Input/Output are children with Kind
	// KindInput/KindOutput; RPC itself has no extra facet beyond Children.

	// flagConfigSet is true once `config` was explicitly written in source on
	// this node, as opposed to inherited.
	flagConfigSet bool

	// flagUnique is true once a list's `unique` statement resolves to this
	// leaf, the LYS_UNIQUE-equivalent marker ValidateUnique sets.
	flagUnique bool

	// flagFeatureDisabled is true once this node's own if-feature
	// statement(s) evaluate false; the node stays in the tree (pruning it
	// would invalidate sibling indices mid-walk) but FeatureEnabled reports
	// false so callers can skip it.
	flagFeatureDisabled bool

	// flagNotSupported is true once a `deviate not-supported` targets this
	// node; the node is also unlinked from its parent by ApplyDeviations.
	flagNotSupported bool
}

// ConfigSet reports whether config was explicitly stated on n, as opposed
// to inherited from a parent.
func (n *SchemaNode) ConfigSet() bool { return n.flagConfigSet }

// IsUniquePart reports whether n is named by some enclosing list's `unique`
// statement.
func (n *SchemaNode) IsUniquePart() bool { return n.flagUnique }

// FeatureEnabled reports whether n's own if-feature statement(s) (if any)
// evaluated true; a node with no if-feature statement is always enabled.
func (n *SchemaNode) FeatureEnabled() bool { return !n.flagFeatureDisabled }

// IsNotSupported reports whether a `deviate not-supported` targeted n.
func (n *SchemaNode) IsNotSupported() bool { return n.flagNotSupported }

// SetConfig explicitly sets n's config flag and marks it as source-set.
func (n *SchemaNode) SetConfig(v TriState) {
	n.Config = v
	n.flagConfigSet = true
}

// InheritConfig propagates cfg onto n only if n has no explicit config of
// its own, then recurses into children that likewise lack one: each added
// subtree inherits config from its new parent unless explicitly set.
func (n *SchemaNode) InheritConfig(cfg TriState) {
	if n.flagConfigSet {
		return
	}
	n.Config = cfg
	for _, c := range n.Children {
		c.InheritConfig(cfg)
	}
}

// AddChild appends child to n's owned children, setting child.Parent = n.
func (n *SchemaNode) AddChild(child *SchemaNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// EffectiveModule returns the module a node's content is attributed to for
// lookup purposes: for a node originating in a submodule this is the
// submodule's BelongsTo parent, never the submodule itself.
func (n *SchemaNode) EffectiveModule() *Module {
	if n.Module == nil {
		return nil
	}
	return n.Module.EffectiveModule()
}

// IsDataNode reports whether n's kind represents an actual data-tree node as
// opposed to pure schema structure (Uses, Grouping, Augment never appear in
// instance data; Choice/Case do not either but are walked through).
func (n *SchemaNode) IsDataNode() bool {
	switch n.Kind {
	case KindUses, KindGrouping, KindAugment:
		return false
	default:
		return true
	}
}

// IsShorthandCase reports whether n is a direct data-node child of a Choice
// without itself being a Case: the "shorthand case" construct, where an
// implicit Case wrapper is transparent unless the caller asks for WithCase.
func (n *SchemaNode) IsShorthandCase() bool {
	return n.Parent != nil && n.Parent.Kind == KindChoice && n.Kind != KindCase
}
