// Package diag implements the error taxonomy and deferred-path diagnostics
// used throughout the schema compilation and data-validation engine.
//
// Diagnostics are explicit, independently constructible values rather than
// a global errno-style cell: nothing here is package-level mutable state
// except the optional Logger a Context installs for side-channel reporting.
package diag

import "fmt"

// Code is the top-level error taxonomy.
type Code int

const (
	// Mem indicates an allocation or internal bookkeeping failure.
	Mem Code = iota
	// Syntax indicates malformed input detected by a micro-parser.
	Syntax
	// Validation indicates a semantic rule of the schema or data model failed.
	Validation
	// System indicates an environment failure (missing search directory, I/O).
	System
	// Internal indicates an invariant violation that should never occur.
	Internal
)

func (c Code) String() string {
	switch c {
	case Mem:
		return "mem"
	case Syntax:
		return "syntax"
	case Validation:
		return "validation"
	case System:
		return "system"
	case Internal:
		return "internal"
	default:
		return fmt.Sprintf("code-%d", int(c))
	}
}

// Vecode is the validation sub-code enumeration.
type Vecode int

const (
	// VecodeNone is used for diagnostics without a validation sub-code.
	VecodeNone Vecode = iota
	VecodeDuplicateID
	VecodeKeyMissing
	VecodeKeyDup
	VecodeKeyType
	VecodeKeyConfig
	VecodeNoResolv
	VecodeInMod
	VecodeInChar
	VecodePathInNode
	VecodePathInKey
	VecodePathMissKey
	VecodeNoMust
	VecodeNoWhen
	VecodeInWhen
	VecodeNoLeafref
	VecodeTooMany
	VecodeCircular
	VecodeUniqueCross
)

func (v Vecode) String() string {
	names := map[Vecode]string{
		VecodeNone: "",
		VecodeDuplicateID: "DuplicateId",
		VecodeKeyMissing: "KeyMissing",
		VecodeKeyDup: "KeyDup",
		VecodeKeyType: "KeyType",
		VecodeKeyConfig: "KeyConfig",
		VecodeNoResolv: "NoResolv",
		VecodeInMod: "InMod",
		VecodeInChar: "InChar",
		VecodePathInNode: "PathInNode",
		VecodePathInKey: "PathInKey",
		VecodePathMissKey: "PathMissKey",
		VecodeNoMust: "NoMust",
		VecodeNoWhen: "NoWhen",
		VecodeInWhen: "InWhen",
		VecodeNoLeafref: "NoLeafref",
		VecodeTooMany: "TooMany",
		VecodeCircular: "Circular",
		VecodeUniqueCross: "UniqueCross",
	}
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("vecode-%d", int(v))
}

// PathFunc lazily builds the path of the schema or data node a Diagnostic is
// attached to. It is called at most once per Diagnostic: the result is
// memoized the first time Path is read.
type PathFunc func() string

// A Diagnostic is the single error type every exported operation in this
// module returns. It is a value, not a panic or thread-local cell: callers
// that want the libyang-style "last error" behavior can stash the returned
// Diagnostic themselves.
type Diagnostic struct {
	Code Code
	Vecode Vecode
	// Message is the formatted, human-readable description.
	Message string
	// ErrAppTag and ErrMessage carry the error-app-tag/error-message from a
	// failed must/when statement, when applicable.
	ErrAppTag string
	ErrMsg string

	pathFn PathFunc
	path string
	pathBuilt bool
	suppress bool
}

// New creates a Diagnostic with a fixed message and no deferred path.
func New(code Code, vecode Vecode, format string, args...interface{}) *Diagnostic {
	return &Diagnostic{Code: code, Vecode: vecode, Message: fmt.Sprintf(format, args...)}
}

// WithPath attaches a deferred path-construction function to d and returns
// d for chaining. The function is invoked at most once.
func (d *Diagnostic) WithPath(fn PathFunc) *Diagnostic {
	d.pathFn = fn
	d.pathBuilt = false
	return d
}

// WithAppTag attaches the error-app-tag/error-message pair from a must/when
// statement.
func (d *Diagnostic) WithAppTag(appTag, msg string) *Diagnostic {
	d.ErrAppTag = appTag
	d.ErrMsg = msg
	return d
}

// Path returns the (possibly lazily-built) path associated with d. Building
// is suppressible per-diagnostic via Suppress for hot loops that will
// discard the diagnostic anyway.
func (d *Diagnostic) Path() string {
	if d.pathBuilt {
		return d.path
	}
	if d.pathFn != nil && !d.suppress {
		d.path = d.pathFn()
	}
	d.pathBuilt = true
	return d.path
}

// Suppress marks d so that Path() never invokes the deferred builder. Used
// by the unresolved-item worklist while an item is being retried so a
// failed attempt doesn't pay for path construction it will discard.
func (d *Diagnostic) Suppress() *Diagnostic {
	d.suppress = true
	return d
}

func (d *Diagnostic) Error() string {
	if d == nil {
		return "<nil diagnostic>"
	}
	p := d.Path()
	switch {
	case d.Vecode != VecodeNone && p != "":
		return fmt.Sprintf("%s/%s: %s (path: %s)", d.Code, d.Vecode, d.Message, p)
	case d.Vecode != VecodeNone:
		return fmt.Sprintf("%s/%s: %s", d.Code, d.Vecode, d.Message)
	case p != "":
		return fmt.Sprintf("%s: %s (path: %s)", d.Code, d.Message, p)
	default:
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
}

// List is a convenience alias for a slice of Diagnostics, for multi-error
// passes that accumulate rather than stop at the first failure.
type List []*Diagnostic

func (l List) Error() string {
	if len(l) == 0 {
		return "<no diagnostics>"
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%d diagnostics, first: %s", len(l), l[0].Error())
}

// HasValidation reports whether l contains at least one Validation-class
// diagnostic.
func (l List) HasValidation() bool {
	for _, d := range l {
		if d.Code == Validation {
			return true
		}
	}
	return false
}
