package schema

import (
	"strings"

	"github.com/yangcore/yangcore/diag"
)

// tokenizeIfFeature splits an if-feature argument into identifier/keyword
// and parenthesis tokens per the grammar of RFC 7950 9.10.2
// (if-feature-expr): identifiers, "not", "and", "or", "(", ")".
func tokenizeIfFeature(expr string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, ch := range expr {
		switch {
		case ch == '(' || ch == ')':
			flush()
			toks = append(toks, string(ch))
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			flush()
		default:
			cur.WriteRune(ch)
		}
	}
	flush()
	return toks
}

// ifFeatureParser is a small recursive-descent parser over the
// or/and/not/parens if-feature grammar; precedence lowest to highest is
// or, and, not, matching the RFC's grammar nesting.
type ifFeatureParser struct {
	toks []string
	pos int
	lookup func(name string) (bool, *diag.Diagnostic)
}

func (p *ifFeatureParser) peek() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *ifFeatureParser) next() string {
	t := p.peek()
	p.pos++
	return t
}

func (p *ifFeatureParser) parseOr() (bool, *diag.Diagnostic) {
	v, dg := p.parseAnd()
	if dg != nil {
		return false, dg
	}
	for p.peek() == "or" {
		p.next()
		rhs, dg := p.parseAnd()
		if dg != nil {
			return false, dg
		}
		v = v || rhs
	}
	return v, nil
}

func (p *ifFeatureParser) parseAnd() (bool, *diag.Diagnostic) {
	v, dg := p.parseUnary()
	if dg != nil {
		return false, dg
	}
	for p.peek() == "and" {
		p.next()
		rhs, dg := p.parseUnary()
		if dg != nil {
			return false, dg
		}
		v = v && rhs
	}
	return v, nil
}

func (p *ifFeatureParser) parseUnary() (bool, *diag.Diagnostic) {
	if p.peek() == "not" {
		p.next()
		v, dg := p.parseUnary()
		if dg != nil {
			return false, dg
		}
		return !v, nil
	}
	return p.parsePrimary()
}

func (p *ifFeatureParser) parsePrimary() (bool, *diag.Diagnostic) {
	tok := p.next()
	if tok == "(" {
		v, dg := p.parseOr()
		if dg != nil {
			return false, dg
		}
		if p.next() != ")" {
			return false, diag.New(diag.Syntax, diag.VecodeNone, "malformed if-feature expression: missing closing paren")
		}
		return v, nil
	}
	if tok == "" || tok == "and" || tok == "or" || tok == ")" {
		return false, diag.New(diag.Syntax, diag.VecodeNone, "malformed if-feature expression: expected a feature name")
	}
	return p.lookup(tok)
}

// evalIfFeature evaluates a single if-feature argument's boolean expression,
// resolving each bare or prefixed feature name through lookup.
func evalIfFeature(expr string, lookup func(name string) (bool, *diag.Diagnostic)) (bool, *diag.Diagnostic) {
	p := &ifFeatureParser{toks: tokenizeIfFeature(expr), lookup: lookup}
	v, dg := p.parseOr()
	if dg != nil {
		return false, dg
	}
	if p.pos != len(p.toks) {
		return false, diag.New(diag.Syntax, diag.VecodeNone, "malformed if-feature expression %q: trailing tokens", expr)
	}
	return v, nil
}

// evalIfFeatureSet evaluates every expr in exprs against mod's feature set;
// multiple if-feature statements on the same statement are implicitly ANDed
// together, short-circuiting on the first false or error result.
func (r *Resolver) evalIfFeatureSet(exprs []string, mod *Module) (bool, *diag.Diagnostic) {
	for _, expr := range exprs {
		v, dg := evalIfFeature(expr, func(name string) (bool, *diag.Diagnostic) {
			return r.lookupFeatureEnabled(mod, name)
		})
		if dg != nil {
			return false, dg
		}
		if !v {
			return false, nil
		}
	}
	return true, nil
}

func (r *Resolver) lookupFeatureEnabled(mod *Module, name string) (bool, *diag.Diagnostic) {
	targetMod := mod
	featName := name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		prefix, rest := name[:i], name[i+1:]
		m := mod.ResolvePrefix(prefix)
		if m == nil {
			return false, diag.New(diag.Validation, diag.VecodeInMod, "unresolvable prefix %q in if-feature %q", prefix, name)
		}
		targetMod = m.EffectiveModule()
		featName = rest
	}
	f := targetMod.FindFeature(featName)
	if f == nil {
		return false, diag.New(diag.Validation, diag.VecodeNoResolv, "feature %q not found", name)
	}
	if !f.resolved {
		return false, diag.New(diag.Validation, diag.VecodeNoResolv, "feature %q not yet resolved", name)
	}
	return f.enabled, nil
}

// ResolveFeatureEnable evaluates f's own if-feature chain (if any) against
// its module's feature set, combines the result with the context's
// configured enablement, and binds f.enabled/f.resolved.
func (r *Resolver) ResolveFeatureEnable(f *Feature) *diag.Diagnostic {
	if f.resolved {
		return nil
	}
	gated := true
	if len(f.IfFeatures) > 0 {
		v, dg := r.evalIfFeatureSet(f.IfFeatures, f.Module)
		if dg != nil {
			return dg
		}
		gated = v
	}
	f.enabled = gated && r.ctx.featureConfigEnabled(f.Module, f.Name)
	f.resolved = true
	return nil
}

// ResolveNodeIfFeature evaluates n's own if-feature statements (if any) and
// records the result as n.FeatureEnabled.
func (r *Resolver) ResolveNodeIfFeature(n *SchemaNode) *diag.Diagnostic {
	if len(n.IfFeatures) == 0 {
		return nil
	}
	mod := n.EffectiveModule()
	enabled, dg := r.evalIfFeatureSet(n.IfFeatures, mod)
	if dg != nil {
		return dg
	}
	n.flagFeatureDisabled = !enabled
	return nil
}
