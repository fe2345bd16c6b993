package sparql

import (
	"strings"
)

// Expr is a FILTER expression. The set of expressions is closed; evaluators
// switch over the concrete types below.
type Expr interface {
	writeTo(b *strings.Builder)
	isExpr()
}

// In is `?var IN (terms)`, or NOT IN when Negate is set.
type In struct {
	Var    string
	Terms  []Term
	Negate bool
}

// IsIRIExpr is `isIRI(?var)`.
type IsIRIExpr struct{ Var string }

// IsBlankExpr is `isBlank(?var)`.
type IsBlankExpr struct{ Var string }

// Not negates an expression.
type Not struct{ Expr Expr }

// LangMatches is `langMatches(lang(?var), "tag")`. An empty Lang matches
// untagged literals only, "*" matches any tagged literal.
type LangMatches struct {
	Var  string
	Lang string
}

// Regex is `regex(str(?var), "pattern", "flags")`.
type Regex struct {
	Var     string
	Pattern string
	Flags   string
}

// Bound is `bound(?var)`.
type Bound struct{ Var string }

// Or is a disjunction of expressions.
type Or struct{ Exprs []Expr }

// NotExists is `NOT EXISTS { group }`.
type NotExists struct{ Group *Group }

func (In) isExpr()          {}
func (IsIRIExpr) isExpr()   {}
func (IsBlankExpr) isExpr() {}
func (Not) isExpr()         {}
func (LangMatches) isExpr() {}
func (Regex) isExpr()       {}
func (Bound) isExpr()       {}
func (Or) isExpr()          {}
func (NotExists) isExpr()   {}

func (e In) writeTo(b *strings.Builder) {
	b.WriteString("?" + e.Var)
	if e.Negate {
		b.WriteString(" NOT")
	}
	b.WriteString(" IN (")
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteString(")")
}

func (e IsIRIExpr) writeTo(b *strings.Builder) { b.WriteString("isIRI(?" + e.Var + ")") }

func (e IsBlankExpr) writeTo(b *strings.Builder) { b.WriteString("isBlank(?" + e.Var + ")") }

func (e Not) writeTo(b *strings.Builder) {
	b.WriteString("!(")
	e.Expr.writeTo(b)
	b.WriteString(")")
}

func (e LangMatches) writeTo(b *strings.Builder) {
	if e.Lang == "" {
		b.WriteString(`lang(?` + e.Var + `) = ""`)
		return
	}
	b.WriteString(`langMatches(lang(?` + e.Var + `), "` + escapeLiteral(e.Lang) + `")`)
}

func (e Regex) writeTo(b *strings.Builder) {
	b.WriteString(`regex(str(?` + e.Var + `), "` + escapeLiteral(e.Pattern) + `"`)
	if e.Flags != "" {
		b.WriteString(`, "` + escapeLiteral(e.Flags) + `"`)
	}
	b.WriteString(")")
}

func (e Bound) writeTo(b *strings.Builder) { b.WriteString("bound(?" + e.Var + ")") }

func (e Or) writeTo(b *strings.Builder) {
	if len(e.Exprs) == 0 {
		b.WriteString("false")
		return
	}
	for i, sub := range e.Exprs {
		if i > 0 {
			b.WriteString(" || ")
		}
		b.WriteString("(")
		sub.writeTo(b)
		b.WriteString(")")
	}
}

func (e NotExists) writeTo(b *strings.Builder) {
	b.WriteString("NOT EXISTS ")
	e.Group.writeTo(b, 1)
}
