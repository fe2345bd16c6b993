package sparql

import (
	"strings"
)

// TermKind discriminates the RDF term kinds plus query variables.
type TermKind int

const (
	KindIRI TermKind = iota
	KindLiteral
	KindBlank
	KindVar
)

// String returns the lowercase kind name.
func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindLiteral:
		return "literal"
	case KindBlank:
		return "bnode"
	case KindVar:
		return "var"
	default:
		return "unknown"
	}
}

// Term is an RDF term or a query variable. For literals, Lang and Datatype are
// mutually exclusive; a plain literal has neither.
type Term struct {
	Kind     TermKind
	Value    string
	Lang     string
	Datatype string
}

// IRI returns an IRI term.
func IRI(value string) Term { return Term{Kind: KindIRI, Value: value} }

// Literal returns a plain literal.
func Literal(value string) Term { return Term{Kind: KindLiteral, Value: value} }

// LangLiteral returns a language-tagged literal. The tag is lowercased.
func LangLiteral(value, lang string) Term {
	return Term{Kind: KindLiteral, Value: value, Lang: strings.ToLower(lang)}
}

// TypedLiteral returns a literal with an explicit datatype IRI.
func TypedLiteral(value, datatype string) Term {
	return Term{Kind: KindLiteral, Value: value, Datatype: datatype}
}

// Blank returns a blank node with the given label.
func Blank(label string) Term { return Term{Kind: KindBlank, Value: label} }

// Var returns a query variable. A leading '?' is stripped.
func Var(name string) Term { return Term{Kind: KindVar, Value: strings.TrimPrefix(name, "?")} }

// IsVar reports whether t is a query variable.
func (t Term) IsVar() bool { return t.Kind == KindVar }

// IsIRI reports whether t is an IRI.
func (t Term) IsIRI() bool { return t.Kind == KindIRI }

// IsBlank reports whether t is a blank node.
func (t Term) IsBlank() bool { return t.Kind == KindBlank }

// IsLiteral reports whether t is a literal.
func (t Term) IsLiteral() bool { return t.Kind == KindLiteral }

// Key returns a string that is equal for equal terms, for use as a map key.
func (t Term) Key() string {
	return t.Kind.String() + "\x00" + t.Value + "\x00" + t.Lang + "\x00" + t.Datatype
}

// String renders t in SPARQL / N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case KindIRI:
		return "<" + t.Value + ">"
	case KindBlank:
		return "_:" + t.Value
	case KindVar:
		return "?" + t.Value
	default:
		s := `"` + escapeLiteral(t.Value) + `"`
		switch {
		case t.Lang != "":
			s += "@" + t.Lang
		case t.Datatype != "":
			s += "^^<" + t.Datatype + ">"
		}
		return s
	}
}

var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func escapeLiteral(s string) string {
	return literalEscaper.Replace(s)
}

// Row is one solution of a SELECT query, keyed by variable name without '?'.
// Unbound variables are absent.
type Row map[string]Term

// Get returns the term bound to name.
func (r Row) Get(name string) (Term, bool) {
	t, ok := r[name]
	return t, ok
}

// Value returns the lexical value bound to name, or "" when unbound.
func (r Row) Value(name string) string {
	return r[name].Value
}

// Has reports whether name is bound.
func (r Row) Has(name string) bool {
	_, ok := r[name]
	return ok
}
