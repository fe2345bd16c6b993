package sparql

// PathMod is a property path modifier applied to a triple pattern predicate.
type PathMod int

const (
	PathOne PathMod = iota
	PathZeroOrMore
	PathOneOrMore
)

// TriplePattern is a subject/predicate/object pattern. The predicate of a
// pattern with a path modifier must be an IRI.
type TriplePattern struct {
	S, P, O Term
	Path    PathMod
}

// Triple builds a plain triple pattern.
func Triple(s, p, o Term) TriplePattern {
	return TriplePattern{S: s, P: p, O: o}
}

// ZeroOrMore builds a `s p* o` pattern.
func ZeroOrMore(s Term, p string, o Term) TriplePattern {
	return TriplePattern{S: s, P: IRI(p), O: o, Path: PathZeroOrMore}
}

// OneOrMore builds a `s p+ o` pattern.
func OneOrMore(s Term, p string, o Term) TriplePattern {
	return TriplePattern{S: s, P: IRI(p), O: o, Path: PathOneOrMore}
}

// ValuesClause binds Var to each of Terms in turn.
type ValuesClause struct {
	Var   string
	Terms []Term
}

// Group is a group graph pattern. Evaluation order is VALUES, triples,
// OPTIONAL groups, then FILTERs over the whole group.
type Group struct {
	Values    []ValuesClause
	Triples   []TriplePattern
	Optionals []*Group
	Filters   []Expr
}

// NewGroup returns a group containing the given triples.
func NewGroup(triples ...TriplePattern) *Group {
	return &Group{Triples: triples}
}

// Where appends triple patterns.
func (g *Group) Where(triples ...TriplePattern) *Group {
	g.Triples = append(g.Triples, triples...)
	return g
}

// Optional appends an OPTIONAL sub-group.
func (g *Group) Optional(opt *Group) *Group {
	g.Optionals = append(g.Optionals, opt)
	return g
}

// Filter appends filter expressions.
func (g *Group) Filter(exprs ...Expr) *Group {
	g.Filters = append(g.Filters, exprs...)
	return g
}

// Bind appends a VALUES clause for a single variable.
func (g *Group) Bind(variable string, terms ...Term) *Group {
	g.Values = append(g.Values, ValuesClause{Var: Var(variable).Value, Terms: terms})
	return g
}

// SelectQuery is a SELECT query. An empty Vars list selects every variable.
type SelectQuery struct {
	Distinct bool
	Vars     []string
	Where    *Group
	OrderBy  []string
	Limit    int
}

// Select starts a SELECT query over vars.
func Select(vars ...string) *SelectQuery {
	q := &SelectQuery{Where: &Group{}}
	for _, v := range vars {
		q.Vars = append(q.Vars, Var(v).Value)
	}
	return q
}

// AskQuery is an ASK query.
type AskQuery struct {
	Where *Group
}

// Ask builds an ASK query over where.
func Ask(where *Group) *AskQuery {
	return &AskQuery{Where: where}
}
