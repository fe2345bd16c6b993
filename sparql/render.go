package sparql

import (
	"strconv"
	"strings"
)

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func (t TriplePattern) String() string {
	p := t.P.String()
	switch t.Path {
	case PathZeroOrMore:
		p += "*"
	case PathOneOrMore:
		p += "+"
	}
	return t.S.String() + " " + p + " " + t.O.String() + " ."
}

func (g *Group) writeTo(b *strings.Builder, depth int) {
	b.WriteString("{\n")
	for _, v := range g.Values {
		indent(b, depth+1)
		b.WriteString("VALUES ?" + v.Var + " {")
		for _, t := range v.Terms {
			b.WriteString(" " + t.String())
		}
		b.WriteString(" }\n")
	}
	for _, t := range g.Triples {
		indent(b, depth+1)
		b.WriteString(t.String())
		b.WriteString("\n")
	}
	for _, opt := range g.Optionals {
		indent(b, depth+1)
		b.WriteString("OPTIONAL ")
		opt.writeTo(b, depth+1)
		b.WriteString("\n")
	}
	for _, f := range g.Filters {
		indent(b, depth+1)
		b.WriteString("FILTER(")
		f.writeTo(b)
		b.WriteString(")\n")
	}
	indent(b, depth)
	b.WriteString("}")
}

// String renders the group as SPARQL text.
func (g *Group) String() string {
	var b strings.Builder
	g.writeTo(&b, 0)
	return b.String()
}

// String renders the query as SPARQL text. IRIs are always written in full.
func (q *SelectQuery) String() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if q.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(q.Vars) == 0 {
		b.WriteString("*")
	} else {
		for i, v := range q.Vars {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("?" + v)
		}
	}
	b.WriteString(" WHERE ")
	where := q.Where
	if where == nil {
		where = &Group{}
	}
	where.writeTo(&b, 0)
	if len(q.OrderBy) > 0 {
		b.WriteString("\nORDER BY")
		for _, v := range q.OrderBy {
			b.WriteString(" ?" + v)
		}
	}
	if q.Limit > 0 {
		b.WriteString("\nLIMIT " + strconv.Itoa(q.Limit))
	}
	return b.String()
}

// String renders the query as SPARQL text.
func (q *AskQuery) String() string {
	var b strings.Builder
	b.WriteString("ASK ")
	where := q.Where
	if where == nil {
		where = &Group{}
	}
	where.writeTo(&b, 0)
	return b.String()
}
