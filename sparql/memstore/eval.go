package memstore

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/sparql"
)

type binding map[string]sparql.Term

func (b binding) with(name string, t sparql.Term) binding {
	out := make(binding, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	out[name] = t
	return out
}

func (b binding) resolve(t sparql.Term) sparql.Term {
	if t.IsVar() {
		if bound, ok := b[t.Value]; ok {
			return bound
		}
	}
	return t
}

// unify extends b so that pattern term p matches concrete term t.
func (b binding) unify(p, t sparql.Term) (binding, bool) {
	if !p.IsVar() {
		return b, p.Key() == t.Key()
	}
	if bound, ok := b[p.Value]; ok {
		return b, bound.Key() == t.Key()
	}
	return b.with(p.Value, t), true
}

type evaluator struct {
	store   *Store
	ctx     context.Context
	regexps map[string]*regexp.Regexp
}

// errUnbound makes a FILTER evaluate to false without failing the query.
var errUnbound = stderrors.New("unbound variable")

func (e *evaluator) group(g *sparql.Group, input []binding) ([]binding, error) {
	sols := input

	for _, v := range g.Values {
		sols = joinValues(sols, v)
	}

	for _, tp := range g.Triples {
		if err := e.ctx.Err(); err != nil {
			return nil, err
		}
		next := make([]binding, 0, len(sols))
		for _, b := range sols {
			matched, err := e.match(b, tp)
			if err != nil {
				return nil, err
			}
			next = append(next, matched...)
		}
		sols = next
	}

	for _, opt := range g.Optionals {
		next := make([]binding, 0, len(sols))
		for _, b := range sols {
			ext, err := e.group(opt, []binding{b})
			if err != nil {
				return nil, err
			}
			if len(ext) == 0 {
				next = append(next, b)
				continue
			}
			next = append(next, ext...)
		}
		sols = next
	}

	if len(g.Filters) == 0 {
		return sols, nil
	}
	kept := sols[:0:0]
	for _, b := range sols {
		ok := true
		for _, f := range g.Filters {
			v, err := e.eval(f, b)
			if err != nil && !stderrors.Is(err, errUnbound) {
				return nil, err
			}
			if err != nil || !v {
				ok = false
				break
			}
		}
		if ok {
			kept = append(kept, b)
		}
	}
	return kept, nil
}

func joinValues(sols []binding, v sparql.ValuesClause) []binding {
	out := make([]binding, 0, len(sols)*len(v.Terms))
	for _, b := range sols {
		if bound, ok := b[v.Var]; ok {
			for _, t := range v.Terms {
				if t.Key() == bound.Key() {
					out = append(out, b)
					break
				}
			}
			continue
		}
		for _, t := range v.Terms {
			out = append(out, b.with(v.Var, t))
		}
	}
	return out
}

func (e *evaluator) match(b binding, tp sparql.TriplePattern) ([]binding, error) {
	s, p, o := b.resolve(tp.S), b.resolve(tp.P), b.resolve(tp.O)
	if tp.Path != sparql.PathOne {
		if p.IsVar() {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "memstore", "match",
				"property path predicate must be an IRI")
		}
		return e.matchPath(b, s, p, o, tp.Path == sparql.PathZeroOrMore), nil
	}

	var out []binding
	for _, t := range e.candidates(s, p, o) {
		nb, ok := b.unify(s, t.s)
		if !ok {
			continue
		}
		nb, ok = nb.unify(p, t.p)
		if !ok {
			continue
		}
		nb, ok = nb.unify(o, t.o)
		if !ok {
			continue
		}
		out = append(out, nb)
	}
	return out, nil
}

// candidates returns triples that may match, in a stable order.
func (e *evaluator) candidates(s, p, o sparql.Term) []triple {
	st := e.store
	var pool []map[string]triple

	switch {
	case !s.IsVar():
		pool = fromIndex(st.spo[s.Key()], p)
	case !o.IsVar():
		pool = fromIndex(st.ops[o.Key()], p)
	default:
		pool = []map[string]triple{st.triples}
	}

	var out []triple
	keys := make([]string, 0)
	byKey := make(map[string]triple)
	for _, m := range pool {
		for k, t := range m {
			if !p.IsVar() && t.p.Key() != p.Key() {
				continue
			}
			keys = append(keys, k)
			byKey[k] = t
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

func fromIndex(byPred map[string]map[string]triple, p sparql.Term) []map[string]triple {
	if byPred == nil {
		return nil
	}
	if !p.IsVar() {
		return []map[string]triple{byPred[p.Key()]}
	}
	out := make([]map[string]triple, 0, len(byPred))
	for _, m := range byPred {
		out = append(out, m)
	}
	return out
}

func (e *evaluator) matchPath(b binding, s, p, o sparql.Term, zeroLength bool) []binding {
	var out []binding

	switch {
	case !s.IsVar():
		for _, n := range e.reach(s, p, zeroLength, true) {
			if nb, ok := b.unify(o, n); ok {
				out = append(out, nb)
			}
		}
	case !o.IsVar():
		for _, n := range e.reach(o, p, zeroLength, false) {
			if nb, ok := b.unify(s, n); ok {
				out = append(out, nb)
			}
		}
	default:
		for _, start := range e.nodes(p, zeroLength) {
			nb := b.with(s.Value, start)
			for _, n := range e.reach(start, p, zeroLength, true) {
				if ext, ok := nb.unify(o, n); ok {
					out = append(out, ext)
				}
			}
		}
	}
	return out
}

// reach returns the nodes reachable from start over p, forward or backward.
func (e *evaluator) reach(start, p sparql.Term, zeroLength, forward bool) []sparql.Term {
	idx := e.store.ops
	if forward {
		idx = e.store.spo
	}

	seen := make(map[string]bool)
	var out []sparql.Term
	if zeroLength {
		seen[start.Key()] = true
		out = append(out, start)
	}

	queue := []sparql.Term{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		edges := idx[cur.Key()][p.Key()]
		keys := make([]string, 0, len(edges))
		for k := range edges {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			t := edges[k]
			next := t.o
			if !forward {
				next = t.s
			}
			if seen[next.Key()] {
				continue
			}
			seen[next.Key()] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

// nodes lists path start candidates when both ends are unbound.
func (e *evaluator) nodes(p sparql.Term, zeroLength bool) []sparql.Term {
	found := make(map[string]sparql.Term)
	for _, t := range e.store.triples {
		if zeroLength {
			found[t.s.Key()] = t.s
			found[t.o.Key()] = t.o
		} else if t.p.Key() == p.Key() {
			found[t.s.Key()] = t.s
		}
	}
	keys := make([]string, 0, len(found))
	for k := range found {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]sparql.Term, 0, len(keys))
	for _, k := range keys {
		out = append(out, found[k])
	}
	return out
}

func (e *evaluator) bound(b binding, name string) (sparql.Term, error) {
	t, ok := b[name]
	if !ok {
		return sparql.Term{}, errUnbound
	}
	return t, nil
}

func (e *evaluator) eval(expr sparql.Expr, b binding) (bool, error) {
	switch x := expr.(type) {
	case sparql.In:
		t, err := e.bound(b, x.Var)
		if err != nil {
			return false, err
		}
		member := false
		for _, c := range x.Terms {
			if c.Key() == t.Key() {
				member = true
				break
			}
		}
		return member != x.Negate, nil

	case sparql.IsIRIExpr:
		t, err := e.bound(b, x.Var)
		if err != nil {
			return false, err
		}
		return t.IsIRI(), nil

	case sparql.IsBlankExpr:
		t, err := e.bound(b, x.Var)
		if err != nil {
			return false, err
		}
		return t.IsBlank(), nil

	case sparql.Not:
		v, err := e.eval(x.Expr, b)
		if err != nil {
			return false, err
		}
		return !v, nil

	case sparql.LangMatches:
		t, err := e.bound(b, x.Var)
		if err != nil {
			return false, err
		}
		if !t.IsLiteral() {
			return false, errUnbound
		}
		return langMatches(t.Lang, x.Lang), nil

	case sparql.Regex:
		t, err := e.bound(b, x.Var)
		if err != nil {
			return false, err
		}
		re, err := e.compile(x.Pattern, x.Flags)
		if err != nil {
			return false, err
		}
		return re.MatchString(t.Value), nil

	case sparql.Bound:
		_, ok := b[x.Var]
		return ok, nil

	case sparql.Or:
		var firstErr error
		for _, sub := range x.Exprs {
			v, err := e.eval(sub, b)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if v {
				return true, nil
			}
		}
		return false, firstErr

	case sparql.NotExists:
		sols, err := e.group(x.Group, []binding{b})
		if err != nil {
			return false, err
		}
		return len(sols) == 0, nil

	default:
		return false, errors.WrapInvalid(errors.ErrInvalidData, "memstore", "eval",
			fmt.Sprintf("unsupported expression %T", expr))
	}
}

func (e *evaluator) compile(pattern, flags string) (*regexp.Regexp, error) {
	key := flags + "/" + pattern
	if re, ok := e.regexps[key]; ok {
		return re, nil
	}
	src := pattern
	if strings.Contains(flags, "i") {
		src = "(?i)" + src
	}
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, errors.WrapInvalid(err, "memstore", "compile", "invalid regex "+pattern)
	}
	if e.regexps == nil {
		e.regexps = make(map[string]*regexp.Regexp)
	}
	e.regexps[key] = re
	return re, nil
}

// langMatches implements SPARQL basic language range matching.
func langMatches(tag, rng string) bool {
	switch rng {
	case "":
		return tag == ""
	case "*":
		return tag != ""
	}
	tag, rng = strings.ToLower(tag), strings.ToLower(rng)
	return tag == rng || strings.HasPrefix(tag, rng+"-")
}

func project(q *sparql.SelectQuery, sols []binding) []sparql.Row {
	rows := make([]sparql.Row, 0, len(sols))
	seen := make(map[string]bool)

	for _, b := range sols {
		row := make(sparql.Row)
		if len(q.Vars) == 0 {
			for k, v := range b {
				row[k] = v
			}
		} else {
			for _, name := range q.Vars {
				if t, ok := b[name]; ok {
					row[name] = t
				}
			}
		}

		if q.Distinct {
			key := rowKey(row)
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		rows = append(rows, row)
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, v := range q.OrderBy {
				a, b := rows[i].Value(v), rows[j].Value(v)
				if a != b {
					return a < b
				}
			}
			return false
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows
}

func rowKey(row sparql.Row) string {
	names := make([]string, 0, len(row))
	for k := range row {
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, k := range names {
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(row[k].Key())
		sb.WriteString("\x02")
	}
	return sb.String()
}
