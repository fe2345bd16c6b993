// Package memstore is an in-memory triple store that evaluates sparql query
// ASTs directly. It backs the command line tool when the ontology is loaded
// from an N-Triples file, and every cache test.
package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/sparql"
)

type triple struct {
	s, p, o sparql.Term
}

// Store holds triples indexed by subject and by object. It is safe for
// concurrent use; queries see a consistent snapshot of the store.
type Store struct {
	mu      sync.RWMutex
	triples map[string]triple
	// subject key -> predicate key -> triple key -> triple
	spo map[string]map[string]map[string]triple
	// object key -> predicate key -> triple key -> triple
	ops map[string]map[string]map[string]triple

	logger *slog.Logger
}

var _ sparql.Service = (*Store)(nil)

// New returns an empty store. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		triples: make(map[string]triple),
		spo:     make(map[string]map[string]map[string]triple),
		ops:     make(map[string]map[string]map[string]triple),
		logger:  logger,
	}
}

func tripleKey(s, p, o sparql.Term) string {
	return s.Key() + "\x01" + p.Key() + "\x01" + o.Key()
}

func validTriple(s, p, o sparql.Term) bool {
	return (s.IsIRI() || s.IsBlank()) && p.IsIRI() && !o.IsVar() && s.Value != "" && p.Value != ""
}

// Add inserts a triple. It returns false if the triple was already present.
func (st *Store) Add(s, p, o sparql.Term) (bool, error) {
	if !validTriple(s, p, o) {
		return false, errors.WrapInvalid(errors.ErrInvalidData, "memstore", "Add",
			"subject must be an IRI or blank node, predicate an IRI and object a concrete term")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	key := tripleKey(s, p, o)
	if _, ok := st.triples[key]; ok {
		return false, nil
	}
	t := triple{s: s, p: p, o: o}
	st.triples[key] = t
	index(st.spo, s.Key(), p.Key(), key, t)
	index(st.ops, o.Key(), p.Key(), key, t)
	return true, nil
}

// Remove deletes a triple. It returns false if the triple was absent.
func (st *Store) Remove(s, p, o sparql.Term) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	key := tripleKey(s, p, o)
	if _, ok := st.triples[key]; !ok {
		return false
	}
	delete(st.triples, key)
	unindex(st.spo, s.Key(), p.Key(), key)
	unindex(st.ops, o.Key(), p.Key(), key)
	return true
}

// Len returns the number of triples.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.triples)
}

func index(idx map[string]map[string]map[string]triple, a, p, key string, t triple) {
	byPred, ok := idx[a]
	if !ok {
		byPred = make(map[string]map[string]triple)
		idx[a] = byPred
	}
	ts, ok := byPred[p]
	if !ok {
		ts = make(map[string]triple)
		byPred[p] = ts
	}
	ts[key] = t
}

func unindex(idx map[string]map[string]map[string]triple, a, p, key string) {
	byPred := idx[a]
	if byPred == nil {
		return
	}
	delete(byPred[p], key)
	if len(byPred[p]) == 0 {
		delete(byPred, p)
	}
	if len(byPred) == 0 {
		delete(idx, a)
	}
}

// ExecuteAsk reports whether q.Where has at least one solution.
func (st *Store) ExecuteAsk(ctx context.Context, q *sparql.AskQuery) (bool, error) {
	if q == nil || q.Where == nil {
		return false, errors.WrapInvalid(errors.ErrInvalidData, "memstore", "ExecuteAsk", "nil query")
	}

	st.mu.RLock()
	defer st.mu.RUnlock()

	e := &evaluator{store: st, ctx: ctx}
	solutions, err := e.group(q.Where, []binding{{}})
	if err != nil {
		return false, err
	}
	return len(solutions) > 0, nil
}

// ExecuteSelectStream evaluates q and streams projected rows to fn. The whole
// result is computed under the read lock before the first row is delivered,
// so fn may query the store again.
func (st *Store) ExecuteSelectStream(ctx context.Context, q *sparql.SelectQuery, fn func(sparql.Row) error) error {
	if q == nil || q.Where == nil {
		return errors.WrapInvalid(errors.ErrInvalidData, "memstore", "ExecuteSelectStream", "nil query")
	}

	rows, err := st.selectRows(ctx, q)
	if err != nil {
		return err
	}

	st.logger.Debug("memstore select", "rows", len(rows))
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

// LoadByIdentifier loads a resource through a SELECT over the store.
func (st *Store) LoadByIdentifier(ctx context.Context, rdfType, uri, lang string) (*sparql.Resource, bool, error) {
	return sparql.LoadByIdentifier(ctx, st, rdfType, uri, lang)
}

func (st *Store) selectRows(ctx context.Context, q *sparql.SelectQuery) ([]sparql.Row, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	e := &evaluator{store: st, ctx: ctx}
	solutions, err := e.group(q.Where, []binding{{}})
	if err != nil {
		return nil, err
	}
	return project(q, solutions), nil
}
