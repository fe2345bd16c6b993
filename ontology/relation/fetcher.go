// Package relation loads the property values of typed entities in one
// query, using the property sets the ontology cache holds for their classes.
package relation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/ontology/cache"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// Entity is an instance to load, with the class it is an instance of.
type Entity struct {
	URI  string
	Type string
}

// Record holds the property values loaded for one entity. Properties
// restricted to one value have at most one element.
type Record struct {
	URI  string
	Type string

	// Data maps a datatype property to its parsed literal values.
	Data map[string][]any

	// Objects maps an object property to the identifiers it points at.
	Objects map[string][]string
}

func newRecord(e Entity) *Record {
	return &Record{URI: e.URI, Type: e.Type, Data: map[string][]any{}, Objects: map[string][]string{}}
}

// Value returns the first value of a datatype property.
func (r *Record) Value(property string) (any, bool) {
	vs := r.Data[vocabulary.FormatURI(property)]
	if len(vs) == 0 {
		return nil, false
	}
	return vs[0], true
}

// Fetcher loads entity property values from the schema store.
type Fetcher struct {
	cache   cache.OntologyCache
	svc     sparql.Selector
	logger  *slog.Logger
	skipped map[string]bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithSkippedProperties excludes properties the caller loads by other means.
func WithSkippedProperties(uris ...string) Option {
	return func(f *Fetcher) {
		for _, uri := range uris {
			f.skipped[vocabulary.FormatURI(uri)] = true
		}
	}
}

// NewFetcher returns a Fetcher resolving classes through oc and values
// through svc.
func NewFetcher(oc cache.OntologyCache, svc sparql.Selector, opts ...Option) *Fetcher {
	f := &Fetcher{
		cache:   oc,
		svc:     svc,
		logger:  slog.Default(),
		skipped: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// column is one property of the query, bound to a result variable.
type column struct {
	property string
	variable string
	datatype ontology.Datatype
	object   bool
}

// Fetch returns one record per distinct entity, in input order. Entities
// whose class is unknown get an empty record.
func (f *Fetcher) Fetch(ctx context.Context, entities []Entity, lang string) ([]*Record, error) {
	if len(entities) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "relation", "Fetch", "no entities")
	}

	records := make([]*Record, 0, len(entities))
	byURI := make(map[string]*Record, len(entities))
	var types []string
	seenType := make(map[string]bool)
	for _, e := range entities {
		e.URI, e.Type = vocabulary.FormatURI(e.URI), vocabulary.FormatURI(e.Type)
		if e.URI == "" || e.Type == "" {
			return nil, errors.WrapInvalid(errors.ErrInvalidData, "relation", "Fetch",
				"entity identifier and type are required")
		}
		if _, dup := byURI[e.URI]; dup {
			continue
		}
		r := newRecord(e)
		byURI[e.URI] = r
		records = append(records, r)
		if !seenType[e.Type] {
			seenType[e.Type] = true
			types = append(types, e.Type)
		}
	}

	classes, err := f.cache.GetOrCreateClasses(ctx, types, lang)
	if err != nil {
		return nil, err
	}
	byType := make(map[string]*ontology.ClassModel, len(classes))
	for _, c := range classes {
		byType[c.URI] = c
	}

	columns := f.columns(classes)
	if len(columns) == 0 {
		return records, nil
	}

	q := f.query(records, columns)
	err = f.svc.ExecuteSelectStream(ctx, q, func(row sparql.Row) error {
		r, ok := byURI[row.Value("uri")]
		if !ok {
			return nil
		}
		class, ok := byType[r.Type]
		if !ok {
			return nil
		}
		for _, col := range columns {
			term, ok := row.Get(col.variable)
			if !ok {
				continue
			}
			f.attach(r, class, col, term)
		}
		return nil
	})
	if err != nil {
		f.logger.Error("Relation fetch failed", "entities", len(records), "error", err)
		return nil, errors.WrapTransient(err, "relation", "Fetch", "property query")
	}
	f.logger.Debug("Fetched relations", "entities", len(records), "properties", len(columns))
	return records, nil
}

// columns collects the properties of every class, each bound to a
// distinct variable derived from its local name.
func (f *Fetcher) columns(classes []*ontology.ClassModel) []column {
	var out []column
	seen := make(map[string]bool)
	used := map[string]bool{"uri": true}
	add := func(property string, col column) {
		if seen[property] || f.skipped[property] {
			return
		}
		seen[property] = true
		col.property = property
		col.variable = variableFor(property, used)
		out = append(out, col)
	}
	for _, c := range classes {
		for _, uri := range sortedKeys(c.DatatypeProperties) {
			add(uri, column{datatype: c.DatatypeProperties[uri].Datatype()})
		}
		for _, uri := range sortedKeys(c.ObjectProperties) {
			add(uri, column{object: true})
		}
	}
	return out
}

func (f *Fetcher) query(records []*Record, columns []column) *sparql.SelectQuery {
	vars := make([]string, 0, len(columns)+1)
	vars = append(vars, "uri")
	bound := make([]sparql.Expr, 0, len(columns))
	for _, col := range columns {
		vars = append(vars, col.variable)
		bound = append(bound, sparql.Bound{Var: col.variable})
	}

	ids := make([]sparql.Term, 0, len(records))
	for _, r := range records {
		ids = append(ids, sparql.IRI(r.URI))
	}

	q := sparql.Select(vars...)
	q.Where.Bind("uri", ids...)
	for _, col := range columns {
		q.Where.Optional(sparql.NewGroup(
			sparql.Triple(sparql.Var("uri"), sparql.IRI(col.property), sparql.Var(col.variable)),
		))
	}
	q.Where.Filter(sparql.Or{Exprs: bound})
	return q
}

// attach adds one value to r when the property belongs to its class.
func (f *Fetcher) attach(r *Record, class *ontology.ClassModel, col column, term sparql.Term) {
	single := false
	if restriction, ok := class.RestrictionFor(col.property); ok {
		single = !restriction.IsList()
	}

	if col.object {
		if _, ok := class.ObjectProperties[col.property]; !ok || term.IsLiteral() {
			return
		}
		values := r.Objects[col.property]
		if slices.Contains(values, term.Value) || (single && len(values) > 0) {
			return
		}
		r.Objects[col.property] = append(values, term.Value)
		return
	}

	if _, ok := class.DatatypeProperties[col.property]; !ok || !term.IsLiteral() {
		return
	}
	v, err := col.datatype.Parse(term.Value)
	if err != nil {
		f.logger.Warn("Skipped invalid literal",
			"entity", r.URI,
			"property", col.property,
			"datatype", col.datatype.String(),
			"error", err)
		return
	}
	values := r.Data[col.property]
	if containsValue(values, v) || (single && len(values) > 0) {
		return
	}
	r.Data[col.property] = append(values, v)
}

// variableFor turns the local name of property into a variable name not
// yet in used.
func variableFor(property string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '_'
	}, vocabulary.LocalName(property))
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "p_" + name
	}
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", name, i)
	}
	used[candidate] = true
	return candidate
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func containsValue(list []any, v any) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
