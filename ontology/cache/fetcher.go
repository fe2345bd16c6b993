package cache

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// ClassFetcher loads class forests from the schema store. Loading any
// number of roots costs exactly three queries: one for the roots, one for
// every transitive subclass with its immediate parent, and one for every
// property declared on a class of the forest.
type ClassFetcher struct {
	svc      sparql.Service
	labels   labelProjection
	logger   *slog.Logger
	metrics  *cacheMetrics
	abstract map[string]bool
}

// NewClassFetcher returns a fetcher loading labels and comments in
// languages, with defaultLang as the default of every label.
func NewClassFetcher(svc sparql.Service, languages []string, defaultLang string, logger *slog.Logger) *ClassFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := Config{Languages: languages, DefaultLanguage: defaultLang}
	return &ClassFetcher{
		svc:    svc,
		labels: labelProjection{languages: cfg.languages(), defaultLang: cfg.defaultLanguage()},
		logger: logger,
	}
}

// classDraft is a class under assembly. Drafts created only because a child
// named them as parent stay unvisited until a row describes them.
type classDraft struct {
	model   *ontology.ClassModel
	texts   *texts
	visited bool
}

type forest struct {
	order   []string
	classes map[string]*classDraft
}

func (f *forest) draft(uri string) *classDraft {
	d, ok := f.classes[uri]
	if !ok {
		d = &classDraft{model: ontology.NewClassModel(uri), texts: newTexts()}
		f.classes[uri] = d
		f.order = append(f.order, uri)
	}
	return d
}

// Fetch loads the forest below the given roots and returns one entry per
// class, requested roots first. Unknown identifiers produce no entry. The
// identifiers must already be normalised.
func (f *ClassFetcher) Fetch(ctx context.Context, uris []string) ([]*ontology.ClassEntry, error) {
	start := time.Now()
	entries, err := f.fetch(ctx, uris)
	f.metrics.fetch(start, err)
	if err != nil {
		f.logger.Error("Class fetch failed", "roots", uris, "error", err)
		return nil, err
	}
	f.logger.Debug("Fetched class forest",
		"roots", len(uris),
		"classes", len(entries),
		"duration_ms", time.Since(start).Milliseconds())
	return entries, nil
}

func (f *ClassFetcher) fetch(ctx context.Context, uris []string) ([]*ontology.ClassEntry, error) {
	fr := &forest{classes: make(map[string]*classDraft)}

	// Roots seed the forest so they are never left as nameless placeholders.
	f.metrics.query("root")
	err := f.svc.ExecuteSelectStream(ctx, f.rootQuery(uris), func(row sparql.Row) error {
		d := fr.draft(row.Value("uri"))
		d.visited = true
		if p := row.Value("parent"); p != "" && d.model.Parent == "" {
			d.model.Parent = p
		}
		d.texts.collect(f.labels, row)
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "Fetch", "root query")
	}
	if len(fr.classes) == 0 {
		return nil, nil
	}
	roots := append([]string(nil), fr.order...)

	f.metrics.query("subclass")
	err = f.svc.ExecuteSelectStream(ctx, f.subclassQuery(roots), func(row sparql.Row) error {
		uri, parent := row.Value("uri"), row.Value("parent")
		d := fr.draft(uri)
		d.visited = true
		d.texts.collect(f.labels, row)
		if d.model.Parent == "" {
			d.model.Parent = parent
		}
		fr.draft(parent).model.AddChild(uri)
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "Fetch", "subclass query")
	}

	props := newPropertyDrafts()
	f.metrics.query("property")
	err = f.svc.ExecuteSelectStream(ctx, f.propertyQuery(roots), func(row sparql.Row) error {
		props.collect(f.labels, row)
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "Fetch", "property query")
	}

	return f.assemble(fr, props), nil
}

func (f *ClassFetcher) assemble(fr *forest, props *propertyDrafts) []*ontology.ClassEntry {
	entries := make([]*ontology.ClassEntry, 0, len(fr.order))
	for _, uri := range fr.order {
		d := fr.classes[uri]
		if !d.visited {
			continue
		}
		kept := d.model.Children[:0:0]
		for _, child := range d.model.Children {
			if c, ok := fr.classes[child]; ok && c.visited {
				kept = append(kept, child)
			}
		}
		d.model.Children = kept
		d.model.Abstract = f.abstract[uri]
		d.model.Label = d.texts.label(f.labels)
		d.model.Comment = d.texts.comment(f.labels)
	}

	for _, p := range props.all() {
		for _, domain := range p.domains {
			d, ok := fr.classes[domain]
			if !ok || !d.visited {
				continue
			}
			switch p.kind {
			case ontology.KindDatatype:
				dp := p.datatype(f.labels, domain)
				d.model.DatatypeProperties[dp.URI] = dp
			case ontology.KindObject:
				op := p.object(f.labels, domain)
				if r, ok := fr.classes[op.Range]; ok && r.visited {
					op.RangeLabel = r.model.Label
				}
				d.model.ObjectProperties[op.URI] = op
			}
		}
	}

	for _, uri := range fr.order {
		if d := fr.classes[uri]; d.visited {
			entries = append(entries, ontology.NewClassEntry(d.model))
		}
	}
	return entries
}

func (f *ClassFetcher) rootQuery(uris []string) *sparql.SelectQuery {
	q := sparql.Select("uri", "parent")
	q.Where.Bind("uri", iris(uris)...)
	q.Where.Where(sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfType), sparql.IRI(vocabulary.OwlClass)))
	q.Where.Optional(parentGroup("uri", "parent", vocabulary.RdfsSubClassOf))
	q.Where.Filter(sparql.NotExists{Group: sparql.NewGroup(
		sparql.OneOrMore(sparql.Var("uri"), vocabulary.RdfsSubClassOf, sparql.Var("otherRoot")),
	).Bind("otherRoot", iris(uris)...)})
	f.labels.apply(q, "uri")
	return q
}

func (f *ClassFetcher) subclassQuery(roots []string) *sparql.SelectQuery {
	q := sparql.Select("uri", "parent")
	q.Where.Bind("rootType", iris(roots)...)
	q.Where.Where(
		sparql.ZeroOrMore(sparql.Var("parent"), vocabulary.RdfsSubClassOf, sparql.Var("rootType")),
		sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfsSubClassOf), sparql.Var("parent")),
	)
	q.Where.Filter(sparql.IsIRIExpr{Var: "uri"}, sparql.IsIRIExpr{Var: "parent"})
	f.labels.apply(q, "uri")
	return q
}

func (f *ClassFetcher) propertyQuery(roots []string) *sparql.SelectQuery {
	q := sparql.Select("uri", "type", "domain", "parent", "range")
	q.Where.Bind("rootType", iris(roots)...)
	q.Where.Bind("type", sparql.IRI(vocabulary.OwlDatatypeProperty), sparql.IRI(vocabulary.OwlObjectProperty))
	q.Where.Where(
		sparql.ZeroOrMore(sparql.Var("domain"), vocabulary.RdfsSubClassOf, sparql.Var("rootType")),
		sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfsDomain), sparql.Var("domain")),
		sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfType), sparql.Var("type")),
	)
	q.Where.Optional(parentGroup("uri", "parent", vocabulary.RdfsSubPropertyOf))
	q.Where.Optional(sparql.NewGroup(
		sparql.Triple(sparql.Var("uri"), sparql.IRI(vocabulary.RdfsRange), sparql.Var("range")),
	).Filter(sparql.IsIRIExpr{Var: "range"}))
	f.labels.apply(q, "uri")
	return q
}

func parentGroup(subject, parent, predicate string) *sparql.Group {
	return sparql.NewGroup(
		sparql.Triple(sparql.Var(subject), sparql.IRI(predicate), sparql.Var(parent)),
	).Filter(sparql.IsIRIExpr{Var: parent})
}

// propertyDraft is a property under assembly. A property declared on
// several classes of the forest is attached to each of them.
type propertyDraft struct {
	uri     string
	kind    ontology.PropertyKind
	domains []string
	parent  string
	rng     string
	texts   *texts
}

type propertyDrafts struct {
	order []string
	byURI map[string]*propertyDraft
}

func newPropertyDrafts() *propertyDrafts {
	return &propertyDrafts{byURI: make(map[string]*propertyDraft)}
}

func (ps *propertyDrafts) collect(labels labelProjection, row sparql.Row) {
	uri := row.Value("uri")
	p, ok := ps.byURI[uri]
	if !ok {
		p = &propertyDraft{uri: uri, texts: newTexts()}
		ps.byURI[uri] = p
		ps.order = append(ps.order, uri)
	}
	if p.kind == 0 {
		switch row.Value("type") {
		case vocabulary.OwlDatatypeProperty:
			p.kind = ontology.KindDatatype
		case vocabulary.OwlObjectProperty:
			p.kind = ontology.KindObject
		}
	}
	if domain := row.Value("domain"); domain != "" && !slices.Contains(p.domains, domain) {
		p.domains = append(p.domains, domain)
	}
	if p.parent == "" {
		p.parent = row.Value("parent")
	}
	if p.rng == "" {
		p.rng = row.Value("range")
	}
	p.texts.collect(labels, row)
}

func (ps *propertyDrafts) all() []*propertyDraft {
	out := make([]*propertyDraft, 0, len(ps.order))
	for _, uri := range ps.order {
		out = append(out, ps.byURI[uri])
	}
	return out
}

func (p *propertyDraft) model(labels labelProjection, domain string) ontology.PropertyModel {
	return ontology.PropertyModel{
		URI:     p.uri,
		Label:   p.texts.label(labels),
		Comment: p.texts.comment(labels),
		Domain:  domain,
		Parent:  p.parent,
	}
}

func (p *propertyDraft) datatype(labels labelProjection, domain string) *ontology.DatatypeProperty {
	return &ontology.DatatypeProperty{PropertyModel: p.model(labels, domain), Range: p.rng}
}

func (p *propertyDraft) object(labels labelProjection, domain string) *ontology.ObjectProperty {
	return &ontology.ObjectProperty{PropertyModel: p.model(labels, domain), Range: p.rng}
}
