package cache

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"slices"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// OntologyDAO reads the schema store directly. Both cache variants use it
// for reads that are never cached, and the pass-through variant for all
// reads.
type OntologyDAO struct {
	svc     sparql.Service
	fetcher *ClassFetcher
	labels  labelProjection
	logger  *slog.Logger
	metrics *cacheMetrics
}

// NewOntologyDAO returns a DAO over svc.
func NewOntologyDAO(svc sparql.Service, fetcher *ClassFetcher, logger *slog.Logger) *OntologyDAO {
	if logger == nil {
		logger = slog.Default()
	}
	return &OntologyDAO{
		svc:     svc,
		fetcher: fetcher,
		labels:  fetcher.labels,
		logger:  logger,
		metrics: fetcher.metrics,
	}
}

// GetClassEntries loads the forest below uris.
func (d *OntologyDAO) GetClassEntries(ctx context.Context, uris []string) ([]*ontology.ClassEntry, error) {
	return d.fetcher.Fetch(ctx, uris)
}

// SearchSubClasses returns the classes below root whose label matches the
// case-insensitive regular expression pattern, connected to root through
// their ancestors. With lang set, only labels in lang or untagged labels are
// matched. The result is empty when nothing matches.
func (d *OntologyDAO) SearchSubClasses(ctx context.Context, root, pattern, lang string, excludeRoot bool) (*ontology.Tree[*ontology.ClassModel], error) {
	root = vocabulary.FormatURI(root)
	if root == "" {
		return nil, invalidInput(ErrInvalidClassURIs, "SearchSubClasses", "root class is required")
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return nil, invalidInput(err, "SearchSubClasses", fmt.Sprintf("compile pattern %q", pattern))
	}

	q := sparql.Select("uri", "parent")
	q.Where.Where(
		sparql.ZeroOrMore(sparql.Var("uri"), vocabulary.RdfsSubClassOf, sparql.IRI(root)),
		sparql.ZeroOrMore(sparql.Var("match"), vocabulary.RdfsSubClassOf, sparql.Var("uri")),
		sparql.Triple(sparql.Var("match"), sparql.IRI(vocabulary.RdfsLabel), sparql.Var("name")),
	)
	q.Where.Filter(sparql.IsIRIExpr{Var: "uri"}, sparql.Regex{Var: "name", Pattern: pattern, Flags: "i"})
	if lang != "" {
		q.Where.Filter(sparql.Or{Exprs: []sparql.Expr{
			sparql.LangMatches{Var: "name", Lang: lang},
			sparql.LangMatches{Var: "name", Lang: ""},
		}})
	}
	q.Where.Optional(parentGroup("uri", "parent", vocabulary.RdfsSubClassOf))
	d.labels.apply(q, "uri")

	fr := &forest{classes: make(map[string]*classDraft)}
	parents := make(map[string][]string)
	d.metrics.query("search")
	err := d.svc.ExecuteSelectStream(ctx, q, func(row sparql.Row) error {
		uri := row.Value("uri")
		dr := fr.draft(uri)
		dr.visited = true
		dr.texts.collect(d.labels, row)
		if p := row.Value("parent"); p != "" && !slices.Contains(parents[uri], p) {
			parents[uri] = append(parents[uri], p)
		}
		return nil
	})
	if err != nil {
		return nil, storeFailure(err, "SearchSubClasses", "search query")
	}

	nodes := make(map[string]*ontology.Node[*ontology.ClassModel], len(fr.order))
	for _, uri := range fr.order {
		dr := fr.classes[uri]
		dr.model.Label = dr.texts.label(d.labels)
		dr.model.Comment = dr.texts.comment(d.labels)
		for _, p := range parents[uri] {
			if _, ok := fr.classes[p]; ok && uri != root && dr.model.Parent == "" {
				dr.model.Parent = p
			}
		}
		nodes[uri] = &ontology.Node[*ontology.ClassModel]{Value: dr.model}
	}

	tree := ontology.NewTree[*ontology.ClassModel]()
	for _, uri := range fr.order {
		model := fr.classes[uri].model
		if model.Parent == "" {
			tree.Roots = append(tree.Roots, nodes[uri])
			continue
		}
		fr.classes[model.Parent].model.AddChild(uri)
		nodes[model.Parent].Children = append(nodes[model.Parent].Children, nodes[uri])
	}
	for _, n := range nodes {
		n.Value = n.Value.In(lang)
	}

	if excludeRoot {
		var roots []*ontology.Node[*ontology.ClassModel]
		for _, r := range tree.Roots {
			if r.Value.URI == root {
				roots = append(roots, r.Children...)
			} else {
				roots = append(roots, r)
			}
		}
		tree.Roots = roots
	}
	d.logger.Debug("Searched subclasses", "root", root, "pattern", pattern, "classes", len(nodes))
	return tree, nil
}

// IsSubClassOf asks the schema store whether uri is ancestor or one of
// its transitive subclasses.
func (d *OntologyDAO) IsSubClassOf(ctx context.Context, uri, ancestor string) (bool, error) {
	uri, ancestor = vocabulary.FormatURI(uri), vocabulary.FormatURI(ancestor)
	if uri == "" || ancestor == "" {
		return false, invalidInput(ErrInvalidClassURIs, "IsSubClassOf", "class and ancestor are required")
	}
	if uri == ancestor {
		return true, nil
	}
	q := sparql.Ask(sparql.NewGroup(
		sparql.OneOrMore(sparql.IRI(uri), vocabulary.RdfsSubClassOf, sparql.IRI(ancestor)),
	))
	d.metrics.query("ancestor")
	ok, err := d.svc.ExecuteAsk(ctx, q)
	if err != nil {
		return false, storeFailure(err, "IsSubClassOf", "ask "+vocabulary.Compact(uri))
	}
	return ok, nil
}

// IsDirectSubClassOf asks the schema store whether the triple
// uri rdfs:subClassOf parent is asserted.
func (d *OntologyDAO) IsDirectSubClassOf(ctx context.Context, uri, parent string) (bool, error) {
	uri, parent = vocabulary.FormatURI(uri), vocabulary.FormatURI(parent)
	if uri == "" || parent == "" {
		return false, invalidInput(ErrInvalidClassURIs, "IsDirectSubClassOf", "class and parent are required")
	}
	q := sparql.Ask(sparql.NewGroup(
		sparql.Triple(sparql.IRI(uri), sparql.IRI(vocabulary.RdfsSubClassOf), sparql.IRI(parent)),
	))
	d.metrics.query("ancestor")
	ok, err := d.svc.ExecuteAsk(ctx, q)
	if err != nil {
		return false, storeFailure(err, "IsDirectSubClassOf", "ask "+vocabulary.Compact(uri))
	}
	return ok, nil
}

// LoadTopProperties loads the roots of the datatype and object property
// hierarchies. Either missing is a fatal configuration error.
func (d *OntologyDAO) LoadTopProperties(ctx context.Context) (*ontology.DatatypeProperty, *ontology.ObjectProperty, error) {
	dataModel, err := d.loadProperty(ctx, vocabulary.OwlDatatypeProperty, vocabulary.OwlTopDataProperty)
	if err != nil {
		return nil, nil, err
	}
	objectModel, err := d.loadProperty(ctx, vocabulary.OwlObjectProperty, vocabulary.OwlTopObjectProperty)
	if err != nil {
		return nil, nil, err
	}
	return &ontology.DatatypeProperty{PropertyModel: dataModel},
		&ontology.ObjectProperty{PropertyModel: objectModel}, nil
}

func (d *OntologyDAO) loadProperty(ctx context.Context, rdfType, uri string) (ontology.PropertyModel, error) {
	d.metrics.query("load")
	res, found, err := d.svc.LoadByIdentifier(ctx, rdfType, uri, "")
	if err != nil {
		return ontology.PropertyModel{}, storeFailure(err, "LoadTopProperties", "load "+vocabulary.Compact(uri))
	}
	if !found {
		return ontology.PropertyModel{}, errors.WrapFatal(ErrTopPropertyMissing, "ontology-cache", "LoadTopProperties",
			"load "+vocabulary.Compact(uri))
	}
	return ontology.PropertyModel{
		URI:     res.URI,
		Label:   ontology.LabelFromTranslations(res.Labels, d.labels.defaultLang),
		Comment: ontology.LabelFromTranslations(res.Comments, d.labels.defaultLang),
		Parent:  res.Parent,
	}, nil
}
