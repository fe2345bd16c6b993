package cache

import (
	"context"

	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// PassThrough is the OntologyCache used when caching is disabled. Every
// read goes to the schema store and every mutation is a no-op.
type PassThrough struct {
	*base
}

var _ OntologyCache = (*PassThrough)(nil)

// NewPassThrough builds a pass-through OntologyCache over svc. It loads
// the top properties and fails when they are missing.
func NewPassThrough(ctx context.Context, svc sparql.Service, cfg Config, opts ...Option) (*PassThrough, error) {
	b, err := newBase(ctx, svc, cfg, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	return &PassThrough{base: b}, nil
}

// forest returns a lookupFunc answering from one loaded forest and loading
// anything outside it.
func (p *PassThrough) forest(entries []*ontology.ClassEntry) lookupFunc {
	known := index(entries)
	return func(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, error) {
		found := make(map[string]*ontology.ClassEntry, len(uris))
		var missing []string
		for _, uri := range uris {
			if e, ok := known[uri]; ok {
				found[uri] = e
			} else {
				missing = append(missing, uri)
			}
		}
		if len(missing) == 0 {
			return found, nil
		}
		loaded, err := p.dao.GetClassEntries(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, e := range loaded {
			known[e.URI()] = e
		}
		for _, uri := range missing {
			if e, ok := known[uri]; ok {
				found[uri] = e
			}
		}
		return found, nil
	}
}

func (p *PassThrough) entry(ctx context.Context, uri, method string) (*ontology.ClassEntry, []*ontology.ClassEntry, error) {
	ids, err := normalizeURIs([]string{uri}, method)
	if err != nil {
		return nil, nil, err
	}
	entries, err := p.dao.GetClassEntries(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return index(entries)[ids[0]], entries, nil
}

// GetSubClassesOf implements OntologyCache.
func (p *PassThrough) GetSubClassesOf(ctx context.Context, root, pattern, lang string, excludeRoot bool) (*ontology.Tree[*ontology.ClassModel], error) {
	if pattern != "" {
		return p.dao.SearchSubClasses(ctx, root, pattern, lang, excludeRoot)
	}
	e, entries, err := p.entry(ctx, root, "GetSubClassesOf")
	if err != nil {
		return nil, err
	}
	if e == nil {
		return ontology.NewTree[*ontology.ClassModel](), nil
	}
	return subclassTree(ctx, p.forest(entries), nil, e, lang, excludeRoot)
}

// GetOrCreateClass implements OntologyCache. A parent hint other than the
// recorded parent is checked with one ASK over rdfs:subClassOf+.
func (p *PassThrough) GetOrCreateClass(ctx context.Context, uri, parent, lang string) (*ontology.ClassModel, bool, error) {
	e, _, err := p.entry(ctx, uri, "GetOrCreateClass")
	if err != nil || e == nil {
		return nil, false, err
	}
	if parent = vocabulary.FormatURI(parent); parent != "" && e.Class.Parent != parent {
		ok, err := p.dao.IsSubClassOf(ctx, e.URI(), parent)
		if err != nil || !ok {
			return nil, false, err
		}
	}
	return e.Class.In(lang), true, nil
}

// GetOrCreateClasses implements OntologyCache.
func (p *PassThrough) GetOrCreateClasses(ctx context.Context, uris []string, lang string) ([]*ontology.ClassModel, error) {
	ids, err := normalizeURIs(uris, "GetOrCreateClasses")
	if err != nil {
		return nil, err
	}
	entries, err := p.dao.GetClassEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := index(entries)
	out := make([]*ontology.ClassModel, 0, len(ids))
	for _, id := range ids {
		if e, ok := found[id]; ok {
			out = append(out, e.Class.In(lang))
		}
	}
	return out, nil
}

// SearchDataProperties implements OntologyCache.
func (p *PassThrough) SearchDataProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.DatatypeProperty], error) {
	e, _, err := p.entry(ctx, domain, "SearchDataProperties")
	if err != nil || e == nil {
		return ontology.NewTree[*ontology.DatatypeProperty](), err
	}
	return e.DataProperties.View(lang), nil
}

// SearchObjectProperties implements OntologyCache.
func (p *PassThrough) SearchObjectProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.ObjectProperty], error) {
	e, _, err := p.entry(ctx, domain, "SearchObjectProperties")
	if err != nil || e == nil {
		return ontology.NewTree[*ontology.ObjectProperty](), err
	}
	return e.ObjectProperties.View(lang), nil
}

func (p *PassThrough) CreateDataProperty(*ontology.DatatypeProperty) error { return nil }
func (p *PassThrough) UpdateDataProperty(*ontology.DatatypeProperty) error { return nil }
func (p *PassThrough) DeleteDataProperty(string, string) error             { return nil }
func (p *PassThrough) CreateObjectProperty(*ontology.ObjectProperty) error { return nil }
func (p *PassThrough) UpdateObjectProperty(*ontology.ObjectProperty) error { return nil }
func (p *PassThrough) DeleteObjectProperty(string, string) error           { return nil }
func (p *PassThrough) AddRestriction(*ontology.Restriction) error          { return nil }
func (p *PassThrough) UpdateRestriction(*ontology.Restriction) error       { return nil }
func (p *PassThrough) DeleteRestriction(string, string) error              { return nil }
func (p *PassThrough) UpdateClass(*ontology.ClassModel) error              { return nil }
func (p *PassThrough) RemoveClass(string) error                            { return nil }
func (p *PassThrough) Invalidate()                                         {}
func (p *PassThrough) Length() int                                         { return 0 }
func (p *PassThrough) Close() error                                        { return nil }

// Populate validates uris; there is nothing to warm.
func (p *PassThrough) Populate(_ context.Context, uris []string) error {
	if _, err := normalizeURIs(uris, "Populate"); err != nil {
		return err
	}
	p.logger.Debug("Populate skipped, caching disabled", "classes", len(uris))
	return nil
}
