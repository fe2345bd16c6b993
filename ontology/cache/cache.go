// Package cache serves OWL classes and their properties from memory.
//
// Classes are loaded from the schema store a whole forest at a time: a miss
// on one class loads it together with every transitive subclass and every
// property declared on any of them, in three queries. The backing store keeps
// one ClassEntry per class; entries reference each other by identifier.
//
// Mutations mirror changes already committed to the schema store. They
// replace whole entries (copy-on-write) under a single writer lock, and are
// skipped when the affected class is not cached: the next read loads the
// current state instead. Reads return detached copies translated to the
// requested language; cached labels keep every translation.
package cache

import (
	"context"
	"log/slog"

	"github.com/c360/ontocache/metric"
	"github.com/c360/ontocache/ontology"
	storecache "github.com/c360/ontocache/pkg/cache"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// OntologyCache is the contract consumed by DAO layers and relation
// fetchers.
type OntologyCache interface {
	// GetSubClassesOf returns the subtree below root. A non-empty pattern
	// searches the schema store directly for classes whose label matches it.
	// The tree is empty when root is unknown.
	GetSubClassesOf(ctx context.Context, root, pattern, lang string, excludeRoot bool) (*ontology.Tree[*ontology.ClassModel], error)

	// GetOrCreateClass returns the class uri, loading it on a miss. A
	// non-empty parent requires the class to be a direct subclass of it. The
	// boolean is false when no such class exists.
	GetOrCreateClass(ctx context.Context, uri, parent, lang string) (*ontology.ClassModel, bool, error)

	// GetOrCreateClasses resolves several classes with at most one load for
	// all misses. Unknown classes are skipped; the others keep request order.
	GetOrCreateClasses(ctx context.Context, uris []string, lang string) ([]*ontology.ClassModel, error)

	// SearchDataProperties returns the datatype properties declared on
	// domain. The tree is empty when domain is unknown.
	SearchDataProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.DatatypeProperty], error)

	// SearchObjectProperties returns the object properties declared on domain.
	SearchObjectProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.ObjectProperty], error)

	CreateDataProperty(p *ontology.DatatypeProperty) error
	UpdateDataProperty(p *ontology.DatatypeProperty) error
	DeleteDataProperty(propertyURI, domain string) error

	CreateObjectProperty(p *ontology.ObjectProperty) error
	UpdateObjectProperty(p *ontology.ObjectProperty) error
	DeleteObjectProperty(propertyURI, domain string) error

	AddRestriction(r *ontology.Restriction) error
	UpdateRestriction(r *ontology.Restriction) error
	DeleteRestriction(restrictionURI, domain string) error

	// UpdateClass evicts the class so the next read loads its new shape.
	UpdateClass(class *ontology.ClassModel) error

	// RemoveClass evicts the class and every cached descendant, and unlinks
	// it from its cached parent.
	RemoveClass(uri string) error

	// Invalidate drops every cached entry.
	Invalidate()

	// Populate loads the given classes ahead of use.
	Populate(ctx context.Context, uris []string) error

	TopDatatypeProperty() *ontology.DatatypeProperty
	TopObjectProperty() *ontology.ObjectProperty

	// Length returns the number of cached classes.
	Length() int

	Close() error
}

// Option configures a cache.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	registry *metric.MetricsRegistry
	clock    storecache.Clock
	store    storecache.Cache[*ontology.ClassEntry]
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics exports ontology and backing store metrics to registry.
func WithMetrics(registry *metric.MetricsRegistry) Option {
	return func(o *options) { o.registry = registry }
}

// WithClock sets the clock driving backing store expiry.
func WithClock(clock storecache.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithStore replaces the backing store built from Config.Store.
func WithStore(store storecache.Cache[*ontology.ClassEntry]) Option {
	return func(o *options) { o.store = store }
}

func applyOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// NewFromConfig builds the caching variant, or the pass-through variant
// when cfg.Store is disabled.
func NewFromConfig(ctx context.Context, svc sparql.Service, cfg Config, opts ...Option) (OntologyCache, error) {
	if !cfg.Store.Enabled {
		return NewPassThrough(ctx, svc, cfg, opts...)
	}
	return New(ctx, svc, cfg, opts...)
}

// base holds what both variants share.
type base struct {
	dao       *OntologyDAO
	fetcher   *ClassFetcher
	topData   *ontology.DatatypeProperty
	topObject *ontology.ObjectProperty
	logger    *slog.Logger
	metrics   *cacheMetrics
}

func newBase(ctx context.Context, svc sparql.Service, cfg Config, o *options) (*base, error) {
	if svc == nil {
		return nil, invalidInput(errMissingService, "New", "check schema store")
	}
	if err := cfg.Validate(); err != nil {
		return nil, invalidInput(err, "New", "config validation")
	}
	m, err := newCacheMetrics(o.registry)
	if err != nil {
		return nil, err
	}

	fetcher := NewClassFetcher(svc, cfg.Languages, cfg.DefaultLanguage, o.logger)
	fetcher.metrics = m
	fetcher.abstract = make(map[string]bool, len(cfg.AbstractClasses))
	for _, uri := range cfg.AbstractClasses {
		fetcher.abstract[vocabulary.FormatURI(uri)] = true
	}
	dao := NewOntologyDAO(svc, fetcher, o.logger)

	topData, topObject, err := dao.LoadTopProperties(ctx)
	if err != nil {
		o.logger.Error("Failed to load top properties", "error", err)
		return nil, err
	}
	return &base{
		dao:       dao,
		fetcher:   fetcher,
		topData:   topData,
		topObject: topObject,
		logger:    o.logger,
		metrics:   m,
	}, nil
}

// TopDatatypeProperty returns owl:topDataProperty.
func (b *base) TopDatatypeProperty() *ontology.DatatypeProperty { return b.topData.Clone() }

// TopObjectProperty returns owl:topObjectProperty.
func (b *base) TopObjectProperty() *ontology.ObjectProperty { return b.topObject.Clone() }
