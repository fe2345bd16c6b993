package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/metric"
	"github.com/c360/ontocache/ontology"
	storecache "github.com/c360/ontocache/pkg/cache"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/sparql/memstore"
	"github.com/c360/ontocache/vocabulary"
)

const ex = "http://example.org/zoo#"

var (
	animal = ex + "Animal"
	dog    = ex + "Dog"
	cat    = ex + "Cat"
	plant  = ex + "Plant"
	tree   = ex + "Tree"
	oak    = ex + "Oak"
	birch  = ex + "Birch"

	hasColor  = ex + "hasColor"
	hasShade  = ex + "hasShade"
	hasName   = ex + "hasName"
	hasFriend = ex + "hasFriend"
	hasLeaves = ex + "hasLeaves"
)

type schema struct {
	t  *testing.T
	st *memstore.Store
}

func (s schema) add(subject, predicate string, object sparql.Term) {
	s.t.Helper()
	subj := sparql.IRI(subject)
	if len(subject) > 2 && subject[:2] == "_:" {
		subj = sparql.Blank(subject[2:])
	}
	_, err := s.st.Add(subj, sparql.IRI(predicate), object)
	require.NoError(s.t, err)
}

func (s schema) class(uri, parent, en, fr string) {
	s.add(uri, vocabulary.RdfType, sparql.IRI(vocabulary.OwlClass))
	if parent != "" {
		s.add(uri, vocabulary.RdfsSubClassOf, sparql.IRI(parent))
	}
	s.labels(uri, en, fr)
}

func (s schema) labels(uri, en, fr string) {
	if en != "" {
		s.add(uri, vocabulary.RdfsLabel, sparql.LangLiteral(en, "en"))
	}
	if fr != "" {
		s.add(uri, vocabulary.RdfsLabel, sparql.LangLiteral(fr, "fr"))
	}
}

func (s schema) property(uri, kind, domain, rng, parent, en, fr string) {
	s.add(uri, vocabulary.RdfType, sparql.IRI(kind))
	s.add(uri, vocabulary.RdfsDomain, sparql.IRI(domain))
	s.add(uri, vocabulary.RdfsRange, sparql.IRI(rng))
	if parent != "" {
		s.add(uri, vocabulary.RdfsSubPropertyOf, sparql.IRI(parent))
	}
	s.labels(uri, en, fr)
}

// newSchemaStore returns a store holding two class trees:
//
//	Animal -> Dog, Cat
//	Plant -> Tree -> Oak, Birch
func newSchemaStore(t *testing.T, withTopProperties bool) *memstore.Store {
	t.Helper()
	s := schema{t: t, st: memstore.New(nil)}

	if withTopProperties {
		s.add(vocabulary.OwlTopDataProperty, vocabulary.RdfType, sparql.IRI(vocabulary.OwlDatatypeProperty))
		s.labels(vocabulary.OwlTopDataProperty, "top data property", "")
		s.add(vocabulary.OwlTopObjectProperty, vocabulary.RdfType, sparql.IRI(vocabulary.OwlObjectProperty))
		s.labels(vocabulary.OwlTopObjectProperty, "top object property", "")
	}

	s.class(animal, "", "Animal", "Animal")
	s.class(dog, animal, "Dog", "Chien")
	s.class(cat, animal, "Cat", "Chat")
	s.add(dog, vocabulary.RdfsComment, sparql.LangLiteral("A loyal animal", "en"))
	// restriction nodes are superclasses too and must not show up as parents
	s.add(dog, vocabulary.RdfsSubClassOf, sparql.Blank("r1"))
	s.add("_:r1", vocabulary.RdfType, sparql.IRI(vocabulary.OwlRestriction))

	s.class(plant, "", "Plant", "Plante")
	s.class(tree, plant, "Tree", "Arbre")
	s.class(oak, tree, "Oak", "Chêne")
	s.class(birch, tree, "Birch", "Bouleau")

	s.property(hasColor, vocabulary.OwlDatatypeProperty, dog, vocabulary.XsdString, "", "color", "couleur")
	s.property(hasShade, vocabulary.OwlDatatypeProperty, dog, vocabulary.XsdString, hasColor, "shade", "nuance")
	s.property(hasName, vocabulary.OwlDatatypeProperty, animal, vocabulary.XsdString, "", "name", "nom")
	s.property(hasFriend, vocabulary.OwlObjectProperty, dog, cat, "", "friend", "ami")
	s.property(hasLeaves, vocabulary.OwlDatatypeProperty, oak, vocabulary.XsdInteger, "", "leaves", "")
	return s.st
}

// countingService counts the queries reaching the store and can be made
// to fail.
type countingService struct {
	sparql.Service

	mu      sync.Mutex
	selects int
	asks    int
	loads   int
	fail    error
}

func (s *countingService) ExecuteAsk(ctx context.Context, q *sparql.AskQuery) (bool, error) {
	s.mu.Lock()
	s.asks++
	s.mu.Unlock()
	return s.Service.ExecuteAsk(ctx, q)
}

func (s *countingService) askCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asks
}

func (s *countingService) ExecuteSelectStream(ctx context.Context, q *sparql.SelectQuery, fn func(sparql.Row) error) error {
	s.mu.Lock()
	s.selects++
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return fail
	}
	return s.Service.ExecuteSelectStream(ctx, q, fn)
}

func (s *countingService) LoadByIdentifier(ctx context.Context, rdfType, uri, lang string) (*sparql.Resource, bool, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return s.Service.LoadByIdentifier(ctx, rdfType, uri, lang)
}

func (s *countingService) queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selects
}

// reparent rewrites the subclass triple of uri in the schema store.
func (s *countingService) reparent(t *testing.T, uri, from, to string) {
	t.Helper()
	st, ok := s.Service.(*memstore.Store)
	require.True(t, ok)
	require.True(t, st.Remove(sparql.IRI(uri), sparql.IRI(vocabulary.RdfsSubClassOf), sparql.IRI(from)))
	_, err := st.Add(sparql.IRI(uri), sparql.IRI(vocabulary.RdfsSubClassOf), sparql.IRI(to))
	require.NoError(t, err)
}

func (s *countingService) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	cache    *ClassCache
	svc      *countingService
	clock    *manualClock
	registry *metric.MetricsRegistry
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Store = storecache.Config{
		Enabled:  true,
		Strategy: storecache.StrategyExpiring,
		MaxSize:  100,
		TTL:      time.Minute,
	}
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithConfig(t, testConfig())
}

func newFixtureWithConfig(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		svc:      &countingService{Service: newSchemaStore(t, true)},
		clock:    &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		registry: metric.NewMetricsRegistry(),
	}
	c, err := New(context.Background(), f.svc, cfg,
		WithClock(f.clock.Now),
		WithMetrics(f.registry))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	f.cache = c
	return f
}

func treeURIs(tr *ontology.Tree[*ontology.ClassModel]) []string {
	var out []string
	for _, c := range tr.Values() {
		out = append(out, c.URI)
	}
	return out
}

func childURIs(n *ontology.Node[*ontology.ClassModel]) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Value.URI)
	}
	return out
}

func propertyURIs[P ontology.Property](tr *ontology.Tree[P]) []string {
	var out []string
	for _, p := range tr.Values() {
		out = append(out, p.Model().URI)
	}
	return out
}

// requireLinked checks that every cached class whose parent is cached is
// listed among that parent's children.
func requireLinked(t *testing.T, c *ClassCache) {
	t.Helper()
	for _, key := range c.store.Keys() {
		e, ok := c.store.Get(key)
		if !ok || e.Class.Parent == "" {
			continue
		}
		if p, ok := c.store.Get(e.Class.Parent); ok {
			require.Contains(t, p.Class.Children, key, "parent %s must list %s", e.Class.Parent, key)
		}
	}
}
