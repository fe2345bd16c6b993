package cache

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/c360/ontocache/ontology"
	storecache "github.com/c360/ontocache/pkg/cache"
	"github.com/c360/ontocache/sparql"
	"github.com/c360/ontocache/vocabulary"
)

// ClassCache is the caching OntologyCache. Entries live in a backing
// store keyed by class identifier; the store must be safe for concurrent
// use. Writers (loads and mutations) are serialised by mu and replace
// entries instead of modifying them, so readers never need the lock.
type ClassCache struct {
	*base

	store    storecache.Cache[*ontology.ClassEntry]
	mu       sync.Mutex
	coalesce bool
	inflight singleflight.Group
}

var _ OntologyCache = (*ClassCache)(nil)

// New builds a caching OntologyCache over svc. It loads the top properties
// and fails when they are missing.
func New(ctx context.Context, svc sparql.Service, cfg Config, opts ...Option) (*ClassCache, error) {
	o := applyOptions(opts)
	b, err := newBase(ctx, svc, cfg, o)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		storeOpts := []storecache.Option[*ontology.ClassEntry]{
			storecache.WithEvictionCallback(func(key string, _ *ontology.ClassEntry) {
				b.logger.Debug("Class entry evicted", "class", key)
			}),
			storecache.WithClock[*ontology.ClassEntry](o.clock),
			storecache.WithMetrics[*ontology.ClassEntry](o.registry, "ontology_classes"),
		}
		store, err = storecache.NewFromConfig(cfg.Store, storeOpts...)
		if err != nil {
			return nil, err
		}
	}

	return &ClassCache{
		base:     b,
		store:    store,
		coalesce: cfg.CoalesceMisses,
	}, nil
}

// entries implements lookupFunc over the backing store.
func (c *ClassCache) entries(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, error) {
	found, _, err := c.resolve(ctx, uris)
	return found, err
}

// resolve returns the entries for uris and the identifiers that had to be
// loaded from the schema store.
func (c *ClassCache) resolve(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, []string, error) {
	found := make(map[string]*ontology.ClassEntry, len(uris))
	var missing []string
	for _, uri := range uris {
		if e, ok := c.store.Get(uri); ok {
			found[uri] = e
		} else {
			missing = append(missing, uri)
		}
	}
	if len(missing) == 0 {
		return found, nil, nil
	}

	loaded, err := c.load(ctx, missing)
	if err != nil {
		return nil, nil, err
	}
	for _, uri := range missing {
		if e, ok := loaded[uri]; ok {
			found[uri] = e
		}
	}
	return found, missing, nil
}

// load fetches the forests below uris and installs every entry. With
// coalescing on, concurrent loads of the same identifiers share one fetch.
func (c *ClassCache) load(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, error) {
	fetch := func() (any, error) {
		entries, err := c.fetcher.Fetch(ctx, uris)
		if err != nil {
			return nil, err
		}
		c.install(entries)
		return index(entries), nil
	}

	var (
		v   any
		err error
	)
	if c.coalesce {
		key := slices.Clone(uris)
		slices.Sort(key)
		v, err, _ = c.inflight.Do(strings.Join(key, "\n"), fetch)
	} else {
		v, err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return v.(map[string]*ontology.ClassEntry), nil
}

// install stores freshly loaded entries and links each loaded root into its
// cached parent, which may predate the root.
func (c *ClassCache) install(entries []*ontology.ClassEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	loaded := make(map[string]bool, len(entries))
	for _, e := range entries {
		loaded[e.URI()] = true
		if _, err := c.store.Set(e.URI(), e); err != nil {
			c.logger.Error("Failed to cache class entry", "class", e.URI(), "error", err)
		}
	}
	for _, e := range entries {
		parent := e.Class.Parent
		if parent == "" || loaded[parent] {
			continue
		}
		c.link(parent, e.URI())
	}
}

// link adds child to the cached parent entry. Callers hold mu.
func (c *ClassCache) link(parent, child string) {
	p, ok := c.store.Get(parent)
	if !ok || p.Class.HasChild(child) {
		return
	}
	next := p.Clone()
	next.Class.AddChild(child)
	if _, err := c.store.Set(parent, next); err != nil {
		c.logger.Error("Failed to cache class entry", "class", parent, "error", err)
	}
}

// unlink removes child from the cached parent entry. Callers hold mu.
func (c *ClassCache) unlink(parent, child string) {
	p, ok := c.store.Get(parent)
	if !ok || !p.Class.HasChild(child) {
		return
	}
	next := p.Clone()
	next.Class.RemoveChild(child)
	if _, err := c.store.Set(parent, next); err != nil {
		c.logger.Error("Failed to cache class entry", "class", parent, "error", err)
	}
}

// unlinkFromParents removes uri from every cached entry other than keep
// that lists it as a child and returns how many entries changed. It serves
// classes that are no longer cached themselves. Callers hold mu.
func (c *ClassCache) unlinkFromParents(uri, keep string) int {
	n := 0
	for _, key := range c.store.Keys() {
		if key == keep {
			continue
		}
		if p, ok := c.store.Get(key); ok && p.Class.HasChild(uri) {
			c.unlink(key, uri)
			n++
		}
	}
	return n
}

// childrenOf returns the cached entries whose recorded parent is uri.
// Callers hold mu.
func (c *ClassCache) childrenOf(uri string) []string {
	var out []string
	for _, key := range c.store.Keys() {
		if e, ok := c.store.Get(key); ok && e.Class.Parent == uri {
			out = append(out, key)
		}
	}
	return out
}

// GetSubClassesOf implements OntologyCache.
func (c *ClassCache) GetSubClassesOf(ctx context.Context, root, pattern, lang string, excludeRoot bool) (*ontology.Tree[*ontology.ClassModel], error) {
	if pattern != "" {
		return c.dao.SearchSubClasses(ctx, root, pattern, lang, excludeRoot)
	}
	ids, err := normalizeURIs([]string{root}, "GetSubClassesOf")
	if err != nil {
		return nil, err
	}
	found, err := c.entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	e, ok := found[ids[0]]
	if !ok {
		return ontology.NewTree[*ontology.ClassModel](), nil
	}
	lookup, check := c.treeLookup()
	return subclassTree(ctx, lookup, check, e, lang, excludeRoot)
}

// treeLookup returns the lookup and child check for one tree read. A child
// reloaded during the read whose recorded parent differs is confirmed
// against the schema store. When the store no longer asserts the link, the
// child is left out and unlinked from the cached parent.
func (c *ClassCache) treeLookup() (lookupFunc, childCheck) {
	reloaded := make(map[string]bool)
	lookup := func(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, error) {
		found, missing, err := c.resolve(ctx, uris)
		for _, uri := range missing {
			reloaded[uri] = true
		}
		return found, err
	}
	check := func(ctx context.Context, parent string, child *ontology.ClassEntry) (bool, error) {
		if !reloaded[child.URI()] {
			return true, nil
		}
		ok, err := c.dao.IsDirectSubClassOf(ctx, child.URI(), parent)
		if err != nil || ok {
			return ok, err
		}
		c.mu.Lock()
		c.unlink(parent, child.URI())
		c.mu.Unlock()
		c.logger.Debug("Dropped stale subclass link", "parent", parent, "class", child.URI())
		return false, nil
	}
	return lookup, check
}

// GetOrCreateClass implements OntologyCache.
func (c *ClassCache) GetOrCreateClass(ctx context.Context, uri, parent, lang string) (*ontology.ClassModel, bool, error) {
	ids, err := normalizeURIs([]string{uri}, "GetOrCreateClass")
	if err != nil {
		return nil, false, err
	}
	found, err := c.entries(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	e, ok := found[ids[0]]
	if !ok {
		return nil, false, nil
	}
	if parent = vocabulary.FormatURI(parent); parent != "" {
		ok, err := c.descendsFrom(ctx, e, parent)
		if err != nil || !ok {
			return nil, false, err
		}
	}
	return e.Class.In(lang), true, nil
}

// descendsFrom walks the parent chain of e, loading ancestors as needed,
// and reports whether ancestor is e or one of its ancestors.
func (c *ClassCache) descendsFrom(ctx context.Context, e *ontology.ClassEntry, ancestor string) (bool, error) {
	seen := map[string]bool{}
	for cur := e; cur != nil && !seen[cur.URI()]; {
		if cur.URI() == ancestor || cur.Class.Parent == ancestor {
			return true, nil
		}
		seen[cur.URI()] = true
		next := cur.Class.Parent
		if next == "" {
			return false, nil
		}
		found, err := c.entries(ctx, []string{next})
		if err != nil {
			return false, err
		}
		cur = found[next]
	}
	return false, nil
}

// GetOrCreateClasses implements OntologyCache.
func (c *ClassCache) GetOrCreateClasses(ctx context.Context, uris []string, lang string) ([]*ontology.ClassModel, error) {
	ids, err := normalizeURIs(uris, "GetOrCreateClasses")
	if err != nil {
		return nil, err
	}
	found, err := c.entries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*ontology.ClassModel, 0, len(ids))
	for _, id := range ids {
		if e, ok := found[id]; ok {
			out = append(out, e.Class.In(lang))
		}
	}
	return out, nil
}

func (c *ClassCache) domainEntry(ctx context.Context, domain, method string) (*ontology.ClassEntry, bool, error) {
	ids, err := normalizeURIs([]string{domain}, method)
	if err != nil {
		return nil, false, err
	}
	found, err := c.entries(ctx, ids)
	if err != nil {
		return nil, false, err
	}
	e, ok := found[ids[0]]
	return e, ok, nil
}

// SearchDataProperties implements OntologyCache.
func (c *ClassCache) SearchDataProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.DatatypeProperty], error) {
	e, ok, err := c.domainEntry(ctx, domain, "SearchDataProperties")
	if err != nil || !ok {
		return ontology.NewTree[*ontology.DatatypeProperty](), err
	}
	return e.DataProperties.View(lang), nil
}

// SearchObjectProperties implements OntologyCache.
func (c *ClassCache) SearchObjectProperties(ctx context.Context, domain, lang string) (*ontology.Tree[*ontology.ObjectProperty], error) {
	e, ok, err := c.domainEntry(ctx, domain, "SearchObjectProperties")
	if err != nil || !ok {
		return ontology.NewTree[*ontology.ObjectProperty](), err
	}
	return e.ObjectProperties.View(lang), nil
}

// mutate applies fn to a copy of the cached domain entry and installs the
// copy. Nothing happens when the domain is not cached or fn reports no
// change.
func (c *ClassCache) mutate(op, domain string, fn func(e *ontology.ClassEntry) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(domain)
	if !ok {
		c.skip(op, domain, "class not cached")
		return
	}
	next := e.Clone()
	if !fn(next) {
		c.skip(op, domain, "nothing to change")
		return
	}
	if _, err := c.store.Set(domain, next); err != nil {
		c.logger.Error("Failed to cache class entry", "class", domain, "error", err)
		return
	}
	c.metrics.mutation(op, true)
}

func (c *ClassCache) skip(op, class, reason string) {
	c.metrics.mutation(op, false)
	c.logger.Debug("Skipped cache mutation", "op", op, "class", class, "reason", reason)
}

// CreateDataProperty implements OntologyCache. An existing property with
// the same identifier is replaced.
func (c *ClassCache) CreateDataProperty(p *ontology.DatatypeProperty) error {
	return c.putDataProperty("create_data_property", p)
}

// UpdateDataProperty implements OntologyCache. A property missing from
// the entry is added.
func (c *ClassCache) UpdateDataProperty(p *ontology.DatatypeProperty) error {
	return c.putDataProperty("update_data_property", p)
}

func (c *ClassCache) putDataProperty(op string, p *ontology.DatatypeProperty) error {
	if p == nil {
		return invalidInput(errInvalidProperty, op, "validate property")
	}
	np := p.Clone()
	if err := normalizeProperty(np.Model(), op); err != nil {
		return err
	}
	c.mutate(op, np.Domain, func(e *ontology.ClassEntry) bool {
		e.PutDatatypeProperty(np)
		return true
	})
	return nil
}

// DeleteDataProperty implements OntologyCache.
func (c *ClassCache) DeleteDataProperty(propertyURI, domain string) error {
	return c.deleteProperty("delete_data_property", propertyURI, domain, (*ontology.ClassEntry).RemoveDatatypeProperty)
}

// CreateObjectProperty implements OntologyCache. An existing property
// with the same identifier is replaced.
func (c *ClassCache) CreateObjectProperty(p *ontology.ObjectProperty) error {
	return c.putObjectProperty("create_object_property", p)
}

// UpdateObjectProperty implements OntologyCache. A property missing from
// the entry is added.
func (c *ClassCache) UpdateObjectProperty(p *ontology.ObjectProperty) error {
	return c.putObjectProperty("update_object_property", p)
}

func (c *ClassCache) putObjectProperty(op string, p *ontology.ObjectProperty) error {
	if p == nil {
		return invalidInput(errInvalidProperty, op, "validate property")
	}
	np := p.Clone()
	if err := normalizeProperty(np.Model(), op); err != nil {
		return err
	}
	np.Range = vocabulary.FormatURI(np.Range)
	if r, ok := c.store.Get(np.Range); ok && np.RangeLabel.IsEmpty() {
		np.RangeLabel = r.Class.Label
	}
	c.mutate(op, np.Domain, func(e *ontology.ClassEntry) bool {
		e.PutObjectProperty(np)
		return true
	})
	return nil
}

// DeleteObjectProperty implements OntologyCache.
func (c *ClassCache) DeleteObjectProperty(propertyURI, domain string) error {
	return c.deleteProperty("delete_object_property", propertyURI, domain, (*ontology.ClassEntry).RemoveObjectProperty)
}

func (c *ClassCache) deleteProperty(op, propertyURI, domain string, remove func(*ontology.ClassEntry, string) bool) error {
	propertyURI, domain = vocabulary.FormatURI(propertyURI), vocabulary.FormatURI(domain)
	if propertyURI == "" || domain == "" {
		return invalidInput(errInvalidProperty, op, "validate property")
	}
	c.mutate(op, domain, func(e *ontology.ClassEntry) bool {
		return remove(e, propertyURI)
	})
	return nil
}

// AddRestriction implements OntologyCache. A restriction without an
// identifier is given a skolem one.
func (c *ClassCache) AddRestriction(r *ontology.Restriction) error {
	return c.putRestriction("add_restriction", r)
}

// UpdateRestriction implements OntologyCache. The restriction must carry
// its identifier.
func (c *ClassCache) UpdateRestriction(r *ontology.Restriction) error {
	if r != nil && vocabulary.FormatURI(r.URI) == "" {
		return invalidInput(errInvalidRestrict, "update_restriction", "validate restriction")
	}
	return c.putRestriction("update_restriction", r)
}

func (c *ClassCache) putRestriction(op string, r *ontology.Restriction) error {
	if r == nil || vocabulary.FormatURI(r.Domain) == "" {
		return invalidInput(errInvalidRestrict, op, "validate restriction")
	}
	nr := r.Normalized()
	c.mutate(op, nr.Domain, func(e *ontology.ClassEntry) bool {
		e.Class.Restrictions[nr.URI] = nr
		return true
	})
	return nil
}

// DeleteRestriction implements OntologyCache.
func (c *ClassCache) DeleteRestriction(restrictionURI, domain string) error {
	restrictionURI, domain = vocabulary.FormatURI(restrictionURI), vocabulary.FormatURI(domain)
	if restrictionURI == "" || domain == "" {
		return invalidInput(errInvalidRestrict, "delete_restriction", "validate restriction")
	}
	c.mutate("delete_restriction", domain, func(e *ontology.ClassEntry) bool {
		if _, ok := e.Class.Restrictions[restrictionURI]; !ok {
			return false
		}
		delete(e.Class.Restrictions, restrictionURI)
		return true
	})
	return nil
}

// UpdateClass implements OntologyCache. When the parent changed, the class
// moves from the old cached parent to the new one before it is evicted. A
// class that is not cached is still moved between cached parents.
func (c *ClassCache) UpdateClass(class *ontology.ClassModel) error {
	if class == nil || vocabulary.FormatURI(class.URI) == "" {
		return invalidInput(errInvalidClass, "update_class", "validate class")
	}
	uri := vocabulary.FormatURI(class.URI)
	parent := vocabulary.FormatURI(class.Parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store.Get(uri)
	if !ok {
		// the class expired but cached parents may still list it
		changed := c.unlinkFromParents(uri, parent)
		if p, cached := c.store.Get(parent); cached && !p.Class.HasChild(uri) {
			c.link(parent, uri)
			changed++
		}
		if changed == 0 {
			c.skip("update_class", uri, "class not cached")
			return nil
		}
		c.metrics.mutation("update_class", true)
		return nil
	}
	if e.Class.Parent != parent {
		if e.Class.Parent != "" {
			c.unlink(e.Class.Parent, uri)
		}
		if parent != "" {
			c.link(parent, uri)
		}
	}
	if _, err := c.store.Delete(uri); err != nil {
		return err
	}
	c.metrics.mutation("update_class", true)
	return nil
}

// RemoveClass implements OntologyCache.
func (c *ClassCache) RemoveClass(uri string) error {
	uri = vocabulary.FormatURI(uri)
	if uri == "" {
		return invalidInput(errInvalidClass, "remove_class", "validate class")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stack := []string{uri}
	e, ok := c.store.Get(uri)
	if !ok {
		// cached descendants of an expired class are still evicted
		unlinked := c.unlinkFromParents(uri, "")
		orphans := c.childrenOf(uri)
		if unlinked == 0 && len(orphans) == 0 {
			c.skip("remove_class", uri, "class not cached")
			return nil
		}
		stack = append(stack, orphans...)
	} else if e.Class.Parent != "" {
		c.unlink(e.Class.Parent, uri)
	}

	removed := 0
	visited := make(map[string]bool)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[id] {
			continue
		}
		visited[id] = true
		if entry, ok := c.store.Get(id); ok {
			stack = append(stack, entry.Class.Children...)
		}
		deleted, err := c.store.Delete(id)
		if err != nil {
			return err
		}
		if deleted {
			removed++
		}
	}
	c.metrics.mutation("remove_class", true)
	c.logger.Debug("Removed class from cache", "class", uri, "evicted", removed)
	return nil
}

// Invalidate implements OntologyCache.
func (c *ClassCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.store.Size()
	if err := c.store.Clear(); err != nil {
		c.logger.Error("Failed to clear class cache", "error", err)
		return
	}
	c.logger.Info("Invalidated ontology cache", "evicted", n)
}

// Populate implements OntologyCache.
func (c *ClassCache) Populate(ctx context.Context, uris []string) error {
	start := time.Now()
	ids, err := normalizeURIs(uris, "Populate")
	if err != nil {
		return err
	}
	if _, err := c.entries(ctx, ids); err != nil {
		return err
	}
	c.logger.Info("Populate [OK]",
		"classes", len(ids),
		"cached", c.Length(),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Length implements OntologyCache.
func (c *ClassCache) Length() int {
	return c.store.Size()
}

// Stats returns the backing store statistics, nil when caching is off.
func (c *ClassCache) Stats() *storecache.Statistics {
	return c.store.Stats()
}

// Close releases the backing store.
func (c *ClassCache) Close() error {
	return c.store.Close()
}
