package vocabulary

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PrefixRegistry maps compact IRI prefixes ("owl") to namespace IRIs.
// It is safe for concurrent use.
type PrefixRegistry struct {
	mu       sync.RWMutex
	prefixes map[string]string
}

// NewPrefixRegistry returns a registry preloaded with the rdf, rdfs, owl, xsd,
// skos and dc prefixes.
func NewPrefixRegistry() *PrefixRegistry {
	return &PrefixRegistry{
		prefixes: map[string]string{
			"rdf":  RDFNamespace,
			"rdfs": RDFSNamespace,
			"owl":  OWLNamespace,
			"xsd":  XSDNamespace,
			"skos": SKOSNamespace,
			"dc":   DCNamespace,
		},
	}
}

var defaultPrefixes = NewPrefixRegistry()

// RegisterPrefix adds prefix to the package-level registry used by FormatURI.
func RegisterPrefix(prefix, namespace string) error {
	return defaultPrefixes.Register(prefix, namespace)
}

// DefaultPrefixes returns the package-level registry.
func DefaultPrefixes() *PrefixRegistry {
	return defaultPrefixes
}

// Register adds or replaces a prefix mapping.
func (r *PrefixRegistry) Register(prefix, namespace string) error {
	prefix = strings.TrimSpace(prefix)
	namespace = strings.TrimSpace(namespace)
	if prefix == "" || strings.ContainsAny(prefix, ":/#") {
		return fmt.Errorf("invalid prefix %q", prefix)
	}
	if !IsAbsolute(namespace) {
		return fmt.Errorf("namespace for prefix %q must be an absolute IRI, got %q", prefix, namespace)
	}

	r.mu.Lock()
	r.prefixes[prefix] = namespace
	r.mu.Unlock()
	return nil
}

// Namespace returns the namespace registered for prefix.
func (r *PrefixRegistry) Namespace(prefix string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ns, ok := r.prefixes[prefix]
	return ns, ok
}

// Expand turns "prefix:local" into a full IRI. Values that are already
// absolute, or whose prefix is unknown, are returned unchanged.
func (r *PrefixRegistry) Expand(value string) string {
	prefix, local, ok := strings.Cut(value, ":")
	if !ok || strings.HasPrefix(local, "//") {
		return value
	}
	if ns, found := r.Namespace(prefix); found {
		return ns + local
	}
	return value
}

// Compact turns a full IRI into "prefix:local" using the longest matching
// namespace. IRIs outside every registered namespace are returned unchanged.
func (r *PrefixRegistry) Compact(iri string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	best, bestNS := "", ""
	for prefix, ns := range r.prefixes {
		if strings.HasPrefix(iri, ns) && len(ns) > len(bestNS) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" || len(iri) == len(bestNS) {
		return iri
	}
	return best + ":" + iri[len(bestNS):]
}

// Prefixes returns the registered prefixes in sorted order.
func (r *PrefixRegistry) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.prefixes))
	for p := range r.prefixes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
