// Package ontocache keeps an in-memory, multi-language view of an OWL
// ontology held in a SPARQL schema store.
//
// Classes are loaded on demand with their labels, comments, datatype and
// object properties, restrictions and subclass links, and are kept in a
// bounded store whose entries expire a fixed time after they were written.
// Readers receive detached copies translated to the requested language, so
// nothing a caller does to a returned model reaches the cache.
//
// # Architecture
//
//	cmd/ontocache       CLI: load config, build the cache, print class trees,
//	                    serve metrics and health
//	config              layered JSON/YAML configuration with env overrides
//	ontology            class, property and restriction models, trees
//	ontology/cache      the class cache, its fetcher, DAO and pass-through
//	ontology/relation   batch instance lookups driven by cached classes
//	sparql              query builder and result model
//	sparql/httpclient   SPARQL 1.1 protocol client with retries
//	sparql/memstore     in-memory triple store for tests and local files
//	vocabulary          prefixes and well-known IRIs
//	errors              classified errors (transient, invalid, fatal)
//	metric              Prometheus registry and HTTP server
//	health              component health and the /health handler
//	pkg/cache           expiring and LRU key/value stores
//	pkg/retry           exponential backoff
//	pkg/tlsutil         TLS client settings for HTTPS endpoints
//
// # Basic Usage
//
//	svc := memstore.New(logger)
//	if _, err := svc.LoadNTriples(f); err != nil {
//		return err
//	}
//	oc, err := cache.New(ctx, svc, cache.DefaultConfig(), cache.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer oc.Close()
//
//	tree, err := oc.GetSubClassesOf(ctx, "zoo:Animal", "", "fr", false)
//
// Mutations (properties, restrictions, class updates and removals) are
// applied to cached classes only; a class that is not cached is loaded with
// the change already in place on its next read.
package ontocache
