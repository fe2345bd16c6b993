// Package config loads the ontocache application configuration.
//
// Configuration is read from JSON or YAML files, chosen by file extension.
// Files are applied as layers over the defaults, so a later file only needs
// the keys it overrides:
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.yaml")
//	loader.AddLayer("config/production.json")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		return err
//	}
//
// Durations are written as strings ("10m", "2s") or integer nanoseconds.
//
// # Environment Overrides
//
// After the file layers, a few environment variables replace single values:
//
//	ONTOCACHE_SPARQL_ENDPOINT  sparql.endpoint
//	ONTOCACHE_STORE_TTL        ontology.store.ttl
//	ONTOCACHE_ROOT_CLASSES     ontology.root_classes (comma-separated)
//
// # HTTPS Endpoints
//
// sparql.tls adds trusted CA files, a minimum TLS version or a client
// certificate for an https:// endpoint:
//
//	sparql:
//	  endpoint: https://graphdb.example.org/repositories/onto
//	  tls:
//	    ca_files: [/etc/ontocache/ca.pem]
//	    min_version: "1.3"
package config
