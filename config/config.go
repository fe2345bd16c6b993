package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/ontology/cache"
	"github.com/c360/ontocache/pkg/retry"
	"github.com/c360/ontocache/pkg/tlsutil"
	"github.com/c360/ontocache/sparql/httpclient"
)

// Config is the complete application configuration.
type Config struct {
	Ontology cache.Config  `json:"ontology" yaml:"ontology"`
	SPARQL   SPARQLConfig  `json:"sparql" yaml:"sparql"`
	Metrics  MetricsConfig `json:"metrics" yaml:"metrics"`
}

// SPARQLConfig selects the schema store: a remote endpoint, or an
// N-Triples file loaded into the in-memory store.
type SPARQLConfig struct {
	Endpoint       string               `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	UpdateEndpoint string               `json:"update_endpoint,omitempty" yaml:"update_endpoint,omitempty"` // not used by the cache
	Timeout        Duration             `json:"timeout" yaml:"timeout"`
	Retry          RetryConfig          `json:"retry" yaml:"retry"`
	TLS            tlsutil.ClientConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
	NTriplesFile   string               `json:"ntriples_file,omitempty" yaml:"ntriples_file,omitempty"`
}

// RetryConfig is the retry policy of the remote endpoint client.
type RetryConfig struct {
	MaxAttempts  int      `json:"max_attempts" yaml:"max_attempts"`
	InitialDelay Duration `json:"initial_delay" yaml:"initial_delay"`
	MaxDelay     Duration `json:"max_delay" yaml:"max_delay"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Address string `json:"address" yaml:"address"`
	Path    string `json:"path" yaml:"path"`
}

// Default returns the default configuration: an empty in-memory store and
// metrics disabled.
func Default() *Config {
	r := retry.DefaultConfig()
	return &Config{
		Ontology: cache.DefaultConfig(),
		SPARQL: SPARQLConfig{
			Timeout: Duration(30 * time.Second),
			Retry: RetryConfig{
				MaxAttempts:  r.MaxAttempts,
				InitialDelay: Duration(r.InitialDelay),
				MaxDelay:     Duration(r.MaxDelay),
			},
		},
		Metrics: MetricsConfig{
			Address: ":9090",
			Path:    "/metrics",
		},
	}
}

// Remote reports whether the schema store is a remote endpoint.
func (s SPARQLConfig) Remote() bool {
	return s.Endpoint != ""
}

// Secure reports whether the endpoint client needs its own TLS settings.
func (s SPARQLConfig) Secure() bool {
	return strings.HasPrefix(s.Endpoint, "https://") && !s.TLS.IsZero()
}

// ClientConfig returns the configuration of the endpoint client.
func (s SPARQLConfig) ClientConfig() httpclient.Config {
	r := retry.DefaultConfig()
	r.MaxAttempts = s.Retry.MaxAttempts
	if s.Retry.InitialDelay > 0 {
		r.InitialDelay = s.Retry.InitialDelay.Std()
	}
	if s.Retry.MaxDelay > 0 {
		r.MaxDelay = s.Retry.MaxDelay.Std()
	}
	return httpclient.Config{
		Endpoint: s.Endpoint,
		Timeout:  s.Timeout.Std(),
		Retry:    r,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Ontology.Validate(); err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "ontology section")
	}
	if err := c.SPARQL.validate(); err != nil {
		return errors.WrapInvalid(err, "config", "Validate", "sparql section")
	}
	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.WrapInvalid(errors.ErrMissingConfig, "config", "Validate",
				"metrics.address is required when metrics are enabled")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "config", "Validate",
				fmt.Sprintf("metrics.path %q must start with /", c.Metrics.Path))
		}
	}
	return nil
}

func (s SPARQLConfig) validate() error {
	if s.Endpoint != "" && s.NTriplesFile != "" {
		return fmt.Errorf("%w: endpoint and ntriples_file are exclusive", errors.ErrInvalidConfig)
	}
	for _, endpoint := range []string{s.Endpoint, s.UpdateEndpoint} {
		if endpoint == "" {
			continue
		}
		u, err := url.Parse(endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid endpoint %q", errors.ErrInvalidConfig, endpoint)
		}
	}
	if s.Timeout < 0 || s.Retry.InitialDelay < 0 || s.Retry.MaxDelay < 0 {
		return fmt.Errorf("%w: durations cannot be negative", errors.ErrInvalidConfig)
	}
	if s.Retry.MaxDelay > 0 && s.Retry.MaxDelay < s.Retry.InitialDelay {
		return fmt.Errorf("%w: retry.max_delay must be >= retry.initial_delay", errors.ErrInvalidConfig)
	}
	if err := s.TLS.Validate(); err != nil {
		return err
	}
	if !s.TLS.IsZero() && !strings.HasPrefix(s.Endpoint, "https://") {
		return fmt.Errorf("%w: tls settings require an https endpoint", errors.ErrInvalidConfig)
	}
	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return Default()
	}
	clone := *c
	clone.Ontology.Languages = append([]string(nil), c.Ontology.Languages...)
	clone.Ontology.RootClasses = append([]string(nil), c.Ontology.RootClasses...)
	clone.Ontology.AbstractClasses = append([]string(nil), c.Ontology.AbstractClasses...)
	clone.SPARQL.TLS.CAFiles = append([]string(nil), c.SPARQL.TLS.CAFiles...)
	return &clone
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// SaveToFile writes the configuration as JSON or YAML, by file extension.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case formatYAML:
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return writeConfigFile(path, data)
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// Loader handles configuration loading with layers and overrides.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	getenv     func(string) string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		envPrefix: "ONTOCACHE",
		getenv:    os.Getenv,
	}
}

// AddLayer adds a configuration file layer.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load applies every layer over the defaults, then the environment
// overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		if err := l.loadLayer(path, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "load "+path)
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, errors.WrapInvalid(err, "config", "Load", "environment overrides")
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// loadLayer decodes path over cfg; keys absent from the file keep their
// current value.
func (l *Loader) loadLayer(path string, cfg *Config) error {
	data, err := readConfigFile(path)
	if err != nil {
		return err
	}

	switch formatOf(path) {
	case formatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrParsingFailed, err)
		}
	default:
		if err := checkJSONDepth(data); err != nil {
			return err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrParsingFailed, err)
		}
	}
	return nil
}

func (l *Loader) applyEnvOverrides(cfg *Config) error {
	lookup := func(name string) (string, error) {
		key := l.envPrefix + "_" + name
		val := l.getenv(key)
		return val, checkEnvValue(key, val)
	}

	val, err := lookup("SPARQL_ENDPOINT")
	if err != nil {
		return err
	}
	if val != "" {
		cfg.SPARQL.Endpoint = val
		cfg.SPARQL.NTriplesFile = ""
	}

	if val, err = lookup("STORE_TTL"); err != nil {
		return err
	}
	if val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s_STORE_TTL: %w", l.envPrefix, err)
		}
		cfg.Ontology.Store.TTL = ttl
	}

	if val, err = lookup("ROOT_CLASSES"); err != nil {
		return err
	}
	if val != "" {
		var roots []string
		for _, root := range strings.Split(val, ",") {
			if root = strings.TrimSpace(root); root != "" {
				roots = append(roots, root)
			}
		}
		cfg.Ontology.RootClasses = roots
	}
	return nil
}
