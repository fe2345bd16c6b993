package cache

import (
	"fmt"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/ontology"
	storecache "github.com/c360/ontocache/pkg/cache"
	"github.com/c360/ontocache/vocabulary"
)

// Config configures the ontology cache.
type Config struct {
	// Languages are the display languages whose labels and comments are
	// loaded for every class and property.
	Languages []string `json:"languages" yaml:"languages"`

	// DefaultLanguage selects the default value of every label.
	DefaultLanguage string `json:"default_language" yaml:"default_language"`

	// RootClasses are loaded by Populate at start-up.
	RootClasses []string `json:"root_classes" yaml:"root_classes"`

	// AbstractClasses are flagged as not instantiable when loaded.
	AbstractClasses []string `json:"abstract_classes,omitempty" yaml:"abstract_classes,omitempty"`

	// CoalesceMisses shares one fetch between concurrent misses on the same
	// classes.
	CoalesceMisses bool `json:"coalesce_misses" yaml:"coalesce_misses"`

	// Store configures the backing store. Disabling it selects the
	// pass-through cache.
	Store storecache.Config `json:"store" yaml:"store"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Languages:       []string{"en", "fr"},
		DefaultLanguage: "en",
		CoalesceMisses:  true,
		Store:           storecache.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Languages) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
			"at least one language is required")
	}
	seen := make(map[string]bool, len(c.Languages))
	for _, lang := range c.Languages {
		norm := ontology.NormalizeLang(lang)
		if norm == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
				"empty language tag")
		}
		if seen[norm] {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
				fmt.Sprintf("duplicate language %q", lang))
		}
		seen[norm] = true
	}
	if c.DefaultLanguage != "" && !seen[ontology.NormalizeLang(c.DefaultLanguage)] {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
			fmt.Sprintf("default language %q is not among the configured languages", c.DefaultLanguage))
	}
	for _, uri := range c.RootClasses {
		if uri == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
				"empty root class identifier")
		}
	}
	for _, uri := range c.AbstractClasses {
		if vocabulary.FormatURI(uri) == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "ontology-cache", "Validate",
				"empty abstract class identifier")
		}
	}
	return c.Store.Validate()
}

// languages returns the normalised languages, default first.
func (c Config) languages() []string {
	out := make([]string, 0, len(c.Languages))
	def := ontology.NormalizeLang(c.DefaultLanguage)
	if def != "" {
		out = append(out, def)
	}
	for _, lang := range c.Languages {
		if norm := ontology.NormalizeLang(lang); norm != def {
			out = append(out, norm)
		}
	}
	return out
}

func (c Config) defaultLanguage() string {
	if c.DefaultLanguage != "" {
		return ontology.NormalizeLang(c.DefaultLanguage)
	}
	if len(c.Languages) > 0 {
		return ontology.NormalizeLang(c.Languages[0])
	}
	return ""
}
