package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360/ontocache/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"no languages", func(c *Config) { c.Languages = nil }, true},
		{"empty language", func(c *Config) { c.Languages = []string{"en", ""} }, true},
		{"duplicate language", func(c *Config) { c.Languages = []string{"en", "EN"} }, true},
		{"default not listed", func(c *Config) { c.DefaultLanguage = "de" }, true},
		{"implicit default", func(c *Config) { c.DefaultLanguage = "" }, false},
		{"empty root class", func(c *Config) { c.RootClasses = []string{""} }, true},
		{"empty abstract class", func(c *Config) { c.AbstractClasses = []string{"<>"} }, true},
		{"bad store", func(c *Config) { c.Store.MaxSize = 0 }, true},
		{"store disabled", func(c *Config) { c.Store.Enabled = false; c.Store.MaxSize = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_LanguagesPutDefaultFirst(t *testing.T) {
	cfg := Config{Languages: []string{"fr", "en-US", "de"}, DefaultLanguage: "en-us"}
	assert.Equal(t, []string{"en-us", "fr", "de"}, cfg.languages())
	assert.Equal(t, "en-us", cfg.defaultLanguage())

	cfg.DefaultLanguage = ""
	assert.Equal(t, "fr", cfg.defaultLanguage())
}

func TestConfig_YAML(t *testing.T) {
	doc := `
languages: [en, fr]
default_language: fr
root_classes: ["http://example.org/zoo#Animal"]
coalesce_misses: false
store:
  enabled: true
  strategy: lru
  max_size: 50
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "fr", cfg.DefaultLanguage)
	assert.Equal(t, []string{animal}, cfg.RootClasses)
	assert.False(t, cfg.CoalesceMisses)
	assert.Equal(t, 50, cfg.Store.MaxSize)
}
