package cache

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360/ontocache/errors"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"disabled ignores fields", Config{Enabled: false, Strategy: "bogus"}, false},
		{"simple", Config{Enabled: true, Strategy: StrategySimple}, false},
		{"lru without size", Config{Enabled: true, Strategy: StrategyLRU}, true},
		{"expiring without ttl", Config{Enabled: true, Strategy: StrategyExpiring, MaxSize: 10}, true},
		{"unknown strategy", Config{Enabled: true, Strategy: "hybrid"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_UnmarshalJSON(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal(
		[]byte(`{"enabled":true,"strategy":"expiring","max_size":50,"ttl":"90s"}`), &cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, StrategyExpiring, cfg.Strategy)
	assert.Equal(t, 50, cfg.MaxSize)
	assert.Equal(t, 90*time.Second, cfg.TTL)

	require.NoError(t, json.Unmarshal([]byte(`{"ttl":1000000000}`), &cfg))
	assert.Equal(t, time.Second, cfg.TTL)

	assert.Error(t, json.Unmarshal([]byte(`{"ttl":"soon"}`), &cfg))
}

func TestConfig_UnmarshalYAML(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte("enabled: true\nstrategy: lru\nmax_size: 7\nttl: 5m\n"), &cfg))

	assert.True(t, cfg.Enabled)
	assert.Equal(t, StrategyLRU, cfg.Strategy)
	assert.Equal(t, 7, cfg.MaxSize)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}

func TestConfig_UnmarshalYAML_TTLForms(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "store:\n  ttl: 10m\n", 10 * time.Minute, false},
		{"nanoseconds", "store:\n  ttl: 2000000000\n", 2 * time.Second, false},
		{"absent keeps default", "store:\n  max_size: 3\n", DefaultConfig().TTL, false},
		{"bad string", "store:\n  ttl: soon\n", 0, true},
		{"wrong type", "store:\n  ttl: [1, 2]\n", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := struct {
				Store Config `yaml:"store"`
			}{Store: DefaultConfig()}
			err := yaml.Unmarshal([]byte(tt.doc), &doc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Store.TTL)
			assert.True(t, doc.Store.Enabled)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	in := DefaultConfig()
	in.TTL = 90 * time.Second
	data, err := yaml.Marshal(in)
	require.NoError(t, err)

	var out Config
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestNewFromConfig(t *testing.T) {
	c, err := NewFromConfig[int](Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, c.Stats(), "disabled config yields the noop cache")

	c, err = NewFromConfig[int](DefaultConfig())
	require.NoError(t, err)
	_, _ = c.Set("a", 1)
	assert.Equal(t, 1, c.Size())

	_, err = NewFromConfig[int](Config{Enabled: true, Strategy: StrategyLRU})
	require.Error(t, err)
}
