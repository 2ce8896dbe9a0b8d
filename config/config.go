package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/railops/console/infra/backend"
	"github.com/railops/console/infra/push"
)

// Config is the console's full configuration tree.
type Config struct {
	Backend backend.Config `json:"backend"`
	Push    push.Config    `json:"push"`
	Poll    PollConfig     `json:"poll"`
	Metrics MetricsConfig  `json:"metrics"`
	API     APIConfig      `json:"api"`
}

// Load reads the configuration file and applies RC_-prefixed environment
// overrides (RC_BACKEND__BASE_URL maps to backend.base_url).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("RC_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "rc_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Backend.SetDefaults()
	cfg.Push.SetDefaults()
	cfg.Poll.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Backend.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Push.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Poll.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIConfig configures the console's own JSON API server.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// MetricsConfig configures the metric sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
