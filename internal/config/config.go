// Package config handles configuration loading for the LCZ chart server.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Schemes SchemesConfig `yaml:"schemes"`
	Cache   CacheConfig   `yaml:"cache"`
	Render  RenderConfig  `yaml:"render"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
	Title       string   `yaml:"title"`
}

// SchemeConfig contains the static resources of one classification scheme.
type SchemeConfig struct {
	TablePath   string `yaml:"table_path"`
	PalettePath string `yaml:"palette_path"`
}

// SchemesConfig holds the configured classification schemes. The YAML
// mapping order is preserved; the first scheme is the default.
type SchemesConfig struct {
	Schemes       map[string]SchemeConfig
	DefaultScheme string

	order []string
}

// UnmarshalYAML decodes the schemes mapping keeping document order.
func (s *SchemesConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("schemes must be a mapping")
	}

	s.Schemes = make(map[string]SchemeConfig)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var id string
		if err := value.Content[i].Decode(&id); err != nil {
			return fmt.Errorf("scheme id: %w", err)
		}
		var sc SchemeConfig
		if err := value.Content[i+1].Decode(&sc); err != nil {
			return fmt.Errorf("scheme %q: %w", id, err)
		}
		if _, exists := s.Schemes[id]; exists {
			return fmt.Errorf("scheme %q configured twice", id)
		}
		s.Schemes[id] = sc
		s.order = append(s.order, id)
	}

	if len(s.order) > 0 {
		s.DefaultScheme = s.order[0]
	}
	return nil
}

// SchemeIDs returns the scheme ids in config order.
func (s *SchemesConfig) SchemeIDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	ChartSizeMB     int `yaml:"chart_size_mb"`
	ChartTTLMinutes int `yaml:"chart_ttl_minutes"`
	QueryCacheSize  int `yaml:"query_cache_size"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	WidthPx     int     `yaml:"width_px"`
	HeightPx    int     `yaml:"height_px"`
	PointRadius float64 `yaml:"point_radius"`
	FontSize    float64 `yaml:"font_size"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			Title:       "LCZ Charts",
		},
		Schemes: SchemesConfig{
			Schemes: map[string]SchemeConfig{
				"lcz": {
					TablePath:   "./assets/json/LCZ_num_to_class.json",
					PalettePath: "./assets/json/LCZ_class_to_palette.json",
				},
			},
			DefaultScheme: "lcz",
			order:         []string{"lcz"},
		},
		Cache: CacheConfig{
			ChartSizeMB:     128,
			ChartTTLMinutes: 10,
			QueryCacheSize:  1000,
		},
		Render: RenderConfig{
			WidthPx:     900,
			HeightPx:    700,
			PointRadius: 2,
			FontSize:    10,
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = defaults.Server.Title
	}
	if len(cfg.Schemes.Schemes) == 0 {
		cfg.Schemes = defaults.Schemes
	}
	if cfg.Cache.ChartSizeMB == 0 {
		cfg.Cache.ChartSizeMB = defaults.Cache.ChartSizeMB
	}
	if cfg.Cache.ChartTTLMinutes == 0 {
		cfg.Cache.ChartTTLMinutes = defaults.Cache.ChartTTLMinutes
	}
	if cfg.Cache.QueryCacheSize == 0 {
		cfg.Cache.QueryCacheSize = defaults.Cache.QueryCacheSize
	}
	if cfg.Render.WidthPx == 0 {
		cfg.Render.WidthPx = defaults.Render.WidthPx
	}
	if cfg.Render.HeightPx == 0 {
		cfg.Render.HeightPx = defaults.Render.HeightPx
	}
	if cfg.Render.PointRadius == 0 {
		cfg.Render.PointRadius = defaults.Render.PointRadius
	}
	if cfg.Render.FontSize == 0 {
		cfg.Render.FontSize = defaults.Render.FontSize
	}
}
