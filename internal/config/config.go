// Package config loads BFF configuration from an optional YAML file with
// environment variable overrides (prefix BFF_).
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is stripped from environment variables; the remainder maps to a
// config key, e.g. BFF_SERVER_PORT -> server.port.
const envPrefix = "BFF_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Services   ServicesConfig   `koanf:"services"`
	Auth       AuthConfig       `koanf:"auth"`
	CreditCard CreditCardConfig `koanf:"creditcard"`
	Storage    StorageConfig    `koanf:"storage"`
	Analytics  AnalyticsConfig  `koanf:"analytics"`

	// Features holds configured feature flag defaults, keyed by the
	// dot-delimited flag name. Populated from the "features" subtree.
	Features map[string]bool `koanf:"-"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type ServicesConfig struct {
	Analytics ServiceConfig `koanf:"analytics"`
}

// ServiceConfig locates one downstream domain service.
type ServiceConfig struct {
	URL string `koanf:"url"`
}

type AuthConfig struct {
	// PublicPaths are path prefixes that bypass credential extraction.
	PublicPaths []string `koanf:"publicpaths"`
}

type CreditCardConfig struct {
	PreApprovedLimit    float64 `koanf:"preapprovedlimit"`
	RaiseLimitIncrement float64 `koanf:"raiselimitincrement"`
}

type StorageConfig struct {
	// Type selects the account store: "memory" or "sqlite".
	Type   string       `koanf:"type"`
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type AnalyticsConfig struct {
	// MaxInFlight bounds concurrent detached analytics forwards.
	MaxInFlight int `koanf:"maxinflight"`
}

// Load reads configuration from path (ignored when empty or missing) and then
// applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, err
	}

	applyDefaults(k)

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.Features = flattenFeatures(k)

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	defaults := map[string]any{
		"server.port":                    8081,
		"services.analytics.url":         "http://localhost:8090",
		"storage.type":                   "memory",
		"storage.sqlite.path":            "./data/bff.db",
		"creditcard.preapprovedlimit":    5000.00,
		"creditcard.raiselimitincrement": 2000.00,
		"analytics.maxinflight":          64,
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}
}

// flattenFeatures collapses the nested "features" subtree back into
// dot-delimited flag names, e.g. features.credit-cards.pre-approved-offers
// becomes "credit-cards.pre-approved-offers".
func flattenFeatures(k *koanf.Koanf) map[string]bool {
	flags := make(map[string]bool)
	for key, value := range k.All() {
		name, ok := strings.CutPrefix(key, "features.")
		if !ok {
			continue
		}
		if b, ok := value.(bool); ok {
			flags[name] = b
		}
	}
	return flags
}
