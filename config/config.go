package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load reads the YAML config file and overlays environment variables on top.
// A .env file next to the binary is honored when present.
func Load(configPath string) (*AppConfig, error) {
	// missing .env is fine, real env vars still apply
	_ = godotenv.Load()

	k := koanf.New(".")

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	// TUTORTIME_AUTH__SIGNING_KEY -> auth.signing_key
	if err := k.Load(env.Provider("TUTORTIME_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "TUTORTIME_")
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := NewAppConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is Load or panic. Used at process startup where there is no
// sensible way to continue without configuration.
func MustLoad(configPath string) *AppConfig {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("tutortime config: %v", err))
	}
	return cfg
}
