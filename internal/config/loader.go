package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/l0p7/hbacd/internal/config/kvparser"
	"github.com/l0p7/hbacd/internal/secret"
)

// EnvPrefix is the prefix recognized for operator overrides, e.g.
// HBAC_TIMEOUT=10 overrides the "timeout" option.
const EnvPrefix = "HBAC_"

// Loader hydrates Config while respecting default -> file -> env precedence,
// the same layering order as the teacher's config.Loader.
type Loader struct {
	path string
}

// NewLoader prepares a config hydrator for the file at path. An empty path
// means "defaults and environment only," mirroring the `config: path?`
// optional argument documented in spec.md §6.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load assembles the effective configuration snapshot and validates it.
func (l *Loader) Load(ctx context.Context) (Config, error) {
	defaultCfg := DefaultConfig()
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(defaultCfg), "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if l.path != "" {
		select {
		case <-ctx.Done():
			return Config{}, ctx.Err()
		default:
		}
		if _, err := os.Stat(l.path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: file %s not found", l.path)
			}
			return Config{}, fmt.Errorf("config: stat %s: %w", l.path, err)
		}
		if err := k.Load(file.Provider(l.path), kvparser.New()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", l.path, err)
		}
	}

	transform := func(s string) string {
		key := strings.TrimPrefix(s, EnvPrefix)
		return strings.ToLower(key)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	cfg, err := unmarshalLoose(k)
	if err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.Hostname == "" {
		hostname, err := os.Hostname()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve hostname: %w", err)
		}
		cfg.Hostname = hostname
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// unmarshalLoose converts the flat koanf tree into Config, coercing the
// string-valued TRUE/FALSE and numeric options the kvparser grammar produces
// (spec.md §6: "Boolean values recognize TRUE/FALSE (case-insensitive); other
// values fall back to the default").
func unmarshalLoose(k *koanf.Koanf) (Config, error) {
	cfg := Config{
		Secure:      true,
		TimeoutSecs: DefaultConfig().TimeoutSecs,
	}

	if v := k.String("uri"); v != "" {
		cfg.URI = v
	}
	if v := k.String("search_base"); v != "" {
		cfg.SearchBase = v
	}
	if v := k.String("bind_dn"); v != "" {
		cfg.BindDN = v
	}
	if v := k.String("bind_pw"); v != "" {
		cfg.BindPW = secret.New(v)
	}
	if v := k.String("ca_cert"); v != "" {
		cfg.CACert = v
	}
	if v := k.String("hostname"); v != "" {
		cfg.Hostname = v
	}
	if raw := strings.TrimSpace(k.String("secure")); raw != "" {
		if b, ok := parseBool(raw); ok {
			cfg.Secure = b
		}
	}
	if raw := strings.TrimSpace(k.String("timeout")); raw != "" {
		if n, ok := parseInt(raw); ok {
			cfg.TimeoutSecs = n
		}
	}
	return cfg, nil
}

func parseBool(raw string) (bool, bool) {
	switch strings.ToUpper(raw) {
	case "TRUE":
		return true, true
	case "FALSE":
		return false, true
	default:
		return false, false
	}
}

func parseInt(raw string) (int, bool) {
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// structToMap converts DefaultConfig into a map for the koanf confmap
// provider, the same technique the teacher's loader uses to seed defaults.
func structToMap(cfg Config) map[string]any {
	secure := "FALSE"
	if cfg.Secure {
		secure = "TRUE"
	}
	return map[string]any{
		"secure":  secure,
		"timeout": fmt.Sprintf("%d", cfg.TimeoutSecs),
	}
}
