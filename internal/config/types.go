// Package config hydrates and validates the HBAC decision engine's
// per-activation configuration: directory connection parameters, TLS trust,
// and the local host's identity.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/l0p7/hbacd/internal/secret"
)

// Config holds every option recognized from the pam_hbac-style config file
// (spec.md §3). It is immutable for the duration of one decision activation.
// BindPW is carried as a secret.String, not a plain string, so Release can
// scrub it at teardown (spec.md §5, §8 property 6).
type Config struct {
	URI         string `koanf:"uri"`
	SearchBase  string `koanf:"search_base"`
	BindDN      string `koanf:"bind_dn"`
	BindPW      secret.String
	CACert      string `koanf:"ca_cert"`
	Secure      bool   `koanf:"secure"`
	Hostname    string `koanf:"hostname"`
	TimeoutSecs int    `koanf:"timeout"`
}

// Release scrubs the bind password from memory. Callers must invoke this
// once the configuration is no longer needed, on every exit path.
func (c *Config) Release() {
	c.BindPW.Release()
}

// Timeout returns the configured operation timeout as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// DefaultConfig returns the baseline values spec.md §3 documents as defaults.
// Hostname is left empty; Loader fills it from os.Hostname() when the file
// and environment both leave it unset.
func DefaultConfig() Config {
	return Config{
		Secure:      true,
		TimeoutSecs: 5,
	}
}

// Validate enforces the required-option invariants from spec.md §3: uri,
// search_base, bind_dn, and bind_pw are mandatory, hostname must have been
// resolved by the loader, and the timeout must be positive.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	var missing []string
	if c.URI == "" {
		missing = append(missing, "uri")
	}
	if c.SearchBase == "" {
		missing = append(missing, "search_base")
	}
	if c.BindDN == "" {
		missing = append(missing, "bind_dn")
	}
	if c.BindPW.Len() == 0 {
		missing = append(missing, "bind_pw")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required option(s): %v", missing)
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("config: timeout invalid: %d", c.TimeoutSecs)
	}
	if c.Hostname == "" {
		return errors.New("config: hostname unresolved")
	}
	return nil
}
