package config

import (
	"testing"

	"github.com/l0p7/hbacd/internal/secret"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = "ldaps://ldap.ipa.test"
	cfg.SearchBase = "dc=ipa,dc=test"
	cfg.BindDN = "uid=hbac,cn=sysaccounts,cn=etc,dc=ipa,dc=test"
	cfg.BindPW = secret.New("s3cr3t")
	cfg.Hostname = "client.ipa.test"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fully populated config should validate, got %v", err)
	}

	missingURI := cfg
	missingURI.URI = ""
	if err := missingURI.Validate(); err == nil {
		t.Fatalf("expected failure when uri is missing")
	}

	missingBase := cfg
	missingBase.SearchBase = ""
	if err := missingBase.Validate(); err == nil {
		t.Fatalf("expected failure when search_base is missing")
	}

	missingBindDN := cfg
	missingBindDN.BindDN = ""
	if err := missingBindDN.Validate(); err == nil {
		t.Fatalf("expected failure when bind_dn is missing")
	}

	missingBindPW := cfg
	missingBindPW.BindPW = secret.String{}
	if err := missingBindPW.Validate(); err == nil {
		t.Fatalf("expected failure when bind_pw is missing")
	}

	badTimeout := cfg
	badTimeout.TimeoutSecs = 0
	if err := badTimeout.Validate(); err == nil {
		t.Fatalf("expected failure when timeout is non-positive")
	}

	noHostname := cfg
	noHostname.Hostname = ""
	if err := noHostname.Validate(); err == nil {
		t.Fatalf("expected failure when hostname is unresolved")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Secure {
		t.Errorf("expected secure to default to true")
	}
	if cfg.TimeoutSecs != 5 {
		t.Errorf("expected timeout to default to 5, got %d", cfg.TimeoutSecs)
	}
	if cfg.Timeout().Seconds() != 5 {
		t.Errorf("expected Timeout() to report 5s, got %v", cfg.Timeout())
	}
}
