// Package config builds an immutable Snapshot of the enforcement
// pipeline's own tunables, using the same functional-options pattern
// as oastypes.Option, across validator.* and security.* option groups.
// It exists only to parameterize the pipeline's own settings — loading
// the rest of a host application's configuration remains that
// application's job.
package config

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Snapshot is the resolved, immutable configuration a built Engine
// reads for the lifetime of the process.
type Snapshot struct {
	Validator ValidatorConfig
	Security  SecurityConfig
}

// ValidatorConfig groups the request/response validation toggles.
type ValidatorConfig struct {
	Enabled            bool `yaml:"enabled"`
	LogError           bool `yaml:"logError"`
	SkipBodyValidation bool `yaml:"skipBodyValidation"`
}

// SecurityConfig groups the JWT verification and scope-check toggles.
// JWT holds the JWT-specific sub-settings.
type SecurityConfig struct {
	EnableVerifyJWT         bool      `yaml:"enableVerifyJwt"`
	EnableVerifyScope       bool      `yaml:"enableVerifyScope"`
	EnableExtractScopeToken bool      `yaml:"enableExtractScopeToken"`
	BootstrapFromKeyService bool      `yaml:"bootstrapFromKeyService"`
	JWT                     JWTConfig `yaml:"jwt"`
}

// JWTConfig holds the key material and clock-skew tolerance the JWT
// Verifier needs.
type JWTConfig struct {
	// Certificate maps a kid to either a local PEM file path or a JWKS
	// endpoint URL. A single entry keyed "" or containing a JWKS-looking
	// value (http/https URL) is treated as the JWKS endpoint rather than
	// a per-kid certificate; see ResolveKeys.
	Certificate        map[string]string `yaml:"certificate"`
	ClockSkewInSeconds int               `yaml:"clockSkewInSeconds"`
}

// ResolveKeys splits Certificate into local kid-to-PEM-path entries and
// a JWKS endpoint URL, so callers can hand both straight to
// tokenauth.NewKeyCache. An entry keyed "" or whose value starts with
// "http://" or "https://" is treated as the JWKS endpoint; there may be
// at most one such entry.
func (j JWTConfig) ResolveKeys() (local map[string]string, jwksURL string) {
	local = make(map[string]string, len(j.Certificate))
	for kid, value := range j.Certificate {
		if kid == "" || strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
			jwksURL = value
			continue
		}
		local[kid] = value
	}
	return local, jwksURL
}

// Option configures a Snapshot being built by New.
type Option func(*Snapshot) error

// New builds a Snapshot from defaults plus opts, in order.
func New(opts ...Option) (*Snapshot, error) {
	snap := &Snapshot{
		Validator: ValidatorConfig{Enabled: false, LogError: false, SkipBodyValidation: false},
		Security:  SecurityConfig{JWT: JWTConfig{ClockSkewInSeconds: 0}},
	}
	for _, opt := range opts {
		if err := opt(snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

func WithValidatorEnabled(enabled bool) Option {
	return func(s *Snapshot) error { s.Validator.Enabled = enabled; return nil }
}

func WithValidatorLogError(logError bool) Option {
	return func(s *Snapshot) error { s.Validator.LogError = logError; return nil }
}

func WithSkipBodyValidation(skip bool) Option {
	return func(s *Snapshot) error { s.Validator.SkipBodyValidation = skip; return nil }
}

func WithVerifyJWT(enabled bool) Option {
	return func(s *Snapshot) error { s.Security.EnableVerifyJWT = enabled; return nil }
}

func WithVerifyScope(enabled bool) Option {
	return func(s *Snapshot) error { s.Security.EnableVerifyScope = enabled; return nil }
}

func WithExtractScopeToken(enabled bool) Option {
	return func(s *Snapshot) error { s.Security.EnableExtractScopeToken = enabled; return nil }
}

func WithBootstrapFromKeyService(enabled bool) Option {
	return func(s *Snapshot) error { s.Security.BootstrapFromKeyService = enabled; return nil }
}

func WithJWTCertificates(certs map[string]string) Option {
	return func(s *Snapshot) error { s.Security.JWT.Certificate = certs; return nil }
}

func WithClockSkew(seconds int) Option {
	return func(s *Snapshot) error {
		if seconds < 0 {
			return fmt.Errorf("config: clockSkewInSeconds cannot be negative")
		}
		s.Security.JWT.ClockSkewInSeconds = seconds
		return nil
	}
}

// fileShape is the YAML document shape config.Load decodes; either an
// "openapi-security" or a plain "security" top-level key is accepted.
type fileShape struct {
	Validator       ValidatorConfig `yaml:"validator"`
	OpenAPISecurity *SecurityConfig `yaml:"openapi-security"`
	Security        *SecurityConfig `yaml:"security"`
}

// Load reads a YAML configuration file at path and returns a Snapshot.
// The security block is read from an "openapi-security" key first,
// falling back to a plain "security" key when absent.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var shape fileShape
	if err := yaml.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	snap := &Snapshot{Validator: shape.Validator}
	switch {
	case shape.OpenAPISecurity != nil:
		snap.Security = *shape.OpenAPISecurity
	case shape.Security != nil:
		snap.Security = *shape.Security
	}

	return snap, nil
}
