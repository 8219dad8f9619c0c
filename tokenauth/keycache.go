package tokenauth

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrUnknownKeyID is returned when a kid cannot be resolved from either
// the local certificate map or the configured JWKS endpoint.
var ErrUnknownKeyID = errors.New("tokenauth: unknown key id")

// KeyCache resolves a JWT's "kid" header to a verification key. It holds
// keys loaded once from local PEM certificates plus keys fetched lazily
// from a JWKS endpoint. The JWKS-sourced portion of the cache is
// invalidated only by a kid miss, never by a TTL: once a key is fetched
// it is trusted until a token presents a kid this cache has never seen.
type KeyCache struct {
	keys       atomic.Pointer[keyMap]
	jwksURL    string
	httpClient *http.Client
	timeout    time.Duration
	fetchGroup singleflight.Group
}

type keyMap = map[string]crypto.PublicKey

// Option configures a KeyCache.
type Option func(*KeyCache)

// WithJWKSURL configures the remote JWKS endpoint to consult on a kid
// miss.
func WithJWKSURL(url string) Option {
	return func(kc *KeyCache) { kc.jwksURL = url }
}

// WithHTTPTimeout bounds how long a single JWKS fetch may take. Defaults
// to 5 seconds, matching the enforcement pipeline's default suspension
// bound.
func WithHTTPTimeout(d time.Duration) Option {
	return func(kc *KeyCache) { kc.timeout = d }
}

// WithHTTPClient overrides the http.Client used for JWKS fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(kc *KeyCache) { kc.httpClient = client }
}

// NewKeyCache builds a KeyCache, loading any local certificates
// (kid -> PEM file path) eagerly. A JWKS URL, if configured via
// WithJWKSURL, is consulted lazily on the first miss for an unrecognised
// kid.
func NewKeyCache(localCertificates map[string]string, opts ...Option) (*KeyCache, error) {
	kc := &KeyCache{
		httpClient: http.DefaultClient,
		timeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(kc)
	}

	initial := make(keyMap, len(localCertificates))
	for kid, path := range localCertificates {
		key, err := loadPublicKeyFromPEM(path)
		if err != nil {
			return nil, fmt.Errorf("tokenauth: loading certificate for kid %q: %w", kid, err)
		}
		initial[kid] = key
	}
	kc.keys.Store(&initial)

	return kc, nil
}

// Lookup resolves kid to a public key, fetching and merging the JWKS
// document on a miss if one is configured. Concurrent lookups for the
// same unknown kid share a single in-flight fetch.
func (kc *KeyCache) Lookup(ctx context.Context, kid string) (crypto.PublicKey, error) {
	current := kc.keys.Load()
	if key, ok := (*current)[kid]; ok {
		return key, nil
	}

	if kc.jwksURL == "" {
		return nil, ErrUnknownKeyID
	}

	v, err, _ := kc.fetchGroup.Do(kc.jwksURL, func() (any, error) {
		return kc.fetchJWKS(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("tokenauth: fetching JWKS: %w", err)
	}
	fetched := v.(keyMap)

	for {
		before := kc.keys.Load()
		merged := make(keyMap, len(*before)+len(fetched))
		for k, v := range *before {
			merged[k] = v
		}
		for k, v := range fetched {
			merged[k] = v
		}
		if kc.keys.CompareAndSwap(before, &merged) {
			break
		}
	}

	key, ok := fetched[kid]
	if !ok {
		return nil, ErrUnknownKeyID
	}
	return key, nil
}

// OnlyKey returns the single configured key when exactly one is loaded,
// used when a token omits "kid" entirely.
func (kc *KeyCache) OnlyKey() (crypto.PublicKey, bool) {
	current := *kc.keys.Load()
	if len(current) != 1 {
		return nil, false
	}
	for _, key := range current {
		return key, true
	}
	return nil, false
}

func (kc *KeyCache) fetchJWKS(ctx context.Context) (keyMap, error) {
	ctx, cancel := context.WithTimeout(ctx, kc.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, kc.jwksURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := kc.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, kc.jwksURL)
	}

	var set jwkSet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding JWKS response: %w", err)
	}

	out := make(keyMap, len(set.Keys))
	for _, k := range set.Keys {
		key, err := k.publicKey()
		if err != nil {
			continue
		}
		out[k.Kid] = key
	}
	return out, nil
}

// jwkSet and jwk model the subset of RFC 7517 this cache understands:
// RSA public keys, which cover the overwhelming majority of OAuth2/OIDC
// JWKS endpoints this pipeline is deployed against.
type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k jwk) publicKey() (crypto.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("tokenauth: unsupported JWK key type %q", k.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := 0
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}

func loadPublicKeyFromPEM(path string) (crypto.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}

	switch block.Type {
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		return cert.PublicKey, nil
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(block.Bytes)
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q in %s", block.Type, path)
	}
}
