// Package tokenauth verifies bearer JWTs: signature, expiry and the
// standard nbf/iss/aud checks, against keys resolved through a
// KeyCache. It extracts claims as a Claims map rather than a typed
// struct, since the operations above it only ever need a handful of
// well-known claim names plus the scope list.
package tokenauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Failure kinds a caller maps to wire error codes. These are sentinel
// values so callers can use errors.Is.
var (
	ErrMalformed        = errors.New("tokenauth: malformed token")
	ErrSignatureInvalid = errors.New("tokenauth: signature invalid")
	ErrExpired          = errors.New("tokenauth: token expired")
)

// Verifier checks bearer JWTs against a KeyCache and a fixed set of
// expected issuer/audience values.
type Verifier struct {
	Keys             *KeyCache
	ExpectedIssuer   string
	ExpectedAudience string
	ClockSkew        int // seconds
}

// ExtractBearerToken pulls the token out of an "Authorization: Bearer
// <token>" header value. Any other shape yields "", false — including
// an absent header, a different scheme, or extra whitespace structure.
func ExtractBearerToken(authorization string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return "", false
	}
	token := strings.TrimSpace(authorization[len(prefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

// Verify decodes and verifies tokenString, returning its claims.
// ignoreExpiry skips the exp check, used for token introspection paths
// that need claims from an already-expired token.
func (v *Verifier) Verify(ctx context.Context, tokenString string, ignoreExpiry bool) (Claims, error) {
	keyFunc := func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("%w: unsupported signing method %v", ErrMalformed, token.Method.Alg())
		}

		kid, _ := token.Header["kid"].(string)
		if kid != "" {
			key, err := v.Keys.Lookup(ctx, kid)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
			}
			return key, nil
		}

		key, ok := v.Keys.OnlyKey()
		if !ok {
			return nil, fmt.Errorf("%w: token has no kid and more than one key is configured", ErrSignatureInvalid)
		}
		return key, nil
	}

	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"})}
	if v.ExpectedIssuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.ExpectedIssuer))
	}
	if v.ExpectedAudience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(v.ExpectedAudience))
	}
	if v.ClockSkew > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(time.Duration(v.ClockSkew)*time.Second))
	}
	if ignoreExpiry {
		parserOpts = append(parserOpts, jwt.WithoutClaimsValidation())
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, keyFunc, parserOpts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		case errors.Is(err, ErrSignatureInvalid), errors.Is(err, ErrMalformed):
			return nil, err
		default:
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	return Claims(claims), nil
}
