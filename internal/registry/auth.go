package registry

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// tokenClaims is the subset of claims this package cares about: only the
// standard expiry, since the orchestrator never holds the vendor's signing
// key and cannot verify the signature itself — it can only decide whether
// a configured bearer token is worth sending at all.
type tokenClaims struct {
	jwt.RegisteredClaims
}

// TokenStatus summarizes a decoded bearer token for a registry entry whose
// invocation needs one (e.g. a Copilot CLI device-flow token configured via
// InjectedCredentials-style override fields).
type TokenStatus struct {
	Expired   bool
	ExpiresAt time.Time
}

// InspectBearerToken decodes a JWT-shaped bearer token without verifying
// its signature and reports whether it has already expired. Non-JWT
// opaque tokens (most vendor API keys) are not inspectable this way and
// return an error; callers should treat that as "unknown, assume valid"
// rather than as a hard failure.
func InspectBearerToken(token string) (TokenStatus, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	var claims tokenClaims
	_, _, err := parser.ParseUnverified(token, &claims)
	if err != nil {
		return TokenStatus{}, fmt.Errorf("decode bearer token: %w", err)
	}

	if claims.ExpiresAt == nil {
		return TokenStatus{}, nil
	}

	expiresAt := claims.ExpiresAt.Time
	return TokenStatus{
		Expired:   time.Now().After(expiresAt),
		ExpiresAt: expiresAt,
	}, nil
}
