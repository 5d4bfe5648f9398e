package registry

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return tok
}

func TestInspectBearerTokenExpired(t *testing.T) {
	status, err := InspectBearerToken(signedToken(t, time.Now().Add(-time.Hour)))
	if err != nil {
		t.Fatalf("InspectBearerToken() error = %v", err)
	}
	if !status.Expired {
		t.Error("expected token to be reported expired")
	}
}

func TestInspectBearerTokenNotExpired(t *testing.T) {
	status, err := InspectBearerToken(signedToken(t, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("InspectBearerToken() error = %v", err)
	}
	if status.Expired {
		t.Error("expected token to be reported unexpired")
	}
}

func TestInspectBearerTokenOpaqueValueErrors(t *testing.T) {
	if _, err := InspectBearerToken("sk-ant-not-a-jwt-at-all"); err == nil {
		t.Error("expected an error decoding a non-JWT opaque token")
	}
}

// TestDescriptorAuthTokenIsWhatGetsInspected exercises the same path
// app.go's warnExpiredTokens takes: resolve an override onto a descriptor,
// then inspect its AuthToken, never AutoApproveFlags.
func TestDescriptorAuthTokenIsWhatGetsInspected(t *testing.T) {
	r := New()
	expired := signedToken(t, time.Now().Add(-time.Hour))
	if err := r.Apply(map[string]Override{"copilot": {AuthToken: expired}}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	d, ok := r.Get("copilot")
	if !ok {
		t.Fatal("expected copilot to be registered")
	}

	status, err := InspectBearerToken(d.AuthToken)
	if err != nil {
		t.Fatalf("InspectBearerToken() error = %v", err)
	}
	if !status.Expired {
		t.Error("expected the overridden copilot auth token to be reported expired")
	}

	for _, flag := range d.AutoApproveFlags {
		if _, err := InspectBearerToken(flag); err == nil {
			t.Errorf("AutoApproveFlags entry %q unexpectedly decoded as a JWT", flag)
		}
	}
}
