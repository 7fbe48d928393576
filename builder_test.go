package magiclink

import (
	"strings"
	"testing"
)

func TestLinkBuilder_Create_DefaultsToOneTimeWithDefaultTTL(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 1000, nil))
	b := NewLinkBuilder(ks, FixedClock(1000))

	tok, err := b.Create("user-1", CreateOptions{})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("token should have three dot-separated segments: %s", tok)
	}

	v := NewVerifier(ks, FixedClock(1000), NewMemoryNonceStore(0))
	result := v.Verify(tok, VerifyOptions{})
	if !result.OK {
		t.Fatalf("default-option token should verify, got reason %s", result.Reason)
	}
	if result.Claims.JTI == "" {
		t.Fatalf("default CreateOptions should produce a one-time (jti-bearing) token")
	}
	if result.Claims.Exp-result.Claims.Iat != defaultTTLSeconds {
		t.Fatalf("default TTL should be %d seconds, got %d", defaultTTLSeconds, result.Claims.Exp-result.Claims.Iat)
	}
}

func TestLinkBuilder_Create_RejectsEmptySubject(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 1000, nil))
	b := NewLinkBuilder(ks, FixedClock(1000))
	if _, err := b.Create("", CreateOptions{}); !IsCryptoError(err) {
		t.Fatalf("expected ErrCrypto for an empty subject, got %v", err)
	}
}

func TestLinkBuilder_Create_NoEligibleKey(t *testing.T) {
	b := NewLinkBuilder(NewKeySet(), FixedClock(1000))
	if _, err := b.Create("user-1", CreateOptions{}); !IsCryptoError(err) {
		t.Fatalf("expected ErrCrypto when the KeySet has no signing key, got %v", err)
	}
}

func TestLinkBuilder_CreateURL_EmbedsTokenInBaseURL(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 1000, nil))
	b := NewLinkBuilder(ks, FixedClock(1000))
	u, err := b.CreateURL("user-1", "https://app.test/login", CreateOptions{})
	if err != nil {
		t.Fatalf("CreateURL err: %v", err)
	}
	if !strings.Contains(u, "ml=") {
		t.Fatalf("CreateURL result missing the ml query parameter: %s", u)
	}
}

type denyLimiter struct{}

func (denyLimiter) Allow(string) (bool, error) { return false, nil }

func TestLinkBuilder_Create_RateLimited(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 1000, nil))
	b := NewLinkBuilder(ks, FixedClock(1000), WithIssueLimiter(denyLimiter{}))
	if _, err := b.Create("user-1", CreateOptions{}); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestLinkBuilder_Create_EncryptedPayloadRoundTrips(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 1000, nil))
	b := NewLinkBuilder(ks, FixedClock(1000))
	tok, err := b.Create("user-1", CreateOptions{EncryptPayload: true})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}

	v := NewVerifier(ks, FixedClock(1000), NewMemoryNonceStore(0))
	result := v.Verify(tok, VerifyOptions{})
	if !result.OK {
		t.Fatalf("encrypted token should verify, got reason %s", result.Reason)
	}
	if result.Claims.Sub != "user-1" {
		t.Fatalf("decrypted claims wrong: %+v", result.Claims)
	}

	// The payload segment itself must not contain the subject in the clear.
	parts := strings.Split(tok, ".")
	if strings.Contains(parts[1], "user-1") {
		t.Fatalf("encrypted payload segment leaks the subject in the clear")
	}
}
