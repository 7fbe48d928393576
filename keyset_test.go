package magiclink

import "testing"

func mustKey(t *testing.T, kid string, createdAt int64, expiresAt *int64) Key {
	t.Helper()
	secret := make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}
	k, err := NewKey(kid, secret, createdAt, expiresAt)
	if err != nil {
		t.Fatalf("NewKey(%s) err: %v", kid, err)
	}
	return k
}

func TestKeySet_FindReturnsExpiredKeys(t *testing.T) {
	exp := int64(500)
	k := mustKey(t, "old", 100, &exp)
	ks := NewKeySet(k)

	got, ok := ks.Find("old")
	if !ok {
		t.Fatalf("expired key must still be findable for verification")
	}
	if got.KID() != "old" {
		t.Fatalf("got wrong key back: %s", got.KID())
	}
}

func TestKeySet_GetForSign_PicksMostRecentEligible(t *testing.T) {
	exp := int64(500)
	ks := NewKeySet(
		mustKey(t, "a", 100, nil),
		mustKey(t, "b", 300, nil),
		mustKey(t, "expired", 900, &exp), // expired before now=1000
	)
	got, err := ks.GetForSign(1000)
	if err != nil {
		t.Fatalf("GetForSign err: %v", err)
	}
	if got.KID() != "b" {
		t.Fatalf("expected most recent eligible key \"b\", got %q", got.KID())
	}
}

func TestKeySet_GetForSign_TieBreaksByKID(t *testing.T) {
	ks := NewKeySet(
		mustKey(t, "zzz", 100, nil),
		mustKey(t, "aaa", 100, nil),
	)
	got, err := ks.GetForSign(1000)
	if err != nil {
		t.Fatalf("GetForSign err: %v", err)
	}
	if got.KID() != "zzz" {
		t.Fatalf("tie-break should pick the greater kid codepoint-wise, got %q", got.KID())
	}
}

func TestKeySet_GetForSign_NoneEligible(t *testing.T) {
	exp := int64(500)
	ks := NewKeySet(mustKey(t, "expired", 100, &exp))
	if _, err := ks.GetForSign(1000); !IsCryptoError(err) {
		t.Fatalf("expected ErrCrypto when no signing key is eligible, got %v", err)
	}
}

func TestKeySet_Add_ReplacesByKID(t *testing.T) {
	ks := NewKeySet(mustKey(t, "k1", 100, nil))
	replacement := mustKey(t, "k1", 200, nil)
	ks.Add(replacement)

	got, ok := ks.Find("k1")
	if !ok {
		t.Fatalf("key should still be found after Add")
	}
	if got.CreatedAt() != 200 {
		t.Fatalf("Add should replace the existing key by kid, got createdAt=%d", got.CreatedAt())
	}
}
