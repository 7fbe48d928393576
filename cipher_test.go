package magiclink

import "testing"

func TestAEADEncryptDecrypt_RoundTrip(t *testing.T) {
	k, err := GenerateKey(1000, nil)
	if err != nil {
		t.Fatalf("GenerateKey err: %v", err)
	}
	iv, ct, tag, err := aeadEncrypt(k, []byte("top secret claims"), []byte("aad"))
	if err != nil {
		t.Fatalf("aeadEncrypt err: %v", err)
	}
	pt, ok := aeadDecrypt(k, iv, ct, tag, []byte("aad"))
	if !ok {
		t.Fatalf("aeadDecrypt rejected a genuine ciphertext")
	}
	if string(pt) != "top secret claims" {
		t.Fatalf("plaintext mismatch: got %q", pt)
	}
}

func TestAEADDecrypt_DetectsTamperedCiphertext(t *testing.T) {
	k, err := GenerateKey(1000, nil)
	if err != nil {
		t.Fatalf("GenerateKey err: %v", err)
	}
	iv, ct, tag, err := aeadEncrypt(k, []byte("payload"), []byte("aad"))
	if err != nil {
		t.Fatalf("aeadEncrypt err: %v", err)
	}
	ct[0] ^= 0x01
	if _, ok := aeadDecrypt(k, iv, ct, tag, []byte("aad")); ok {
		t.Fatalf("aeadDecrypt accepted a tampered ciphertext")
	}
}

func TestAEADDecrypt_DetectsWrongAAD(t *testing.T) {
	k, err := GenerateKey(1000, nil)
	if err != nil {
		t.Fatalf("GenerateKey err: %v", err)
	}
	iv, ct, tag, err := aeadEncrypt(k, []byte("payload"), []byte("aad-a"))
	if err != nil {
		t.Fatalf("aeadEncrypt err: %v", err)
	}
	if _, ok := aeadDecrypt(k, iv, ct, tag, []byte("aad-b")); ok {
		t.Fatalf("aeadDecrypt accepted the wrong associated data")
	}
}

func TestAEADEncrypt_RejectsShortKey(t *testing.T) {
	short, err := NewKey("short16", make([]byte, 16), 1000, nil)
	if err != nil {
		t.Fatalf("NewKey err: %v", err)
	}
	if _, _, _, err := aeadEncrypt(short, []byte("x"), nil); !IsCryptoError(err) {
		t.Fatalf("expected ErrCrypto for a 16-byte key, got %v", err)
	}
}
