package magiclink

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	gcmNonceSize = 12 // AES-GCM nonce, 96 bits
	gcmTagSize   = 16 // AES-GCM auth tag, 128 bits
)

// cipherAvailable is a pure predicate: true as long as this build links a
// crypto/aes implementation, which on every supported Go platform is always.
// It exists so Create can refuse an encryption request with ErrCrypto and
// Verify can fail with encryption_unavailable rather than panicking if that
// ever stops being true.
func cipherAvailable() bool { return true }

// aeadKey takes the first 32 bytes of the key secret when longer, so a key
// generated for both HMAC and AEAD use (GenerateKey produces 32-byte
// secrets) feeds AES-256 directly.
func aeadKey(k Key) ([]byte, error) {
	if !k.aeadCapable() {
		return nil, fmt.Errorf("%w: key %q has only %d bytes, AEAD requires %d", ErrCrypto, k.kid, len(k.secret), minAEADSecretBytes)
	}
	return k.secret[:minAEADSecretBytes], nil
}

// aeadEncrypt seals plaintext under key with aad as associated data,
// returning a fresh random 12-byte nonce, the ciphertext and the 16-byte
// authentication tag split out separately (the wire envelope keeps them as
// distinct base64url fields: iv, ct, tag).
func aeadEncrypt(k Key, plaintext, aad []byte) (iv, ct, tag []byte, err error) {
	key, err := aeadKey(k)
	if err != nil {
		return nil, nil, nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: aes.NewCipher: %v", ErrCrypto, err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: cipher.NewGCM: %v", ErrCrypto, err)
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: generating nonce: %v", ErrCrypto, err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	ctLen := len(sealed) - gcmTagSize
	return nonce, sealed[:ctLen], sealed[ctLen:], nil
}

// aeadDecrypt opens a ciphertext produced by aeadEncrypt. Any failure —
// wrong key, wrong aad, tampered ciphertext or tag — is reported uniformly
// via ok=false so the caller (Verify step 7) can map it to decrypt_failed
// without leaking which part of the AEAD check failed.
func aeadDecrypt(k Key, iv, ct, tag, aad []byte) (plaintext []byte, ok bool) {
	key, err := aeadKey(k)
	if err != nil {
		return nil, false
	}
	if len(iv) != gcmNonceSize || len(tag) != gcmTagSize {
		return nil, false
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, false
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, false
	}
	sealed := append(append([]byte{}, ct...), tag...)
	pt, err := gcm.Open(nil, iv, sealed, aad)
	if err != nil {
		return nil, false
	}
	return pt, true
}
