package magiclink

import (
	"crypto/hmac"
	"crypto/sha256"
)

// signHMAC computes HMAC-SHA256 over input using the key's raw secret.
func signHMAC(key Key, input []byte) []byte {
	m := hmac.New(sha256.New, key.secret)
	m.Write(input)
	return m.Sum(nil)
}

// verifyHMAC reports whether mac is the correct HMAC-SHA256 of input under
// key, using a constant-time comparison. It never short-circuits on the
// first differing byte: the fresh MAC is always computed in full before the
// comparison runs.
func verifyHMAC(key Key, input, mac []byte) bool {
	fresh := signHMAC(key, input)
	return hmac.Equal(fresh, mac)
}
