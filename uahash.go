package magiclink

import "crypto/sha256"

// HashUserAgent computes base64url(sha256(ua)), the exact value an issuer
// should place under Claims.App[AppKeyUAHash] and the exact value Verify
// recomputes from the User-Agent presented at verify time (§4.6 step 13).
// Exported so both sides of a deployment derive it identically without
// duplicating the hash choice.
func HashUserAgent(ua string) string {
	sum := sha256.Sum256([]byte(ua))
	return base64URLEncode(sum[:])
}
