// Package magiclink issues and verifies magic links: compact, URL-embeddable
// tokens used for passwordless sign-in, email verification and time-bounded
// one-click actions.
//
// A token is a three-segment string, base64url(header).base64url(payload).base64url(signature),
// integrity-protected with HMAC-SHA256 and optionally confidentiality-protected
// with AES-256-GCM. The package has two entry points: LinkBuilder.Create issues
// a token and Verifier.Verify checks one. Everything else — key rotation,
// canonical JSON, the AEAD envelope, replay prevention — exists to make those
// two operations safe to expose to untrusted input.
//
// The package never does network I/O. Callers supply a Clock, a KeySet and a
// NonceStore; everything that touches a database, a mail provider or an HTTP
// router lives outside this package.
package magiclink
