package magiclink

import (
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// VerifyResult is the outcome of Verify: either OK is true and Claims is
// populated, or OK is false and Reason names exactly which step failed.
// Never both, never neither.
type VerifyResult struct {
	OK     bool
	Claims Claims
	Reason Reason
}

// Verifier runs the verify pipeline of spec §4.6: parse, crypto, time,
// context, replay, in that fixed order, with no side effect — the nonce
// store is never touched — until every prior step has passed.
type Verifier struct {
	keys   *KeySet
	clock  Clock
	nonces NonceStore

	audit   AuditSink
	metrics MetricsRecorder
	log     *zap.Logger
}

// VerifierOption configures optional Verifier collaborators.
type VerifierOption func(*Verifier)

// WithVerifierAuditSink wires an audit sink; Verify records a "verify" event
// for every outcome, success or failure, after the decision is final.
func WithVerifierAuditSink(a AuditSink) VerifierOption {
	return func(v *Verifier) { v.audit = a }
}

// WithVerifierMetrics wires a metrics recorder.
func WithVerifierMetrics(m MetricsRecorder) VerifierOption {
	return func(v *Verifier) { v.metrics = m }
}

// WithVerifierLogger wires a zap logger for security-relevant observations.
func WithVerifierLogger(l *zap.Logger) VerifierOption {
	return func(v *Verifier) { v.log = l }
}

// NewVerifier builds a Verifier over the given KeySet, Clock and NonceStore.
// nonces must never be nil; use BlackholeNonceStore{} for multi-use-only
// deployments that want no replay tracking at all.
func NewVerifier(keys *KeySet, clock Clock, nonces NonceStore, opts ...VerifierOption) *Verifier {
	v := &Verifier{keys: keys, clock: clock, nonces: nonces, log: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// fail builds a failing VerifyResult, records metrics/audit and logs at
// debug level — it is the single exit point for every non-success step so
// the ordering and side-effect guarantees can't be violated by a stray
// early return elsewhere in Verify.
func (v *Verifier) fail(reason Reason, sub, kid, jti string) VerifyResult {
	if v.metrics != nil {
		v.metrics.ObserveVerify(false, reason)
	}
	if v.audit != nil {
		v.audit.Record(AuditEvent{Kind: "verify", Subject: sub, KID: kid, JTI: jti, OK: false, Reason: reason})
	}
	v.log.Debug("magiclink: verify failed", zap.String("reason", string(reason)), zap.String("kid", kid))
	return VerifyResult{OK: false, Reason: reason}
}

func (v *Verifier) succeed(claims Claims, kid string) VerifyResult {
	if v.metrics != nil {
		v.metrics.ObserveVerify(true, ReasonNone)
	}
	if v.audit != nil {
		v.audit.Record(AuditEvent{Kind: "verify", Subject: claims.Sub, KID: kid, JTI: claims.JTI, OK: true})
	}
	return VerifyResult{OK: true, Claims: claims}
}

// Verify runs the pipeline of spec §4.6 against a raw compact token string.
func (v *Verifier) Verify(raw string, opts VerifyOptions) VerifyResult {
	start := time.Now()
	if v.metrics != nil {
		defer func() { v.metrics.ObserveVerifyDuration(time.Since(start)) }()
	}

	// 1. Segment split.
	tok, ok := splitToken(raw)
	if !ok {
		return v.fail(ReasonMalformedToken, "", "", "")
	}

	// 2. Segment base64url decode — every segment, before any of its
	// contents are interpreted.
	headerBytes, err1 := base64URLDecode(tok.headerSegment)
	payloadBytes, err2 := base64URLDecode(tok.payloadSegment)
	sigBytes, err3 := base64URLDecode(tok.signatureSegment)
	if err1 != nil || err2 != nil || err3 != nil {
		return v.fail(ReasonMalformedToken, "", "", "")
	}

	// 3. Header JSON decode.
	headerMap, err := jsonDecodeObject(headerBytes)
	if err != nil {
		return v.fail(ReasonMalformedHeader, "", "", "")
	}

	// 4. Header validation.
	h, ok := parseHeader(headerMap)
	if !ok || h.Alg != algHS256 {
		return v.fail(ReasonMalformedHeader, "", "", "")
	}

	// 5. Key lookup.
	key, found := v.keys.Find(h.KID)
	if !found {
		return v.fail(ReasonUnknownKID, "", h.KID, "")
	}

	// 6. MAC verify, over header.payload, strictly before decryption/claims.
	if !verifyHMAC(key, tok.signingInput(), sigBytes) {
		return v.fail(ReasonSignatureMismatch, "", h.KID, "")
	}

	// 7. Encryption branch.
	var claimsMap map[string]any
	if h.Enc != "" {
		if h.Enc != encA256GCM {
			return v.fail(ReasonMalformedHeader, "", h.KID, "")
		}
		if !cipherAvailable() {
			return v.fail(ReasonEncryptionUnavail, "", h.KID, "")
		}
		payloadMap, err := jsonDecodeObject(payloadBytes)
		if err != nil {
			return v.fail(ReasonMalformedPayload, "", h.KID, "")
		}
		env, ok := parseAEADEnvelope(payloadMap)
		if !ok {
			return v.fail(ReasonMalformedPayload, "", h.KID, "")
		}
		iv, errIV := base64URLDecode(env.IV)
		tag, errTag := base64URLDecode(env.Tag)
		ct, errCT := base64URLDecode(env.CT)
		if errIV != nil || errTag != nil || errCT != nil {
			return v.fail(ReasonMalformedPayload, "", h.KID, "")
		}
		plaintext, ok := aeadDecrypt(key, iv, ct, tag, []byte(tok.headerSegment))
		if !ok {
			return v.fail(ReasonDecryptFailed, "", h.KID, "")
		}
		claimsMap, err = jsonDecodeObject(plaintext)
		if err != nil {
			return v.fail(ReasonMalformedPayload, "", h.KID, "")
		}
	} else {
		claimsMap, err = jsonDecodeObject(payloadBytes)
		if err != nil {
			return v.fail(ReasonMalformedPayload, "", h.KID, "")
		}
	}

	// 8. Claims shape.
	claims, ok := parseClaims(claimsMap)
	if !ok {
		return v.fail(ReasonMalformedPayload, "", h.KID, "")
	}

	// 9. Timing.
	now := v.clock.Now()
	skew := opts.skew()
	if claims.Iat > now+skew {
		return v.fail(ReasonClockSkew, claims.Sub, h.KID, claims.JTI)
	}
	if claims.Nbf != nil && *claims.Nbf > now+skew {
		return v.fail(ReasonTokenEarly, claims.Sub, h.KID, claims.JTI)
	}
	if claims.Exp < now-skew {
		return v.fail(ReasonTokenExpired, claims.Sub, h.KID, claims.JTI)
	}

	// 10. Audience.
	if opts.ExpectedAud != "" && claims.Aud != opts.ExpectedAud {
		return v.fail(ReasonAudMismatch, claims.Sub, h.KID, claims.JTI)
	}

	// 11. Path: ExpectedPath and any bind.path claim apply independently.
	if opts.ExpectedPath != "" {
		if !matchPath(opts.ExpectedPath, opts.Path) {
			return v.fail(ReasonPathMismatch, claims.Sub, h.KID, claims.JTI)
		}
	}
	if boundPath, present := stringAppClaim(claims.App, AppKeyBindPath); present {
		if !matchPath(boundPath, opts.Path) {
			return v.fail(ReasonPathMismatch, claims.Sub, h.KID, claims.JTI)
		}
	}

	// 12. Host: symmetric to path, constant-time equality both times.
	if opts.ExpectedHost != "" {
		if !matchHost(opts.ExpectedHost, opts.Host) {
			return v.fail(ReasonHostMismatch, claims.Sub, h.KID, claims.JTI)
		}
	}
	if boundHost, present := stringAppClaim(claims.App, AppKeyBindHost); present {
		if !matchHost(boundHost, opts.Host) {
			return v.fail(ReasonHostMismatch, claims.Sub, h.KID, claims.JTI)
		}
	}

	// 13. User-Agent.
	if opts.EnforceUAHash {
		uah, present := stringAppClaim(claims.App, AppKeyUAHash)
		if !present || opts.UserAgent == "" {
			return v.fail(ReasonUAMismatch, claims.Sub, h.KID, claims.JTI)
		}
		if !constantTimeEqual(uah, HashUserAgent(opts.UserAgent)) {
			return v.fail(ReasonUAMismatch, claims.Sub, h.KID, claims.JTI)
		}
	}

	// 14. One-time required.
	if opts.RequireOneTime && claims.JTI == "" {
		return v.fail(ReasonOneTimeRequired, claims.Sub, h.KID, claims.JTI)
	}

	// 15. Return-URL allowlist.
	if returnTo, present := stringAppClaim(claims.App, AppKeyReturnTo); present && opts.ReturnToAllowlist != nil {
		if !opts.ReturnToAllowlist(returnTo) {
			return v.fail(ReasonReturnToDenied, claims.Sub, h.KID, claims.JTI)
		}
	}

	// 16. Replay.
	if claims.JTI != "" {
		if !v.nonces.Consume(claims.JTI, claims.Exp) {
			return v.fail(ReasonReplayed, claims.Sub, h.KID, claims.JTI)
		}
	}

	// 17. Success.
	return v.succeed(claims, h.KID)
}

// VerifyFromRequest implements §4.6.2: if raw contains "://" it is parsed as
// a URL, the token is extracted from the paramName query parameter (default
// "ml"), and Path/Host in opts are overwritten from the URL. If the
// parameter is absent, the original string is retried as a raw token —
// tolerant but surprising, preserved exactly as specified. A URL that fails
// to parse is malformed_token, not a Go error.
func (v *Verifier) VerifyFromRequest(raw, paramName string, opts VerifyOptions) VerifyResult {
	if paramName == "" {
		paramName = defaultParamName
	}
	if !strings.Contains(raw, "://") {
		return v.Verify(raw, opts)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return v.fail(ReasonMalformedToken, "", "", "")
	}
	tok := u.Query().Get(paramName)
	if tok == "" {
		return v.Verify(raw, opts)
	}
	opts.Path = u.Path
	opts.Host = u.Host
	return v.Verify(tok, opts)
}

func stringAppClaim(app map[string]any, key string) (string, bool) {
	if app == nil {
		return "", false
	}
	v, present := app[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
