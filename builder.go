package magiclink

import (
	"crypto/rand"
	"fmt"

	"go.uber.org/zap"
)

// LinkBuilder issues tokens and assembles them into URLs. It holds no
// mutable state of its own beyond its optional collaborators — all signing
// state lives in the KeySet, all timing in the Clock.
type LinkBuilder struct {
	keys      *KeySet
	clock     Clock
	paramName string

	limiter IssueLimiter
	audit   AuditSink
	metrics MetricsRecorder
	log     *zap.Logger
}

// BuilderOption configures optional LinkBuilder collaborators.
type BuilderOption func(*LinkBuilder)

// WithParamName overrides the default "ml" query parameter name used by
// CreateURL.
func WithParamName(name string) BuilderOption {
	return func(b *LinkBuilder) { b.paramName = name }
}

// WithIssueLimiter wires a rate limiter; Create denies with ErrRateLimited
// when it reports false.
func WithIssueLimiter(l IssueLimiter) BuilderOption {
	return func(b *LinkBuilder) { b.limiter = l }
}

// WithAuditSink wires an audit sink; Create records an "issue" event after
// a token is successfully built (never before — a denied or failed Create
// produces no audit record of a token that doesn't exist).
func WithAuditSink(a AuditSink) BuilderOption {
	return func(b *LinkBuilder) { b.audit = a }
}

// WithMetrics wires a metrics recorder.
func WithMetrics(m MetricsRecorder) BuilderOption {
	return func(b *LinkBuilder) { b.metrics = m }
}

// WithLogger wires a zap logger for security-relevant observations. Silent
// (zap.NewNop()) by default.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *LinkBuilder) { b.log = l }
}

// NewLinkBuilder builds a LinkBuilder over the given KeySet and Clock.
func NewLinkBuilder(keys *KeySet, clock Clock, opts ...BuilderOption) *LinkBuilder {
	b := &LinkBuilder{keys: keys, clock: clock, paramName: defaultParamName, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Create issues a token for subject per the algorithm in spec §4.5. It
// returns ErrRateLimited if an IssueLimiter denies the request, ErrCrypto if
// no signing key is available or encryption was requested but the key can't
// support it, and never returns a Reason — issue-time failures are always
// programmer errors, not verify-time value errors.
func (b *LinkBuilder) Create(subject string, opts CreateOptions) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: subject must not be empty", ErrCrypto)
	}
	if b.limiter != nil {
		allowed, err := b.limiter.Allow(subject)
		if err != nil {
			return "", fmt.Errorf("%w: issue limiter: %v", ErrCrypto, err)
		}
		if !allowed {
			b.log.Warn("magiclink: issue rate limited", zap.String("sub", subject))
			b.recordMetrics(false)
			return "", ErrRateLimited
		}
	}

	now := b.clock.Now()
	key, err := b.keys.GetForSign(now)
	if err != nil {
		b.recordMetrics(false)
		return "", err
	}

	exp := now + max64(1, opts.ttl())

	var jti string
	if opts.oneTime() {
		raw := make([]byte, jtiRandomBytes)
		if _, err := rand.Read(raw); err != nil {
			return "", fmt.Errorf("%w: generating jti: %v", ErrCrypto, err)
		}
		jti = base64URLEncode(raw)
	}

	app := make(map[string]any, len(opts.App)+2)
	for k, v := range opts.App {
		app[k] = v
	}
	if opts.PathBind != "" {
		app[AppKeyBindPath] = opts.PathBind
	}
	if opts.ReturnTo != "" {
		app[AppKeyReturnTo] = opts.ReturnTo
	}

	claims := Claims{
		Sub: subject,
		Iat: now,
		Exp: exp,
		Aud: opts.Aud,
		JTI: jti,
		App: app,
	}

	h := header{Alg: algHS256, KID: key.KID()}
	if opts.EncryptPayload {
		h.Enc = encA256GCM
	}
	headerSeg, err := encodeSegment(h.toCanonical())
	if err != nil {
		return "", err
	}

	var payloadSeg string
	if opts.EncryptPayload {
		if !cipherAvailable() {
			return "", fmt.Errorf("%w: AEAD requested but cipher unavailable", ErrCrypto)
		}
		plaintext, err := canonicalJSON(claims.toCanonical())
		if err != nil {
			return "", err
		}
		iv, ct, tag, err := aeadEncrypt(key, plaintext, []byte(headerSeg))
		if err != nil {
			return "", err
		}
		env := aeadEnvelope{IV: base64URLEncode(iv), Tag: base64URLEncode(tag), CT: base64URLEncode(ct)}
		payloadSeg, err = encodeSegment(env.toCanonical())
		if err != nil {
			return "", err
		}
	} else {
		payloadSeg, err = encodeSegment(claims.toCanonical())
		if err != nil {
			return "", err
		}
	}

	tok := token{headerSegment: headerSeg, payloadSegment: payloadSeg}
	mac := signHMAC(key, tok.signingInput())
	tok.signatureSegment = base64URLEncode(mac)

	b.recordMetrics(true)
	if b.audit != nil {
		b.audit.Record(AuditEvent{Kind: "issue", Subject: subject, KID: key.KID(), JTI: jti, OK: true})
	}
	return tok.String(), nil
}

// CreateURL issues a token exactly as Create does and embeds it into
// baseURL's query string under the builder's param name (default "ml").
func (b *LinkBuilder) CreateURL(subject, baseURL string, opts CreateOptions) (string, error) {
	tok, err := b.Create(subject, opts)
	if err != nil {
		return "", err
	}
	return buildURL(baseURL, b.paramName, tok)
}

func (b *LinkBuilder) recordMetrics(ok bool) {
	if b.metrics != nil {
		b.metrics.ObserveIssue(ok)
	}
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
