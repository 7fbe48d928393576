package magiclink

const (
	defaultTTLSeconds   = 900
	defaultParamName    = "ml"
	defaultMaxClockSkew = 120
	jtiRandomBytes      = 16
)

// CreateOptions configures LinkBuilder.Create. Every field is optional; the
// zero value produces a one-time, unencrypted, 900-second token with no
// audience, no context binding and no caller claims.
type CreateOptions struct {
	// Aud sets Claims.Aud, scoping the token to one flow.
	Aud string

	// TTLSeconds sets exp = now + max(1, TTLSeconds). Zero means the default
	// of 900 seconds, not a 0-second token — use a negative escape hatch only
	// if you truly want the 1-second floor.
	TTLSeconds int64

	// OneTime controls whether a jti is generated. nil defaults to true,
	// matching spec's "oneTime (default true)".
	OneTime *bool

	// EncryptPayload wraps the payload in an AES-256-GCM envelope. Create
	// fails with ErrCrypto if the signing key is too short for AEAD.
	EncryptPayload bool

	// PathBind, if set, is stored at Claims.App[AppKeyBindPath].
	PathBind string

	// ReturnTo, if set, is stored at Claims.App[AppKeyReturnTo].
	ReturnTo string

	// App is the caller's free-form claim bag, merged under the reserved
	// keys above. Core-set keys overwrite caller-supplied values at those
	// same reserved keys; every other caller key is preserved untouched.
	App map[string]any
}

func (o CreateOptions) oneTime() bool {
	return o.OneTime == nil || *o.OneTime
}

func (o CreateOptions) ttl() int64 {
	if o.TTLSeconds == 0 {
		return defaultTTLSeconds
	}
	return o.TTLSeconds
}

// VerifyOptions configures Verifier.Verify. The zero value performs only
// the mandatory checks: signature, timing with the default 120-second skew,
// and replay if the token happens to carry a jti.
type VerifyOptions struct {
	// ExpectedAud, if non-empty, must equal Claims.Aud.
	ExpectedAud string

	// ExpectedPath, if non-empty, is matched against Path per §4.6.1.
	// Independently, Claims.App[AppKeyBindPath] (if present) is matched
	// against Path too — both checks apply if both are present.
	ExpectedPath string

	// Path is the caller-supplied request path, used by ExpectedPath and by
	// any bind.path claim in the token.
	Path string

	// ExpectedHost, if non-empty, is matched against Host (constant-time
	// equality). Independently, Claims.App[AppKeyBindHost] (if present) is
	// matched against Host too.
	ExpectedHost string

	// Host is the caller-supplied request host.
	Host string

	// RequireOneTime fails verification with one_time_required if the token
	// carries no jti.
	RequireOneTime bool

	// MaxClockSkew bounds iat/nbf/exp tolerance, in seconds. nil means the
	// default of 120. A negative value is clamped to 0, matching the spec's
	// skew = max(0, opts.maxClockSkew); an explicit 0 is honored as zero
	// tolerance rather than being treated as "unset".
	MaxClockSkew *int64

	// EnforceUAHash requires Claims.App[AppKeyUAHash] to equal
	// HashUserAgent(UserAgent).
	EnforceUAHash bool

	// UserAgent is the caller-presented User-Agent string, used only when
	// EnforceUAHash is set.
	UserAgent string

	// ReturnToAllowlist, if set, is invoked with Claims.App[AppKeyReturnTo]
	// whenever that claim is present as a string. A false return denies
	// verification with return_to_denied. It is never invoked otherwise.
	ReturnToAllowlist func(returnTo string) bool
}

func (o VerifyOptions) skew() int64 {
	v := int64(defaultMaxClockSkew)
	if o.MaxClockSkew != nil {
		v = *o.MaxClockSkew
	}
	if v < 0 {
		return 0
	}
	return v
}
