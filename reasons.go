package magiclink

// Reason is the value-error channel for Verify: exactly one Reason
// accompanies every ok=false VerifyResult. Unlike the errors in errors.go,
// a Reason is never a Go error — hostile input never panics or returns an
// error, it returns a result with a reason.
type Reason string

const (
	// ReasonNone is the zero value; only ever seen on a successful result.
	ReasonNone Reason = ""

	ReasonMalformedToken       Reason = "malformed_token"
	ReasonMalformedHeader      Reason = "malformed_header"
	ReasonMalformedPayload     Reason = "malformed_payload"
	ReasonUnknownKID           Reason = "unknown_kid"
	ReasonSignatureMismatch    Reason = "signature_mismatch"
	ReasonEncryptionUnavail    Reason = "encryption_unavailable"
	ReasonDecryptFailed        Reason = "decrypt_failed"
	ReasonTokenExpired         Reason = "token_expired"
	ReasonTokenEarly           Reason = "token_early"
	ReasonClockSkew            Reason = "clock_skew"
	ReasonAudMismatch          Reason = "aud_mismatch"
	ReasonPathMismatch         Reason = "path_mismatch"
	ReasonHostMismatch         Reason = "host_mismatch"
	ReasonUAMismatch           Reason = "ua_mismatch"
	ReasonReplayed             Reason = "replayed"
	ReasonOneTimeRequired      Reason = "one_time_required"
	ReasonReturnToDenied       Reason = "return_to_denied"
)
