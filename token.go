package magiclink

import (
	"strings"
)

const (
	algHS256   = "HS256"
	encA256GCM = "A256GCM"
)

// token is the parsed three-segment wire form. signingInput is what the MAC
// covers: header + "." + payload, never including the signature segment.
type token struct {
	headerSegment    string
	payloadSegment   string
	signatureSegment string
}

// String renders the compact wire form, header.payload.signature.
func (t token) String() string {
	return t.headerSegment + "." + t.payloadSegment + "." + t.signatureSegment
}

func (t token) signingInput() []byte {
	return []byte(t.headerSegment + "." + t.payloadSegment)
}

// splitToken splits a raw string into exactly three segments. Any other
// segment count is malformed_token, never a Go error.
func splitToken(raw string) (token, bool) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return token{}, false
	}
	return token{headerSegment: parts[0], payloadSegment: parts[1], signatureSegment: parts[2]}, true
}

// header is the decoded JSON header. enc is empty for a plain (MAC-only)
// token, "A256GCM" for an AEAD-protected one.
type header struct {
	Alg string
	KID string
	Enc string
}

func (h header) toCanonical() map[string]any {
	m := map[string]any{"alg": h.Alg, "kid": h.KID}
	if h.Enc != "" {
		m["enc"] = h.Enc
	}
	return m
}

func parseHeader(m map[string]any) (header, bool) {
	alg, ok := m["alg"].(string)
	if !ok || alg == "" {
		return header{}, false
	}
	kid, ok := m["kid"].(string)
	if !ok || kid == "" {
		return header{}, false
	}
	h := header{Alg: alg, KID: kid}
	if rawEnc, present := m["enc"]; present {
		enc, ok := rawEnc.(string)
		if !ok || enc == "" {
			return header{}, false
		}
		h.Enc = enc
	}
	return h, true
}

// encodeSegment canonicalizes v and base64url-encodes the result — the
// building block both header and payload encoding share.
func encodeSegment(v map[string]any) (string, error) {
	raw, err := canonicalJSON(v)
	if err != nil {
		return "", err
	}
	return base64URLEncode(raw), nil
}

// aeadEnvelope is the payload shape when enc is set: {iv, tag, ct}, each
// base64url of the raw bytes.
type aeadEnvelope struct {
	IV  string
	Tag string
	CT  string
}

func (e aeadEnvelope) toCanonical() map[string]any {
	return map[string]any{"iv": e.IV, "tag": e.Tag, "ct": e.CT}
}

func parseAEADEnvelope(m map[string]any) (aeadEnvelope, bool) {
	iv, ok := m["iv"].(string)
	if !ok {
		return aeadEnvelope{}, false
	}
	tag, ok := m["tag"].(string)
	if !ok {
		return aeadEnvelope{}, false
	}
	ct, ok := m["ct"].(string)
	if !ok {
		return aeadEnvelope{}, false
	}
	return aeadEnvelope{IV: iv, Tag: tag, CT: ct}, true
}
