package magiclink

import "encoding/json"

// Reserved app claim keys the verifier inspects by convention. There is no
// schema beyond presence-and-type checks at these keys; callers may set any
// other key in App freely.
const (
	AppKeyBindPath = "bind.path"
	AppKeyBindHost = "bind.host"
	AppKeyUAHash   = "uah"
	AppKeyReturnTo = "return_to"
)

// Claims is the token payload: the thing a successful Verify hands back to
// the caller. It is created once by LinkBuilder.Create and never mutated.
type Claims struct {
	Sub string
	Iat int64
	Exp int64
	Aud string // empty means unset
	Nbf *int64
	JTI string // empty means unset (not a one-time token)
	App map[string]any
}

// toCanonical renders the claims as the map[string]any canonicalJSON expects,
// omitting unset optional fields entirely (an absent key, not a null).
func (c Claims) toCanonical() map[string]any {
	m := map[string]any{
		"sub": c.Sub,
		"iat": json64(c.Iat),
		"exp": json64(c.Exp),
	}
	if c.Aud != "" {
		m["aud"] = c.Aud
	}
	if c.Nbf != nil {
		m["nbf"] = json64(*c.Nbf)
	}
	if c.JTI != "" {
		m["jti"] = c.JTI
	}
	if len(c.App) > 0 {
		m["app"] = cloneAppValue(c.App)
	}
	return m
}

// cloneAppValue deep-copies a claim bag value. toCanonical uses it so the
// map handed to canonicalJSON shares no nested maps or slices with the
// caller's App. parseClaims does not clone: the App it returns is the map
// decoded from the payload.
func cloneAppValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, vv := range val {
			out[k] = cloneAppValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, vv := range val {
			out[i] = cloneAppValue(vv)
		}
		return out
	default:
		return val
	}
}

// parseClaims decodes a JSON object previously produced by toCanonical (or
// an AEAD-decrypted payload) back into Claims, validating shape per spec
// §4.6 step 8. Any structural problem is reported via ok=false rather than
// an error: hostile input must never cause a parse error to escape the
// verify pipeline.
func parseClaims(m map[string]any) (Claims, bool) {
	sub, ok := m["sub"].(string)
	if !ok || sub == "" {
		return Claims{}, false
	}
	iat, ok := asInt64(m["iat"])
	if !ok {
		return Claims{}, false
	}
	exp, ok := asInt64(m["exp"])
	if !ok {
		return Claims{}, false
	}
	c := Claims{Sub: sub, Iat: iat, Exp: exp}

	if rawAud, present := m["aud"]; present {
		aud, ok := rawAud.(string)
		if !ok {
			return Claims{}, false
		}
		c.Aud = aud
	}
	if rawNbf, present := m["nbf"]; present && rawNbf != nil {
		nbf, ok := asInt64(rawNbf)
		if !ok {
			return Claims{}, false
		}
		c.Nbf = &nbf
	}
	if rawJTI, present := m["jti"]; present {
		jti, ok := rawJTI.(string)
		if !ok || jti == "" {
			return Claims{}, false
		}
		c.JTI = jti
	}
	if rawApp, present := m["app"]; present {
		app, ok := rawApp.(map[string]any)
		if !ok {
			return Claims{}, false
		}
		c.App = app
	}
	return c, true
}

// asInt64 accepts the shapes an integer claim can take after round-tripping
// through jsonDecodeObject (json.Number) or being set directly by Go code
// building Claims programmatically (int, int64, json64).
func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case json64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
