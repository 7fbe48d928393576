package magiclink

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// base64URLEncode encodes raw bytes as unpadded URL-safe base64, e.g. the
// four bytes F0 9F 92 A9 become "8J-SqQ".
func base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

// base64URLDecode decodes unpadded URL-safe base64. Any byte outside
// [A-Za-z0-9_-] is rejected with ErrInvalidFormat; empty input decodes to
// empty output.
func base64URLDecode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return nil, fmt.Errorf("%w: invalid base64url character %q", ErrInvalidFormat, c)
		}
	}
	// Re-pad to a multiple of 4 before handing to the standard decoder.
	padded := s
	if n := len(s) % 4; n != 0 {
		padded += strings.Repeat("=", 4-n)
	}
	b, err := base64.URLEncoding.DecodeString(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: base64url decode: %v", ErrInvalidFormat, err)
	}
	return b, nil
}

// canonicalJSON renders v as deterministic JSON: object keys sorted by
// codepoint at every depth, no insignificant whitespace, slashes and unicode
// passed through unescaped, non-finite floats rejected. The MAC is computed
// over base64url(canonicalJSON(header)) + "." + base64url(canonicalJSON(payload)),
// so this function's output must be byte-identical for byte-identical input
// on every call — that is the entire point of canonicalizing at all.
func canonicalJSON(v any) ([]byte, error) {
	var buf strings.Builder
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func writeCanonical(buf *strings.Builder, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case string:
		writeCanonicalString(buf, val)
		return nil
	case float64:
		return writeCanonicalFloat(buf, val)
	case float32:
		return writeCanonicalFloat(buf, float64(val))
	case json.Number:
		buf.WriteString(val.String())
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case json64:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case []any:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("%w: unsupported canonical JSON value of type %T", ErrInvalidFormat, v)
	}
}

// json64 lets callers pass an integer claim (iat, exp, nbf) through the app
// claim bag without it round-tripping as a float64 the way a plain JSON
// decode would produce.
type json64 int64

func writeCanonicalFloat(buf *strings.Builder, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: non-finite float in canonical JSON", ErrInvalidFormat)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		buf.WriteString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

// jsonDecodeObject decodes raw into a string-keyed map. json.Number is used
// so integer claims (iat, exp, nbf) survive the round trip without becoming
// float64 and losing precision for large timestamps. A top-level array or
// scalar fails with ErrInvalidFormat.
func jsonDecodeObject(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: json decode: %v", ErrInvalidFormat, err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object at top level", ErrInvalidFormat)
	}
	return m, nil
}

func writeCanonicalString(buf *strings.Builder, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}
