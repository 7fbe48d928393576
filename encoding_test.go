package magiclink

import (
	"math"
	"testing"
)

func TestBase64URLEncode_LiteralBytes(t *testing.T) {
	got := base64URLEncode([]byte{0xF0, 0x9F, 0x92, 0xA9})
	if got != "8J-SqQ" {
		t.Fatalf("base64URLEncode: got %q want %q", got, "8J-SqQ")
	}
}

func TestBase64URLDecode_RoundTrip(t *testing.T) {
	raw := []byte{0xF0, 0x9F, 0x92, 0xA9, 0x00, 0xFF}
	decoded, err := base64URLDecode(base64URLEncode(raw))
	if err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if string(decoded) != string(raw) {
		t.Fatalf("round trip mismatch: got %v want %v", decoded, raw)
	}
}

func TestBase64URLDecode_RejectsInvalidCharset(t *testing.T) {
	if _, err := base64URLDecode("not!base64"); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestCanonicalJSON_LiteralSortedKeys(t *testing.T) {
	v := map[string]any{
		"z": json64(1),
		"a": json64(2),
		"nested": map[string]any{
			"b": json64(1),
			"a": json64(2),
		},
	}
	got, err := canonicalJSON(v)
	if err != nil {
		t.Fatalf("canonicalJSON err: %v", err)
	}
	want := `{"a":2,"nested":{"a":2,"b":1},"z":1}`
	if string(got) != want {
		t.Fatalf("canonicalJSON: got %q want %q", got, want)
	}
}

func TestCanonicalJSON_Stable(t *testing.T) {
	v := map[string]any{
		"arr":  []any{json64(3), "x", true, nil},
		"name": "été — 💥",
	}
	first, err := canonicalJSON(v)
	if err != nil {
		t.Fatalf("canonicalJSON err: %v", err)
	}
	parsed, err := jsonDecodeObject(first)
	if err != nil {
		t.Fatalf("jsonDecodeObject err: %v", err)
	}
	second, err := canonicalJSON(parsed)
	if err != nil {
		t.Fatalf("canonicalJSON second pass err: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("canonical output not stable across a decode/re-encode: %q != %q", first, second)
	}
}

func TestCanonicalJSON_RejectsNonFiniteFloat(t *testing.T) {
	if _, err := canonicalJSON(math.Inf(1)); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat for +Inf, got %v", err)
	}
	if _, err := canonicalJSON(math.NaN()); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat for NaN, got %v", err)
	}
}

func TestJSONDecodeObject_RejectsNonObjectTopLevel(t *testing.T) {
	if _, err := jsonDecodeObject([]byte(`[1,2,3]`)); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat for top-level array, got %v", err)
	}
	if _, err := jsonDecodeObject([]byte(`"just a string"`)); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat for top-level scalar, got %v", err)
	}
}
