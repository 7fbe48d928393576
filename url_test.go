package magiclink

import (
	"net/url"
	"testing"
)

func TestBuildURL_MergesTokenPreservingExistingQuery(t *testing.T) {
	got, err := buildURL("https://app.test/login?foo=bar#frag", "ml", "tok.en.value")
	if err != nil {
		t.Fatalf("buildURL err: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("result is not a valid URL: %v", err)
	}
	if u.Query().Get("foo") != "bar" {
		t.Fatalf("existing query parameter lost: %s", got)
	}
	if u.Query().Get("ml") != "tok.en.value" {
		t.Fatalf("token not merged under param name: %s", got)
	}
	if u.Fragment != "frag" {
		t.Fatalf("fragment lost: %s", got)
	}
}

func TestBuildURL_DefaultsParamName(t *testing.T) {
	got, err := buildURL("https://app.test/login", "", "tok")
	if err != nil {
		t.Fatalf("buildURL err: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("ml") != "tok" {
		t.Fatalf("default param name \"ml\" not used: %s", got)
	}
}

func TestBuildURL_RejectsRelativeBaseURL(t *testing.T) {
	if _, err := buildURL("/relative/path", "ml", "tok"); !IsInvalidFormat(err) {
		t.Fatalf("expected ErrInvalidFormat for a relative base URL, got %v", err)
	}
}
