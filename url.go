package magiclink

import (
	"fmt"
	"net/url"
)

// buildURL merges tok into baseURL's query string under paramName,
// preserving scheme, userinfo, host, port, path, the rest of the query and
// the fragment, in that order. paramName defaults to "ml" when empty.
func buildURL(baseURL, paramName, tok string) (string, error) {
	if paramName == "" {
		paramName = defaultParamName
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: parsing base URL: %v", ErrInvalidFormat, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: base URL must be absolute", ErrInvalidFormat)
	}
	q := u.Query()
	q.Set(paramName, tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
