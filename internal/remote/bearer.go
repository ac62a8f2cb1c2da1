package remote

import "net/http"

// TokenSource yields the current access token; "" means anonymous.
type TokenSource interface {
	AccessToken() string
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// AccessToken returns the token itself.
func (s StaticToken) AccessToken() string { return string(s) }

// bearerTransport decorates outgoing requests with the bearer token.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

// RoundTrip adds the Authorization header when a token is available.
func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	tok := t.tokens.AccessToken()
	if tok == "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+tok)
	return base.RoundTrip(r)
}
