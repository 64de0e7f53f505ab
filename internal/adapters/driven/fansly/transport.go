package fansly

import (
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// authTransport attaches the credential from Source to every request.
// Unlike oauth2.Transport it writes the token without a "Bearer" prefix,
// which is what the API expects.
type authTransport struct {
	Source    oauth2.TokenSource
	UserAgent string
	Base      http.RoundTripper
}

// RoundTrip authorizes and sends the request.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.Source.Token()
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	// RoundTrippers must not modify the caller's request.
	out := req.Clone(req.Context())
	out.Header.Set("Authorization", tok.AccessToken)
	if t.UserAgent != "" {
		out.Header.Set("User-Agent", t.UserAgent)
	}
	out.Header.Set("Accept", "application/json")

	return t.base().RoundTrip(out)
}

func (t *authTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
