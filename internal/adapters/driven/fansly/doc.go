// Package fansly implements driven.AccountAPI over the Fansly HTTP API.
//
// Requests are throttled client-side with a token bucket and paused when
// the server answers 429. The credential is attached by a RoundTripper fed
// from an oauth2.TokenSource and sent verbatim, without a scheme prefix.
//
// HTTP failures are mapped onto the domain error taxonomy:
//
//   - 401, 403: domain.AuthError
//   - 429, 5xx, network failures, timeouts: domain.TransportError
//   - other 4xx, undecodable bodies, success=false: domain.ShapeError
package fansly
