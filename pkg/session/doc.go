// Package session owns the interception state of one test run: a Ledger and
// Contract per registered base URL, keyed by scheme and host, and the
// http.RoundTripper that routes matching requests through the resolver.
//
// A Session can be used three ways:
//
//   - inject Client() or Transport() into the code under test
//   - Install() it as http.DefaultTransport so that http.Get and friends are
//     intercepted, and Close() to restore the previous transport
//   - serve Handler(baseURL) from an httptest.Server for clients that cannot
//     take a custom transport
//
// Requests to hosts that are not registered fail with ErrNoRoute unless the
// host matches one of the passthrough globs, in which case they go to the
// network.
package session
