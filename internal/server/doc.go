// Package server runs the short-lived local HTTP server used by `spinsync auth`.
//
// # Router
//
// [Router] wraps [http.ServeMux] with a [Middleware] chain. Middleware wraps
// handlers in reverse order (last added executes first). Handlers implement
// [Handler], which adds the list of routes they serve.
//
// # OAuth Callback Handler
//
// [OAuthHandler] receives the authorization code redirect, checks the state
// parameter, exchanges the code through an [Exchanger] and publishes exactly one
// [OAuthResult]. Later callbacks are rejected.
//
// [WaitForCallback] listens on the configured address, waits for the result or
// for ctx to end, then shuts the server down.
package server
