// Package backend is the transport to the hosted TellBrandz backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see Client) covering the identity
//     provider (password grant, refresh, sign-out), named serverless
//     functions, and table reads/updates.
//  2. HTTPClient, the JSON-over-HTTP implementation. It keeps the current
//     tokens, injects them into every request and maps HTTP status codes to
//     sentinel errors.
//  3. An auth event stream (Client.Events). Calls that change the identity
//     publish an AuthEvent instead of returning the new session, so the
//     stream is the only source of truth for session state.
//  4. A background token refresher (StartRefresher) with exponential backoff.
//
// # Error Handling
//
// Transport failures, 5xx responses and deadlines map to ErrUnavailable;
// 401/403 map to ErrUnauthorized; 404 maps to ErrNotFound. Every other
// non-2xx response becomes an *APIError carrying the backend's message.
package backend
