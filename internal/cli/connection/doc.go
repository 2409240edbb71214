// Package connection is the HTTP client for the translation API.
//
//   - http.go: transport, request headers, error mapping, rate limiting
//   - api.go: one method per API endpoint, decoding into domain types
//
// Every failure is returned as a *domain.ClientError: transport problems
// (unreachable host, timeout, undecodable body) as KindTransport, non-2xx
// answers as KindServer, and 401/403 on requests that carry a credential
// as KindAuthorization. No request is ever retried.
package connection
