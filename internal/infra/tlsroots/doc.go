// Package tlsroots builds the TLS client configuration used to reach the
// translation API: system roots plus an optional private CA bundle
// (api.ca_file) for self-hosted deployments.
package tlsroots
