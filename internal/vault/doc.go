// Package vault provides the AppRole login and KV v2 secret read exchange
// against an OpenBao or HashiCorp Vault server.
//
// Every fetch is a fresh, stateless exchange: the AppRole credentials are
// exchanged for a client token, the token is used once to read a versioned
// KV secret, and then it is discarded. Tokens are never cached, renewed or
// shared between calls.
//
// # Clients
//
// Two implementations of SecretFetcher are provided:
//
//   - AppRoleFetcher speaks the HTTP protocol directly over a pooled
//     net/http client and decodes responses with vaultapi.ParseSecret.
//   - APIFetcher delegates the protocol to the hashicorp/vault/api client
//     library and its approle auth method.
//
// Both return the same error kinds for the same server behavior.
//
// # Errors
//
// Failures are returned as *FetchError and classified by Kind:
//
//   - ConfigurationError: credentials, address or path are missing or
//     malformed. No request has been made.
//   - TransportError: the server could not be reached or the request timed out.
//   - AuthenticationError: the login response carried no auth object.
//   - NotFoundError: the read response carried no data.data object.
//
// The classification follows the shape of the response body, not the HTTP
// status code. Use errors.Is with the Err* sentinels or the Is* helpers:
//
//	data, err := fetcher.FetchSecret(ctx, "http://127.0.0.1:8200", creds, "database/demo")
//	if vault.IsNotFound(err) {
//	    // no secret at the path
//	}
//
// # Metrics
//
// When configured with WithMetrics, the fetchers record:
//
//   - vault_requests_total{operation,status}
//   - vault_request_duration_seconds{operation}
//   - secret_fetches_total{result}
package vault
