package vault

import (
	"errors"
	"fmt"
)

// Kind classifies a failed secret fetch.
type Kind string

// Fetch error kinds.
const (
	// KindConfiguration indicates missing or malformed credentials, address or path.
	KindConfiguration Kind = "ConfigurationError"

	// KindTransport indicates the request never produced a usable response.
	KindTransport Kind = "TransportError"

	// KindAuthentication indicates the login was rejected or returned an unexpected shape.
	KindAuthentication Kind = "AuthenticationError"

	// KindNotFound indicates no versioned KV secret exists at the requested path.
	KindNotFound Kind = "NotFoundError"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Common errors for secret fetches. Every *FetchError matches exactly one of these via errors.Is.
var (
	// ErrConfiguration indicates a configuration error.
	ErrConfiguration = errors.New("vault: invalid configuration")

	// ErrTransport indicates a transport failure.
	ErrTransport = errors.New("vault: transport failure")

	// ErrAuthentication indicates authentication failed.
	ErrAuthentication = errors.New("vault: authentication failed")

	// ErrNotFound indicates the secret was not found.
	ErrNotFound = errors.New("vault: secret not found")
)

// sentinels maps each kind to its sentinel error.
var sentinels = map[Kind]error{
	KindConfiguration:  ErrConfiguration,
	KindTransport:      ErrTransport,
	KindAuthentication: ErrAuthentication,
	KindNotFound:       ErrNotFound,
}

// FetchError represents a classified secret fetch failure with additional context.
type FetchError struct {
	Kind       Kind   // Failure classification
	Op         string // Operation that failed: "login" or "read"
	Path       string // Secret path if applicable
	StatusCode int    // HTTP status code if a response was received
	Message    string // Human readable description
	Err        error  // Underlying error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("vault %s on path %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("vault %s: %s", e.Op, msg)
	default:
		return "vault: " + msg
	}
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error kind. The cause is reached through Unwrap.
func (e *FetchError) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && target == sentinel
}

// NewConfigurationError creates a ConfigurationError. No request has been made when it is returned.
func NewConfigurationError(field, message string) *FetchError {
	if field != "" {
		message = field + ": " + message
	}
	return &FetchError{Kind: KindConfiguration, Op: "validate", Message: message}
}

// NewTransportError creates a TransportError wrapping the network cause.
func NewTransportError(op, path string, err error) *FetchError {
	return &FetchError{Kind: KindTransport, Op: op, Path: path, Message: "Failed to connect to Vault", Err: err}
}

// NewAuthenticationError creates an AuthenticationError.
func NewAuthenticationError(code int, message string, err error) *FetchError {
	return &FetchError{Kind: KindAuthentication, Op: "login", StatusCode: code, Message: message, Err: err}
}

// NewNotFoundError creates a NotFoundError for the given path.
func NewNotFoundError(path string, code int, message string, err error) *FetchError {
	return &FetchError{Kind: KindNotFound, Op: "read", Path: path, StatusCode: code, Message: message, Err: err}
}

// KindOf returns the kind of a fetch error, or an empty kind for any other error.
func KindOf(err error) Kind {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind
	}
	return ""
}

// IsConfigurationError returns true if the error is a ConfigurationError.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsTransportError returns true if the error is a TransportError.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsAuthError returns true if the error is an AuthenticationError.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
