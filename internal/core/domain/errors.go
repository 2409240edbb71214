// Package domain defines the core domain models for lingvo.
package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrorKind classifies a ClientError so presentation code never has to
// inspect the shape of a server payload.
type ErrorKind string

const (
	// KindValidation is a local input error detected before any request.
	KindValidation ErrorKind = "validation"
	// KindTransport is a network level failure (unreachable, timeout, bad body).
	KindTransport ErrorKind = "transport"
	// KindServer is a request the API rejected with a structured body.
	KindServer ErrorKind = "server"
	// KindAuthorization is a rejected or expired credential.
	KindAuthorization ErrorKind = "authorization"
)

// GenericMessage is shown when nothing more specific is available.
const GenericMessage = "something went wrong"

// ClientError is the single error type surfaced by the session and query layer.
// Error codes follow the format LG-<AREA>-<NNNN>.
type ClientError struct {
	Kind    ErrorKind
	Code    string // Error code (e.g., "LG-AUTH-4010")
	Message string // Human-readable message
	Status  int    // HTTP status, zero for local errors

	// Fields holds per-field messages from a server payload ({"username": ["taken"]}).
	Fields map[string][]string

	// Payload is the decoded server error body, untouched.
	Payload map[string]any

	Cause error
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("[%s] %s (status %d)", e.Code, e.Message, e.Status)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support by comparing codes.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewClientError creates a new ClientError with the given kind, code and message.
func NewClientError(kind ErrorKind, code, message string) *ClientError {
	return &ClientError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// WithMessage returns a copy of the error with a different message.
func (e *ClientError) WithMessage(message string) *ClientError {
	c := *e
	c.Message = message
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *ClientError) WithCause(cause error) *ClientError {
	c := *e
	c.Cause = cause
	return &c
}

// WithStatus returns a copy of the error carrying an HTTP status.
func (e *ClientError) WithStatus(status int) *ClientError {
	c := *e
	c.Status = status
	return &c
}

// WithPayload returns a copy of the error carrying a server payload.
// String and string-list values are also indexed into Fields.
func (e *ClientError) WithPayload(payload map[string]any) *ClientError {
	c := *e
	c.Payload = payload
	c.Fields = fieldsFromPayload(payload)
	return &c
}

// Field returns the first message reported for a field, or "".
func (e *ClientError) Field(name string) string {
	if msgs := e.Fields[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// messagePrecedence is the order in which payload fields are promoted to the
// display message: targeted field errors first, then generic server messages.
var messagePrecedence = []struct {
	field  string
	prefix string
}{
	{"username", "Username: "},
	{"email", "Email: "},
	{"password", "Password: "},
	{"detail", ""},
	{"error", ""},
	{"Error", ""},
}

// DisplayMessage picks the message a user should see.
func (e *ClientError) DisplayMessage() string {
	for _, p := range messagePrecedence {
		if msg := e.Field(p.field); msg != "" {
			return p.prefix + msg
		}
	}
	if e.Message != "" {
		return e.Message
	}
	return GenericMessage
}

func fieldsFromPayload(payload map[string]any) map[string][]string {
	if len(payload) == 0 {
		return nil
	}
	fields := make(map[string][]string, len(payload))
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch v := payload[k].(type) {
		case string:
			fields[k] = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					fields[k] = append(fields[k], s)
				}
			}
		}
	}
	return fields
}

// IsKind reports whether err is a ClientError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// AsClientError converts any error into a ClientError. Errors that are not
// already ClientErrors are treated as transport failures.
func AsClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrTransport.WithCause(err)
}

// GetErrorCode extracts the error code from an error if it's a ClientError.
func GetErrorCode(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// ============================================================================
// Validation Errors (VAL)
// ============================================================================

var (
	// ErrInvalidEmail indicates the email is not shaped like local@domain.tld.
	ErrInvalidEmail = NewClientError(KindValidation, "LG-VAL-1001", "invalid email address")

	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = NewClientError(KindValidation, "LG-VAL-1002", "passwords do not match")

	// ErrWeakPassword indicates the password fails the strength policy.
	ErrWeakPassword = NewClientError(KindValidation, "LG-VAL-1003",
		"password must be at least 6 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character")

	// ErrEmptyText indicates a translation order without text.
	ErrEmptyText = NewClientError(KindValidation, "LG-VAL-1004", "please enter text to translate")

	// ErrSameLanguage indicates source and target languages are equal.
	ErrSameLanguage = NewClientError(KindValidation, "LG-VAL-1005", "source and target languages must be different")

	// ErrUnsupportedLanguage indicates a language code outside the supported set.
	ErrUnsupportedLanguage = NewClientError(KindValidation, "LG-VAL-1006", "unsupported language")

	// ErrUnknownFilter indicates a filter key the view does not define.
	ErrUnknownFilter = NewClientError(KindValidation, "LG-VAL-1007", "unknown filter")

	// ErrUnknownSortField indicates a sort field the view does not allow.
	ErrUnknownSortField = NewClientError(KindValidation, "LG-VAL-1008", "unknown sort field")

	// ErrInvalidFilterValue indicates a malformed filter value.
	ErrInvalidFilterValue = NewClientError(KindValidation, "LG-VAL-1009", "invalid filter value")

	// ErrMissingArgument indicates a required input is empty.
	ErrMissingArgument = NewClientError(KindValidation, "LG-VAL-1010", "missing required argument")
)

// ============================================================================
// Session Errors (SESS)
// ============================================================================

var (
	// ErrTransitionInProgress indicates another session transition is in flight.
	ErrTransitionInProgress = NewClientError(KindValidation, "LG-SESS-4090", "session operation already in progress")

	// ErrNotAuthenticated indicates an operation that requires a session.
	ErrNotAuthenticated = NewClientError(KindAuthorization, "LG-SESS-4010", "not logged in")
)

// ============================================================================
// Authorization Errors (AUTH)
// ============================================================================

var (
	// ErrCredentialRejected indicates the API rejected the credential (401).
	ErrCredentialRejected = NewClientError(KindAuthorization, "LG-AUTH-4010", "session expired, please log in again")

	// ErrPermissionDenied indicates the viewer may not access a resource.
	ErrPermissionDenied = NewClientError(KindAuthorization, "LG-AUTH-4030", "you do not have permission to view this resource")
)

// ============================================================================
// Transport / Server Errors (NET, API)
// ============================================================================

var (
	// ErrTransport indicates the request never produced a usable response.
	ErrTransport = NewClientError(KindTransport, "LG-NET-5000", GenericMessage)

	// ErrServerRejected indicates a non-2xx response with a structured body.
	ErrServerRejected = NewClientError(KindServer, "LG-API-4000", "request rejected")

	// ErrServerFailure indicates a 5xx response.
	ErrServerFailure = NewClientError(KindServer, "LG-API-5000", "server error")
)
