package errors

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v79/github"
)

// Kind classifies an error so that presentation layers can map it to a
// transport-appropriate shape without string sniffing.
type Kind string

const (
	// KindInvalidInput covers malformed repository references, malformed
	// resource URIs, and unknown tool or action names.
	KindInvalidInput Kind = "invalid_input"

	// KindMissingCredential is returned when an operation requires a GitHub
	// token and none is configured.
	KindMissingCredential Kind = "missing_credential"

	// KindUpstreamFailure covers any error surfaced by the GitHub API:
	// network failures, 4xx, 5xx, and rate limiting.
	KindUpstreamFailure Kind = "upstream_failure"

	// KindProtocolError covers malformed JSON-RPC envelopes and unknown
	// methods on the HTTP surface.
	KindProtocolError Kind = "protocol_error"
)

// JSON-RPC 2.0 error codes used by the HTTP surface.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInternalError  = -32603
)

// Error is the typed error carried across handler boundaries. The wrapped
// cause is preserved for diagnosis via errors.Is/As.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidInput creates an InvalidInput error.
func NewInvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// NewMissingCredential creates a MissingCredential error.
func NewMissingCredential(message string) *Error {
	return &Error{Kind: KindMissingCredential, Message: message}
}

// NewUpstreamFailure wraps an error returned by the GitHub API, preserving
// the upstream message for diagnosis.
func NewUpstreamFailure(message string, err error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: message, Err: err}
}

// NewProtocolError creates a ProtocolError.
func NewProtocolError(message string) *Error {
	return &Error{Kind: KindProtocolError, Message: message}
}

// KindOf reports the Kind of err. Errors that do not carry one are treated
// as upstream failures, since everything a handler cannot classify locally
// came from the API call.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstreamFailure
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// JSONRPCCode maps an error to the JSON-RPC 2.0 code the HTTP dispatcher
// reports for it.
func JSONRPCCode(err error) int {
	switch KindOf(err) {
	case KindInvalidInput, KindProtocolError:
		return CodeInvalidRequest
	default:
		return CodeInternalError
	}
}

// UpstreamStatus extracts the HTTP status code from a go-github error
// response, or 0 when the error carries none (e.g. a network failure).
func UpstreamStatus(err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	return 0
}
