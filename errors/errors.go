package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential means no bearer header was present at all.
	ErrMissingCredential = fmt.Errorf("missing credential")
	// ErrMalformedCredential means the header scheme or the token structure
	// could not be parsed.
	ErrMalformedCredential = fmt.Errorf("malformed credential")
	// ErrInvalidSignature means the token parsed but failed cryptographic
	// verification, or used a signing scheme we never issue.
	ErrInvalidSignature = fmt.Errorf("invalid token signature")
	// ErrStaleConnection means the credential is structurally valid but no
	// live connection matches it anymore. Expected after a disconnect.
	ErrStaleConnection = fmt.Errorf("no live connection matches credential")
	// ErrUnknownSender means a numeric handle is not present in the registry.
	ErrUnknownSender = fmt.Errorf("unknown sender")
	// ErrShuttingDown means the hub no longer accepts events.
	ErrShuttingDown = fmt.Errorf("hub is shutting down")
)

// MapToHTTPStatus translates the error taxonomy at the web boundary.
// All credential conditions are caller errors, never system faults.
func MapToHTTPStatus(err error) int {
	switch {
	case stderrors.Is(err, ErrMissingCredential),
		stderrors.Is(err, ErrMalformedCredential),
		stderrors.Is(err, ErrInvalidSignature),
		stderrors.Is(err, ErrStaleConnection):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrUnknownSender):
		return http.StatusNotFound
	case stderrors.Is(err, ErrShuttingDown):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
