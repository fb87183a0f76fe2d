package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapToHTTPStatus(t *testing.T) {
	req := require.New(t)

	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrMissingCredential))
	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrMalformedCredential))
	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrInvalidSignature))
	req.Equal(http.StatusUnauthorized, MapToHTTPStatus(ErrStaleConnection))
	req.Equal(http.StatusNotFound, MapToHTTPStatus(ErrUnknownSender))
	req.Equal(http.StatusServiceUnavailable, MapToHTTPStatus(ErrShuttingDown))
	req.Equal(http.StatusInternalServerError, MapToHTTPStatus(fmt.Errorf("boom")))

	// Wrapped sentinels still map through
	req.Equal(http.StatusNotFound, MapToHTTPStatus(fmt.Errorf("%w: handle 9", ErrUnknownSender)))
}
