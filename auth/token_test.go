package auth

import (
	"testing"
	"time"

	"roomhub/domain"
	"roomhub/errors"
	"roomhub/runtime"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func testConnection() domain.Connection {
	return domain.Connection{
		Handle:    domain.Handle(7),
		Room:      "lobby",
		Name:      "Alice",
		CreatedAt: time.Now(),
	}
}

func TestTokenService_Issue_And_Verify_Roundtrip(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)
	conn := testConnection()

	token, err := service.Issue(conn)
	req.NoError(err)
	req.NotEmpty(token)

	claims, err := service.Verify(token)
	req.NoError(err)
	req.Equal(uint64(conn.Handle), claims.Handle)
	req.Equal("Alice", claims.Name)
	req.Equal("lobby", claims.Room)
	// The timestamp survives with nanosecond precision
	req.True(conn.CreatedAt.Equal(claims.ConnCreatedAt()))
}

func TestTokenService_Verify_Garbage_Is_Malformed(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := service.Verify(token)
		req.ErrorIs(err, errors.ErrMalformedCredential)
	}
}

func TestTokenService_Verify_Foreign_Signature_Is_Invalid(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)
	other, err := NewTokenService()
	req.NoError(err)

	// A token minted by another process must not verify here
	token, err := other.Issue(testConnection())
	req.NoError(err)

	_, err = service.Verify(token)
	req.ErrorIs(err, errors.ErrInvalidSignature)
}

func TestTokenService_Verify_Rejects_Unsigned_Scheme(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Handle: 7})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	req.NoError(err)

	_, err = service.Verify(token)
	req.Error(err)
	req.NotErrorIs(err, errors.ErrStaleConnection)
}

func TestToken_Dies_With_Its_Connection(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)
	registry := runtime.NewRegistry()

	conn := registry.Register("lobby", "Alice", nil)
	token, err := service.Issue(conn)
	req.NoError(err)

	// While the connection is live, verify+lookup resolves it
	claims, err := service.Verify(token)
	req.NoError(err)
	got, ok := registry.Lookup(domain.Handle(claims.Handle), claims.ConnCreatedAt())
	req.True(ok)
	req.Equal(conn, got)

	// After removal, the token still parses and its signature still checks
	// out, but liveness fails: the credential is dead
	registry.Remove(conn.Handle)
	claims, err = service.Verify(token)
	req.NoError(err)
	_, ok = registry.Lookup(domain.Handle(claims.Handle), claims.ConnCreatedAt())
	req.False(ok)
}

func TestToken_Does_Not_Authorize_A_Recycled_Handle(t *testing.T) {
	req := require.New(t)
	service, err := NewTokenService()
	req.NoError(err)
	registry := runtime.NewRegistry()

	conn := registry.Register("lobby", "Alice", nil)
	token, err := service.Issue(conn)
	req.NoError(err)
	registry.Remove(conn.Handle)

	// Even if a new connection existed under the same handle, the createdAt
	// pairing keeps the old credential dead
	claims, err := service.Verify(token)
	req.NoError(err)
	_, ok := registry.Lookup(domain.Handle(claims.Handle), claims.ConnCreatedAt().Add(time.Second))
	req.False(ok)
}
