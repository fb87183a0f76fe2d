package auth

import (
	"crypto/rand"
	stderrors "errors"
	"time"

	"roomhub/domain"
	"roomhub/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the structure of the data stored inside the JWT.
// CreatedAt is kept as unix nanoseconds so the liveness comparison
// against the registry is exact, not truncated to seconds.
type Claims struct {
	Handle    uint64 `json:"handle"`
	Name      string `json:"name"`
	Room      string `json:"room"`
	CreatedAt int64  `json:"created_at"`
	jwt.RegisteredClaims
}

// ConnCreatedAt restores the connection timestamp carried by the claims.
func (c *Claims) ConnCreatedAt() time.Time {
	return time.Unix(0, c.CreatedAt)
}

// TokenService signs and verifies connection credentials.
//
// The signing secret is generated once at construction and lives only as
// long as the process. Tokens do not survive a restart, which is acceptable
// because the connections they vouch for do not survive one either.
type TokenService struct {
	secret []byte
}

func NewTokenService() (*TokenService, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return &TokenService{secret: secret}, nil
}

// Issue creates a signed JWT for a freshly registered connection.
// A connection gets exactly one token, minted at registration time.
func (s *TokenService) Issue(conn domain.Connection) (string, error) {
	claims := &Claims{
		Handle:    uint64(conn.Handle),
		Name:      conn.Name,
		Room:      string(conn.Room),
		CreatedAt: conn.CreatedAt.UnixNano(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(conn.CreatedAt),
			Issuer:   "roomhub",
		},
	}

	// HS256 (HMAC with SHA256), signed with the process-lifetime secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates the signature and structure of a token string.
// It does NOT check liveness: callers must follow up with
// Registry.Lookup(claims.Handle, claims.ConnCreatedAt()).
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// Reject any scheme other than the one we issue with.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.ErrInvalidSignature
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case stderrors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, errors.ErrInvalidSignature
		case stderrors.Is(err, errors.ErrInvalidSignature):
			return nil, errors.ErrInvalidSignature
		default:
			return nil, errors.ErrMalformedCredential
		}
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.ErrInvalidSignature
}
