package web

import (
	"context"
	"net/http"
	"strings"

	"roomhub/domain"
	"roomhub/errors"
)

type contextKey string

const connKey contextKey = "connection"

// requireConnection authenticates a stateless HTTP caller as a specific,
// still-live socket connection.
//
// The three stages fail with distinct conditions: header parsing (missing
// header, wrong scheme), token verification (structure, signature), and
// liveness (registry lookup on the exact handle/createdAt pair, plus a room
// match against the token). Nothing below this middleware runs on failure,
// so a rejected caller can neither mutate the registry nor enqueue anything.
func (s *Server) requireConnection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.resolveCaller(r)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withConn(r.Context(), conn)))
	})
}

func (s *Server) resolveCaller(r *http.Request) (domain.Connection, error) {
	raw, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return domain.Connection{}, err
	}

	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return domain.Connection{}, err
	}

	conn, ok := s.registry.Lookup(domain.Handle(claims.Handle), claims.ConnCreatedAt())
	if !ok {
		return domain.Connection{}, errors.ErrStaleConnection
	}
	// A token only authorizes the room it was minted for.
	if conn.Room != domain.RoomID(claims.Room) {
		return domain.Connection{}, errors.ErrStaleConnection
	}
	return conn, nil
}

// bearerToken extracts the raw token from a standard "Bearer <token>" header.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.ErrMissingCredential
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.ErrMalformedCredential
	}
	return parts[1], nil
}

func withConn(ctx context.Context, conn domain.Connection) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// connFromContext retrieves the connection resolved by requireConnection.
func connFromContext(ctx context.Context) (domain.Connection, bool) {
	conn, ok := ctx.Value(connKey).(domain.Connection)
	return conn, ok
}
