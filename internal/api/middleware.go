package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/tentoapp/tento-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyUserID   contextKey = "user_id"
	contextKeyUsername contextKey = "username"
)

// resolveSession validates a Bearer token if one is present and attaches
// the session identity to the request context. Anonymous and invalid
// requests continue without an identity; handlers that require one
// reject them with 401.
func (s *Server) resolveSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := s.tokens.Verify(parts[1])
		if err != nil {
			s.logger.Debug("session token rejected", "error", err)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, sess.UserID)
		ctx = context.WithValue(ctx, contextKeyUsername, sess.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// cardRateLimit rejects clients that hammer the card endpoints.
func (s *Server) cardRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			response.Error(w, http.StatusTooManyRequests, "rate limit exceeded", s.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the client address without the port. RealIP middleware
// has already resolved proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getUserID extracts the authenticated user ID from request context.
// Returns empty string if not authenticated.
func getUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(contextKeyUserID).(string); ok {
		return userID
	}
	return ""
}
