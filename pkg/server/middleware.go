package server

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var userKey = contextKey{}

// authenticated verifies the Bearer token and stores the resolved account
// email in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(r.Context(), w, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}

		email, err := s.identity.Verify(r.Context(), token)
		if err != nil {
			writeError(r.Context(), w, http.StatusUnauthorized, "invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, email)
		next(w, r.WithContext(ctx))
	})
}

// userFrom retrieves the authenticated account email from the context
func userFrom(ctx context.Context) string {
	if email, ok := ctx.Value(userKey).(string); ok {
		return email
	}
	return ""
}
