package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"concierge-backend/internal/token"
)

type contextKey string

const userIDKey contextKey = "userID"

// JWTAuth requires an "Authorization: Bearer <token>" header, verifies the
// token and stores the verified user id in the request context. Absent or
// malformed headers and failed verification both answer 401.
func JWTAuth(issuer *token.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "token not provided")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			userID, err := issuer.Verify(tokenString)
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the verified user id set by JWTAuth, or "" outside of a
// protected route.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"result": false,
		"error":  msg,
	})
}
