package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/server/auth"
)

type contextKey int

const userIDKey contextKey = 0

// withAuth verifies the bearer token and stores the user ID in the request
// context.
func withAuth(secretKey []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrorUnauthorized)
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil {
			writeError(w, common.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

// userIDFrom returns the authenticated user ID stored by withAuth.
func userIDFrom(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
