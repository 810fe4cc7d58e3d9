package api

import (
	"net/http"
	"strings"

	"github.com/minebridge/minebridge/internal/auth"
)

func AuthMiddleware(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if strings.HasPrefix(token, "Bearer ") {
				token = token[7:]
			} else {
				writeError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if err := authSvc.ValidateToken(token); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
