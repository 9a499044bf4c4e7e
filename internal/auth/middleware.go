package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

type contextKey string

const ViewIDKey contextKey = "viewID"

// RequireViewToken admits requests carrying a bearer token for the view
// named by the "id" route variable.
func (s *Service) RequireViewToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
			return
		}

		viewID, err := s.ValidateToken(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			return
		}

		if id := mux.Vars(r)["id"]; id != "" && id != viewID {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "token is for another view"})
			return
		}

		ctx := context.WithValue(r.Context(), ViewIDKey, viewID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ViewIDFromContext(ctx context.Context) string {
	viewID, _ := ctx.Value(ViewIDKey).(string)
	return viewID
}
