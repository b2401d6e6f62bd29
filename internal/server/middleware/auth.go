package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Veraticus/nestegg/internal/auth"
)

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	Verify(token string) (*auth.Session, error)
}

// RequireSession rejects requests without a valid bearer token and stores
// the session in the request context.
func RequireSession(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			token, ok := bearerToken(req)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}

			session, err := verifier.Verify(token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, req.WithContext(auth.WithSession(req.Context(), session)))
		})
	}
}

func bearerToken(req *http.Request) (string, bool) {
	header := req.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="nestegg"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
