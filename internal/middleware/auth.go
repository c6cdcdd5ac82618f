package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/store"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "platewise_session"

// RequireAuth resolves the session cookie to an account and populates the
// request's AuthContext. Unauthenticated requests get a 401; this is a
// JSON API, so there is no login redirect.
func RequireAuth(sessions *store.SessionStore, accounts *store.AccountStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			account, err := accounts.GetByID(sess.AccountID)
			if err != nil || account == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				AccountID: account.ID,
				Role:      account.Role,
				SessionID: sess.ID,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole checks that the authenticated account holds one of the given
// roles. Admins pass every role gate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := auth.FromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if auth.IsAdmin(r.Context()) {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if ac.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"error": "forbidden"})
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
