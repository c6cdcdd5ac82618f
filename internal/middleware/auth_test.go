package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/database"
	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/store"
)

func setupAuthTest(t *testing.T) (*store.SessionStore, *store.AccountStore, *model.Account) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	accounts := store.NewAccountStore(db)
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	account, err := accounts.Create("alice@example.com", "Alice", model.RoleDonor, "", "", "", string(hash), "")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return store.NewSessionStore(db), accounts, account
}

func okHandler(t *testing.T, gotCtx *auth.AuthContext) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Error("expected AuthContext in request")
		}
		*gotCtx = ac
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthValidSession(t *testing.T) {
	sessions, accounts, account := setupAuthTest(t)

	sess, err := sessions.Create(account.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotCtx auth.AuthContext
	handler := RequireAuth(sessions, accounts)(okHandler(t, &gotCtx))

	req := httptest.NewRequest("GET", "/api/donations", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotCtx.AccountID != account.ID {
		t.Errorf("account id = %d, want %d", gotCtx.AccountID, account.ID)
	}
	if gotCtx.Role != model.RoleDonor {
		t.Errorf("role = %q, want donor", gotCtx.Role)
	}
}

func TestRequireAuthMissingCookie(t *testing.T) {
	sessions, accounts, _ := setupAuthTest(t)

	handler := RequireAuth(sessions, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	req := httptest.NewRequest("GET", "/api/donations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	sessions, accounts, _ := setupAuthTest(t)

	handler := RequireAuth(sessions, accounts)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run with a bogus token")
	}))

	req := httptest.NewRequest("GET", "/api/donations", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	called := false
	handler := RequireRole(model.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// Donor hitting an admin route.
	req := httptest.NewRequest("GET", "/api/stats", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{AccountID: 1, Role: model.RoleDonor}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if called {
		t.Error("handler must not run for the wrong role")
	}

	// Admin passes.
	req = httptest.NewRequest("GET", "/api/stats", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{AccountID: 1, Role: model.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !called {
		t.Error("handler should run for admin")
	}
}

func TestRequireRoleAdminPassesAllGates(t *testing.T) {
	called := false
	handler := RequireRole(model.RoleDonor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("POST", "/api/donations", nil)
	req = req.WithContext(auth.WithAuth(req.Context(), auth.AuthContext{AccountID: 1, Role: model.RoleAdmin}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !called {
		t.Error("admin should pass a donor-only gate")
	}
}
