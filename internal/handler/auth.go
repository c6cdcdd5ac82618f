package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/middleware"
	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/store"
	"github.com/platewise/platewise/internal/websocket"
)

const minPasswordLength = 6

type AuthHandler struct {
	accountStore *store.AccountStore
	sessionStore *store.SessionStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewAuthHandler(as *store.AccountStore, ss *store.SessionStore, hub *websocket.Hub, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accountStore: as, sessionStore: ss, hub: hub, logger: logger}
}

func (h *AuthHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type loginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          string `json:"role"`
	AdminPassword string `json:"admin_password"`
}

// verifyCredentials resolves email+password to an account. On failure it
// writes the error response and returns nil.
func (h *AuthHandler) verifyCredentials(w http.ResponseWriter, email, password string) *model.Account {
	if email == "" || password == "" {
		writeError(w, http.StatusBadRequest, "please fill in all required fields")
		return nil
	}

	account, err := h.accountStore.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "email not found")
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return nil
	}
	return account
}

func (h *AuthHandler) grantSession(w http.ResponseWriter, r *http.Request, account *model.Account) {
	sess, err := h.sessionStore.Create(account.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusOK, account)
}

// Login is step 1 of the login protocol: it acknowledges the primary
// credential without binding a role or granting a session. The client
// then asks the user to pick a role.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	account := h.verifyCredentials(w, strings.TrimSpace(req.Email), req.Password)
	if account == nil {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginRole is step 2: the user has chosen a role. Donor and recipient
// roles bind a session immediately, but only if an account exists with
// that email and that exact role. Choosing admin defers to step 3; no
// session is granted here for admins.
func (h *AuthHandler) LoginRole(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	email := strings.TrimSpace(req.Email)
	if h.verifyCredentials(w, email, req.Password) == nil {
		return
	}

	if model.Role(req.Role) == model.RoleAdmin {
		writeJSON(w, http.StatusOK, map[string]string{"status": "admin_password_required"})
		return
	}

	account, err := h.accountStore.GetByEmailAndRole(email, model.Role(req.Role))
	if err != nil {
		h.logger.Error("role lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if account == nil {
		writeError(w, http.StatusForbidden, "no account with this role")
		return
	}

	h.grantSession(w, r, account)
}

// LoginAdmin is step 3: the admin secondary password. Both credentials
// are re-verified; only then is the session granted.
func (h *AuthHandler) LoginAdmin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	email := strings.TrimSpace(req.Email)
	if h.verifyCredentials(w, email, req.Password) == nil {
		return
	}

	if req.AdminPassword == "" {
		writeError(w, http.StatusBadRequest, "please fill in all required fields")
		return
	}

	account, err := h.accountStore.GetByEmailAndRole(email, model.RoleAdmin)
	if err != nil {
		h.logger.Error("admin lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "no admin account found")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.AdminPasswordHash), []byte(req.AdminPassword)); err != nil {
		writeError(w, http.StatusUnauthorized, "wrong admin password")
		return
	}

	h.grantSession(w, r, account)
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	ConfirmPassword      string `json:"confirm_password"`
	Name                 string `json:"name"`
	Role                 string `json:"role"`
	Phone                string `json:"phone"`
	Address              string `json:"address"`
	Organization         string `json:"organization"`
	AdminPassword        string `json:"admin_password"`
	ConfirmAdminPassword string `json:"confirm_admin_password"`
}

// Register creates an account. Donors must supply a phone number;
// admins must supply an organization and a secondary password that meets
// the same rules as the primary one. Success grants a session right away.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	req.Organization = strings.TrimSpace(req.Organization)

	if req.Email == "" || req.Password == "" || req.ConfirmPassword == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "please fill in all required fields")
		return
	}
	if !model.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	if req.Password != req.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "passwords do not match")
		return
	}
	if len(req.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	exists, err := h.accountStore.EmailExists(req.Email)
	if err != nil {
		h.logger.Error("register email check", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if exists {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}

	role := model.Role(req.Role)
	switch role {
	case model.RoleDonor:
		if req.Phone == "" {
			writeError(w, http.StatusBadRequest, "phone number is required for donors")
			return
		}
	case model.RoleAdmin:
		if req.Organization == "" {
			writeError(w, http.StatusBadRequest, "organization is required for administrators")
			return
		}
		if req.AdminPassword == "" || req.ConfirmAdminPassword == "" {
			writeError(w, http.StatusBadRequest, "please fill in all required fields")
			return
		}
		if req.AdminPassword != req.ConfirmAdminPassword {
			writeError(w, http.StatusBadRequest, "admin passwords do not match")
			return
		}
		if len(req.AdminPassword) < minPasswordLength {
			writeError(w, http.StatusBadRequest, "admin password must be at least 6 characters")
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	var adminHash []byte
	if role == model.RoleAdmin {
		adminHash, err = bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			h.logger.Error("hash admin password", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	account, err := h.accountStore.Create(req.Email, req.Name, role, req.Phone, req.Address, req.Organization, string(hash), string(adminHash))
	if err != nil {
		h.logger.Error("create account", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	h.broadcast(websocket.NewMessage("account", "registered", account.ID, nil))

	sess, err := h.sessionStore.Create(account.ID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	writeJSON(w, http.StatusCreated, account)
}

// Me returns the authenticated account without its credential hashes.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ac, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	account, err := h.accountStore.GetByID(ac.AccountID)
	if err != nil || account == nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if sess, err := h.sessionStore.GetByToken(cookie.Value); err == nil && sess != nil {
			h.sessionStore.Delete(sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	w.WriteHeader(http.StatusNoContent)
}
