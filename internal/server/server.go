package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/platewise/platewise/internal/backup"
	"github.com/platewise/platewise/internal/email"
	"github.com/platewise/platewise/internal/handler"
	"github.com/platewise/platewise/internal/middleware"
	"github.com/platewise/platewise/internal/model"
	"github.com/platewise/platewise/internal/push"
	"github.com/platewise/platewise/internal/store"
	ws "github.com/platewise/platewise/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	donationH     *handler.DonationHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	accountStore  *store.AccountStore
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	accountStore := store.NewAccountStore(db)
	sessionStore := store.NewSessionStore(db)
	donationStore := store.NewDonationStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	var pushSvc *push.Service
	var notifier *push.Notifier
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		notifier = push.NewNotifier(pushSvc, pushStore, accountStore, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	backupMgr := backup.NewManager(backupCfg, db, backupStore, logger, func(st backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(st.State),
			Extra: map[string]any{
				"in_progress": st.InProgress,
				"error":       st.Error,
			},
		})
	})

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(accountStore, sessionStore, hub, logger.With("component", "auth")),
		donationH:     handler.NewDonationHandler(donationStore, accountStore, hub, notifier, emailClient, logger.With("component", "donation")),
		pushH:         pushH,
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		accountStore:  accountStore,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// AccountStore returns the account store for startup seeding.
func (s *Server) AccountStore() *store.AccountStore {
	return s.accountStore
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /auth/login/role", s.rateLimitedHandler(s.authH.LoginRole))
	outerMux.HandleFunc("POST /auth/login/admin", s.rateLimitedHandler(s.authH.LoginAdmin))
	outerMux.HandleFunc("POST /auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.accountStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	requireDonor := middleware.RequireRole(model.RoleDonor)
	requireRecipient := middleware.RequireRole(model.RoleUser)
	requireAdmin := middleware.RequireRole(model.RoleAdmin)

	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /auth/me", s.authH.Me)

	// Donation API routes
	mux.HandleFunc("GET /api/donations", s.donationH.List)
	mux.HandleFunc("GET /api/donations/available", s.donationH.Available)
	mux.HandleFunc("GET /api/donations/suggest-type", s.donationH.SuggestType)
	mux.Handle("GET /api/donations/mine", requireDonor(http.HandlerFunc(s.donationH.Mine)))
	mux.Handle("POST /api/donations", requireDonor(http.HandlerFunc(s.donationH.Create)))
	mux.Handle("POST /api/donations/{id}/claim", requireRecipient(http.HandlerFunc(s.donationH.Claim)))
	mux.Handle("GET /api/stats", requireAdmin(http.HandlerFunc(s.donationH.Stats)))

	// Backup API routes (admin only)
	mux.Handle("POST /api/backups/run", requireAdmin(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("GET /api/backups", requireAdmin(http.HandlerFunc(s.backupH.List)))
	mux.Handle("GET /api/backups/status", requireAdmin(http.HandlerFunc(s.backupH.Status)))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
