package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/platewise/platewise/internal/backup"
	"github.com/platewise/platewise/internal/database"
	"github.com/platewise/platewise/internal/email"
	"github.com/platewise/platewise/internal/logging"
	"github.com/platewise/platewise/internal/push"
	"github.com/platewise/platewise/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "generate-vapid-keys" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate VAPID keys: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PLATEWISE_VAPID_PUBLIC_KEY=%s\n", pub)
		fmt.Printf("PLATEWISE_VAPID_PRIVATE_KEY=%s\n", priv)
		return
	}

	logger := logging.Setup(os.Getenv("PLATEWISE_LOG_LEVEL"), os.Getenv("PLATEWISE_LOG_FORMAT"))

	port := os.Getenv("PLATEWISE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("PLATEWISE_DB_PATH")
	if dbPath == "" {
		dbPath = "platewise.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(os.Getenv("PLATEWISE_POSTMARK_TOKEN"), os.Getenv("PLATEWISE_EMAIL_FROM"))

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("PLATEWISE_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("PLATEWISE_VAPID_PRIVATE_KEY"),
	}

	backupInterval := 24 * time.Hour
	if v := os.Getenv("PLATEWISE_BACKUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Error("parse PLATEWISE_BACKUP_INTERVAL", "error", err)
			os.Exit(1)
		}
		backupInterval = d
	}
	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("PLATEWISE_S3_ENDPOINT"),
			Bucket:    os.Getenv("PLATEWISE_S3_BUCKET"),
			Region:    os.Getenv("PLATEWISE_S3_REGION"),
			AccessKey: os.Getenv("PLATEWISE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PLATEWISE_S3_SECRET_KEY"),
		},
		Passphrase: os.Getenv("PLATEWISE_BACKUP_PASSPHRASE"),
		Interval:   backupInterval,
	}

	srv := server.New(db, emailClient, backupCfg, pushCfg, logger)

	if err := srv.AccountStore().EnsureSeedAccounts(); err != nil {
		logger.Error("seed accounts", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv.BackupManager().Start(ctx)
	defer srv.BackupManager().Stop()

	// Housekeeping: drop expired sessions and stale rate-limit windows.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Platewise running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
