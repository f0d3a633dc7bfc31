/*
Package main is the entry point for the Campus Chat server.

It loads configuration, initializes logging and the database pool, wires the
messaging core (hub, service, retention scheduler, settings announcer) together
with the HTTP surface, and handles graceful shutdown on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"campuschat/internal/app/chat"
	"campuschat/internal/app/db"
	"campuschat/internal/app/identity"
	"campuschat/internal/app/store"
	"campuschat/internal/configs"
	"campuschat/internal/handler"
	"campuschat/internal/pkg/logx"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("settings_broadcast_interval", cfg.SettingsBroadcastInterval).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to initialize database")
	}
	defer pool.Close()

	messages := store.NewMessages(pool)
	blocks := store.NewBlocks(pool)
	settings := store.NewSettings(pool)
	users := store.NewUsers(pool)

	hub := chat.NewHub()
	retention := chat.NewRetentionScheduler(messages)
	service := chat.NewService(hub, messages, blocks, settings, users, retention)
	gate := identity.NewGate(cfg.JWTSecret, users)

	// Re-arm deletion timers for messages that outlived the previous process.
	currentSettings, err := settings.Get(ctx)
	if err != nil {
		logx.Fatal(err, "Failed to load moderation settings")
	}
	if err := retention.ResumePending(ctx, currentSettings.GroupChatDeletionHours, currentSettings.PrivateChatDeletionHours); err != nil {
		logx.Error(err, "Failed to recompute retention timers; stored messages keep their rows until next restart")
	}

	announcer := chat.NewAnnouncer(hub, settings, cfg.SettingsBroadcastInterval)
	go announcer.Run(ctx)

	router := handler.Router(&handler.AppDeps{
		Config:   cfg,
		Hub:      hub,
		Service:  service,
		Gate:     gate,
		Messages: messages,
		Blocks:   blocks,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Campus Chat Server starting on http://localhost%s", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	retention.Stop()

	logx.Info("Server gracefully stopped.")
}
