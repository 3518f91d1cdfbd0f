package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/devilmonastery/pixelplaylist/internal/client"
	"github.com/devilmonastery/pixelplaylist/internal/pkg/logger"
	"github.com/devilmonastery/pixelplaylist/web/internal/config"
	"github.com/devilmonastery/pixelplaylist/web/internal/handlers"
	"github.com/devilmonastery/pixelplaylist/web/internal/mail"
	"github.com/devilmonastery/pixelplaylist/web/internal/middleware"
	"github.com/devilmonastery/pixelplaylist/web/internal/session"
)

// loadSessionSecret picks the session secret: env var > config file > random
func loadSessionSecret(cfg *config.WebServerConfig, log *slog.Logger) ([]byte, error) {
	if envSecret := os.Getenv("SESSION_SECRET"); envSecret != "" {
		secret, err := base64.StdEncoding.DecodeString(envSecret)
		if err == nil {
			log.Info("using session secret (sessions will persist across restarts)", slog.String("source", "environment variable"))
			return secret, nil
		}
		log.Warn("failed to decode SESSION_SECRET env var, trying config", slog.Any("error", err))
	}

	if cfg.Session.Secret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.Session.Secret)
		if err == nil {
			log.Info("using session secret (sessions will persist across restarts)", slog.String("source", "config file"))
			return secret, nil
		}
		log.Warn("failed to decode session secret from config", slog.Any("error", err))
	}

	// Dev mode only
	log.Warn("no session secret configured, generating random one (sessions won't persist)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate session secret: %w", err)
	}
	return secret, nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging (must be done before any logging calls)
	if err = logger.Install(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")
	log.Info("starting pixelplaylist web gateway", slog.String("backend", cfg.Backend.URL))

	sessionSecret, err := loadSessionSecret(cfg, log)
	if err != nil {
		log.Error("failed to set up sessions", slog.Any("error", err))
		os.Exit(1)
	}
	sessionMgr := session.NewManager(sessionSecret, cfg.Session.MaxAge, cfg.Cookies.Secure)

	backendClient := &http.Client{
		Timeout:   time.Duration(cfg.Backend.TimeoutSeconds) * time.Second,
		Transport: client.NewMetricsTransport(nil),
	}

	var opts []handlers.Option
	if cfg.Mail.Enabled() {
		mailer := mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
		opts = append(opts, handlers.WithMailer(mailer, cfg.Mail.APIKey))
		log.Info("welcome mail enabled", slog.String("relay", fmt.Sprintf("%s:%d", cfg.Mail.Host, cfg.Mail.Port)))
	}

	// Components tag their own lines, so they share the untagged base logger
	base := slog.Default()
	h := handlers.New(cfg.Backend.URL, backendClient, sessionMgr, base, opts...)
	router := handlers.NewRouter(h, middleware.NewRouteGuard(base), base)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("listening", slog.String("address", addr))

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}
