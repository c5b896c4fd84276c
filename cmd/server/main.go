package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"studyhub/internal/auth"
	"studyhub/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := loadConfig(logger)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func loadConfig(logger *slog.Logger) (server.Config, error) {
	port := 8080
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return server.Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		port = p
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/studyhub.db"
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return server.Config{}, fmt.Errorf("creating data directory: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return server.Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	accessTTL, err := durationEnv("ACCESS_TOKEN_TTL", 10*time.Minute)
	if err != nil {
		return server.Config{}, err
	}
	refreshTTL, err := durationEnv("REFRESH_TOKEN_TTL", 168*time.Hour)
	if err != nil {
		return server.Config{}, err
	}

	var forbidden []string
	if v := os.Getenv("FORBIDDEN_WORDS"); v != "" {
		forbidden = strings.Split(v, ",")
	}

	cfg := server.Config{
		Port:            port,
		DBPath:          dbPath,
		JWTSecret:       secret,
		AccessTokenTTL:  accessTTL,
		RefreshTokenTTL: refreshTTL,
		ForbiddenWords:  forbidden,
		Google:          providerEnv("GOOGLE", auth.ProviderGoogle, port),
		Kakao:           providerEnv("KAKAO", auth.ProviderKakao, port),
		Naver:           providerEnv("NAVER", auth.ProviderNaver, port),
	}

	if cfg.Google.ClientID == "" && cfg.Kakao.ClientID == "" && cfg.Naver.ClientID == "" {
		logger.Warn("no OAuth providers configured, social login is disabled")
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

// providerEnv reads <PREFIX>_CLIENT_ID, <PREFIX>_CLIENT_SECRET, and
// <PREFIX>_CALLBACK_URL. The callback defaults to the local server's own
// callback route, which is what provider consoles are pointed at during
// development.
func providerEnv(prefix, name string, port int) auth.ProviderConfig {
	callback := os.Getenv(prefix + "_CALLBACK_URL")
	if callback == "" {
		callback = fmt.Sprintf("http://localhost:%d/auth/%s/callback", port, name)
	}
	return auth.ProviderConfig{
		ClientID:     os.Getenv(prefix + "_CLIENT_ID"),
		ClientSecret: os.Getenv(prefix + "_CLIENT_SECRET"),
		CallbackURL:  callback,
	}
}
