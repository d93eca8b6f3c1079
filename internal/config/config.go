package config

import (
	"fmt"
	"os"
	"time"
)

// defaultAppleJWKSURL はApple公開鍵エンドポイントのデフォルトURL。
const defaultAppleJWKSURL = "https://appleid.apple.com/auth/keys"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity providers
	GoogleClientID string // Googleトークンのaudience検証に使用するクライアントID
	AppleClientID  string // Appleトークンのaudience検証に使用するクライアントID
	AppleJWKSURL   string // テスト用にオーバーライド可能

	// Session token
	JWTSecret string        // セッショントークンの署名シークレット。デフォルト値は存在しない。
	TokenTTL  time.Duration // 発行するセッショントークンの有効期間

	// Server
	ServerPort  string
	MetricsPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
// 署名シークレットの欠落は設定ミスであり、フォールバック値で起動してはならない。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	if cfg.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}

	cfg.AppleClientID = os.Getenv("APPLE_CLIENT_ID")
	if cfg.AppleClientID == "" {
		missing = append(missing, "APPLE_CLIENT_ID")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.AppleJWKSURL = getEnvString("APPLE_JWKS_URL", defaultAppleJWKSURL)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", 30*24*time.Hour)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.MetricsPort = getEnvString("METRICS_PORT", "9090")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
