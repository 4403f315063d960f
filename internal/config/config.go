package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env        string
	ServerAddr string

	DBDriver             string
	DBDSN                string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	FrontendOrigin string

	RateLimitPublic    int
	RateLimitAuth      int
	RateLimitWindowSec int

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTLSeconds int

	JWTSecret         string
	AccessTTLMinutes  int
	RefreshTTLMinutes int
	CookieSecure      bool

	AdminEmail    string
	AdminPassword string

	BrevoAPIKey      string
	BrevoSandbox     bool
	SenderEmail      string
	SenderName       string
	NotifyAdminEmail string

	PaymentSecretKey string

	Timezone *time.Location
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	loadDotEnv(".env")
	loc, err := time.LoadLocation(getEnv("TZ", "Europe/Brussels"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:        getEnv("APP_ENV", "development"),
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		DBDriver:             getEnv("DB_DRIVER", "sqlite"),
		DBDSN:                getEnv("DB_DSN", "koubyte.db"),
		DBMaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),

		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),

		RateLimitPublic:    getEnvInt("RATE_LIMIT_PUBLIC", 30),
		RateLimitAuth:      getEnvInt("RATE_LIMIT_AUTH", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),

		RedisURL:        getEnv("REDIS_URL", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),

		JWTSecret:         getEnv("JWT_SECRET", ""),
		AccessTTLMinutes:  getEnvInt("ACCESS_TTL_MINUTES", 15),
		RefreshTTLMinutes: getEnvInt("REFRESH_TTL_MINUTES", 43200),
		CookieSecure:      getEnv("COOKIE_SECURE", "false") == "true",

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSandbox:     getEnv("BREVO_SANDBOX", "false") == "true",
		SenderEmail:      getEnv("SENDER_EMAIL", "noreply@koubyte.be"),
		SenderName:       getEnv("SENDER_NAME", "Koubyte"),
		NotifyAdminEmail: getEnv("NOTIFY_ADMIN_EMAIL", ""),

		PaymentSecretKey: getEnv("PAYMENT_SECRET_KEY", ""),

		Timezone: loc,
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func loadDotEnv(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, val)
	}
}
