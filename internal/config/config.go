package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Search  SearchConfig
	Auth    AuthConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
}

type SessionConfig struct {
	// Secret signs the self-issued session tokens. It is local config, not
	// a real trust boundary.
	Secret           string
	Duration         time.Duration
	WarningThreshold time.Duration
	MonitorInterval  time.Duration
}

type SearchConfig struct {
	DebounceDelay time.Duration
	ActivityTopic string
}

type AuthConfig struct {
	// Seeded demo account; there is no registration flow.
	DemoEmail    string
	DemoPassword string
	DemoName     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
		},
		Session: SessionConfig{
			Secret:           getEnv("SESSION_SECRET", "local-dev-secret"),
			Duration:         getEnvAsDuration("SESSION_DURATION", 30*time.Minute),
			WarningThreshold: getEnvAsDuration("SESSION_WARNING_THRESHOLD", 5*time.Minute),
			MonitorInterval:  getEnvAsDuration("SESSION_MONITOR_INTERVAL", 60*time.Second),
		},
		Search: SearchConfig{
			DebounceDelay: getEnvAsDuration("SEARCH_DEBOUNCE_DELAY", 300*time.Millisecond),
			ActivityTopic: getEnv("ACTIVITY_TOPIC_NAME", "USER_ACTIVITY"),
		},
		Auth: AuthConfig{
			DemoEmail:    getEnv("DEMO_USER_EMAIL", "demo@taskman.local"),
			DemoPassword: getEnv("DEMO_USER_PASSWORD", "demo1234"),
			DemoName:     getEnv("DEMO_USER_NAME", "Demo User"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
