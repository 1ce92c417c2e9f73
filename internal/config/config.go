package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultDBName = "materials_manager.db"

// Config holds application configuration.
type Config struct {
	AppName          string
	AppVersion       string
	Environment      string
	HTTPAddr         string
	AuthCookieSecure bool

	LogLevel  string
	LogFormat string

	OTLPEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OTLPSamplingRatio float64

	SharedDir       string
	DBName          string
	DBBusyTimeoutMS int
	DBMaxOpenConn   int
	DBMaxIdleConn   int

	OverdueDays       int
	ManagerDefaultPIN string
	SessionSecret     string
	SessionTTLHours   int

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CartTTLMinutes int

	DepartmentsFile string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "stockroom"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		AuthCookieSecure:  authCookieSecure,
		LogLevel:          strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
		LogFormat:         strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
		OTLPEnabled:       getenvBool("OTEL_ENABLED", false),
		OTLPEndpoint:      strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
		OTLPProtocol:      strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
		OTLPSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		SharedDir:         strings.TrimSpace(getenv("MM_SHARED_DIR", executableDir())),
		DBName:            strings.TrimSpace(getenv("MM_DB_NAME", DefaultDBName)),
		DBBusyTimeoutMS:   getenvInt("DB_BUSY_TIMEOUT_MS", 5000),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONN", 4),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONN", 2),
		OverdueDays:       getenvInt("OVERDUE_DAYS", 14),
		ManagerDefaultPIN: getenv("MANAGER_DEFAULT_PIN", "1234"),
		SessionSecret:     strings.TrimSpace(getenv("SESSION_SECRET", "")),
		SessionTTLHours:   getenvInt("SESSION_TTL_HOURS", 12),
		RedisAddr:         strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		RedisDB:           getenvInt("REDIS_DB", 0),
		CartTTLMinutes:    getenvInt("CART_TTL_MINUTES", 240),
		DepartmentsFile:   strings.TrimSpace(getenv("DEPARTMENTS_FILE", "")),
	}

	return cfg
}

// DBPath resolves the database file from the shared directory and file name.
func (c Config) DBPath() string {
	dir := c.SharedDir
	if dir == "" {
		dir = "."
	}
	name := c.DBName
	if name == "" {
		name = DefaultDBName
	}
	return filepath.Join(dir, name)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
