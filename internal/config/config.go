package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	Storage      StorageConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication and account bootstrap parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	ResetCodeTTLMinutes   int
	BcryptCost            int

	// MasterAdminEmail is the reserved bootstrap administrator address.
	// The account holding it can never be deleted.
	MasterAdminEmail    string
	MasterAdminName     string
	MasterAdminPassword string
}

// NotificationConfig controls fanout and OTP delivery behavior.
type NotificationConfig struct {
	EmailFrom string
	// QueueSize bounds the in-process fanout queue.
	QueueSize int
	// ResetRequestsPerWindow caps OTP requests per email per window.
	ResetRequestsPerWindow int
	ResetWindowMinutes     int
}

// StorageConfig holds attachment storage values.
type StorageConfig struct {
	UploadDir     string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "complaint-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ResetCodeTTLMinutes:   getEnvAsInt("AUTH_RESET_CODE_TTL_MINUTES", 15),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MasterAdminEmail:      getEnv("MASTER_ADMIN_EMAIL", "admin@astu.edu.et"),
			MasterAdminName:       getEnv("MASTER_ADMIN_NAME", "System Administrator"),
			MasterAdminPassword:   getEnv("MASTER_ADMIN_PASSWORD", "changeme123"),
		},
		Notification: NotificationConfig{
			EmailFrom:              getEnv("NOTIFY_EMAIL_FROM", ""),
			QueueSize:              getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			ResetRequestsPerWindow: getEnvAsInt("RESET_REQUESTS_PER_WINDOW", 5),
			ResetWindowMinutes:     getEnvAsInt("RESET_WINDOW_MINUTES", 15),
		},
		Storage: StorageConfig{
			UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
			PublicBaseURL: getEnv("UPLOAD_PUBLIC_BASE_URL", "/uploads"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ResetCodeTTL returns the lifetime of an issued one-time reset code.
func (a AuthConfig) ResetCodeTTL() time.Duration {
	if a.ResetCodeTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(a.ResetCodeTTLMinutes) * time.Minute
}

// ResetWindow returns the rate limiting window for reset requests.
func (n NotificationConfig) ResetWindow() time.Duration {
	if n.ResetWindowMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(n.ResetWindowMinutes) * time.Minute
}

// OTPDevFallback reports whether reset codes should be surfaced to the
// requester directly. Enabled only while no delivery channel is configured.
func (n NotificationConfig) OTPDevFallback() bool {
	return n.EmailFrom == ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
