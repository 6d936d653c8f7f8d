package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"

	AuthLocal    = "local"
	AuthFirebase = "firebase"
)

type Config struct {
	Port        string
	CORSOrigins []string

	StoreBackend string
	DB           DBConfig

	FirebaseProjectID string
	CredentialsFile   string

	AuthProvider string
	JWTSecret    string
	JWTExpiry    time.Duration

	LogFile   string
	LogLevel  string
	LogFormat string

	PushEnabled bool
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	TimeZone string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on env vars")
	}

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "")),
		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendPostgres)),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "swachh_netra"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			TimeZone: getEnv("DB_TIMEZONE", "UTC"),
		},
		FirebaseProjectID: getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile:   getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		AuthProvider:      strings.ToLower(getEnv("AUTH_PROVIDER", AuthLocal)),
		JWTSecret:         getEnv("JWT_SECRET", "supersecret"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 72)) * time.Hour,
		LogFile:           getEnv("LOG_FILE", "./logs/app.log"),
		LogLevel:          getEnv("LOG_LEVEL", "debug"),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
		PushEnabled:       getEnvBool("PUSH_ENABLED", false),
	}

	if cfg.AuthProvider == AuthLocal && cfg.JWTSecret == "supersecret" {
		logrus.Warn("JWT_SECRET not set, using the development fallback")
	}
	return cfg
}

// NeedsFirebase reports whether any configured component talks to Firebase.
func (c Config) NeedsFirebase() bool {
	return c.StoreBackend == BackendFirestore || c.AuthProvider == AuthFirebase
}

// getEnv reads an environment variable or returns the provided default when
// it is unset or empty
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
