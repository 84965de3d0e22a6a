package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only the connection strings are required.
type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresConnStr         string
	MongoURI                string
	MongoDatabase           string

	// Envelope shaping
	NotificationBaseURL string
	NotificationIcon    string

	// Dispatch consumer
	DispatchPollInterval time.Duration
	DispatchBatchSize    int64
	DispatchWorkers      int

	// Retention sweep
	RetentionDays  int
	SweepSchedule  string
	SweepBatchSize int64
}

// Load reads configuration from the environment, picking up a local .env
// file first if one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresConnStr:         getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "gymnotify"),

		NotificationBaseURL: getEnv("NOTIFICATION_BASE_URL", "https://gym-app-firebase-79daf.web.app"),
		NotificationIcon:    getEnv("NOTIFICATION_ICON", "/favicon.ico"),

		DispatchPollInterval: getDuration("DISPATCH_POLL_INTERVAL", 2*time.Second),
		DispatchBatchSize:    int64(getInt("DISPATCH_BATCH_SIZE", 50)),
		DispatchWorkers:      getInt("DISPATCH_WORKERS", 8),

		RetentionDays:  getInt("RETENTION_DAYS", 30),
		SweepSchedule:  getEnv("SWEEP_SCHEDULE", "0 2 * * *"),
		SweepBatchSize: int64(getInt("SWEEP_BATCH_SIZE", 500)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}
