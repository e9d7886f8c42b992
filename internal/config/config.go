package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Meeting  MeetingConfig
	Video    VideoConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type MeetingConfig struct {
	// MeetBaseURL is the public prefix recorded on the session row when a
	// link is created, e.g. https://app.example.com/meet/
	MeetBaseURL         string
	RoomPrefix          string
	DefaultAllowedCount int
	SummaryCacheTTL     time.Duration
}

type VideoConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Meeting: MeetingConfig{
			MeetBaseURL:         getEnv("MEET_BASE_URL", "http://localhost:5173/meet/"),
			RoomPrefix:          getEnv("MEET_ROOM_PREFIX", "support"),
			DefaultAllowedCount: getEnvAsInt("MEET_DEFAULT_ALLOWED_COUNT", 1),
			SummaryCacheTTL:     getEnvAsDuration("MEET_SUMMARY_CACHE_TTL", 30*time.Second),
		},
		Video: VideoConfig{
			SigningKey: getEnv("VIDEO_SIGNING_KEY", ""),
			Issuer:     getEnv("VIDEO_TOKEN_ISSUER", "support-desk"),
			TokenTTL:   getEnvAsDuration("VIDEO_TOKEN_TTL", 4*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
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
