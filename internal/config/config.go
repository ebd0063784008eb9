package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the portal API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	OpenAIAPIKey           string
	OpenAIModel            string
	GradingTimeout         time.Duration
	MarkerMaxConcurrent    int
	DashboardCacheTTL      time.Duration
	MaxUploadMB            int
	StreamKeepAlive        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "BrightClass Portal API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "brightclass/submissions")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("grading.timeout", "2m")
	v.SetDefault("grading.max_concurrent", 4)
	v.SetDefault("dashboard.cache_ttl", "1m")
	v.SetDefault("upload.max_mb", 10)
	v.SetDefault("stream.keep_alive", "30s")

	gradingTimeout, err := parseDuration(v.GetString("grading.timeout"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid grading timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("dashboard.cache_ttl"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	keepAlive, err := parseDuration(v.GetString("stream.keep_alive"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stream keep alive: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		OpenAIAPIKey:           v.GetString("openai_api_key"),
		OpenAIModel:            v.GetString("openai.model"),
		GradingTimeout:         gradingTimeout,
		MarkerMaxConcurrent:    v.GetInt("grading.max_concurrent"),
		DashboardCacheTTL:      cacheTTL,
		MaxUploadMB:            v.GetInt("upload.max_mb"),
		StreamKeepAlive:        keepAlive,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MarkerMaxConcurrent <= 0 {
		cfg.MarkerMaxConcurrent = 4
	}

	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
