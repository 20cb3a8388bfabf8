package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		log.Info().Msg("running in production, using system ENV")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using system ENV")
	} else {
		log.Info().Msg(".env file loaded")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// =======================
// TYPED CONFIG
// =======================

type AppConfig struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	LogLevel    string
	CORSOrigins []string

	Location *time.Location

	JobLogDir           string
	AutoBreakWindowDays int
	AutoBreakMinutes    int

	CronEnabled    bool
	AutoLogoutCron string
	AutoBreakCron  string
}

var ErrMissingDatabaseURL = errors.New("DB_URL is required")

// Load reads the process environment into an AppConfig.
// Call LoadEnv first when a .env file should be honoured.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:           GetEnv("PORT", "3000"),
		DatabaseURL:    GetEnv("DB_URL"),
		JWTSecret:      GetEnv("JWT_SECRET"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		JobLogDir:      GetEnv("JOB_LOG_DIR", "log"),
		AutoLogoutCron: GetEnv("AUTO_LOGOUT_CRON", "*/15 * * * *"),
		AutoBreakCron:  GetEnv("AUTO_BREAK_CRON", "30 23 * * *"),
	}

	loc, err := time.LoadLocation(GetEnv("APP_TIMEZONE", "Europe/Belgrade"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if cfg.AutoBreakWindowDays, err = intEnv("AUTO_BREAK_WINDOW_DAYS", 60); err != nil {
		return nil, err
	}
	if cfg.AutoBreakWindowDays < 1 {
		return nil, fmt.Errorf("AUTO_BREAK_WINDOW_DAYS must be positive, got %d", cfg.AutoBreakWindowDays)
	}
	if cfg.AutoBreakMinutes, err = intEnv("AUTO_BREAK_MINUTES", 30); err != nil {
		return nil, err
	}
	if cfg.CronEnabled, err = boolEnv("JOBS_CRON_ENABLED", false); err != nil {
		return nil, err
	}

	for _, o := range strings.Split(GetEnv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}
	return cfg, nil
}

// RequireDatabase is checked by every command that opens a connection.
func (c *AppConfig) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(GetEnv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not a number", key, raw)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := strings.TrimSpace(GetEnv(key))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q is not a boolean", key, raw)
	}
	return b, nil
}
