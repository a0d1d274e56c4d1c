// Package config reads the service settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	OwnerPasswordHash string

	Timezone        string
	ReminderMorning string
	ReminderEvening string

	NATSURL     string
	NATSSubject string

	LogFile  string
	LogLevel string

	WriteQueueSize     int
	WriteQueueShared   bool
	RolloverMaxRetries int
	RateLimit          int
}

// Load reads files (default ".env") when present and then the process
// environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverPgx)),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		SQLitePath:        getEnv("SQLITE_PATH", "streaks.db"),
		RedisHost:         os.Getenv("REDIS_HOST"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		OwnerPasswordHash: os.Getenv("OWNER_PASSWORD_HASH"),
		Timezone:          getEnv("TIMEZONE", "Local"),
		ReminderMorning:   getEnv("REMINDER_MORNING", "08:00"),
		ReminderEvening:   getEnv("REMINDER_EVENING", "20:00"),
		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubject:       getEnv("NATS_SUBJECT", "streaks.events"),
		LogFile:           os.Getenv("LOG_FILE"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var errs []error
	cfg.RedisDB = getInt("REDIS_DB", 0, &errs)
	cfg.WriteQueueSize = getInt("WRITE_QUEUE_SIZE", 100, &errs)
	cfg.RolloverMaxRetries = getInt("ROLLOVER_MAX_RETRIES", 3, &errs)
	cfg.RateLimit = getInt("RATE_LIMIT", 100, &errs)
	cfg.WriteQueueShared = getBool("WRITE_QUEUE_SHARED", false, &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverPgx, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err))
	}
	if _, _, err := ParseClock(c.ReminderMorning); err != nil {
		errs = append(errs, fmt.Errorf("invalid REMINDER_MORNING: %w", err))
	}
	if _, _, err := ParseClock(c.ReminderEvening); err != nil {
		errs = append(errs, fmt.Errorf("invalid REMINDER_EVENING: %w", err))
	}
	if c.WriteQueueSize < 1 {
		errs = append(errs, errors.New("WRITE_QUEUE_SIZE must be positive"))
	}
	if c.RolloverMaxRetries < 0 {
		errs = append(errs, errors.New("ROLLOVER_MAX_RETRIES cannot be negative"))
	}

	return errors.Join(errs...)
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// ParseClock parses a 24h "HH:MM" time of day.
func ParseClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, v))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be a boolean, got %q", key, v))
		return fallback
	}
	return b
}
