package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"delivery-tracker/internal/adapters/out/notify"
	"delivery-tracker/internal/core/application/lifecycle"
	"delivery-tracker/internal/jobs"
	"delivery-tracker/internal/pkg/errs"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPPort string

	StorageDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	AutoMigrate   bool

	LogLevel  string
	LogFormat string

	Lifecycle       lifecycle.Config
	ReleaseSchedule string

	SMTP notify.SMTPConfig
}

// LoadConfig loads envFile into the environment, without overriding variables that
// are already set, and reads the configuration. A missing envFile is not an error.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	r := envReader{}
	cfg := Config{
		HTTPPort: r.str("HTTP_PORT", "8080"),

		StorageDriver: strings.ToLower(r.str("STORAGE_DRIVER", StoragePostgres)),
		DBHost:        r.str("DB_HOST", "localhost"),
		DBPort:        r.str("DB_PORT", "5432"),
		DBUser:        r.str("DB_USER", "postgres"),
		DBPassword:    r.str("DB_PASSWORD", ""),
		DBName:        r.str("DB_NAME", "delivery_tracker"),
		DBSslMode:     r.str("DB_SSLMODE", "disable"),
		AutoMigrate:   r.boolean("DB_AUTO_MIGRATE", true),

		LogLevel:  strings.ToLower(r.str("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(r.str("LOG_FORMAT", "json")),

		Lifecycle: lifecycle.Config{
			PreparingDelay: r.duration("PREPARING_DELAY", lifecycle.DefaultPreparingDelay),
			DispatchDelay:  r.duration("DISPATCH_DELAY", lifecycle.DefaultDispatchDelay),
			TripDuration:   r.duration("TRIP_DURATION", lifecycle.DefaultTripDuration),
			TickInterval:   r.duration("TICK_INTERVAL", lifecycle.DefaultTickInterval),
		},
		ReleaseSchedule: r.str("COURIER_RELEASE_SCHEDULE", jobs.DefaultReleaseSchedule),

		SMTP: notify.SMTPConfig{
			Host:     r.str("SMTP_HOST", ""),
			Port:     r.integer("SMTP_PORT", 587),
			Username: r.str("SMTP_USERNAME", ""),
			Password: r.str("SMTP_PASSWORD", ""),
			From:     r.str("SMTP_FROM", ""),
		},
	}

	if err := errors.Join(append(r.errs, cfg.Validate())...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	var errList []error

	if c.StorageDriver != StoragePostgres && c.StorageDriver != StorageMemory {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("STORAGE_DRIVER",
			fmt.Errorf("%q is neither %q nor %q", c.StorageDriver, StoragePostgres, StorageMemory)))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("LOG_FORMAT",
			fmt.Errorf("%q is neither json nor text", c.LogFormat)))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errList = append(errList, err)
	}
	if err := c.Lifecycle.Validate(); err != nil {
		errList = append(errList, err)
	}
	if c.SMTP.Enabled() {
		if err := c.SMTP.Validate(); err != nil {
			errList = append(errList, err)
		}
	}

	return errors.Join(errList...)
}

// DSN returns the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// envReader reads typed variables and collects parse errors.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return d
}

func (r *envReader) integer(key string, fallback int) int {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return n
}

func (r *envReader) boolean(key string, fallback bool) bool {
	v := r.str(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, errs.NewValueIsInvalidErrorWithCause(key, err))
		return fallback
	}
	return b
}
