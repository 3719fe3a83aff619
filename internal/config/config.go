package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "VOLUNTEERDESK_"

// DevAPI configures the development stand-in for the volunteer service.
type DevAPI struct {
	Addr           string `yaml:"addr" validate:"required"`
	DBPath         string `yaml:"dbPath" validate:"required"`
	PublicURL      string `yaml:"publicURL,omitempty" validate:"omitempty,url"`
	MinioEndpoint  string `yaml:"minioEndpoint,omitempty"`
	MinioAccessKey string `yaml:"minioAccessKey,omitempty" validate:"required_with=MinioEndpoint"`
	MinioSecretKey string `yaml:"minioSecretKey,omitempty" validate:"required_with=MinioEndpoint"`
	MinioBucket    string `yaml:"minioBucket,omitempty" validate:"required_with=MinioEndpoint"`
	MinioUseSSL    bool   `yaml:"minioUseSSL,omitempty"`
	ResendKey      string `yaml:"resendKey,omitempty"`
	EmailFrom      string `yaml:"emailFrom" validate:"required"`
	EmailReplyTo   string `yaml:"emailReplyTo,omitempty" validate:"omitempty,email"`
}

// Config represents the application configuration
type Config struct {
	Addr               string        `yaml:"addr" validate:"required"`
	Env                string        `yaml:"env" validate:"oneof=development production"`
	APIBaseURL         string        `yaml:"apiBaseURL" validate:"required,url"`
	APIPublicURL       string        `yaml:"apiPublicURL,omitempty" validate:"omitempty,url"`
	Timezone           string        `yaml:"timezone" validate:"required"`
	GatewayTimeout     time.Duration `yaml:"gatewayTimeout" validate:"gt=0"`
	SessionIdleTimeout time.Duration `yaml:"sessionIdleTimeout" validate:"gt=0"`
	CSRFKey            string        `yaml:"csrfKey,omitempty" validate:"omitempty,len=32"`
	TrustedOrigins     []string      `yaml:"trustedOrigins,omitempty"`
	MaxUploadBytes     int64         `yaml:"maxUploadBytes" validate:"gt=0"`
	SlowRequestMs      int           `yaml:"slowRequestMs" validate:"gte=0"`
	LogLevel           string        `yaml:"logLevel" validate:"oneof=debug info warn error"`
	DevAPI             DevAPI        `yaml:"devapi"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the development defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		Env:                "development",
		APIBaseURL:         "http://localhost:5000",
		Timezone:           "Local",
		GatewayTimeout:     10 * time.Second,
		SessionIdleTimeout: 12 * time.Hour,
		MaxUploadBytes:     10 << 20,
		SlowRequestMs:      500,
		LogLevel:           "info",
		DevAPI: DevAPI{
			Addr:        ":5000",
			DBPath:      "volunteerdesk-dev.db",
			MinioBucket: "volunteer-cvs",
			EmailFrom:   "Volunteer Desk <noreply@volunteerdesk.local>",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment.
// A .env file in the working directory is loaded first when present.
// PRE: path is empty or names a readable YAML file
// POST: Returns a validated config; environment variables take precedence over the file
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromPath loads and validates the configuration from a specific YAML file, without the environment.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate validates the configuration struct and checks the time zone
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	if cfg.IsProduction() && cfg.CSRFKey == "" {
		return errors.New("config validation failed: csrfKey is required in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the display time zone.
// PRE: Validate has succeeded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SlowRequestThreshold returns SlowRequestMs as a duration.
func (c *Config) SlowRequestThreshold() time.Duration {
	return time.Duration(c.SlowRequestMs) * time.Millisecond
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(key string) (string, bool)

// applyEnv overrides cfg with every VOLUNTEERDESK_* variable that is set.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	str("ADDR", &cfg.Addr)
	str("ENV", &cfg.Env)
	str("API_BASE_URL", &cfg.APIBaseURL)
	str("API_PUBLIC_URL", &cfg.APIPublicURL)
	str("TIMEZONE", &cfg.Timezone)
	str("CSRF_KEY", &cfg.CSRFKey)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("DEVAPI_ADDR", &cfg.DevAPI.Addr)
	str("DEVAPI_DB_PATH", &cfg.DevAPI.DBPath)
	str("DEVAPI_PUBLIC_URL", &cfg.DevAPI.PublicURL)
	str("MINIO_ENDPOINT", &cfg.DevAPI.MinioEndpoint)
	str("MINIO_ACCESS_KEY", &cfg.DevAPI.MinioAccessKey)
	str("MINIO_SECRET_KEY", &cfg.DevAPI.MinioSecretKey)
	str("MINIO_BUCKET", &cfg.DevAPI.MinioBucket)
	str("RESEND_KEY", &cfg.DevAPI.ResendKey)
	str("EMAIL_FROM", &cfg.DevAPI.EmailFrom)
	str("EMAIL_REPLY_TO", &cfg.DevAPI.EmailReplyTo)

	if v, ok := lookup(EnvPrefix + "TRUSTED_ORIGINS"); ok {
		cfg.TrustedOrigins = splitList(v)
	}

	var errs []error
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}
	dur("GATEWAY_TIMEOUT", &cfg.GatewayTimeout)
	dur("SESSION_IDLE_TIMEOUT", &cfg.SessionIdleTimeout)

	if v, ok := lookup(EnvPrefix + "MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err))
		} else {
			cfg.MaxUploadBytes = n
		}
	}
	if v, ok := lookup(EnvPrefix + "SLOW_REQUEST_MS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSLOW_REQUEST_MS: %w", EnvPrefix, err))
		} else {
			cfg.SlowRequestMs = n
		}
	}
	if v, ok := lookup(EnvPrefix + "MINIO_USE_SSL"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sMINIO_USE_SSL: %w", EnvPrefix, err))
		} else {
			cfg.DevAPI.MinioUseSSL = b
		}
	}
	return errors.Join(errs...)
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
