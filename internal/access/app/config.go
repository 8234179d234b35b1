package app

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/squadgate/pkg/httpx"
)

// Config is read from the environment. A .env file in the working directory
// is loaded first when present; real environment variables win.
type Config struct {
	Port                int           `env:"PORT"                  envDefault:"8080"`
	Env                 string        `env:"ENV"                   envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL"             envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT"            envDefault:"json"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseFile   string        `env:"DATABASE_FILE"   envDefault:"squadgate.db"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	StoreTimeout   time.Duration `env:"STORE_TIMEOUT"   envDefault:"5s"`

	// InvitationTTL is how long an issued invitation stays redeemable.
	InvitationTTL time.Duration `env:"INVITATION_TTL" envDefault:"168h"`

	SessionIssuer  string        `env:"SESSION_ISSUER"   envDefault:"squadgate"`
	SessionTTL     time.Duration `env:"SESSION_TTL"      envDefault:"15m"`
	SessionNumKeys int           `env:"SESSION_NUM_KEYS" envDefault:"3"`

	// CallbackSecret authenticates the web tier on POST /v1/signin.
	CallbackSecret string `env:"CALLBACK_SECRET"`

	HousekeepingSchedule string `env:"HOUSEKEEPING_SCHEDULE" envDefault:"@every 1h"`
	AuditPersist         bool   `env:"AUDIT_PERSIST"         envDefault:"true"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	RateLimitStrict   RateLimitConfig `envPrefix:"RATELIMIT_STRICT_"`
	RateLimitModerate RateLimitConfig `envPrefix:"RATELIMIT_MODERATE_"`
	RateLimitLenient  RateLimitConfig `envPrefix:"RATELIMIT_LENIENT_"`
}

// RateLimitConfig overrides one limiter profile. Zero values keep the default.
type RateLimitConfig struct {
	Requests int           `env:"REQUESTS"`
	Window   time.Duration `env:"WINDOW"`
	Burst    int           `env:"BURST"`
}

func (c RateLimitConfig) apply(def httpx.RateLimitConfig) httpx.RateLimitConfig {
	if c.Requests > 0 {
		def.RequestsPerWindow = c.Requests
	}
	if c.Window > 0 {
		def.Window = c.Window
	}
	if c.Burst > 0 {
		def.Burst = c.Burst
	}
	return def
}

// LoadConfig loads .env (if any) and parses the environment. A missing .env
// is fine, an unreadable or malformed one is not.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return ParseConfig()
}

// ParseConfig parses the current environment without touching .env.
func ParseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DatabaseDriver {
	case "sqlite":
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for sqlite"))
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER %q must be sqlite or postgres", c.DatabaseDriver))
	}

	if c.InvitationTTL <= 0 {
		errs = append(errs, errors.New("INVITATION_TTL must be positive"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.SessionNumKeys < 1 || c.SessionNumKeys > 10 {
		errs = append(errs, errors.New("SESSION_NUM_KEYS must be between 1 and 10"))
	}

	return errors.Join(errs...)
}
