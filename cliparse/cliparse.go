package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          int    `env:"PORT" envDefault:"3000"`
	DatabaseURL   string `env:"DATABASE_URL" envDefault:"data.db"`
	DatabaseType  string `env:"DATABASE_TYPE" envDefault:"sqlite"`
	StaticDir     string `env:"STATIC_DIR"`
	SecureCookies bool   `env:"SECURE_COOKIES"`

	// Admin login
	AdminUser     string `env:"ADMIN_USER" envDefault:"admin123"`
	AdminPass     string `env:"ADMIN_PASS" envDefault:"securepass123"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"your-secure-session-secret"`

	// Twilio (optional)
	TwilioAccountSID string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `env:"TWILIO_AUTH_TOKEN"`
	TwilioFrom       string `env:"TWILIO_FROM"`       // "+1234567890" or "whatsapp:+1415..."
	TwilioVerifySID  string `env:"TWILIO_VERIFY_SID"` // Verify service SID, starts with "VA"

	OTPSweepSchedule string `env:"OTP_SWEEP_SCHEDULE"` // cron spec, empty disables

	// Empty means same-origin only
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string   `env:"LOG_FORMAT" envDefault:"text"`
}

// TwilioEnabled reports whether a Twilio client can be built
func (c Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// RemoteVerifyEnabled reports whether OTPs go through Twilio Verify
func (c Config) RemoteVerifyEnabled() bool {
	return c.TwilioEnabled() && c.TwilioVerifySID != ""
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// ParseFlags loads .env, then environment variables, then CLI flags, and
// validates the result. Later sources override earlier ones.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// .env is optional; real env vars win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL (file path for sqlite)")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "Directory of static files to serve at /")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Admin session signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	switch c.DatabaseType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database type %q (sqlite or postgres)", c.DatabaseType)
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET required")
	}
	if c.AdminUser == "" || c.AdminPass == "" {
		return errors.New("ADMIN_USER and ADMIN_PASS required")
	}
	if (c.TwilioAccountSID == "") != (c.TwilioAuthToken == "") {
		return errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN must be set together")
	}
	if c.TwilioVerifySID != "" && !strings.HasPrefix(c.TwilioVerifySID, "VA") {
		return fmt.Errorf("TWILIO_VERIFY_SID %q does not look like a Verify service SID", c.TwilioVerifySID)
	}
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "*" {
			return errors.New("CORS_ALLOWED_ORIGINS cannot be * because admin cookies are sent with credentials")
		}
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q (text or json)", c.LogFormat)
	}
	return nil
}
