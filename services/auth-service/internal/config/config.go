package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/logger"
	"github.com/wostup/pitchit-api/shared/middleware"
)

// AuthServiceConfig holds all configuration for the auth service.
type AuthServiceConfig struct {
	Env            string `env:"ENV"              envDefault:"development"`
	Port           int    `env:"PORT"             envDefault:"8080"`
	GRPCHealthPort int    `env:"GRPC_HEALTH_PORT" envDefault:"0"`
	ServiceHost    string `env:"SERVICE_HOST"     envDefault:"localhost"`
	ConsulAddr     string `env:"CONSUL_ADDR"`
	RedisURL       string `env:"REDIS_URL"`
	AppBaseURL     string `env:"APP_BASE_URL"     envDefault:"http://localhost:5173"`
	GoogleClientID string `env:"GOOGLE_CLIENT_ID"`

	// TrustedProxies lists the peers allowed to set forwarding headers.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo database.Config
	Log   logger.Config
	Token TokenConfig
	Limit RateLimitConfig

	VerificationTokenTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	TokenSweepInterval   time.Duration `env:"TOKEN_SWEEP_INTERVAL"   envDefault:"1h"`
}

// TokenConfig holds JWT settings.
type TokenConfig struct {
	Issuer                      string        `env:"JWT_ISSUER"               envDefault:"pitchit"`
	AccessTokenSecret           string        `env:"JWT_ACCESS_SECRET"`
	RefreshTokenSecret          string        `env:"JWT_REFRESH_SECRET"`
	PasswordResetTokenSecret    string        `env:"JWT_RESET_SECRET"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_TTL"         envDefault:"15m"`
	RefreshTokenExpiresIn       time.Duration `env:"REFRESH_TOKEN_TTL"        envDefault:"168h"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_TTL" envDefault:"30m"`
}

// RateLimitConfig holds ulule-formatted rates ("3-M" = 3 per minute).
type RateLimitConfig struct {
	Resend string `env:"RESEND_RATE_LIMIT" envDefault:"3-M"`
	Verify string `env:"VERIFY_RATE_LIMIT" envDefault:"10-M"`
	Login  string `env:"LOGIN_RATE_LIMIT"  envDefault:"20-M"`
}

// PasswordResetURL is the front-end page that consumes reset tokens.
func (c *AuthServiceConfig) PasswordResetURL() string {
	return c.AppBaseURL + "/reset-password"
}

// TrustedProxyPrefixes parses TrustedProxies.
func (c *AuthServiceConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	return middleware.ParseTrustedProxies(c.TrustedProxies)
}

// IsDevelopment reports whether the service runs in development mode.
func (c *AuthServiceConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load parses the environment into an AuthServiceConfig and validates it.
func Load() (*AuthServiceConfig, error) {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required settings.
func (c *AuthServiceConfig) Validate() error {
	var errs []error

	if c.Token.AccessTokenSecret == "" {
		errs = append(errs, errors.New("missing JWT_ACCESS_SECRET environment variable"))
	}
	if c.Token.RefreshTokenSecret == "" {
		errs = append(errs, errors.New("missing JWT_REFRESH_SECRET environment variable"))
	}
	if c.Token.PasswordResetTokenSecret == "" {
		errs = append(errs, errors.New("missing JWT_RESET_SECRET environment variable"))
	}
	if c.Token.AccessTokenSecret != "" && c.Token.AccessTokenSecret == c.Token.RefreshTokenSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}
	if c.VerificationTokenTTL <= 0 {
		errs = append(errs, errors.New("VERIFICATION_TOKEN_TTL must be positive"))
	}
	if c.Port <= 0 {
		errs = append(errs, errors.New("PORT must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}

	return errors.Join(errs...)
}
