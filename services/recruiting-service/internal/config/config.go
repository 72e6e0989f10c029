package config

import (
	"errors"
	"fmt"
	"net/netip"

	"github.com/caarlos0/env/v11"

	"github.com/wostup/pitchit-api/shared/database"
	"github.com/wostup/pitchit-api/shared/logger"
	"github.com/wostup/pitchit-api/shared/middleware"
)

// RecruitingServiceConfig holds all configuration for the recruiting service.
type RecruitingServiceConfig struct {
	Env            string `env:"ENV"              envDefault:"development"`
	Port           int    `env:"PORT"             envDefault:"8081"`
	GRPCHealthPort int    `env:"GRPC_HEALTH_PORT" envDefault:"0"`
	ServiceHost    string `env:"SERVICE_HOST"     envDefault:"localhost"`
	ConsulAddr     string `env:"CONSUL_ADDR"`
	RedisURL       string `env:"REDIS_URL"`
	AdminSecret    string `env:"ADMIN_SECRET"`

	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo database.Config
	Log   logger.Config
	Token TokenConfig

	MutationRateLimit string `env:"MUTATION_RATE_LIMIT" envDefault:"60-M"`
}

// TokenConfig holds the settings needed to verify access tokens minted by the
// auth service.
type TokenConfig struct {
	Issuer            string `env:"JWT_ISSUER"        envDefault:"pitchit"`
	AccessTokenSecret string `env:"JWT_ACCESS_SECRET"`
}

func (c *RecruitingServiceConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	return middleware.ParseTrustedProxies(c.TrustedProxies)
}

func (c *RecruitingServiceConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// Load parses the environment into a RecruitingServiceConfig and validates it.
func Load() (*RecruitingServiceConfig, error) {
	cfg, err := env.ParseAs[RecruitingServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *RecruitingServiceConfig) Validate() error {
	var errs []error

	if c.Token.AccessTokenSecret == "" {
		errs = append(errs, errors.New("missing JWT_ACCESS_SECRET environment variable"))
	}
	if c.AdminSecret != "" && len(c.AdminSecret) < 16 {
		errs = append(errs, errors.New("ADMIN_SECRET must be at least 16 characters"))
	}
	if c.Port <= 0 {
		errs = append(errs, errors.New("PORT must be positive"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}

	return errors.Join(errs...)
}
