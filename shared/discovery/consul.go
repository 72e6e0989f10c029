package discovery

import (
	"fmt"
	"net"
	"strconv"

	consul "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes how a service announces itself to Consul.
type Registration struct {
	Name     string
	Host     string
	HTTPPort int
	// GRPCHealthPort, when set, is used for the health check instead of HTTP /health.
	GRPCHealthPort int
	Tags           []string
}

// ID returns the unique Consul service ID for this instance.
func (r Registration) ID() string {
	return fmt.Sprintf("%s-%s-%d", r.Name, r.Host, r.HTTPPort)
}

// Check builds the Consul health check for the registration.
func (r Registration) Check() *consul.AgentServiceCheck {
	check := &consul.AgentServiceCheck{
		Interval:                       "10s",
		Timeout:                        "3s",
		DeregisterCriticalServiceAfter: "1m",
	}

	if r.GRPCHealthPort > 0 {
		check.GRPC = net.JoinHostPort(r.Host, strconv.Itoa(r.GRPCHealthPort))
		check.GRPCUseTLS = false
	} else {
		check.HTTP = fmt.Sprintf("http://%s/health", net.JoinHostPort(r.Host, strconv.Itoa(r.HTTPPort)))
	}

	return check
}

// Registry registers and deregisters service instances with a Consul agent.
type Registry struct {
	client *consul.Client
	logger *zerolog.Logger
}

// NewRegistry creates a Consul registry client for the agent at addr.
func NewRegistry(addr string, logger *zerolog.Logger) (*Registry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Registry{client: client, logger: logger}, nil
}

// Register announces the instance.
func (r *Registry) Register(reg Registration) error {
	err := r.client.Agent().ServiceRegister(&consul.AgentServiceRegistration{
		ID:      reg.ID(),
		Name:    reg.Name,
		Address: reg.Host,
		Port:    reg.HTTPPort,
		Tags:    reg.Tags,
		Check:   reg.Check(),
	})
	if err != nil {
		return fmt.Errorf("register %s with consul: %w", reg.Name, err)
	}

	r.logger.Info().Str("service_id", reg.ID()).Msg("registered with consul")
	return nil
}

// Deregister removes the instance.
func (r *Registry) Deregister(reg Registration) {
	if err := r.client.Agent().ServiceDeregister(reg.ID()); err != nil {
		r.logger.Warn().Err(err).Str("service_id", reg.ID()).Msg("failed to deregister from consul")
		return
	}
	r.logger.Info().Str("service_id", reg.ID()).Msg("deregistered from consul")
}
