package discovery

import (
	"fmt"
	"log"
	"net"
	"strconv"

	"github.com/ntwari02/proviQuiz/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

func NewServiceRegistry(config *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = config.Consul.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: config,
	}, nil
}

func (sr *ServiceRegistry) httpID() string { return sr.config.Server.ServiceID + "-http" }

func (sr *ServiceRegistry) grpcID() string { return sr.config.Server.ServiceID + "-grpc" }

// registrations builds the HTTP entry and, when a gRPC port is set, the gRPC one.
func (sr *ServiceRegistry) registrations() ([]*api.AgentServiceRegistration, error) {
	server := sr.config.Server
	httpPort, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid service port %q: %v", server.Port, err)
	}

	regs := []*api.AgentServiceRegistration{{
		ID:      sr.httpID(),
		Name:    server.ServiceName,
		Port:    httpPort,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:     "http://" + net.JoinHostPort(server.ServiceAddress, server.Port) + "/health",
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"proviquiz", "quiz", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}}

	if server.GRPCPort == "" {
		return regs, nil
	}
	grpcPort, err := strconv.Atoi(server.GRPCPort)
	if err != nil {
		return nil, fmt.Errorf("invalid gRPC port %q: %v", server.GRPCPort, err)
	}
	regs = append(regs, &api.AgentServiceRegistration{
		ID:      sr.grpcID(),
		Name:    server.ServiceName,
		Port:    grpcPort,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			TCP:      net.JoinHostPort(server.ServiceAddress, server.GRPCPort),
			Interval: "10s",
			Timeout:  "5s",
		},
		Tags: []string{"proviquiz", "quiz", "grpc"},
		Meta: map[string]string{
			"protocol": "grpc",
		},
	})
	return regs, nil
}

func (sr *ServiceRegistry) Register() error {
	regs, err := sr.registrations()
	if err != nil {
		return err
	}

	for _, reg := range regs {
		if err := sr.client.Agent().ServiceRegister(reg); err != nil {
			return fmt.Errorf("failed to register %s with Consul: %v", reg.ID, err)
		}
		log.Printf("Registered %s with Consul", reg.ID)
	}
	return nil
}

// Deregister removes the service from Consul
func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.httpID()); err != nil {
		return err
	}
	if sr.config.Server.GRPCPort != "" {
		return sr.client.Agent().ServiceDeregister(sr.grpcID())
	}
	return nil
}
