// Package discovery registers the service with Consul.
package discovery

import (
	"fmt"

	"github.com/google/uuid"
	capi "github.com/hashicorp/consul/api"
)

// Registration is a handle to a registered service instance.
type Registration struct {
	client    *capi.Client
	serviceID string
}

// Register announces the service to the Consul agent with an HTTP health
// check against /health.
func Register(consulAddr, serviceName, serviceAddr string, servicePort int, checkInterval string) (*Registration, error) {
	client, err := capi.NewClient(&capi.Config{Address: consulAddr})
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	serviceID := fmt.Sprintf("%s-%s", serviceName, uuid.NewString())

	registration := &capi.AgentServiceRegistration{
		ID:      serviceID,
		Name:    serviceName,
		Address: serviceAddr,
		Port:    servicePort,
		Check: &capi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", serviceAddr, servicePort),
			Interval:                       checkInterval,
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	return &Registration{client: client, serviceID: serviceID}, nil
}

// Deregister removes the service instance from Consul.
func (r *Registration) Deregister() error {
	return r.client.Agent().ServiceDeregister(r.serviceID)
}
