package registry

import (
	"fmt"
	"net"
	"time"

	"local-chat/config"
	"local-chat/infra/logger"

	"github.com/hashicorp/consul/api"
)

type ConsulRegistry struct {
	client *api.Client
	log    *logger.Logger
}

type ServiceConfig struct {
	ID          string
	Name        string
	Tags        []string
	Address     string
	Port        int
	HealthCheck *HealthCheck
}

type HealthCheck struct {
	HTTP                           string
	Interval                       time.Duration
	Timeout                        time.Duration
	DeregisterCriticalServiceAfter time.Duration
}

func NewConsulRegistry(cfg *config.ConsulConfig, log *logger.Logger) (*ConsulRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Address
	consulConfig.Scheme = cfg.Scheme
	consulConfig.Datacenter = cfg.Datacenter

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	if _, err := client.Status().Leader(); err != nil {
		return nil, fmt.Errorf("connect consul: %w", err)
	}
	log.Info("consul connected", "address", cfg.Address)
	return &ConsulRegistry{client: client, log: log}, nil
}

func (r *ConsulRegistry) RegisterService(svc *ServiceConfig) error {
	if err := r.client.Agent().ServiceRegister(registration(svc)); err != nil {
		return fmt.Errorf("register service %s: %w", svc.Name, err)
	}
	r.log.Info("service registered", "service", svc.Name, "service_instance", svc.ID)
	return nil
}

func (r *ConsulRegistry) DeregisterService(serviceID string) error {
	if err := r.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("deregister service %s: %w", serviceID, err)
	}
	r.log.Info("service deregistered", "service_instance", serviceID)
	return nil
}

func registration(svc *ServiceConfig) *api.AgentServiceRegistration {
	reg := &api.AgentServiceRegistration{
		ID:      svc.ID,
		Name:    svc.Name,
		Tags:    svc.Tags,
		Address: svc.Address,
		Port:    svc.Port,
	}
	if svc.HealthCheck != nil {
		reg.Check = &api.AgentServiceCheck{
			HTTP:                           svc.HealthCheck.HTTP,
			Interval:                       svc.HealthCheck.Interval.String(),
			Timeout:                        svc.HealthCheck.Timeout.String(),
			DeregisterCriticalServiceAfter: svc.HealthCheck.DeregisterCriticalServiceAfter.String(),
		}
	}
	return reg
}

// GetLocalIP returns the address of the interface used for outbound traffic.
// No packet is sent; dialing UDP only selects a route.
func GetLocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

func GenerateServiceID(serviceName, ip string, port int) string {
	return fmt.Sprintf("%s-%s-%d", serviceName, ip, port)
}
