package registry

import (
	"fmt"
	"sync"

	"local-chat/infra/logger"
)

// ServiceManager owns one registration for the lifetime of the process.
type ServiceManager struct {
	registry *ConsulRegistry
	service  *ServiceConfig
	log      *logger.Logger
	stopOnce sync.Once
}

func NewServiceManager(registry *ConsulRegistry, service *ServiceConfig, log *logger.Logger) *ServiceManager {
	return &ServiceManager{registry: registry, service: service, log: log}
}

func (sm *ServiceManager) Start() error {
	if err := sm.registry.RegisterService(sm.service); err != nil {
		return fmt.Errorf("start %s: %w", sm.service.Name, err)
	}
	return nil
}

// Stop deregisters the service. Safe to call more than once.
func (sm *ServiceManager) Stop() {
	sm.stopOnce.Do(func() {
		if err := sm.registry.DeregisterService(sm.service.ID); err != nil {
			sm.log.Error("deregister failed", "error", err)
		}
	})
}
