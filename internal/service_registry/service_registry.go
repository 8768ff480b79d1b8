package service_registry

import (
	"errors"
	"fmt"

	"github.com/benmeehan/pcremote/internal/registry"
	"github.com/rs/zerolog"
)

// Definition describes a service to be constructed at registration time.
type Definition struct {
	Name        string
	Enabled     bool
	Constructor func() (registry.Service, error)
}

// ServiceRegistry manages the lifecycle of the services of one binary.
type ServiceRegistry struct {
	services    map[string]registry.Service // Stores registered services
	serviceKeys []string                    // Maintains order of service registration
	started     []string
	Logger      zerolog.Logger
}

// NewServiceRegistry initializes an empty service registry.
func NewServiceRegistry(logger zerolog.Logger) *ServiceRegistry {
	return &ServiceRegistry{
		services: make(map[string]registry.Service),
		Logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (sr *ServiceRegistry) RegisterService(name string, svc registry.Service) error {
	if _, exists := sr.services[name]; exists {
		sr.Logger.Warn().Msgf("Service %s is already registered", name)
		return fmt.Errorf("service %s is already registered", name)
	}
	sr.services[name] = svc
	sr.serviceKeys = append(sr.serviceKeys, name)
	sr.Logger.Info().Msgf("Registered service: %s", name)
	return nil
}

// RegisterServices constructs and registers the enabled definitions in order.
func (sr *ServiceRegistry) RegisterServices(definitions []Definition) error {
	for _, def := range definitions {
		if !def.Enabled {
			sr.Logger.Info().Msgf("Service %s is disabled", def.Name)
			continue
		}
		svc, err := def.Constructor()
		if err != nil {
			return fmt.Errorf("failed to create %s service: %w", def.Name, err)
		}
		if err := sr.RegisterService(def.Name, svc); err != nil {
			return err
		}
	}
	return nil
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (sr *ServiceRegistry) StartServices() error {
	sr.started = sr.started[:0]

	for _, name := range sr.serviceKeys {
		svc := sr.services[name]
		sr.Logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			sr.Logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			sr.Logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(sr.started) - 1; i >= 0; i-- {
				if stopErr := sr.services[sr.started[i]].Stop(); stopErr != nil {
					sr.Logger.Error().Err(stopErr).Msgf("Failed to stop service: %s", sr.started[i])
				}
			}
			sr.started = sr.started[:0]
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		sr.started = append(sr.started, name)
	}

	return nil
}

// StopServices stops the started services in reverse order.
func (sr *ServiceRegistry) StopServices() error {
	var stopErrors []error
	for i := len(sr.started) - 1; i >= 0; i-- {
		name := sr.started[i]
		sr.Logger.Info().Msgf("Stopping service: %s", name)
		if err := sr.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	sr.started = sr.started[:0]

	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			sr.Logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}
