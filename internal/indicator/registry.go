package indicator

import (
	"sync"

	"github.com/rxtech-lab/quant-backtest/internal/types"
	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

// Registry manages all available streaming indicators.
type Registry interface {
	RegisterIndicator(indicator Streaming) error
	GetIndicator(name types.IndicatorType) (Streaming, error)
	ListIndicators() []types.IndicatorType
	RemoveIndicator(name types.IndicatorType) error
}

// RegistryV1 manages all available streaming indicators.
type RegistryV1 struct {
	indicators map[types.IndicatorType]Streaming
	mu         sync.RWMutex
}

// NewRegistry creates a new indicator registry.
func NewRegistry() Registry {
	return &RegistryV1{
		indicators: make(map[types.IndicatorType]Streaming),
		mu:         sync.RWMutex{},
	}
}

// RegisterIndicator adds an indicator to the registry.
func (r *RegistryV1) RegisterIndicator(indicator Streaming) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "RegisterIndicator: indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *RegistryV1) GetIndicator(name types.IndicatorType) (Streaming, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "GetIndicator: indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns a list of all registered indicator names.
func (r *RegistryV1) ListIndicators() []types.IndicatorType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	return names
}

// RemoveIndicator removes an indicator from the registry.
func (r *RegistryV1) RemoveIndicator(name types.IndicatorType) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "RemoveIndicator: indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
