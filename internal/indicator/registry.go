package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// IndicatorRegistry holds the indicators an Engine computes, keyed by
// Indicator.Name. Engine.Compute walks ListIndicators and fetches each entry
// with GetIndicator, so the registry contents decide which columns appear in
// every snapshot. Registration order is irrelevant.
type IndicatorRegistry interface {
	// RegisterIndicator fails when the name is already taken.
	RegisterIndicator(indicator Indicator) error
	GetIndicator(name string) (Indicator, error)
	// ListIndicators returns names sorted, which fixes the order Compute
	// evaluates them in and the order its errors surface.
	ListIndicators() []string
	RemoveIndicator(name string) error
}

// IndicatorRegistryV1 is the map-backed registry. It is safe for concurrent
// use, so one registry can back engines shared by several pipelines.
type IndicatorRegistryV1 struct {
	indicators map[string]Indicator
	mu         sync.RWMutex
}

// NewIndicatorRegistry creates an empty registry. NewDefaultRegistry fills one
// with the indicators the signal rules read.
func NewIndicatorRegistry() IndicatorRegistry {
	return &IndicatorRegistryV1{
		indicators: make(map[string]Indicator),
		mu:         sync.RWMutex{},
	}
}

// RegisterIndicator adds an indicator under its Name. Names are unique even
// when two indicators would write different output columns.
func (r *IndicatorRegistryV1) RegisterIndicator(indicator Indicator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

// GetIndicator retrieves an indicator by name.
func (r *IndicatorRegistryV1) GetIndicator(name string) (Indicator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns the registered names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// RemoveIndicator drops an indicator so later Compute calls skip its columns.
func (r *IndicatorRegistryV1) RemoveIndicator(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.indicators[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	delete(r.indicators, name)

	return nil
}
