package service

import (
	"fmt"

	"geoclash/internal/models"
)

// Registry maps game modes to their strategies. It is built once at startup
// and never mutated afterwards, so lookups are safe from any goroutine.
type Registry struct {
	strategies map[models.GameMode]GameStrategy
}

// NewRegistry builds a registry from the given strategies. Registering two
// strategies for the same mode is a programming error.
func NewRegistry(strategies ...GameStrategy) (*Registry, error) {
	byMode := make(map[models.GameMode]GameStrategy, len(strategies))
	for _, strategy := range strategies {
		mode := strategy.Mode()
		if _, exists := byMode[mode]; exists {
			return nil, fmt.Errorf("duplicate strategy for game mode %s", mode)
		}
		byMode[mode] = strategy
	}
	return &Registry{strategies: byMode}, nil
}

// Get returns the strategy for a mode.
func (r *Registry) Get(mode models.GameMode) (GameStrategy, error) {
	strategy, ok := r.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGameMode, mode)
	}
	return strategy, nil
}

// Modes lists the registered game modes.
func (r *Registry) Modes() []models.GameMode {
	modes := make([]models.GameMode, 0, len(r.strategies))
	for mode := range r.strategies {
		modes = append(modes, mode)
	}
	return modes
}
