package service

import (
	"context"
	"fmt"
	"sync"

	"geoclash/internal/repository"
)

// FlagStore serves flag asset paths by iso2 code from memory. The catalog
// changes rarely, so the store is loaded once at startup and refreshed on
// demand instead of hitting the database per request.
type FlagStore struct {
	countries *repository.CountryRepository

	mu    sync.RWMutex
	paths map[string]string
}

// NewFlagStore creates an empty flag store. Call Reload before serving.
func NewFlagStore(countries *repository.CountryRepository) *FlagStore {
	return &FlagStore{
		countries: countries,
		paths:     map[string]string{},
	}
}

// Reload replaces the store's contents from the country catalog.
func (s *FlagStore) Reload(ctx context.Context) error {
	countries, err := s.countries.List(ctx, repository.CountryFilter{RequireFlag: true})
	if err != nil {
		return fmt.Errorf("failed to load flag paths: %w", err)
	}

	paths := make(map[string]string, len(countries))
	for _, country := range countries {
		paths[country.ISO2Code] = country.FlagPath
	}

	s.mu.Lock()
	s.paths = paths
	s.mu.Unlock()
	return nil
}

// Path returns the flag asset path for an iso2 code.
func (s *FlagStore) Path(iso2Code string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	path, ok := s.paths[iso2Code]
	return path, ok
}

// Len reports how many flags are loaded.
func (s *FlagStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.paths)
}
