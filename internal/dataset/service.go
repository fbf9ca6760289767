package dataset

import (
	"context"
	"fmt"
	"log"
	"sync"

	"realestate-trade-map/internal/models"
)

// ManifestSource provides the current dataset list.
type ManifestSource interface {
	LoadManifest(ctx context.Context) (Manifest, error)
}

// Service owns the manifest, the active dataset selection and the record cache.
type Service struct {
	source ManifestSource
	cache  *Cache

	mu       sync.RWMutex
	manifest Manifest
	active   []string
}

// NewService wires a manifest source and a cache.
func NewService(source ManifestSource, cache *Cache) *Service {
	return &Service{source: source, cache: cache}
}

// Refresh re-reads the manifest. Active paths that disappeared are dropped; when
// nothing stays active the latest dataset is selected.
func (s *Service) Refresh(ctx context.Context) error {
	m, err := s.source.LoadManifest(ctx)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.manifest = m
	kept := s.active[:0:0]
	for _, p := range s.active {
		if _, ok := m.Find(p); ok {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		if latest, ok := m.Latest(); ok {
			kept = append(kept, latest.Path)
		}
	}
	s.active = kept
	log.Printf("[Dataset] manifest refreshed: %d datasets, %d active", len(m), len(kept))
	return nil
}

// Manifest returns the current dataset list.
func (s *Service) Manifest() Manifest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(Manifest(nil), s.manifest...)
}

// Active returns the selected dataset paths in selection order.
func (s *Service) Active() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.active...)
}

// IsActive reports whether path is selected.
func (s *Service) IsActive(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.active {
		if p == path {
			return true
		}
	}
	return false
}

// SetActive replaces the selection. Every path must be in the manifest.
func (s *Service) SetActive(paths []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate(paths); err != nil {
		return err
	}
	s.active = dedupe(paths)
	return nil
}

// Toggle adds or removes one path from the selection.
func (s *Service) Toggle(path string, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validate([]string{path}); err != nil {
		return err
	}
	next := make([]string, 0, len(s.active)+1)
	for _, p := range s.active {
		if p != path {
			next = append(next, p)
		}
	}
	if on {
		next = append(next, path)
	}
	s.active = next
	return nil
}

// Records concatenates the cached records of paths in order, loading missing
// ones. An empty paths list means the active selection.
func (s *Service) Records(ctx context.Context, paths []string) ([]models.Record, error) {
	if len(paths) == 0 {
		paths = s.Active()
	} else {
		s.mu.RLock()
		err := s.validate(paths)
		s.mu.RUnlock()
		if err != nil {
			return nil, err
		}
	}

	if len(paths) == 1 {
		return s.cache.Get(ctx, paths[0])
	}

	var all []models.Record
	for _, p := range dedupe(paths) {
		records, err := s.cache.Get(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Warm loads every active dataset into the cache.
func (s *Service) Warm(ctx context.Context) error {
	for _, p := range s.Active() {
		if _, err := s.cache.Get(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// validate must be called with s.mu held.
func (s *Service) validate(paths []string) error {
	for _, p := range paths {
		if _, ok := s.manifest.Find(p); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDataset, p)
		}
	}
	return nil
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
