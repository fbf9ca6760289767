package dataset

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// DatasetLister enumerates the datasets of a FeatureSource.
type DatasetLister interface {
	Datasets(ctx context.Context) ([]string, error)
}

// CompositeManifest appends the datasets of SQL sources to a file manifest.
// SQL items get "<scheme>:<name>" paths so the Loader routes them back.
type CompositeManifest struct {
	primary ManifestSource
	schemes []string
	listers map[string]DatasetLister
}

// NewCompositeManifest wraps primary. A nil primary serves SQL datasets only.
func NewCompositeManifest(primary ManifestSource) *CompositeManifest {
	return &CompositeManifest{primary: primary, listers: make(map[string]DatasetLister)}
}

// Add registers a lister under scheme.
func (c *CompositeManifest) Add(scheme string, lister DatasetLister) {
	if _, ok := c.listers[scheme]; !ok {
		c.schemes = append(c.schemes, scheme)
	}
	c.listers[scheme] = lister
}

// LoadManifest returns the file items followed by each source's datasets. A
// missing file manifest is tolerated when some SQL source has datasets.
func (c *CompositeManifest) LoadManifest(ctx context.Context) (Manifest, error) {
	var m Manifest
	var primaryErr error
	if c.primary != nil {
		m, primaryErr = c.primary.LoadManifest(ctx)
		if primaryErr != nil && !errors.Is(primaryErr, ErrNotFound) {
			return nil, primaryErr
		}
	}

	for _, scheme := range c.schemes {
		names, err := c.listers[scheme].Datasets(ctx)
		if err != nil {
			log.Printf("[Dataset] %s datasets unavailable: %v", scheme, err)
			continue
		}
		for _, name := range names {
			m = append(m, Item{Path: scheme + ":" + name, Label: LabelFromFilename(name)})
		}
	}

	if len(m) == 0 {
		if primaryErr != nil {
			return nil, primaryErr
		}
		return nil, fmt.Errorf("%w: no datasets available", ErrNotFound)
	}
	return m, nil
}
