package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"realestate-trade-map/internal/metrics"
	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/normalize"
)

// FeatureSource serves features for a named dataset from somewhere other than a
// GeoJSON file, such as a SQL table.
type FeatureSource interface {
	Features(ctx context.Context, dataset string) ([]models.Feature, error)
}

// Loader resolves dataset paths against a local directory or a base URL.
// Paths of the form "<scheme>:<name>" are routed to a registered FeatureSource.
type Loader struct {
	baseDir      string
	baseURL      string
	manifestName string
	client       *http.Client
	sources      map[string]FeatureSource
}

// NewLoader creates a loader. baseURL wins over baseDir when both are set.
func NewLoader(baseDir, baseURL, manifestName string, timeout time.Duration) *Loader {
	if manifestName == "" {
		manifestName = "manifest.json"
	}
	return &Loader{
		baseDir:      baseDir,
		baseURL:      strings.TrimRight(baseURL, "/"),
		manifestName: manifestName,
		client:       &http.Client{Timeout: timeout},
		sources:      make(map[string]FeatureSource),
	}
}

// RegisterSource routes "<scheme>:<name>" paths to src.
func (l *Loader) RegisterSource(scheme string, src FeatureSource) {
	l.sources[scheme] = src
}

// CleanPath drops the "../data/" prefix older manifests carry.
func CleanPath(p string) string {
	p = strings.Replace(p, "../data/", "", 1)
	return strings.TrimPrefix(p, "./")
}

// Load fetches one dataset and normalizes its records.
func (l *Loader) Load(ctx context.Context, path string) ([]models.Record, error) {
	start := time.Now()

	features, err := l.features(ctx, path)
	if err != nil {
		metrics.DatasetLoadFailures.Inc()
		return nil, err
	}

	records := normalize.Records(features)
	metrics.DatasetsLoaded.Inc()
	log.Printf("[Dataset] loaded %s: %d records in %dms", path, len(records), time.Since(start).Milliseconds())
	return records, nil
}

func (l *Loader) features(ctx context.Context, path string) ([]models.Feature, error) {
	if scheme, name, ok := strings.Cut(path, ":"); ok {
		if src, registered := l.sources[scheme]; registered {
			features, err := src.Features(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
			return features, nil
		}
	}

	data, err := l.read(ctx, CleanPath(path))
	if err != nil {
		return nil, err
	}
	features, err := DecodeFeatures(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return features, nil
}

// LoadManifest reads the manifest file. When it is missing the loader lists the
// .geojson files of the data directory or the directory index page instead.
func (l *Loader) LoadManifest(ctx context.Context) (Manifest, error) {
	data, err := l.read(ctx, l.manifestName)
	if err == nil {
		return ParseManifest(data)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	log.Printf("[Dataset] %s not found, discovering datasets", l.manifestName)
	if l.baseURL != "" {
		return Discover(ctx, l.client, l.baseURL+"/")
	}
	return l.globDir()
}

func (l *Loader) read(ctx context.Context, p string) ([]byte, error) {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return l.fetch(ctx, p)
	}
	if l.baseURL != "" {
		return l.fetch(ctx, l.baseURL+"/"+strings.TrimPrefix(p, "/"))
	}
	return l.readFile(p)
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}

func (l *Loader) readFile(p string) ([]byte, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p, err)
	}
	return data, nil
}

// resolve keeps file access inside the data directory.
func (l *Loader) resolve(p string) (string, error) {
	base, err := filepath.Abs(l.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve data dir: %w", err)
	}
	full := filepath.Join(base, filepath.FromSlash(p))
	rel, err := filepath.Rel(base, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is outside the data dir", ErrNotFound, p)
	}
	return full, nil
}

func (l *Loader) globDir() (Manifest, error) {
	base, err := filepath.Abs(l.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(base, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".geojson") {
			rel, _ := filepath.Rel(base, p)
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan data dir: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .geojson files in %s", ErrNotFound, l.baseDir)
	}

	sort.Strings(paths)
	m := make(Manifest, 0, len(paths))
	for _, p := range paths {
		m = append(m, Item{Path: p, Label: LabelFromFilename(p)})
	}
	return m, nil
}
