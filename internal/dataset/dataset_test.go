package dataset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-trade-map/internal/models"
)

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [127.05, 37.50]},
     "properties": {"거래유형": "매매", "거래금액": 125000, "단지명": "은마", "계약년월": "202401"}},
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,1],[1,0],[0,0]]]},
     "properties": {"단지명": "polygon"}},
    {"type": "Feature", "geometry": null, "properties": {"단지명": "nowhere"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [127.10, 37.51]},
     "properties": {"거래유형": "전월세", "월세": 40, "보증금": 5000, "단지명": "잠실"}}
  ]
}`

func TestLabelFromFilename(t *testing.T) {
	tests := map[string]string{
		"../data/2024/seoul_202403.geojson": "2024.03",
		"trades-20240115.geojson":           "2024.01",
		"gangnam.geojson":                   "gangnam",
		`C:\data\busan_202312.geojson`:      "2023.12",
	}
	for in, want := range tests {
		assert.Equal(t, want, LabelFromFilename(in), in)
	}
}

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`[{"path": "a_202401.geojson"}, {"path": "b.geojson", "label": "B"}, "c_202403.geojson", {"label": "no path"}]`))
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		{Path: "a_202401.geojson", Label: "2024.01"},
		{Path: "b.geojson", Label: "B"},
		{Path: "c_202403.geojson", Label: "2024.03"},
	}, m)

	latest, ok := m.Latest()
	assert.True(t, ok)
	assert.Equal(t, "c_202403.geojson", latest.Path)

	wrapped, err := ParseManifest([]byte(`{"files": ["x_202402.geojson"]}`))
	require.NoError(t, err)
	assert.Equal(t, "2024.02", wrapped[0].Label)

	_, err = ParseManifest([]byte(`[]`))
	assert.Error(t, err)
	_, err = ParseManifest([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeFeatures(t *testing.T) {
	features, err := DecodeFeatures([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, features, 2, "non-point geometries are dropped")
	assert.Equal(t, "은마", features[0].Properties["단지명"])
	assert.Equal(t, 37.51, features[1].Lat())
	assert.Equal(t, 127.10, features[1].Lng())
}

func TestDecodeFeaturesMalformed(t *testing.T) {
	payloads := []string{
		`{"type": "FeatureCollection"}`,
		`{"type": "FeatureCollection", "features": {"a": 1}}`,
		`[1, 2, 3]`,
		`<html></html>`,
	}
	for _, p := range payloads {
		_, err := DecodeFeatures([]byte(p))
		assert.ErrorIs(t, err, ErrMalformedDataset, p)
	}
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestLoaderFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2024/seoul_202401.geojson", sampleCollection)
	writeFile(t, dir, "broken_202402.geojson", `{"features": "nope"}`)

	l := NewLoader(dir, "", "", time.Second)

	records, err := l.Load(context.Background(), "../data/2024/seoul_202401.geojson")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.DealMonthlyRent, records[1].Norm.Deal)

	_, err = l.Load(context.Background(), "broken_202402.geojson")
	assert.ErrorIs(t, err, ErrMalformedDataset)

	_, err = l.Load(context.Background(), "missing.geojson")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = l.Load(context.Background(), "../../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)

	// no manifest.json: the directory is scanned
	m, err := l.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		{Path: "2024/seoul_202401.geojson", Label: "2024.01"},
		{Path: "broken_202402.geojson", Label: "2024.02"},
	}, m)

	writeFile(t, dir, "manifest.json", `[{"path": "2024/seoul_202401.geojson", "label": "서울 1월"}]`)
	m, err = l.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Manifest{{Path: "2024/seoul_202401.geojson", Label: "서울 1월"}}, m)
}

func TestLoaderOverHTTPDiscoversIndex(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/data/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/":
			w.Write([]byte(`<html><body>
				<a href="../">up</a>
				<a href="seoul_202402.geojson">seoul_202402.geojson</a>
				<a href="/data/seoul_202401.geojson">seoul_202401.geojson</a>
				<a href="notes.txt">notes</a>
				<a href="https://elsewhere.example/x_202405.geojson">remote</a>
			</body></html>`))
		case "/data/seoul_202401.geojson":
			w.Write([]byte(sampleCollection))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	l := NewLoader("", srv.URL+"/data", "manifest.json", time.Second)

	m, err := l.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		{Path: "seoul_202401.geojson", Label: "2024.01"},
		{Path: "seoul_202402.geojson", Label: "2024.02"},
	}, m)

	records, err := l.Load(context.Background(), "seoul_202401.geojson")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = l.Load(context.Background(), "seoul_202402.geojson")
	assert.ErrorIs(t, err, ErrNotFound)
}

type stubSource struct {
	features []models.Feature
	asked    string
}

func (s *stubSource) Features(ctx context.Context, dataset string) ([]models.Feature, error) {
	s.asked = dataset
	return s.features, nil
}

func TestLoaderRoutesSchemesToSources(t *testing.T) {
	src := &stubSource{features: []models.Feature{
		models.NewPointFeature(127, 37, map[string]any{"거래유형": "전세", "단지명": "sql"}),
	}}
	l := NewLoader(t.TempDir(), "", "", time.Second)
	l.RegisterSource("mysql", src)

	records, err := l.Load(context.Background(), "mysql:2024-01")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2024-01", src.asked)
	assert.Equal(t, "sql", records[0].Norm.BuildingName)
}

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (c *countingLoader) Load(ctx context.Context, path string) ([]models.Record, error) {
	c.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if c.fail {
		return nil, errors.New("boom")
	}
	return []models.Record{{Norm: models.Normalized{BuildingName: path}}}, nil
}

func TestCacheLoadsOnce(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			records, err := cache.Get(context.Background(), "a.geojson")
			assert.NoError(t, err)
			assert.Len(t, records, 1)
		}()
	}
	wg.Wait()

	_, err := cache.Get(context.Background(), "a.geojson")
	require.NoError(t, err)
	assert.Equal(t, int32(1), loader.calls.Load())
	assert.True(t, cache.Loaded("a.geojson"))
	assert.Equal(t, []string{"a.geojson"}, cache.Paths())
}

func TestCacheDoesNotKeepFailures(t *testing.T) {
	loader := &countingLoader{fail: true}
	cache := NewCache(loader)

	_, err := cache.Get(context.Background(), "a.geojson")
	assert.Error(t, err)
	assert.False(t, cache.Loaded("a.geojson"))

	loader.fail = false
	records, err := cache.Get(context.Background(), "a.geojson")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(2), loader.calls.Load())
}

type staticManifest struct{ m Manifest }

func (s *staticManifest) LoadManifest(ctx context.Context) (Manifest, error) { return s.m, nil }

func TestServiceActiveSelection(t *testing.T) {
	src := &staticManifest{m: Manifest{{Path: "a_202401.geojson"}, {Path: "b_202402.geojson"}, {Path: "c_202403.geojson"}}}
	svc := NewService(src, NewCache(&countingLoader{}))
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, []string{"c_202403.geojson"}, svc.Active(), "latest is the default")

	require.NoError(t, svc.Toggle("a_202401.geojson", true))
	assert.Equal(t, []string{"c_202403.geojson", "a_202401.geojson"}, svc.Active())
	assert.True(t, svc.IsActive("a_202401.geojson"))

	records, err := svc.Records(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c_202403.geojson", records[0].Norm.BuildingName)
	assert.Equal(t, "a_202401.geojson", records[1].Norm.BuildingName)

	assert.ErrorIs(t, svc.SetActive([]string{"zzz.geojson"}), ErrUnknownDataset)
	_, err = svc.Records(ctx, []string{"zzz.geojson"})
	assert.ErrorIs(t, err, ErrUnknownDataset)

	require.NoError(t, svc.Toggle("c_202403.geojson", false))
	assert.Equal(t, []string{"a_202401.geojson"}, svc.Active())

	// a refresh keeps selections that still exist
	src.m = Manifest{{Path: "a_202401.geojson"}, {Path: "d_202404.geojson"}}
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, []string{"a_202401.geojson"}, svc.Active())

	src.m = Manifest{{Path: "d_202404.geojson"}}
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, []string{"d_202404.geojson"}, svc.Active())
	require.NoError(t, svc.Warm(ctx))
}

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) Datasets(ctx context.Context) ([]string, error) { return f(ctx) }

func TestCompositeManifest(t *testing.T) {
	files := &staticManifest{m: Manifest{{Path: "a_202401.geojson", Label: "2024.01"}}}
	c := NewCompositeManifest(files)
	c.Add("mysql", listerFunc(func(ctx context.Context) ([]string, error) {
		return []string{"202402", "gangnam"}, nil
	}))
	c.Add("postgres", listerFunc(func(ctx context.Context) ([]string, error) {
		return nil, errors.New("connection refused")
	}))

	m, err := c.LoadManifest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Manifest{
		{Path: "a_202401.geojson", Label: "2024.01"},
		{Path: "mysql:202402", Label: "2024.02"},
		{Path: "mysql:gangnam", Label: "gangnam"},
	}, m)

	sqlOnly := NewCompositeManifest(nil)
	_, err = sqlOnly.LoadManifest(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
