package dataset

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Discover builds a manifest from the links of an HTTP directory index page.
// Only links ending in .geojson are kept; paths are relative to indexURL.
func Discover(ctx context.Context, client *http.Client, indexURL string) (Manifest, error) {
	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: index returned status %d", ErrNotFound, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index: %w", err)
	}

	seen := make(map[string]bool)
	var paths []string
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil || !strings.HasSuffix(ref.Path, ".geojson") {
			return
		}
		abs := base.ResolveReference(ref)
		if abs.Host != base.Host || !strings.HasPrefix(abs.Path, base.Path) {
			return
		}
		rel := strings.TrimPrefix(abs.Path, base.Path)
		if rel == "" || seen[rel] {
			return
		}
		seen[rel] = true
		paths = append(paths, rel)
	})

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .geojson links at %s", ErrNotFound, indexURL)
	}

	sort.Strings(paths)
	m := make(Manifest, 0, len(paths))
	for _, p := range paths {
		m = append(m, Item{Path: p, Label: LabelFromFilename(p)})
	}
	return m, nil
}
