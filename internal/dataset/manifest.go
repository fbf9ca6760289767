package dataset

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// Item is one selectable dataset.
type Item struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// Manifest lists the available datasets, oldest first.
type Manifest []Item

var yearMonthPattern = regexp.MustCompile(`(\d{6})`)

// LabelFromFilename derives "YYYY.MM" from the first six-digit run of the file
// name, or the file name without its .geojson extension.
func LabelFromFilename(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if m := yearMonthPattern.FindString(name); m != "" {
		return m[:4] + "." + m[4:6]
	}
	return strings.TrimSuffix(name, ".geojson")
}

// ParseManifest accepts a JSON array of {path, label} objects or plain path
// strings, or an object wrapping that array under "files" or "datasets".
func ParseManifest(data []byte) (Manifest, error) {
	var raw any
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if obj, ok := raw.(map[string]any); ok {
		if files, ok := obj["files"]; ok {
			raw = files
		} else {
			raw = obj["datasets"]
		}
	}

	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, fmt.Errorf("failed to parse manifest: expected a non-empty list")
	}

	m := make(Manifest, 0, len(list))
	for _, entry := range list {
		var item Item
		switch e := entry.(type) {
		case string:
			item.Path = e
		case map[string]any:
			item.Path, _ = e["path"].(string)
			item.Label, _ = e["label"].(string)
		}
		item.Path = strings.TrimSpace(item.Path)
		if item.Path == "" {
			continue
		}
		if item.Label == "" {
			item.Label = LabelFromFilename(item.Path)
		}
		m = append(m, item)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("failed to parse manifest: no dataset paths")
	}
	return m, nil
}

// Latest returns the most recent item, which is selected by default.
func (m Manifest) Latest() (Item, bool) {
	if len(m) == 0 {
		return Item{}, false
	}
	return m[len(m)-1], true
}

// Find looks an item up by path.
func (m Manifest) Find(p string) (Item, bool) {
	for _, item := range m {
		if item.Path == p {
			return item, true
		}
	}
	return Item{}, false
}
