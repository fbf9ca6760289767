package region

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"realestate-trade-map/internal/models"
)

// Index is the province → district → neighborhood tree of a dataset,
// used to populate the cascading region selects.
type Index struct {
	tree map[string]map[string]map[string]struct{}
}

// Build indexes the regions present in records. Empty levels are skipped.
func Build(records []models.Record) *Index {
	idx := &Index{tree: make(map[string]map[string]map[string]struct{})}
	for i := range records {
		r := records[i].Norm.Region
		if r.Province == "" {
			continue
		}
		districts, ok := idx.tree[r.Province]
		if !ok {
			districts = make(map[string]map[string]struct{})
			idx.tree[r.Province] = districts
		}
		if r.District == "" {
			continue
		}
		dongs, ok := districts[r.District]
		if !ok {
			dongs = make(map[string]struct{})
			districts[r.District] = dongs
		}
		if r.Neighborhood != "" {
			dongs[r.Neighborhood] = struct{}{}
		}
	}
	return idx
}

// Provinces lists the provinces in Korean collation order.
func (idx *Index) Provinces() []string {
	return sortedKeys(idx.tree)
}

// Districts lists the districts of a province.
func (idx *Index) Districts(province string) []string {
	return sortedKeys(idx.tree[province])
}

// Neighborhoods lists the neighborhoods of a district.
func (idx *Index) Neighborhoods(province, district string) []string {
	return sortedKeys(idx.tree[province][district])
}

// Levels returns the option lists for the current selection. Deeper lists are
// empty until the parent level is chosen.
func (idx *Index) Levels(sel models.Region) Options {
	opts := Options{
		Provinces:     idx.Provinces(),
		Districts:     []string{},
		Neighborhoods: []string{},
	}
	if sel.Province != "" {
		opts.Districts = idx.Districts(sel.Province)
		if sel.District != "" {
			opts.Neighborhoods = idx.Neighborhoods(sel.Province, sel.District)
		}
	}
	return opts
}

// Options are the select contents for one region selection.
type Options struct {
	Provinces     []string `json:"sido"`
	Districts     []string `json:"gusi"`
	Neighborhoods []string `json:"dong"`
}

// TableVisible reports whether the region summary table is shown: only once
// all three levels are selected.
func TableVisible(sel models.Region) bool {
	return sel.Complete()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	c := collate.New(language.Korean)
	sort.Slice(keys, func(i, j int) bool {
		return c.CompareString(keys[i], keys[j]) < 0
	})
	return keys
}
