package group

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"realestate-trade-map/internal/models"
)

// Group aggregates records by trimmed building name. Distinct buildings sharing
// a name are merged into one group. The representative position is the first
// record's, and Deals keeps first-seen order.
//
// Groups are ordered by count desc, then max price desc, then name in Korean
// collation order.
func Group(records []models.Record) []models.BuildingGroup {
	index := make(map[string]int)
	groups := make([]models.BuildingGroup, 0)

	for i := range records {
		r := &records[i]
		name := strings.TrimSpace(r.Norm.BuildingName)
		price := 0.0
		if r.Norm.PriceMan != nil {
			price = *r.Norm.PriceMan
		}

		idx, ok := index[name]
		if !ok {
			groups = append(groups, models.BuildingGroup{
				Name:        name,
				Lat:         r.Feature.Lat(),
				Lng:         r.Feature.Lng(),
				MaxPriceMan: price,
			})
			idx = len(groups) - 1
			index[name] = idx
		}

		g := &groups[idx]
		g.Count++
		if price > g.MaxPriceMan {
			g.MaxPriceMan = price
		}
		if !g.HasDeal(r.Norm.Deal) {
			g.Deals = append(g.Deals, r.Norm.Deal)
		}
	}

	Sort(groups)
	return groups
}

// Sort orders groups by prominence in place.
func Sort(groups []models.BuildingGroup) {
	// collate.Collator keeps scratch buffers, so one per call.
	c := collate.New(language.Korean)
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := &groups[i], &groups[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.MaxPriceMan != b.MaxPriceMan {
			return a.MaxPriceMan > b.MaxPriceMan
		}
		return c.CompareString(a.Name, b.Name) < 0
	})
}

// Total sums the counts of groups.
func Total(groups []models.BuildingGroup) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}
