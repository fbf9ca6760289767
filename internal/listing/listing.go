package listing

import (
	"sort"
	"strings"

	"realestate-trade-map/internal/filter"
	"realestate-trade-map/internal/models"
)

// DefaultSearchLimit caps the number of distinct names a search returns.
const DefaultSearchLimit = 10

// Match is one autocomplete hit: a building name and the first record carrying it.
type Match struct {
	Name   string        `json:"name"`
	Record models.Record `json:"-"`
}

// SortForDisplay returns a copy ordered by deal rank, then area desc, then
// contract month desc. Ties keep their input order.
func SortForDisplay(records []models.Record) []models.Record {
	sorted := make([]models.Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := &sorted[i].Norm, &sorted[j].Norm
		if ra, rb := a.Deal.Rank(), b.Deal.Rank(); ra != rb {
			return ra < rb
		}
		if aa, ab := floatOrZero(a.AreaM2), floatOrZero(b.AreaM2); aa != ab {
			return aa > ab
		}
		return intOrZero(a.YearMonth) > intOrZero(b.YearMonth)
	})
	return sorted
}

// Search finds building names containing query, case-insensitively. Results keep
// the iteration order of records and stop at limit distinct names.
func Search(query string, records []models.Record, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Match{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	seen := make(map[string]struct{})
	matches := make([]Match, 0, limit)
	for i := range records {
		name := records[i].Norm.BuildingName
		if _, dup := seen[name]; dup {
			continue
		}
		if !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		seen[name] = struct{}{}
		matches = append(matches, Match{Name: name, Record: records[i]})
		if len(matches) >= limit {
			break
		}
	}
	return matches
}

// DetailFor lists the transactions of one building that also pass the filter set,
// newest contract date first.
func DetailFor(name string, records []models.Record, s *filter.Set) []models.Record {
	target := strings.TrimSpace(name)
	matches := make([]models.Record, 0)
	for i := range records {
		r := &records[i]
		if strings.TrimSpace(r.Norm.BuildingName) != target {
			continue
		}
		if !filter.IsVisible(&r.Norm, s) {
			continue
		}
		matches = append(matches, *r)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Norm.DateKey() > matches[j].Norm.DateKey()
	})
	return matches
}

// Page slices a sorted list for offset/limit paging.
func Page(records []models.Record, offset, limit int) []models.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return []models.Record{}
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
