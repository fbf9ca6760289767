package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meilisearch/meilisearch-go"

	"realestate-trade-map/internal/filter"
	"realestate-trade-map/internal/models"
)

type FilterParams struct {
	Query  string
	Set    *filter.Set
	SortBy string
	Limit  int64
	Offset int64
}

// BuildFilter translates a filter set into a Meilisearch filter expression.
// ok is false when the set admits nothing, such as an empty housing selection.
func BuildFilter(s *filter.Set) (expr string, ok bool) {
	if s == nil {
		return "", true
	}

	var filters []string

	// Housing type filter
	if s.Housing != nil {
		group := orGroup("housing_type", selected(models.HousingTypes, s.Housing))
		if group == "" {
			return "", false
		}
		filters = append(filters, group)
	}

	// Deal type filter
	if s.DealPick != "" {
		filters = append(filters, equals("deal_type", string(s.DealPick)))
	} else if s.Deals != nil {
		group := orGroup("deal_type", selected(models.DealTypes, s.Deals))
		if group == "" {
			return "", false
		}
		filters = append(filters, group)
	}

	// Numeric ranges
	filters = appendRange(filters, "price_man", s.PriceMan.Min, s.PriceMan.Max)
	filters = appendRange(filters, "area_py", s.AreaPy.Min, s.AreaPy.Max)
	if s.YearMonth.Min != nil {
		filters = append(filters, fmt.Sprintf("year_month >= %d", *s.YearMonth.Min))
	}
	if s.YearMonth.Max != nil {
		filters = append(filters, fmt.Sprintf("year_month <= %d", *s.YearMonth.Max))
	}

	// Region filter
	if s.Region.Province != "" {
		filters = append(filters, equals("sido", s.Region.Province))
	}
	if s.Region.District != "" {
		filters = append(filters, equals("gusi", s.Region.District))
	}
	if s.Region.Neighborhood != "" {
		filters = append(filters, equals("dong", s.Region.Neighborhood))
	}

	return strings.Join(filters, " AND "), true
}

func selected[T ~string](order []T, set map[T]bool) []string {
	var out []string
	for _, v := range order {
		if set[v] {
			out = append(out, string(v))
		}
	}
	return out
}

func orGroup(field string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = equals(field, v)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " OR "))
}

func equals(field, value string) string {
	return fmt.Sprintf("%s = '%s'", field, strings.ReplaceAll(value, "'", `\'`))
}

func appendRange(filters []string, field string, lo, hi *float64) []string {
	if lo != nil {
		filters = append(filters, fmt.Sprintf("%s >= %s", field, strconv.FormatFloat(*lo, 'f', -1, 64)))
	}
	if hi != nil {
		filters = append(filters, fmt.Sprintf("%s <= %s", field, strconv.FormatFloat(*hi, 'f', -1, 64)))
	}
	return filters
}

// FilterSearch runs a text query restricted by a filter set
func (s *SearchClient) FilterSearch(params FilterParams) (*SearchResult, error) {
	filterStr, ok := BuildFilter(params.Set)
	if !ok {
		return &SearchResult{Hits: []Document{}}, nil
	}

	var sort []string
	if params.SortBy != "" {
		sort = []string{params.SortBy}
	}

	if params.Limit == 0 {
		params.Limit = 20
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if filterStr != "" {
		searchReq.Filter = filterStr
	}
	if len(sort) > 0 {
		searchReq.Sort = sort
	}

	searchRes, err := s.client.Index(s.index).Search(params.Query, searchReq)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", s.index, err)
	}

	docs := make([]Document, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		docs = append(docs, parseDocumentFromHit(hitMap))
	}

	return &SearchResult{
		Hits:           docs,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
