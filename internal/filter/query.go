package filter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/ranges"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Query is the URL form of a filter set plus the paging and dataset selection
// shared by the map API endpoints.
type Query struct {
	Housing  []string `schema:"housing"`
	Deals    []string `schema:"deal"`
	DealPick string   `schema:"deal_pick"`

	PriceMinEok *float64 `schema:"price_min_eok"`
	PriceMaxEok *float64 `schema:"price_max_eok"`
	AreaMin     *float64 `schema:"area_min"`
	AreaMax     *float64 `schema:"area_max"`

	// DateFrom/DateTo index the distinct contract months; YMFrom/YMTo are raw YYYYMM.
	DateFrom *int `schema:"date_from"`
	DateTo   *int `schema:"date_to"`
	YMFrom   *int `schema:"ym_from"`
	YMTo     *int `schema:"ym_to"`

	Sido string `schema:"sido"`
	Gusi string `schema:"gusi"`
	Dong string `schema:"dong"`

	Datasets []string `schema:"datasets"`
	Name     string   `schema:"name"`
	Q        string   `schema:"q"`
	Offset   int      `schema:"offset"`
	Limit    int      `schema:"limit"`
}

// DecodeQuery reads a Query from URL values. Unknown keys are ignored.
func DecodeQuery(values url.Values) (*Query, error) {
	q := &Query{}
	if err := decoder.Decode(q, values); err != nil {
		return nil, fmt.Errorf("failed to decode filter query: %w", err)
	}
	return q, nil
}

// Set builds the filter set, starting from the dataset defaults and overriding
// every dimension present in the query.
func (q *Query) Set(r ranges.Ranges) (*Set, error) {
	s := DefaultSet(r)

	if len(q.Housing) > 0 {
		types := make([]models.HousingType, 0, len(q.Housing))
		for _, label := range splitValues(q.Housing) {
			h, ok := models.ParseHousingType(label)
			if !ok {
				return nil, fmt.Errorf("unknown housing type %q", label)
			}
			types = append(types, h)
		}
		s.SetHousing(types...)
	}

	if len(q.Deals) > 0 {
		types := make([]models.DealType, 0, len(q.Deals))
		for _, label := range splitValues(q.Deals) {
			d, ok := models.ParseDealType(label)
			if !ok {
				return nil, fmt.Errorf("unknown deal type %q", label)
			}
			types = append(types, d)
		}
		s.SetDeals(types...)
	}
	if q.DealPick != "" {
		d, ok := models.ParseDealType(q.DealPick)
		if !ok {
			return nil, fmt.Errorf("unknown deal type %q", q.DealPick)
		}
		s.PickDeal(d)
	}

	if q.PriceMinEok != nil {
		v := EokToMan(*q.PriceMinEok)
		s.PriceMan.Min = &v
	}
	if q.PriceMaxEok != nil {
		v := EokToMan(*q.PriceMaxEok)
		s.PriceMan.Max = &v
	}
	if q.AreaMin != nil {
		s.AreaPy.Min = q.AreaMin
	}
	if q.AreaMax != nil {
		s.AreaPy.Max = q.AreaMax
	}

	if q.DateFrom != nil || q.DateTo != nil {
		i, j := 0, r.LastIndex()
		if q.DateFrom != nil {
			i = *q.DateFrom
		}
		if q.DateTo != nil {
			j = *q.DateTo
		}
		s.WithDateIndex(r, i, j)
	}
	if q.YMFrom != nil {
		s.YearMonth.Min = q.YMFrom
	}
	if q.YMTo != nil {
		s.YearMonth.Max = q.YMTo
	}

	s.SelectProvince(strings.TrimSpace(q.Sido))
	if s.Region.Province != "" {
		s.SelectDistrict(strings.TrimSpace(q.Gusi))
		if s.Region.District != "" {
			s.SelectNeighborhood(strings.TrimSpace(q.Dong))
		}
	}
	return s, nil
}

// splitValues accepts both repeated keys and comma-separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
