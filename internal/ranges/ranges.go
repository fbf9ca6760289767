package ranges

import (
	"math"
	"sort"

	"realestate-trade-map/internal/models"
)

// PriceRange bounds prices in eok (100M won). Count is the number of records
// carrying a price; zero means the bounds are placeholders.
type PriceRange struct {
	MinEok int `json:"min_eok"`
	MaxEok int `json:"max_eok"`
	Count  int `json:"count"`
}

// AreaRange bounds floor area in pyeong. Count is the number of records
// carrying an area.
type AreaRange struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Count int `json:"count"`
}

// Ranges seeds the range controls of one loaded dataset.
type Ranges struct {
	Price      PriceRange `json:"price"`
	Area       AreaRange  `json:"area"`
	YearMonths []int      `json:"year_months"`
}

// Derive computes the price, area and contract-month domains of records.
// Nil values are skipped. A degenerate domain is widened to min+1.
func Derive(records []models.Record) Ranges {
	var mans, pys []float64
	seen := make(map[int]struct{})
	yms := make([]int, 0)

	for i := range records {
		n := &records[i].Norm
		if n.PriceMan != nil {
			mans = append(mans, *n.PriceMan)
		}
		if n.AreaPy != nil {
			pys = append(pys, *n.AreaPy)
		}
		if n.YearMonth != nil {
			if _, ok := seen[*n.YearMonth]; !ok {
				seen[*n.YearMonth] = struct{}{}
				yms = append(yms, *n.YearMonth)
			}
		}
	}
	sort.Ints(yms)

	manMin, manMax := minMax(mans)
	pyMin, pyMax := minMax(pys)

	priceMin, priceMax := widen(math.Floor(manMin/10000), math.Ceil(manMax/10000))
	areaMin, areaMax := widen(math.Floor(pyMin), math.Ceil(pyMax))

	return Ranges{
		Price:      PriceRange{MinEok: priceMin, MaxEok: priceMax, Count: len(mans)},
		Area:       AreaRange{Min: areaMin, Max: areaMax, Count: len(pys)},
		YearMonths: yms,
	}
}

// DateIndex resolves a position range over the distinct contract months to YYYYMM bounds.
// Indices are clamped; ok is false when the dataset has no contract months.
func (r Ranges) DateIndex(i, j int) (from, to int, ok bool) {
	n := len(r.YearMonths)
	if n == 0 {
		return 0, 0, false
	}
	i, j = clamp(i, 0, n-1), clamp(j, 0, n-1)
	if i > j {
		i, j = j, i
	}
	return r.YearMonths[i], r.YearMonths[j], true
}

// LastIndex is the highest valid date index, 0 for an empty dataset.
func (r Ranges) LastIndex() int {
	if len(r.YearMonths) == 0 {
		return 0
	}
	return len(r.YearMonths) - 1
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func widen(lo, hi float64) (int, int) {
	if hi <= lo {
		hi = lo + 1
	}
	return int(lo), int(hi)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
