package filter

import (
	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/ranges"
)

// ManPerEok converts the eok values of the price control to stored man units.
const ManPerEok = 10000

// FloatRange is an inclusive range. A nil bound is open.
type FloatRange struct {
	Min *float64
	Max *float64
}

// IntRange is an inclusive range over YYYYMM values. A nil bound is open.
type IntRange struct {
	Min *int
	Max *int
}

// Set is the active filter configuration. It is a value object: handlers decode
// one per request and engine passes work on a Clone.
type Set struct {
	// Housing is nil for "all types"; an empty non-nil map admits nothing.
	Housing map[models.HousingType]bool
	// Deals is nil for "all types". DealPick, when set, replaces it with an equality check.
	Deals    map[models.DealType]bool
	DealPick models.DealType

	PriceMan  FloatRange
	AreaPy    FloatRange
	YearMonth IntRange
	Region    models.Region
}

// NewSet returns a set that admits every record.
func NewSet() *Set {
	return &Set{}
}

// DefaultHousing are the housing types checked when a dataset is loaded.
// Other is left out and must be asked for explicitly.
var DefaultHousing = []models.HousingType{
	models.HousingApartment,
	models.HousingRowMulti,
	models.HousingSingleMulti,
	models.HousingOfficetel,
}

// DefaultSet matches the controls right after a dataset is loaded: the named
// housing types, every deal type and the derived ranges. A dimension no record
// carries a value for stays open.
func DefaultSet(r ranges.Ranges) *Set {
	s := NewSet()
	s.SetHousing(DefaultHousing...)
	if r.Price.Count > 0 {
		s.SetPriceEok(float64(r.Price.MinEok), float64(r.Price.MaxEok))
	}
	if r.Area.Count > 0 {
		s.SetArea(float64(r.Area.Min), float64(r.Area.Max))
	}
	if from, to, ok := r.DateIndex(0, r.LastIndex()); ok {
		s.SetYearMonth(from, to)
	}
	return s
}

// EokToMan converts an eok amount from the price control into man units.
func EokToMan(eok float64) float64 {
	return eok * ManPerEok
}

// SetHousing restricts housing types. Passing no types admits nothing.
func (s *Set) SetHousing(types ...models.HousingType) {
	s.Housing = make(map[models.HousingType]bool, len(types))
	for _, t := range types {
		s.Housing[t] = true
	}
}

// SetDeals restricts deal types to a membership set and clears any single pick.
func (s *Set) SetDeals(types ...models.DealType) {
	s.DealPick = ""
	s.Deals = make(map[models.DealType]bool, len(types))
	for _, t := range types {
		s.Deals[t] = true
	}
}

// PickDeal switches to single-pick mode. An empty pick means all deal types.
func (s *Set) PickDeal(d models.DealType) {
	s.DealPick = d
}

// SetPriceEok sets the price range from control units (eok).
func (s *Set) SetPriceEok(minEok, maxEok float64) {
	lo, hi := EokToMan(minEok), EokToMan(maxEok)
	s.PriceMan = FloatRange{Min: &lo, Max: &hi}
}

// SetArea sets the floor-area range in pyeong.
func (s *Set) SetArea(minPy, maxPy float64) {
	s.AreaPy = FloatRange{Min: &minPy, Max: &maxPy}
}

// SetYearMonth sets the inclusive contract-month range.
func (s *Set) SetYearMonth(from, to int) {
	s.YearMonth = IntRange{Min: &from, Max: &to}
}

// WithDateIndex resolves a date control position range against the distinct
// contract months of the dataset.
func (s *Set) WithDateIndex(r ranges.Ranges, i, j int) {
	if from, to, ok := r.DateIndex(i, j); ok {
		s.SetYearMonth(from, to)
	}
}

// SelectProvince changes the province and resets the deeper levels.
func (s *Set) SelectProvince(province string) {
	s.Region = models.Region{Province: province}
}

// SelectDistrict changes the district and resets the neighborhood.
func (s *Set) SelectDistrict(district string) {
	s.Region.District = district
	s.Region.Neighborhood = ""
}

// SelectNeighborhood changes the neighborhood.
func (s *Set) SelectNeighborhood(neighborhood string) {
	s.Region.Neighborhood = neighborhood
}

// Clone returns a deep copy safe to read while the original keeps changing.
func (s *Set) Clone() *Set {
	c := *s
	if s.Housing != nil {
		c.Housing = make(map[models.HousingType]bool, len(s.Housing))
		for k, v := range s.Housing {
			c.Housing[k] = v
		}
	}
	if s.Deals != nil {
		c.Deals = make(map[models.DealType]bool, len(s.Deals))
		for k, v := range s.Deals {
			c.Deals[k] = v
		}
	}
	c.PriceMan = FloatRange{Min: copyFloat(s.PriceMan.Min), Max: copyFloat(s.PriceMan.Max)}
	c.AreaPy = FloatRange{Min: copyFloat(s.AreaPy.Min), Max: copyFloat(s.AreaPy.Max)}
	c.YearMonth = IntRange{Min: copyInt(s.YearMonth.Min), Max: copyInt(s.YearMonth.Max)}
	return &c
}

// IsVisible reports whether a normalized record passes every dimension of the set.
// A missing numeric value fails a dimension that has a bound.
func IsVisible(n *models.Normalized, s *Set) bool {
	if s == nil {
		return true
	}
	if s.Housing != nil && !s.Housing[n.Housing] {
		return false
	}
	if s.DealPick != "" {
		if n.Deal != s.DealPick {
			return false
		}
	} else if s.Deals != nil && !s.Deals[n.Deal] {
		return false
	}
	if !s.PriceMan.contains(n.PriceMan) {
		return false
	}
	if !s.AreaPy.contains(n.AreaPy) {
		return false
	}
	if !s.YearMonth.contains(n.YearMonth) {
		return false
	}
	return regionMatch(n.Region, s.Region)
}

// Apply returns the records visible under s, in input order.
func Apply(records []models.Record, s *Set) []models.Record {
	visible := make([]models.Record, 0, len(records))
	for i := range records {
		if IsVisible(&records[i].Norm, s) {
			visible = append(visible, records[i])
		}
	}
	return visible
}

func (r FloatRange) contains(v *float64) bool {
	if r.Min == nil && r.Max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

func (r IntRange) contains(v *int) bool {
	if r.Min == nil && r.Max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

func regionMatch(got, want models.Region) bool {
	if want.Province != "" && got.Province != want.Province {
		return false
	}
	if want.District != "" && got.District != want.District {
		return false
	}
	if want.Neighborhood != "" && got.Neighborhood != want.Neighborhood {
		return false
	}
	return true
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
