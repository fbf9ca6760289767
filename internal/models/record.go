package models

// DealType is the canonical transaction kind.
type DealType string

const (
	DealSale        DealType = "매매"
	DealJeonse      DealType = "전세"
	DealMonthlyRent DealType = "월세"
	DealOther       DealType = "기타"
)

// DealTypes lists every deal type in display rank order.
var DealTypes = []DealType{DealSale, DealJeonse, DealMonthlyRent, DealOther}

// Rank orders deal types for list display: sale, jeonse, monthly rent, other.
func (d DealType) Rank() int {
	switch d {
	case DealSale:
		return 0
	case DealJeonse:
		return 1
	case DealMonthlyRent:
		return 2
	default:
		return 3
	}
}

// HousingType is the canonical housing category.
type HousingType string

const (
	HousingApartment   HousingType = "아파트"
	HousingRowMulti    HousingType = "연립다세대"
	HousingSingleMulti HousingType = "단독다가구"
	HousingOfficetel   HousingType = "오피스텔"
	HousingOther       HousingType = "기타"
)

// HousingTypes lists every housing type in classification precedence order.
var HousingTypes = []HousingType{HousingApartment, HousingRowMulti, HousingSingleMulti, HousingOfficetel, HousingOther}

// ParseDealType maps a canonical label back to its DealType.
func ParseDealType(s string) (DealType, bool) {
	for _, d := range DealTypes {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// ParseHousingType maps a canonical label back to its HousingType.
func ParseHousingType(s string) (HousingType, bool) {
	for _, h := range HousingTypes {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

// Region is the administrative location of a record. Missing levels are empty strings.
type Region struct {
	Province     string `json:"sido"`
	District     string `json:"gusi"`
	Neighborhood string `json:"dong"`
}

// Complete reports whether all three levels are set.
func (r Region) Complete() bool {
	return r.Province != "" && r.District != "" && r.Neighborhood != ""
}

// Normalized holds the canonical values derived from a raw property bag.
// Numeric fields are nil when the source is missing or not a finite number.
type Normalized struct {
	Deal         DealType    `json:"deal_type"`
	Housing      HousingType `json:"housing_type"`
	HousingRaw   string      `json:"housing_raw,omitempty"`
	PriceMan     *float64    `json:"price_man"`
	DepositEok   *float64    `json:"deposit_eok"`
	MonthlyMan   *float64    `json:"monthly_man"`
	AreaM2       *float64    `json:"area_m2"`
	AreaPy       *float64    `json:"area_py"`
	YearMonth    *int        `json:"year_month"`
	Day          *int        `json:"day,omitempty"`
	Region       Region      `json:"region"`
	BuildingName string      `json:"building_name"`
	Address      string      `json:"address,omitempty"`

	// 상세 표시용
	Floor        *int   `json:"floor,omitempty"`
	BuildingDong string `json:"building_dong,omitempty"`
}

// DateKey is yearMonth*100 + day with missing parts counted as zero.
func (n *Normalized) DateKey() int {
	key := 0
	if n.YearMonth != nil {
		key = *n.YearMonth * 100
	}
	if n.Day != nil {
		key += *n.Day
	}
	return key
}

// Record pairs a raw feature with its normalized view. Records are never mutated after load.
type Record struct {
	Feature Feature
	Norm    Normalized
}

// BuildingGroup aggregates the visible records sharing a building name.
type BuildingGroup struct {
	Name        string     `json:"name"`
	Lat         float64    `json:"lat"`
	Lng         float64    `json:"lng"`
	Count       int        `json:"count"`
	MaxPriceMan float64    `json:"max_price_man"`
	Deals       []DealType `json:"deals"`
}

// HasDeal reports whether d was already recorded for the group.
func (g *BuildingGroup) HasDeal(d DealType) bool {
	for _, existing := range g.Deals {
		if existing == d {
			return true
		}
	}
	return false
}
