package normalize

import (
	"regexp"
	"strings"

	"realestate-trade-map/internal/models"
)

// PyeongDivisor converts square meters to pyeong.
const PyeongDivisor = 3.3058

// UnknownBuilding names a record that carries no building name and no address.
const UnknownBuilding = "미상"

// leaseOrRent is the combined raw deal type resolved by the monthly rent amount.
const leaseOrRent = "전월세"

// Key resolution order per canonical field. The first key holding a non-empty value wins.
var (
	dealTypeKeys     = []string{"거래유형", "dealType"}
	housingTypeKeys  = []string{"주택유형", "housingType"}
	saleAmountKeys   = []string{"거래금액", "dealAmount"}
	depositKeys      = []string{"보증금", "deposit"}
	monthlyRentKeys  = []string{"월세", "monthlyRent"}
	areaKeys         = []string{"전용면적", "excluUseAr"}
	yearKeys         = []string{"년", "dealYear"}
	monthKeys        = []string{"월", "dealMonth"}
	yearMonthKeys    = []string{"계약년월"}
	dayKeys          = []string{"계약일", "dealDay"}
	floorKeys        = []string{"층", "floor"}
	buildingDongKeys = []string{"동", "aptDong"}
	provinceKeys     = []string{"시/도", "시도", "시도명"}
	districtKeys     = []string{"구/시", "구시", "시군구명", "시군구"}
	neighborhoodKeys = []string{"법정동", "법정동명", "법정동명칭", "umdNm"}
	addressKeys      = []string{"주소", "지번주소"}
	buildingNameKeys = []string{"단지명/건물명", "건물명", "단지명", "aptNm", "주소"}
)

// addressPattern splits "<province> <district> <neighborhood>" at the start of a lot address.
var addressPattern = regexp.MustCompile(`^([^ ]+?[도|시])\s+([^ ]+?구|[^ ]+?시)\s+([^ ]+?동)`)

// Normalize derives the canonical view of a raw property bag. It never fails:
// missing keys fall back to Other, nil or an empty string.
func Normalize(props map[string]any) models.Normalized {
	if props == nil {
		props = map[string]any{}
	}

	monthly := number(props, monthlyRentKeys...)
	deposit := number(props, depositKeys...)
	area := number(props, areaKeys...)

	n := models.Normalized{
		Deal:         DealType(text(props, dealTypeKeys...), monthly),
		HousingRaw:   text(props, housingTypeKeys...),
		MonthlyMan:   monthly,
		AreaM2:       area,
		YearMonth:    yearMonth(props),
		Day:          integer(props, dayKeys...),
		Floor:        integer(props, floorKeys...),
		BuildingDong: text(props, buildingDongKeys...),
		Region:       Region(props),
		Address:      text(props, addressKeys...),
		BuildingName: BuildingName(props),
	}
	n.Housing = HousingType(n.HousingRaw)

	if n.Deal == models.DealSale {
		n.PriceMan = number(props, saleAmountKeys...)
	} else {
		n.PriceMan = deposit
	}
	if deposit != nil {
		eok := *deposit / 10000
		n.DepositEok = &eok
	}
	if area != nil {
		py := *area / PyeongDivisor
		n.AreaPy = &py
	}
	return n
}

// DealType resolves the raw deal label. The combined lease-or-rent label becomes
// monthly rent only when a positive monthly amount is present.
func DealType(raw string, monthlyMan *float64) models.DealType {
	switch raw {
	case string(models.DealSale):
		return models.DealSale
	case string(models.DealJeonse):
		return models.DealJeonse
	case string(models.DealMonthlyRent):
		return models.DealMonthlyRent
	case leaseOrRent:
		if monthlyMan != nil && *monthlyMan > 0 {
			return models.DealMonthlyRent
		}
		return models.DealJeonse
	}
	return models.DealOther
}

// HousingType classifies by substring containment. Order is fixed:
// apartment, row/multi-household, single/multiplex, officetel.
func HousingType(raw string) models.HousingType {
	switch {
	case strings.Contains(raw, "아파트"):
		return models.HousingApartment
	case strings.Contains(raw, "연립"), strings.Contains(raw, "다세대"):
		return models.HousingRowMulti
	case strings.Contains(raw, "단독"), strings.Contains(raw, "다가구"):
		return models.HousingSingleMulti
	case strings.Contains(raw, "오피스텔"):
		return models.HousingOfficetel
	}
	return models.HousingOther
}

// Region prefers explicit region keys and falls back to parsing the address.
func Region(props map[string]any) models.Region {
	r := models.Region{
		Province:     text(props, provinceKeys...),
		District:     text(props, districtKeys...),
		Neighborhood: text(props, neighborhoodKeys...),
	}
	if r.Province != "" || r.District != "" || r.Neighborhood != "" {
		return r
	}

	m := addressPattern.FindStringSubmatch(text(props, addressKeys...))
	if m == nil {
		return models.Region{}
	}
	return models.Region{Province: m[1], District: m[2], Neighborhood: m[3]}
}

// BuildingName returns the trimmed group identity of a record.
func BuildingName(props map[string]any) string {
	if name := text(props, buildingNameKeys...); name != "" {
		return name
	}
	return UnknownBuilding
}

func yearMonth(props map[string]any) *int {
	y, m := text(props, yearKeys...), text(props, monthKeys...)
	if y != "" && m != "" {
		return atoi(padLeft(y, 4) + padLeft(m, 2))
	}

	c := text(props, yearMonthKeys...)
	if c == "" {
		return nil
	}
	if runes := []rune(c); len(runes) > 6 {
		c = string(runes[:6])
	}
	return atoi(c)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Records normalizes a feature collection once so later passes read memoized values.
func Records(features []models.Feature) []models.Record {
	records := make([]models.Record, 0, len(features))
	for _, f := range features {
		records = append(records, models.Record{Feature: f, Norm: Normalize(f.Properties)})
	}
	return records
}
