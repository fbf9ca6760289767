package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realestate-trade-map/internal/models"
)

func TestDealType(t *testing.T) {
	rent := 50.0
	zero := 0.0

	tests := []struct {
		name    string
		raw     string
		monthly *float64
		want    models.DealType
	}{
		{"sale", "매매", nil, models.DealSale},
		{"jeonse", "전세", &rent, models.DealJeonse},
		{"monthly", "월세", nil, models.DealMonthlyRent},
		{"combined with rent", "전월세", &rent, models.DealMonthlyRent},
		{"combined zero rent", "전월세", &zero, models.DealJeonse},
		{"combined missing rent", "전월세", nil, models.DealJeonse},
		{"unknown", "분양권", nil, models.DealOther},
		{"empty", "", nil, models.DealOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DealType(tt.raw, tt.monthly))
		})
	}
}

func TestHousingTypePrecedence(t *testing.T) {
	tests := []struct {
		raw  string
		want models.HousingType
	}{
		{"아파트", models.HousingApartment},
		{"아파트/오피스텔", models.HousingApartment},
		{"오피스텔 아파트형", models.HousingApartment},
		{"연립다세대", models.HousingRowMulti},
		{"다세대주택", models.HousingRowMulti},
		{"단독다가구", models.HousingSingleMulti},
		{"다가구", models.HousingSingleMulti},
		{"다세대/다가구", models.HousingRowMulti},
		{"오피스텔", models.HousingOfficetel},
		{"상가", models.HousingOther},
		{"", models.HousingOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HousingType(tt.raw), "raw=%q", tt.raw)
	}
}

func TestNormalizePrices(t *testing.T) {
	sale := Normalize(map[string]any{
		"거래유형": "매매",
		"거래금액": "125,000",
		"보증금":  0.0,
	})
	require.NotNil(t, sale.PriceMan)
	assert.Equal(t, 125000.0, *sale.PriceMan)

	lease := Normalize(map[string]any{
		"거래유형": "전월세",
		"거래금액": 99999.0,
		"보증금":  30000.0,
		"월세":   120.0,
	})
	assert.Equal(t, models.DealMonthlyRent, lease.Deal)
	require.NotNil(t, lease.PriceMan)
	assert.Equal(t, 30000.0, *lease.PriceMan)
	require.NotNil(t, lease.DepositEok)
	assert.Equal(t, 3.0, *lease.DepositEok)
	require.NotNil(t, lease.MonthlyMan)
	assert.Equal(t, 120.0, *lease.MonthlyMan)
}

func TestNormalizeInvalidNumbersBecomeNil(t *testing.T) {
	n := Normalize(map[string]any{
		"거래유형": "매매",
		"거래금액": "협의",
		"전용면적": math.Inf(1),
		"보증금":  "",
	})

	assert.Nil(t, n.PriceMan)
	assert.Nil(t, n.AreaM2)
	assert.Nil(t, n.AreaPy)
	assert.Nil(t, n.DepositEok)
}

func TestNormalizeArea(t *testing.T) {
	n := Normalize(map[string]any{"전용면적": 84.0})
	require.NotNil(t, n.AreaPy)
	assert.InDelta(t, 25.41, *n.AreaPy, 0.01)

	n = Normalize(map[string]any{"excluUseAr": "59.97"})
	require.NotNil(t, n.AreaPy)
	assert.InDelta(t, 18.14, *n.AreaPy, 0.01)
}

func TestNormalizeYearMonth(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  *int
	}{
		{"year and month numbers", map[string]any{"년": 2024.0, "월": 3.0}, intPtr(202403)},
		{"year and month strings", map[string]any{"년": "2023", "월": "11", "계약년월": "202001"}, intPtr(202311)},
		{"combined number", map[string]any{"계약년월": 202401.0}, intPtr(202401)},
		{"combined long string", map[string]any{"계약년월": "20240215"}, intPtr(202402)},
		{"only year falls back", map[string]any{"년": 2024.0, "계약년월": "202312"}, intPtr(202312)},
		{"missing", map[string]any{}, nil},
		{"garbage", map[string]any{"계약년월": "미정"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.props).YearMonth)
		})
	}
}

func TestRegion(t *testing.T) {
	explicit := Region(map[string]any{
		"시/도": "서울특별시",
		"구/시": "강남구",
		"법정동": "역삼동",
		"주소":  "경기도 성남시 분당동 1",
	})
	assert.Equal(t, models.Region{Province: "서울특별시", District: "강남구", Neighborhood: "역삼동"}, explicit)

	alias := Region(map[string]any{"시도명": "부산광역시", "시군구명": "해운대구"})
	assert.Equal(t, models.Region{Province: "부산광역시", District: "해운대구"}, alias)

	parsed := Region(map[string]any{"주소": "서울특별시 송파구 잠실동 40-1"})
	assert.Equal(t, models.Region{Province: "서울특별시", District: "송파구", Neighborhood: "잠실동"}, parsed)

	lot := Region(map[string]any{"지번주소": "경기도 수원시 인계동 1111"})
	assert.Equal(t, models.Region{Province: "경기도", District: "수원시", Neighborhood: "인계동"}, lot)

	assert.Equal(t, models.Region{}, Region(map[string]any{"주소": "주소불명"}))
}

func TestBuildingName(t *testing.T) {
	assert.Equal(t, "래미안", BuildingName(map[string]any{"단지명/건물명": "  래미안 ", "건물명": "x"}))
	assert.Equal(t, "힐스테이트", BuildingName(map[string]any{"단지명/건물명": " ", "건물명": "힐스테이트"}))
	assert.Equal(t, "자이", BuildingName(map[string]any{"단지명": "자이", "주소": "서울"}))
	assert.Equal(t, "서울특별시 중구 1", BuildingName(map[string]any{"주소": "서울특별시 중구 1"}))
	assert.Equal(t, UnknownBuilding, BuildingName(map[string]any{}))
}

func TestNormalizeIsTotalAndDeterministic(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"거래유형": 3.0, "주택유형": true, "월세": []any{1}, "계약년월": map[string]any{}},
		{"거래유형": "전월세", "월세": "abc", "보증금": math.NaN()},
	}

	for _, props := range inputs {
		assert.NotPanics(t, func() { Normalize(props) })
		assert.Equal(t, Normalize(props), Normalize(props))
	}

	n := Normalize(nil)
	assert.Equal(t, models.DealOther, n.Deal)
	assert.Equal(t, models.HousingOther, n.Housing)
	assert.Equal(t, UnknownBuilding, n.BuildingName)
}

func TestNormalizeNFC(t *testing.T) {
	// 아파트 written as decomposed jamo.
	decomposed := "\u110b\u1161\u1111\u1161\u1110\u1173"
	assert.Equal(t, models.HousingApartment, Normalize(map[string]any{"주택유형": decomposed}).Housing)
}

func TestRecords(t *testing.T) {
	features := []models.Feature{
		models.NewPointFeature(127.0, 37.5, map[string]any{"거래유형": "매매", "단지명": "A"}),
		models.NewPointFeature(127.1, 37.6, nil),
	}
	records := Records(features)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Norm.BuildingName)
	assert.Equal(t, models.DealSale, records[0].Norm.Deal)
	assert.Equal(t, 37.6, records[1].Feature.Lat())
}

func intPtr(i int) *int { return &i }
