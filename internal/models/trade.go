package models

import "time"

// Trade is one already-geocoded transaction row in the read-only trades table.
type Trade struct {
	// 기본 정보
	ID           int64  `gorm:"primaryKey" json:"id"`
	Dataset      string `gorm:"type:varchar(100);index" json:"dataset"`
	BuildingName string `gorm:"type:varchar(200)" json:"building_name"`
	Address      string `gorm:"type:text" json:"address"`

	// 분류
	HousingType string `gorm:"type:varchar(50)" json:"housing_type"`
	DealType    string `gorm:"type:varchar(20)" json:"deal_type"`

	// 금액 (만원)
	DealAmount  *float64 `gorm:"type:decimal(14,2)" json:"deal_amount,omitempty"`
	Deposit     *float64 `gorm:"type:decimal(14,2)" json:"deposit,omitempty"`
	MonthlyRent *float64 `gorm:"type:decimal(14,2)" json:"monthly_rent,omitempty"`

	// 면적/층
	AreaM2 *float64 `gorm:"type:decimal(10,2)" json:"area_m2,omitempty"`
	Floor  *int     `gorm:"type:int" json:"floor,omitempty"`

	// 계약일
	ContractYM  string `gorm:"type:varchar(6)" json:"contract_ym"`
	ContractDay *int   `gorm:"type:int" json:"contract_day,omitempty"`

	// 지역
	Sido string `gorm:"type:varchar(50)" json:"sido"`
	Gusi string `gorm:"type:varchar(50)" json:"gusi"`
	Dong string `gorm:"type:varchar(50)" json:"dong"`

	// 좌표
	Lat float64 `gorm:"type:double" json:"lat"`
	Lng float64 `gorm:"type:double" json:"lng"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the table name regardless of gorm pluralization.
func (Trade) TableName() string {
	return "trades"
}

// ToFeature converts the row into the same property bag a GeoJSON export carries,
// so SQL and file datasets go through one normalizer.
func (t *Trade) ToFeature() Feature {
	props := map[string]any{
		"단지명/건물명": t.BuildingName,
		"주소":      t.Address,
		"주택유형":    t.HousingType,
		"거래유형":    t.DealType,
		"계약년월":    t.ContractYM,
		"시/도":     t.Sido,
		"구/시":     t.Gusi,
		"법정동":     t.Dong,
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			props[key] = *v
		}
	}
	setFloat("거래금액", t.DealAmount)
	setFloat("보증금", t.Deposit)
	setFloat("월세", t.MonthlyRent)
	setFloat("전용면적", t.AreaM2)
	if t.Floor != nil {
		props["층"] = float64(*t.Floor)
	}
	if t.ContractDay != nil {
		props["계약일"] = float64(*t.ContractDay)
	}
	return NewPointFeature(t.Lng, t.Lat, props)
}
