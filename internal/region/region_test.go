package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/normalize"
)

func TestBuild(t *testing.T) {
	records := normalize.Records([]models.Feature{
		models.NewPointFeature(0, 0, map[string]any{"시/도": "서울특별시", "구/시": "송파구", "법정동": "잠실동"}),
		models.NewPointFeature(0, 0, map[string]any{"시/도": "서울특별시", "구/시": "강남구", "법정동": "역삼동"}),
		models.NewPointFeature(0, 0, map[string]any{"시/도": "서울특별시", "구/시": "강남구", "법정동": "개포동"}),
		models.NewPointFeature(0, 0, map[string]any{"주소": "경기도 성남시 분당동 1"}),
		models.NewPointFeature(0, 0, map[string]any{"시/도": "부산광역시"}),
		models.NewPointFeature(0, 0, map[string]any{}),
	})

	idx := Build(records)

	assert.Equal(t, []string{"경기도", "부산광역시", "서울특별시"}, idx.Provinces())
	assert.Equal(t, []string{"강남구", "송파구"}, idx.Districts("서울특별시"))
	assert.Equal(t, []string{"개포동", "역삼동"}, idx.Neighborhoods("서울특별시", "강남구"))
	assert.Empty(t, idx.Districts("부산광역시"))
	assert.Empty(t, idx.Neighborhoods("없음", "없음"))
}

func TestLevels(t *testing.T) {
	records := normalize.Records([]models.Feature{
		models.NewPointFeature(0, 0, map[string]any{"시/도": "서울특별시", "구/시": "강남구", "법정동": "역삼동"}),
	})
	idx := Build(records)

	opts := idx.Levels(models.Region{})
	assert.Equal(t, []string{"서울특별시"}, opts.Provinces)
	assert.Empty(t, opts.Districts)
	assert.Empty(t, opts.Neighborhoods)

	opts = idx.Levels(models.Region{Province: "서울특별시", District: "강남구"})
	assert.Equal(t, []string{"강남구"}, opts.Districts)
	assert.Equal(t, []string{"역삼동"}, opts.Neighborhoods)
}

func TestTableVisible(t *testing.T) {
	assert.False(t, TableVisible(models.Region{}))
	assert.False(t, TableVisible(models.Region{Province: "서울특별시", District: "강남구"}))
	assert.True(t, TableVisible(models.Region{Province: "서울특별시", District: "강남구", Neighborhood: "역삼동"}))
}
