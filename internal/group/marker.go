package group

import "realestate-trade-map/internal/models"

var dealColors = map[models.DealType]string{
	models.DealSale:        "#d81b60",
	models.DealJeonse:      "#1e88e5",
	models.DealMonthlyRent: "#43a047",
	models.DealOther:       "#6d4c41",
}

// DefaultColor is used for groups without a known deal type.
const DefaultColor = "#6d4c41"

// Shape is the marker glyph for a housing type.
type Shape string

const (
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapeCircle   Shape = "circle"
	ShapeDiamond  Shape = "diamond"
)

// DealColor returns the marker color of a single deal type.
func DealColor(d models.DealType) string {
	if c, ok := dealColors[d]; ok {
		return c
	}
	return DefaultColor
}

// MarkerColor picks the color of the first deal type recorded for the group,
// not the most frequent one.
func MarkerColor(g *models.BuildingGroup) string {
	if len(g.Deals) == 0 {
		return DefaultColor
	}
	return DealColor(g.Deals[0])
}

// MarkerShape maps a housing type to its marker glyph.
func MarkerShape(h models.HousingType) Shape {
	switch h {
	case models.HousingApartment:
		return ShapeSquare
	case models.HousingRowMulti:
		return ShapeTriangle
	case models.HousingOfficetel:
		return ShapeDiamond
	default:
		return ShapeCircle
	}
}
