package models

// Feature is a GeoJSON point feature as delivered by the dataset files.
// Properties is a free-form bag whose key set differs between dataset vintages.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry holds a Point geometry. Coordinates are [lng, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Lng returns the longitude, or 0 when the geometry is incomplete.
func (f *Feature) Lng() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[0]
}

// Lat returns the latitude, or 0 when the geometry is incomplete.
func (f *Feature) Lat() float64 {
	if len(f.Geometry.Coordinates) < 2 {
		return 0
	}
	return f.Geometry.Coordinates[1]
}

// NewPointFeature builds a Point feature from coordinates and properties.
func NewPointFeature(lng, lat float64, props map[string]any) Feature {
	if props == nil {
		props = map[string]any{}
	}
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: []float64{lng, lat},
		},
		Properties: props,
	}
}
