package dataset

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"

	"realestate-trade-map/internal/models"
)

var (
	// ErrMalformedDataset means the payload is not a feature collection.
	ErrMalformedDataset = errors.New("malformed dataset")
	// ErrNotFound means the dataset path does not resolve to a file or URL.
	ErrNotFound = errors.New("dataset not found")
	// ErrUnknownDataset means the path is not listed in the manifest.
	ErrUnknownDataset = errors.New("unknown dataset")
)

type rawGeometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type rawFeature struct {
	Type       string         `json:"type"`
	Geometry   *rawGeometry   `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type rawCollection struct {
	Type     string        `json:"type"`
	Features *[]rawFeature `json:"features"`
}

// DecodeFeatures parses a GeoJSON FeatureCollection and keeps Point features only.
func DecodeFeatures(data []byte) ([]models.Feature, error) {
	var fc rawCollection
	if err := sonic.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDataset, err)
	}
	if fc.Features == nil {
		return nil, fmt.Errorf("%w: features is not an array", ErrMalformedDataset)
	}

	features := make([]models.Feature, 0, len(*fc.Features))
	for _, rf := range *fc.Features {
		if rf.Geometry == nil || rf.Geometry.Type != "Point" {
			continue
		}
		lng, lat, ok := pointCoordinates(rf.Geometry.Coordinates)
		if !ok {
			continue
		}
		features = append(features, models.NewPointFeature(lng, lat, rf.Properties))
	}
	return features, nil
}

func pointCoordinates(v any) (float64, float64, bool) {
	coords, ok := v.([]any)
	if !ok || len(coords) < 2 {
		return 0, 0, false
	}
	lng, ok1 := coords[0].(float64)
	lat, ok2 := coords[1].(float64)
	return lng, lat, ok1 && ok2
}
