package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"realestate-trade-map/internal/dataset"
	"realestate-trade-map/internal/format"
	"realestate-trade-map/internal/group"
	"realestate-trade-map/internal/models"
)

// Marker is one building marker on the map.
type Marker struct {
	Name        string            `json:"name"`
	Lat         float64           `json:"lat"`
	Lng         float64           `json:"lng"`
	Count       int               `json:"count"`
	MaxPriceMan float64           `json:"max_price_man"`
	MaxPriceEok string            `json:"max_price_eok"`
	Deals       []models.DealType `json:"deals"`
	Color       string            `json:"color"`
	Shape       group.Shape       `json:"shape"`
}

// ListItem is one transaction card in the list and detail panels.
type ListItem struct {
	Name       string             `json:"name"`
	Deal       models.DealType    `json:"deal"`
	Housing    models.HousingType `json:"housing"`
	HousingRaw string             `json:"housing_raw,omitempty"`
	PriceLine  string             `json:"price_line"`
	RentDetail string             `json:"rent_detail,omitempty"`
	Area       string             `json:"area"`
	AreaM2     *float64           `json:"area_m2,omitempty"`
	YearMonth  string             `json:"year_month"`
	Date       string             `json:"date,omitempty"`
	Floor      *int               `json:"floor,omitempty"`
	Dong       string             `json:"building_dong,omitempty"`
	Address    string             `json:"address,omitempty"`
	Region     models.Region      `json:"region"`
	Lat        float64            `json:"lat"`
	Lng        float64            `json:"lng"`
}

// markers decorates groups with marker color and shape. The shape follows the
// housing type of the group's first record.
func markers(groups []models.BuildingGroup, visible []models.Record) []Marker {
	housing := make(map[string]models.HousingType, len(groups))
	for i := range visible {
		name := strings.TrimSpace(visible[i].Norm.BuildingName)
		if _, ok := housing[name]; !ok {
			housing[name] = visible[i].Norm.Housing
		}
	}

	out := make([]Marker, 0, len(groups))
	for i := range groups {
		g := &groups[i]
		out = append(out, Marker{
			Name:        g.Name,
			Lat:         g.Lat,
			Lng:         g.Lng,
			Count:       g.Count,
			MaxPriceMan: g.MaxPriceMan,
			MaxPriceEok: format.ManToEok(g.MaxPriceMan),
			Deals:       g.Deals,
			Color:       group.MarkerColor(g),
			Shape:       group.MarkerShape(housing[g.Name]),
		})
	}
	return out
}

func listItems(records []models.Record) []ListItem {
	out := make([]ListItem, 0, len(records))
	for i := range records {
		out = append(out, listItem(&records[i]))
	}
	return out
}

func listItem(r *models.Record) ListItem {
	n := &r.Norm
	item := ListItem{
		Name:       n.BuildingName,
		Deal:       n.Deal,
		Housing:    n.Housing,
		HousingRaw: n.HousingRaw,
		PriceLine:  format.PriceLine(n),
		RentDetail: format.RentDetail(n),
		Area:       format.Pyeong(n.AreaM2),
		AreaM2:     n.AreaM2,
		YearMonth:  format.Missing,
		Floor:      n.Floor,
		Dong:       n.BuildingDong,
		Address:    n.Address,
		Region:     n.Region,
		Lat:        r.Feature.Lat(),
		Lng:        r.Feature.Lng(),
	}
	if n.YearMonth != nil {
		item.YearMonth = format.YearMonth(*n.YearMonth)
		if n.Day != nil {
			item.Date = fmt.Sprintf("%s.%02d", item.YearMonth, *n.Day)
		}
	}
	return item
}

// statusFor maps dataset errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dataset.ErrUnknownDataset), errors.Is(err, dataset.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
