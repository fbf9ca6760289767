package engine

import (
	"realestate-trade-map/internal/filter"
	"realestate-trade-map/internal/group"
	"realestate-trade-map/internal/listing"
	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/region"
)

// Result is everything one filter pass renders: markers, the list and,
// when a full region is selected, the region summary table.
type Result struct {
	Count       int
	Visible     []models.Record
	Groups      []models.BuildingGroup
	List        []models.Record
	RegionTable []models.BuildingGroup
}

// Run filters records once and derives groups and the display list from the same
// visible slice. The set is cloned first so callers may keep mutating theirs.
func Run(records []models.Record, s *filter.Set) Result {
	snapshot := s
	if s != nil {
		snapshot = s.Clone()
	}

	visible := filter.Apply(records, snapshot)
	res := Result{
		Count:   len(visible),
		Visible: visible,
		Groups:  group.Group(visible),
		List:    listing.SortForDisplay(visible),
	}
	if snapshot != nil && region.TableVisible(snapshot.Region) {
		res.RegionTable = res.Groups
	}
	return res
}
