package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"realestate-trade-map/internal/dataset"
	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/scheduler"
	"realestate-trade-map/internal/search"
)

// topDistricts caps the district ranking of GetAreaStats.
const topDistricts = 20

// AdminHandler handles admin-related requests
type AdminHandler struct {
	datasets  *dataset.Service
	cache     *dataset.Cache
	scheduler *scheduler.Scheduler
	search    *search.SearchClient
}

// NewAdminHandler creates a new admin handler. sched and searchClient may be nil.
func NewAdminHandler(datasets *dataset.Service, cache *dataset.Cache, sched *scheduler.Scheduler, searchClient *search.SearchClient) *AdminHandler {
	return &AdminHandler{
		datasets:  datasets,
		cache:     cache,
		scheduler: sched,
		search:    searchClient,
	}
}

// GetStats returns record counts of the active datasets by deal and housing type
func (h *AdminHandler) GetStats(c *gin.Context) {
	records, err := h.datasets.Records(c.Request.Context(), nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	deals := make(map[models.DealType]int)
	housing := make(map[models.HousingType]int)
	for i := range records {
		deals[records[i].Norm.Deal]++
		housing[records[i].Norm.Housing]++
	}

	dealCounts := make([]gin.H, 0, len(models.DealTypes))
	for _, d := range models.DealTypes {
		dealCounts = append(dealCounts, gin.H{"type": d, "count": deals[d]})
	}
	housingCounts := make([]gin.H, 0, len(models.HousingTypes))
	for _, t := range models.HousingTypes {
		housingCounts = append(housingCounts, gin.H{"type": t, "count": housing[t]})
	}

	stats := gin.H{
		"records": gin.H{
			"total":   len(records),
			"deal":    dealCounts,
			"housing": housingCounts,
		},
		"datasets": gin.H{
			"available": len(h.datasets.Manifest()),
			"active":    h.datasets.Active(),
		},
	}
	if h.cache != nil {
		stats["cache"] = gin.H{"loaded": len(h.cache.Paths())}
	}
	if h.scheduler != nil {
		stats["scheduler"] = h.scheduler.Status()
	}
	stats["search_index"] = h.search != nil

	c.JSON(http.StatusOK, stats)
}

// AreaStat is the transaction count of one district.
type AreaStat struct {
	Sido  string `json:"sido"`
	Gusi  string `json:"gusi"`
	Count int    `json:"count"`
}

// districtRanking counts records per province and district, busiest first.
func districtRanking(records []models.Record, limit int) []AreaStat {
	counts := make(map[[2]string]int)
	for i := range records {
		r := records[i].Norm.Region
		if r.District == "" {
			continue
		}
		counts[[2]string{r.Province, r.District}]++
	}

	stats := make([]AreaStat, 0, len(counts))
	for k, n := range counts {
		stats = append(stats, AreaStat{Sido: k[0], Gusi: k[1], Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		if stats[i].Sido != stats[j].Sido {
			return stats[i].Sido < stats[j].Sido
		}
		return stats[i].Gusi < stats[j].Gusi
	})
	if len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

// GetAreaStats returns the districts with the most transactions
func (h *AdminHandler) GetAreaStats(c *gin.Context) {
	records, err := h.datasets.Records(c.Request.Context(), nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	stats := districtRanking(records, topDistricts)
	c.JSON(http.StatusOK, gin.H{
		"area_stats": stats,
		"count":      len(stats),
	})
}

// PriceRange is one bucket of the price distribution, in man units.
type PriceRange struct {
	RangeLabel string  `json:"range_label"`
	MinMan     float64 `json:"min_man"`
	MaxMan     float64 `json:"max_man"`
	Count      int     `json:"count"`
}

// priceDistribution buckets the headline price (sale amount or deposit) of
// records with deal type d. Records without a price are counted separately.
func priceDistribution(records []models.Record, d models.DealType) ([]PriceRange, int) {
	ranges := []PriceRange{
		{RangeLabel: "〜1억", MinMan: 0, MaxMan: 10000},
		{RangeLabel: "1〜3억", MinMan: 10000, MaxMan: 30000},
		{RangeLabel: "3〜5억", MinMan: 30000, MaxMan: 50000},
		{RangeLabel: "5〜10억", MinMan: 50000, MaxMan: 100000},
		{RangeLabel: "10〜20억", MinMan: 100000, MaxMan: 200000},
		{RangeLabel: "20억〜", MinMan: 200000, MaxMan: 1e12},
	}

	unknown := 0
	for i := range records {
		n := &records[i].Norm
		if d != "" && n.Deal != d {
			continue
		}
		if n.PriceMan == nil {
			unknown++
			continue
		}
		for j := range ranges {
			if *n.PriceMan >= ranges[j].MinMan && *n.PriceMan < ranges[j].MaxMan {
				ranges[j].Count++
				break
			}
		}
	}
	return ranges, unknown
}

// GetPriceDistribution returns the price distribution of the active datasets.
// The optional deal query parameter narrows it to one deal type.
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	var deal models.DealType
	if raw := c.Query("deal"); raw != "" {
		d, ok := models.ParseDealType(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown deal type " + raw})
			return
		}
		deal = d
	}

	records, err := h.datasets.Records(c.Request.Context(), nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	ranges, unknown := priceDistribution(records, deal)
	c.JSON(http.StatusOK, gin.H{
		"deal":               deal,
		"price_distribution": ranges,
		"unknown":            unknown,
	})
}

// TriggerRefresh re-reads the manifest and warms the cache in the background
func (h *AdminHandler) TriggerRefresh(c *gin.Context) {
	log.Println("Admin: Manual refresh trigger requested")

	run := func(ctx context.Context) error {
		if err := h.datasets.Refresh(ctx); err != nil {
			return err
		}
		return h.datasets.Warm(ctx)
	}
	if h.scheduler != nil {
		run = h.scheduler.RunNow
	}

	go func() {
		if err := run(context.Background()); err != nil {
			log.Printf("Admin: Manual refresh failed: %v", err)
		} else {
			log.Println("Admin: Manual refresh completed successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Refresh job started",
		"status":  "running",
	})
}

// TriggerReindex pushes the active datasets to the search index in the background
func (h *AdminHandler) TriggerReindex(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search index is not available (Meilisearch not configured)",
		})
		return
	}

	log.Println("Admin: Manual reindex trigger requested")

	go func() {
		n, err := h.search.IndexActive(context.Background(), h.datasets)
		if err != nil {
			log.Printf("Admin: Reindex failed after %d documents: %v", n, err)
			return
		}
		log.Printf("Admin: Reindexed %d documents", n)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Reindex job started",
		"status":  "running",
	})
}

// Register mounts the admin API under r.
func (h *AdminHandler) Register(r gin.IRouter) {
	r.GET("/stats", h.GetStats)
	r.GET("/area-stats", h.GetAreaStats)
	r.GET("/price-distribution", h.GetPriceDistribution)
	r.POST("/refresh", h.TriggerRefresh)
	r.POST("/reindex", h.TriggerReindex)
}
