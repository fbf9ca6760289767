package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"realestate-trade-map/internal/dataset"
	"realestate-trade-map/internal/debounce"
	"realestate-trade-map/internal/engine"
	"realestate-trade-map/internal/filter"
	"realestate-trade-map/internal/format"
	"realestate-trade-map/internal/listing"
	"realestate-trade-map/internal/metrics"
	"realestate-trade-map/internal/models"
	"realestate-trade-map/internal/ranges"
	"realestate-trade-map/internal/region"
	"realestate-trade-map/internal/search"
)

// DefaultPageSize is the list page size when the request sets none.
const DefaultPageSize = 50

// MapHandler serves the dataset selection and every filter pass of the map UI
type MapHandler struct {
	datasets  *dataset.Service
	debouncer *debounce.Debouncer
	search    *search.SearchClient
}

// NewMapHandler creates a new map handler. searchClient may be nil.
func NewMapHandler(datasets *dataset.Service, debouncer *debounce.Debouncer, searchClient *search.SearchClient) *MapHandler {
	if debouncer == nil {
		debouncer = debounce.New(debounce.DefaultDelay)
	}
	return &MapHandler{
		datasets:  datasets,
		debouncer: debouncer,
		search:    searchClient,
	}
}

type datasetItem struct {
	Path   string `json:"path"`
	Label  string `json:"label"`
	Active bool   `json:"active"`
}

// ListDatasets returns the manifest with the active flag of each item
func (h *MapHandler) ListDatasets(c *gin.Context) {
	manifest := h.datasets.Manifest()
	items := make([]datasetItem, 0, len(manifest))
	for _, item := range manifest {
		items = append(items, datasetItem{
			Path:   item.Path,
			Label:  item.Label,
			Active: h.datasets.IsActive(item.Path),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": items,
		"active":   h.datasets.Active(),
	})
}

// SetActive replaces the active dataset selection and loads it
func (h *MapHandler) SetActive(c *gin.Context) {
	var req struct {
		Paths []string `json:"paths" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.datasets.SetActive(req.Paths); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.respondActive(c)
}

// ToggleActive adds or removes one dataset from the selection
func (h *MapHandler) ToggleActive(c *gin.Context) {
	var req struct {
		Path   string `json:"path" binding:"required"`
		Active bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.datasets.Toggle(req.Path, req.Active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.respondActive(c)
}

func (h *MapHandler) respondActive(c *gin.Context) {
	records, err := h.datasets.Records(c.Request.Context(), nil)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active":  h.datasets.Active(),
		"records": len(records),
	})
}

// request is one decoded filter request over its dataset records.
type request struct {
	query   *filter.Query
	records []models.Record
	ranges  ranges.Ranges
	set     *filter.Set
}

// load decodes the query, loads the requested datasets and builds the filter
// set. It writes the error response itself and returns false on failure.
func (h *MapHandler) load(c *gin.Context) (*request, bool) {
	q, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	records, err := h.datasets.Records(c.Request.Context(), q.Datasets)
	if err != nil {
		log.Printf("[Map] failed to load datasets %v: %v", q.Datasets, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return nil, false
	}

	r := ranges.Derive(records)
	set, err := q.Set(r)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return &request{query: q, records: records, ranges: r, set: set}, true
}

// GetRanges returns the control bounds derived from the selected datasets
func (h *MapHandler) GetRanges(c *gin.Context) {
	req, ok := h.load(c)
	if !ok {
		return
	}

	labels := make([]string, 0, len(req.ranges.YearMonths))
	for _, ym := range req.ranges.YearMonths {
		labels = append(labels, format.YearMonth(ym))
	}
	c.JSON(http.StatusOK, gin.H{
		"price_eok":         req.ranges.Price,
		"area_py":           req.ranges.Area,
		"year_months":       req.ranges.YearMonths,
		"year_month_labels": labels,
		"records":           len(req.records),
	})
}

// GetRegions returns the region select options for the current selection
func (h *MapHandler) GetRegions(c *gin.Context) {
	req, ok := h.load(c)
	if !ok {
		return
	}

	idx := region.Build(req.records)
	c.JSON(http.StatusOK, gin.H{
		"options":       idx.Levels(req.set.Region),
		"selected":      req.set.Region,
		"table_visible": region.TableVisible(req.set.Region),
	})
}

// GetMap runs one filter pass and returns building markers
func (h *MapHandler) GetMap(c *gin.Context) {
	req, ok := h.load(c)
	if !ok {
		return
	}

	res := engine.Run(req.records, req.set)
	metrics.FilterPasses.Inc()

	resp := gin.H{
		"count":   res.Count,
		"total":   len(req.records),
		"markers": markers(res.Groups, res.Visible),
	}
	if res.RegionTable != nil {
		resp["region_table"] = markers(res.RegionTable, res.Visible)
	}
	c.JSON(http.StatusOK, resp)
}

// GetList returns one page of the sorted visible records
func (h *MapHandler) GetList(c *gin.Context) {
	req, ok := h.load(c)
	if !ok {
		return
	}

	res := engine.Run(req.records, req.set)
	metrics.FilterPasses.Inc()

	limit := req.query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page := listing.Page(res.List, req.query.Offset, limit)
	c.JSON(http.StatusOK, gin.H{
		"count":  res.Count,
		"offset": req.query.Offset,
		"limit":  limit,
		"items":  listItems(page),
	})
}

// Search autocompletes building names. Requests from the same client debounce
// each other: a request replaced by a newer one within the delay gets 409.
func (h *MapHandler) Search(c *gin.Context) {
	q, err := filter.DecodeQuery(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.debouncer.Wait(c.Request.Context(), c.ClientIP()); err != nil {
		if errors.Is(err, debounce.ErrSuperseded) {
			metrics.SupersededSearches.Inc()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.AbortWithStatus(http.StatusRequestTimeout)
		return
	}

	records, err := h.datasets.Records(c.Request.Context(), q.Datasets)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	metrics.Searches.Inc()
	matches := listing.Search(q.Q, records, q.Limit)
	results := make([]gin.H, 0, len(matches))
	for _, m := range matches {
		results = append(results, gin.H{
			"name": m.Name,
			"lat":  m.Record.Feature.Lat(),
			"lng":  m.Record.Feature.Lng(),
			"deal": m.Record.Norm.Deal,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"query":   q.Q,
		"results": results,
	})
}

// GetDetail lists the visible transactions of one building, newest first
func (h *MapHandler) GetDetail(c *gin.Context) {
	req, ok := h.load(c)
	if !ok {
		return
	}
	if req.query.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	records := listing.DetailFor(req.query.Name, req.records, req.set)
	metrics.FilterPasses.Inc()
	c.JSON(http.StatusOK, gin.H{
		"name":  req.query.Name,
		"count": len(records),
		"items": listItems(records),
	})
}

// IndexSearch queries the Meilisearch mirror with the same filter set
func (h *MapHandler) IndexSearch(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Search index is not available (Meilisearch not configured)",
		})
		return
	}

	req, ok := h.load(c)
	if !ok {
		return
	}

	result, err := h.search.FilterSearch(search.FilterParams{
		Query:  req.query.Q,
		Set:    req.set,
		Limit:  int64(req.query.Limit),
		Offset: int64(req.query.Offset),
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Register mounts the map API under r.
func (h *MapHandler) Register(r gin.IRouter) {
	r.GET("/datasets", h.ListDatasets)
	r.POST("/datasets/active", h.SetActive)
	r.PATCH("/datasets/active", h.ToggleActive)
	r.GET("/ranges", h.GetRanges)
	r.GET("/regions", h.GetRegions)
	r.GET("/map", h.GetMap)
	r.GET("/list", h.GetList)
	r.GET("/search", h.Search)
	r.GET("/detail", h.GetDetail)
	r.GET("/search/index", h.IndexSearch)
}
