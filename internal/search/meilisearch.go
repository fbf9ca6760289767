package search

import (
	"context"
	"crypto/md5"
	"fmt"
	"log"

	"github.com/meilisearch/meilisearch-go"

	"realestate-trade-map/internal/models"
)

// batchSize caps the documents sent per AddDocuments call.
const batchSize = 1000

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	if index == "" {
		index = "trades"
	}
	return &SearchClient{
		client: client,
		index:  index,
	}
}

// Document is the indexed form of one normalized record.
type Document struct {
	ID           string   `json:"id"`
	Dataset      string   `json:"dataset"`
	BuildingName string   `json:"building_name"`
	Address      string   `json:"address,omitempty"`
	Sido         string   `json:"sido"`
	Gusi         string   `json:"gusi"`
	Dong         string   `json:"dong"`
	DealType     string   `json:"deal_type"`
	HousingType  string   `json:"housing_type"`
	PriceMan     *float64 `json:"price_man,omitempty"`
	MonthlyMan   *float64 `json:"monthly_man,omitempty"`
	AreaPy       *float64 `json:"area_py,omitempty"`
	YearMonth    *int     `json:"year_month,omitempty"`
	Day          *int     `json:"day,omitempty"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
}

// SearchResult represents search results
type SearchResult struct {
	Hits           []Document `json:"hits"`
	TotalHits      int64      `json:"total_hits"`
	ProcessingTime int64      `json:"processing_time_ms"`
}

// Healthy reports whether the server answers its health check.
func (s *SearchClient) Healthy() bool {
	return s.client.IsHealthy()
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	// Create index if it doesn't exist
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"building_name",
		"address",
		"dong",
		"gusi",
		"sido",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"dataset",
		"deal_type",
		"housing_type",
		"price_man",
		"area_py",
		"year_month",
		"sido",
		"gusi",
		"dong",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price_man",
		"area_py",
		"year_month",
	})
	if err != nil {
		return err
	}

	return nil
}

// NewDocument builds the document of the i-th record of dataset.
func NewDocument(dataset string, i int, r *models.Record) Document {
	n := &r.Norm
	return Document{
		ID:           generateMD5(fmt.Sprintf("%s#%d", dataset, i)),
		Dataset:      dataset,
		BuildingName: n.BuildingName,
		Address:      n.Address,
		Sido:         n.Region.Province,
		Gusi:         n.Region.District,
		Dong:         n.Region.Neighborhood,
		DealType:     string(n.Deal),
		HousingType:  string(n.Housing),
		PriceMan:     n.PriceMan,
		MonthlyMan:   n.MonthlyMan,
		AreaPy:       n.AreaPy,
		YearMonth:    n.YearMonth,
		Day:          n.Day,
		Lat:          r.Feature.Lat(),
		Lng:          r.Feature.Lng(),
	}
}

// IndexRecords replaces the documents of dataset with records
func (s *SearchClient) IndexRecords(dataset string, records []models.Record) (int, error) {
	index := s.client.Index(s.index)
	if _, err := index.DeleteDocumentsByFilter(equals("dataset", dataset)); err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", dataset, err)
	}

	docs := make([]Document, 0, batchSize)
	sent := 0
	flush := func() error {
		if len(docs) == 0 {
			return nil
		}
		if _, err := index.AddDocuments(docs); err != nil {
			return fmt.Errorf("failed to index %s: %w", dataset, err)
		}
		sent += len(docs)
		docs = docs[:0]
		return nil
	}

	for i := range records {
		docs = append(docs, NewDocument(dataset, i, &records[i]))
		if len(docs) == batchSize {
			if err := flush(); err != nil {
				return sent, err
			}
		}
	}
	if err := flush(); err != nil {
		return sent, err
	}
	return sent, nil
}

// parseDocumentFromHit converts a search hit to a Document
func parseDocumentFromHit(hitMap map[string]interface{}) Document {
	doc := Document{
		ID:           getString(hitMap, "id"),
		Dataset:      getString(hitMap, "dataset"),
		BuildingName: getString(hitMap, "building_name"),
		Address:      getString(hitMap, "address"),
		Sido:         getString(hitMap, "sido"),
		Gusi:         getString(hitMap, "gusi"),
		Dong:         getString(hitMap, "dong"),
		DealType:     getString(hitMap, "deal_type"),
		HousingType:  getString(hitMap, "housing_type"),
		PriceMan:     getFloat(hitMap, "price_man"),
		MonthlyMan:   getFloat(hitMap, "monthly_man"),
		AreaPy:       getFloat(hitMap, "area_py"),
		YearMonth:    getInt(hitMap, "year_month"),
		Day:          getInt(hitMap, "day"),
	}
	if lat := getFloat(hitMap, "lat"); lat != nil {
		doc.Lat = *lat
	}
	if lng := getFloat(hitMap, "lng"); lng != nil {
		doc.Lng = *lng
	}
	return doc
}

// getString safely extracts a string from map
func getString(m map[string]interface{}, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getFloat(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key].(float64); ok {
		return &val
	}
	return nil
}

func getInt(m map[string]interface{}, key string) *int {
	if val, ok := m[key].(float64); ok {
		i := int(val)
		return &i
	}
	return nil
}

// generateMD5 generates MD5 hash for a string
func generateMD5(text string) string {
	hash := md5.Sum([]byte(text))
	return fmt.Sprintf("%x", hash)
}

// RecordSource exposes the active datasets and their records.
type RecordSource interface {
	Active() []string
	Records(ctx context.Context, paths []string) ([]models.Record, error)
}

// IndexActive pushes the records of every active dataset.
func (s *SearchClient) IndexActive(ctx context.Context, src RecordSource) (int, error) {
	total := 0
	for _, path := range src.Active() {
		records, err := src.Records(ctx, []string{path})
		if err != nil {
			return total, err
		}
		n, err := s.IndexRecords(path, records)
		total += n
		if err != nil {
			return total, err
		}
		log.Printf("[Search] indexed %d documents from %s", n, path)
	}
	return total, nil
}
