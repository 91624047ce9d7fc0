package search

import (
	"fmt"

	"github.com/meilisearch/meilisearch-go"

	"pricing-compliance-portal/internal/models"
)

// SearchClient indexes ingested units so dashboards can query them
// without touching the primary database.
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

// unitDocument is the indexed shape of a unit. The document id is derived
// from project id plus position, so re-uploads overwrite cleanly.
type unitDocument struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	OwnerID      string  `json:"owner_id"`
	Region       string  `json:"region"`
	County       string  `json:"county"`
	Municipality string  `json:"municipality"`
	UnitNumber   string  `json:"unit_number"`
	Kind         string  `json:"kind"`
	UsableArea   float64 `json:"usable_area"`
	PricePerM2   float64 `json:"price_per_m2"`
	FinalPrice   float64 `json:"final_price"`
	Status       string  `json:"status"`
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "units",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"unit_number",
		"region",
		"county",
		"municipality",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"project_id",
		"owner_id",
		"kind",
		"status",
		"price_per_m2",
		"final_price",
		"usable_area",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price_per_m2",
		"final_price",
		"usable_area",
	})
	return err
}

// ReplaceProjectUnits drops all indexed documents of a project and indexes
// the new batch, mirroring the replace-on-re-upload persistence policy.
func (s *SearchClient) ReplaceProjectUnits(projectID string, units []models.Unit) error {
	_, err := s.client.Index(s.index).DeleteDocumentsByFilter(fmt.Sprintf("project_id = %q", projectID))
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return nil
	}

	docs := make([]unitDocument, len(units))
	for i, u := range units {
		docs[i] = unitDocument{
			ID:           fmt.Sprintf("%s-%d", projectID, i+1),
			ProjectID:    u.ProjectID,
			OwnerID:      u.OwnerID,
			Region:       u.Region,
			County:       u.County,
			Municipality: u.Municipality,
			UnitNumber:   u.UnitNumber,
			Kind:         string(u.Kind),
			UsableArea:   u.UsableArea,
			PricePerM2:   u.PricePerM2,
			FinalPrice:   u.FinalPrice,
			Status:       string(u.Status),
		}
	}
	_, err = s.client.Index(s.index).AddDocuments(docs)
	return err
}

// SearchRequest represents unit search parameters
type SearchRequest struct {
	OwnerID    string
	Query      string
	Limit      int64
	Offset     int64
	Status     string
	Kind       string
	MinPriceM2 *float64
	MaxPriceM2 *float64
	Sort       []string
}

// SearchResult represents search results
type SearchResult struct {
	Hits           []map[string]interface{} `json:"hits"`
	TotalHits      int64                    `json:"total_hits"`
	ProcessingTime int64                    `json:"processing_time_ms"`
}

// Search queries the unit index, always scoped to one owner
func (s *SearchClient) Search(req SearchRequest) (*SearchResult, error) {
	if req.Limit == 0 {
		req.Limit = 20
	}

	filter := fmt.Sprintf("owner_id = %q", req.OwnerID)
	if req.Status != "" {
		filter += fmt.Sprintf(" AND status = %q", req.Status)
	}
	if req.Kind != "" {
		filter += fmt.Sprintf(" AND kind = %q", req.Kind)
	}
	if req.MinPriceM2 != nil {
		filter += fmt.Sprintf(" AND price_per_m2 >= %f", *req.MinPriceM2)
	}
	if req.MaxPriceM2 != nil {
		filter += fmt.Sprintf(" AND price_per_m2 <= %f", *req.MaxPriceM2)
	}

	searchReq := &meilisearch.SearchRequest{
		Limit:  req.Limit,
		Offset: req.Offset,
		Filter: filter,
	}
	if len(req.Sort) > 0 {
		searchReq.Sort = req.Sort
	}

	searchRes, err := s.client.Index(s.index).Search(req.Query, searchReq)
	if err != nil {
		return nil, err
	}

	hits := make([]map[string]interface{}, 0, len(searchRes.Hits))
	for _, hit := range searchRes.Hits {
		if m, ok := hit.(map[string]interface{}); ok {
			hits = append(hits, m)
		}
	}

	return &SearchResult{
		Hits:           hits,
		TotalHits:      searchRes.EstimatedTotalHits,
		ProcessingTime: searchRes.ProcessingTimeMs,
	}, nil
}
