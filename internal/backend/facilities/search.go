// internal/backend/facilities/search.go
package facilities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/models"
)

var ErrMissingIndex = errors.New("index name is required")

const defaultSearchSize = 10

// buildSearchQuery builds the facility text-search body: keyword multi_match
// over name/description/region, a region term filter, and an age-coverage
// range filter when a child age is known.
func buildSearchQuery(region, keywords string, childAge int) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"name^3", "description^2", "region"},
				"type":   "best_fields",
			},
		})
	}

	if region != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"region": region},
		})
	}

	if childAge > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"min_age": map[string]interface{}{"lte": childAge}},
		})
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"max_age": map[string]interface{}{"gte": childAge}},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"rating": map[string]interface{}{"order": "desc"}},
		},
	}
}

// searchFacilities executes the search request and decodes hits into cards.
func searchFacilities(ctx context.Context, client *elasticsearch.Client, index, region, keywords string, childAge int) ([]models.Facility, error) {
	if index == "" {
		return nil, ErrMissingIndex
	}

	body, _ := json.Marshal(buildSearchQuery(region, keywords, childAge))
	size := defaultSearchSize
	req := esapi.SearchRequest{
		Index: []string{index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, commonerrors.NewSearchQueryFailedError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Facility `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, commonerrors.NewSearchQueryFailedError(fmt.Errorf("decode search response: %w", err))
	}

	facilities := make([]models.Facility, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		facilities = append(facilities, hit.Source)
	}
	return facilities, nil
}
