// internal/backend/facilities/service.go
package facilities

import (
	"context"
	"database/sql"

	"github.com/elastic/go-elasticsearch/v8"

	commonerrors "childcare-assistant/internal/common/errors"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/models"
)

// Service answers the responder's informational queries: full-text search
// through Elasticsearch, detail/compare and recommendations through
// Postgres.
type Service struct {
	db     *sql.DB
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewService(db *sql.DB, es *elasticsearch.Client, index string, log logger.Logger) *Service {
	return &Service{
		db:     db,
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "facilities"}),
	}
}

func (s *Service) Search(ctx context.Context, region, keywords string, childAge int) ([]models.Facility, error) {
	return searchFacilities(ctx, s.es, s.index, region, keywords, childAge)
}

func (s *Service) Details(ctx context.Context, facilityIDs []string) ([]models.Facility, error) {
	facilities, err := facilityDetails(ctx, s.db, facilityIDs)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError(string(models.QueryFacilityDetails), err)
	}
	return facilities, nil
}

func (s *Service) Recommend(ctx context.Context, region string, childAge int) ([]models.Facility, error) {
	facilities, err := recommendByRegion(ctx, s.db, region, childAge)
	if err != nil {
		return nil, commonerrors.NewQueryExecutionFailedError(string(models.QueryRecommendByRegion), err)
	}
	return facilities, nil
}
