// internal/backend/facilities/queries.go
package facilities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"childcare-assistant/internal/models"
)

var ErrMissingParam = errors.New("missing required parameter")

// facilityColumns is the shared select list for card queries.
const facilityColumns = `id, name, region, address, description, capacity, waitlist_len, min_age, max_age, rating`

func scanFacility(scanner interface{ Scan(...interface{}) error }) (models.Facility, error) {
	var f models.Facility
	err := scanner.Scan(
		&f.ID, &f.Name, &f.Region, &f.Address, &f.Description,
		&f.Capacity, &f.WaitlistLen, &f.MinAge, &f.MaxAge, &f.Rating,
	)
	return f, err
}

// facilityDetails loads the card set for an explicit id list, preserving the
// requested order for stable compare output.
func facilityDetails(ctx context.Context, db *sql.DB, facilityIDs []string) ([]models.Facility, error) {
	if len(facilityIDs) == 0 {
		return nil, ErrMissingParam
	}

	rows, err := db.QueryContext(ctx, `
		SELECT `+facilityColumns+`
		FROM facilities
		WHERE id = ANY($1)`, pq.Array(facilityIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]models.Facility, len(facilityIDs))
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]models.Facility, 0, len(facilityIDs))
	for _, id := range facilityIDs {
		if f, ok := byID[id]; ok {
			ordered = append(ordered, f)
		}
	}
	return ordered, nil
}

// recommendByRegion ranks facilities by rating and shortest waitlist within
// a region, optionally age-filtered.
func recommendByRegion(ctx context.Context, db *sql.DB, region string, childAge int) ([]models.Facility, error) {
	query := `
		SELECT ` + facilityColumns + `
		FROM facilities
		WHERE ($1 = '' OR region = $1)
		  AND ($2 = 0 OR (min_age <= $2 AND max_age >= $2))
		ORDER BY rating DESC, waitlist_len ASC
		LIMIT 5`

	rows, err := db.QueryContext(ctx, query, region, childAge)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facilities []models.Facility
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		facilities = append(facilities, f)
	}
	return facilities, rows.Err()
}
