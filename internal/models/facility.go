// internal/models/facility.go
package models

// Facility is the card payload for facility-card-list blocks and the shape
// returned by the facilities backend queries.
type Facility struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Region      string  `json:"region"`
	Address     string  `json:"address,omitempty"`
	Description string  `json:"description,omitempty"`
	Capacity    int     `json:"capacity,omitempty"`
	WaitlistLen int     `json:"waitlistLen,omitempty"`
	MinAge      int     `json:"minAge,omitempty"`
	MaxAge      int     `json:"maxAge,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
}

// QueryType identifies one registered facilities backend query.
type QueryType string

const (
	QueryFacilityDetails   QueryType = "facility_details"
	QueryFacilityCompare   QueryType = "facility_compare"
	QueryRecommendByRegion QueryType = "recommend_by_region"
)
