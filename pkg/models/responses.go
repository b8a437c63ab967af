package models

// Stats is the aggregate computed over the loaded weapon set
type Stats struct {
	Total         int            `json:"total"`
	Categories    map[string]int `json:"categories"`
	AverageDamage int            `json:"averageDamage"`
	AverageRecoil float64        `json:"averageRecoil"`
}

// Efficiency is the damage efficiency of a single weapon.
// Value is nil when the weapon lacks damage or recoil data.
type Efficiency struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Value *float64 `json:"efficiency"`
}

// ListResponse wraps a list of weapons
type ListResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Data    []Weapon `json:"data"`
}

// SearchResponse wraps search results
type SearchResponse struct {
	Success bool     `json:"success"`
	Query   string   `json:"query"`
	Count   int      `json:"count"`
	Data    []Weapon `json:"data"`
}

// DataResponse wraps a single object
type DataResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// MessageResponse is returned for not-found and validation failures
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

// RouteNotFoundResponse is returned for unmatched routes
type RouteNotFoundResponse struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}
