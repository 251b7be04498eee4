package chi

import "time"

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

// Error codes returned by the API.
const (
	CodeBadRequest          ErrorCode = "bad_request"
	CodeValidationFailed    ErrorCode = "validation_failed"
	CodeDestinationNotFound ErrorCode = "destination_not_found"
	CodeModelNotReady       ErrorCode = "model_not_ready"
	CodeArtifactsMissing    ErrorCode = "artifacts_missing"
	CodeUnauthorized        ErrorCode = "unauthorized"
	CodeInternalError       ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// RecommendRequest is the POST /recommendations body.
type RecommendRequest struct {
	Query string `json:"query"`
	Sort  string `json:"sort,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// RecommendationItem is one ranked destination.
type RecommendationItem struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Score          float64  `json:"score"`
	Rating         float64  `json:"rating"`
	ReviewCount    int      `json:"review_count"`
	Image          string   `json:"image,omitempty"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
}

// RecommendResponse answers a free-text query.
type RecommendResponse struct {
	Query string               `json:"query"`
	Sort  string               `json:"sort,omitempty"`
	Items []RecommendationItem `json:"items"`
	Count int                  `json:"count"`
}

// SimilarResponse answers an item-to-item query.
type SimilarResponse struct {
	ID    string               `json:"id"`
	Items []RecommendationItem `json:"items"`
	Count int                  `json:"count"`
}

// Destination is a full destination record.
type Destination struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Description  string  `json:"description"`
	Facilities   string  `json:"facilities,omitempty"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
	Image        string  `json:"image,omitempty"`
	Address      string  `json:"address,omitempty"`
	Coordinates  string  `json:"coordinates,omitempty"`
	OpeningHours string  `json:"opening_hours,omitempty"`
	TicketInfo   string  `json:"ticket_info,omitempty"`
}

// DetailResponse is a destination with its similar list.
type DetailResponse struct {
	Destination Destination          `json:"destination"`
	Similar     []RecommendationItem `json:"similar"`
	ModelReady  bool                 `json:"model_ready"`
}

// ModelInfo describes the served model generation.
type ModelInfo struct {
	Version    string    `json:"version"`
	BuiltAt    time.Time `json:"built_at"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
	Model   *ModelInfo        `json:"model,omitempty"`
}
