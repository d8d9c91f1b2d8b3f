package models

import "time"

// SearchStateResponse is the rendered view of a session's aggregator
type SearchStateResponse struct {
	SessionID       string       `json:"session_id"`
	Query           string       `json:"query"`
	NormalizedQuery string       `json:"normalized_query"`
	Filters         Filters      `json:"filters"`
	Results         []JobPosting `json:"results"`
	TotalJobs       int          `json:"total_jobs"`
	TotalUnknown    bool         `json:"total_unknown,omitempty"`
	HasMore         bool         `json:"has_more"`
	Loading         bool         `json:"loading"`
	Error           *string      `json:"error"`
	SavedIDs        []string     `json:"saved_ids"`
	ScrollTarget    string       `json:"scroll_target,omitempty"`
	RequestID       string       `json:"request_id"`
}

// SavedJobsResponse lists a session's saved postings
type SavedJobsResponse struct {
	SessionID string       `json:"session_id"`
	Jobs      []JobPosting `json:"jobs"`
	Count     int          `json:"count"`
}

// ToggleSaveResponse reports the saved-state after a toggle
type ToggleSaveResponse struct {
	JobID string `json:"job_id"`
	Saved bool   `json:"saved"`
}

// DetailResponse is the state of the detail view for the selected posting
type DetailResponse struct {
	Status  DetailStatus `json:"status"`
	Job     *JobPosting  `json:"job"`
	Loading bool         `json:"loading"`
	Error   *string      `json:"error"`
}

// ProviderStatusResponse mirrors a connectivity probe against the provider
type ProviderStatusResponse struct {
	OK         bool          `json:"ok"`
	StatusCode int           `json:"status_code,omitempty"`
	Message    string        `json:"message"`
	Latency    time.Duration `json:"latency"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}
