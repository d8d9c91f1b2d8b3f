package models

// SearchRequest is the payload for starting a new search
type SearchRequest struct {
	Query   string          `json:"query" validate:"required,max=512"`
	Filters FilterOverrides `json:"filters"`
}

// ToggleSaveRequest carries the full posting so it can be persisted as-is
type ToggleSaveRequest struct {
	Job JobPosting `json:"job" validate:"required"`
}

// SelectJobRequest selects a posting for the detail view
type SelectJobRequest struct {
	Job JobPosting `json:"job" validate:"required"`
}

// VisibilityRequest reports that a rendered result item entered or left the viewport
type VisibilityRequest struct {
	Target  string `json:"target" validate:"required,job_id"`
	Visible bool   `json:"visible"`
}
