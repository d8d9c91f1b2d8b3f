package jobs

import "jobscout/pkg/models"

// SearchQuery pairs what the user typed with what was sent to the provider
type SearchQuery struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// State is a copy of the aggregator's view, safe to hand to renderers
type State struct {
	Query     SearchQuery         `json:"query"`
	Filters   models.Filters      `json:"filters"`
	Results   []models.JobPosting `json:"results"`
	TotalJobs int                 `json:"total_jobs"`
	// TotalUnknown means the provider gave no total. Paging then continues
	// until an empty page arrives.
	TotalUnknown bool                `json:"total_unknown,omitempty"`
	Loading      bool                `json:"loading"`
	Error        string              `json:"error,omitempty"`
	Saved        []models.JobPosting `json:"saved"`
	SelectedJob  *models.JobPosting  `json:"selected_job,omitempty"`
	Searched     bool                `json:"searched"`
}

// HasMore reports whether another page may exist for the current search
func (s State) HasMore() bool {
	return s.Searched && (s.TotalUnknown || len(s.Results) < s.TotalJobs)
}

// LastJobID is the id of the last rendered result, or "" when empty
func (s State) LastJobID() string {
	if len(s.Results) == 0 {
		return ""
	}
	return s.Results[len(s.Results)-1].JobID
}

// IsSaved reports whether jobID is in the saved set
func (s State) IsSaved(jobID string) bool {
	return indexOf(s.Saved, jobID) >= 0
}

// SavedIDs lists saved job ids in save order
func (s State) SavedIDs() []string {
	ids := make([]string, len(s.Saved))
	for i, j := range s.Saved {
		ids[i] = j.JobID
	}
	return ids
}

func indexOf(jobs []models.JobPosting, jobID string) int {
	for i := range jobs {
		if jobs[i].JobID == jobID {
			return i
		}
	}
	return -1
}

func cloneJobs(in []models.JobPosting) []models.JobPosting {
	out := make([]models.JobPosting, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
