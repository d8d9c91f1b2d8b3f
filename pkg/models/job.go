package models

import "time"

// JobPosting is a single posting as returned by the job search provider.
// Required members are plain values; everything the provider may omit is a
// pointer or an omitempty field so absence survives a round trip.
type JobPosting struct {
	JobID                  string         `json:"job_id" validate:"required"`
	JobTitle               string         `json:"job_title" validate:"required"`
	EmployerName           string         `json:"employer_name"`
	JobPostedAtDatetimeUTC string         `json:"job_posted_at_datetime_utc"`
	EmployerLogo           *string        `json:"employer_logo,omitempty"`
	JobCity                *string        `json:"job_city,omitempty"`
	JobCountry             *string        `json:"job_country,omitempty"`
	JobEmploymentType      *string        `json:"job_employment_type,omitempty"`
	JobMinSalary           *float64       `json:"job_min_salary,omitempty"`
	JobMaxSalary           *float64       `json:"job_max_salary,omitempty"`
	JobSalaryCurrency      *string        `json:"job_salary_currency,omitempty"`
	JobHighlights          *JobHighlights `json:"job_highlights,omitempty"`
	JobDescription         *string        `json:"job_description,omitempty"`
	JobApplyLink           *string        `json:"job_apply_link,omitempty"`
}

// JobHighlights groups the bullet lists the provider extracts from a description
type JobHighlights struct {
	Qualifications   []string `json:"Qualifications,omitempty"`
	Responsibilities []string `json:"Responsibilities,omitempty"`
	Benefits         []string `json:"Benefits,omitempty"`
}

// HasDescription reports whether the posting already carries an inline description
func (j *JobPosting) HasDescription() bool {
	return j != nil && j.JobDescription != nil && *j.JobDescription != ""
}

// PostedAt parses the provider timestamp. The zero time is returned when the
// field is empty or malformed.
func (j *JobPosting) PostedAt() time.Time {
	if j == nil || j.JobPostedAtDatetimeUTC == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, j.JobPostedAtDatetimeUTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Clone returns a deep copy so callers can hand postings out without sharing
// pointers into aggregator state.
func (j JobPosting) Clone() JobPosting {
	out := j
	out.EmployerLogo = cloneString(j.EmployerLogo)
	out.JobCity = cloneString(j.JobCity)
	out.JobCountry = cloneString(j.JobCountry)
	out.JobEmploymentType = cloneString(j.JobEmploymentType)
	out.JobMinSalary = cloneFloat(j.JobMinSalary)
	out.JobMaxSalary = cloneFloat(j.JobMaxSalary)
	out.JobSalaryCurrency = cloneString(j.JobSalaryCurrency)
	out.JobDescription = cloneString(j.JobDescription)
	out.JobApplyLink = cloneString(j.JobApplyLink)
	if j.JobHighlights != nil {
		h := JobHighlights{
			Qualifications:   append([]string(nil), j.JobHighlights.Qualifications...),
			Responsibilities: append([]string(nil), j.JobHighlights.Responsibilities...),
			Benefits:         append([]string(nil), j.JobHighlights.Benefits...),
		}
		out.JobHighlights = &h
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
