package models

// DatePosted is the provider's posting-age filter
type DatePosted string

const (
	DatePostedAll     DatePosted = "all"
	DatePostedToday   DatePosted = "today"
	DatePosted3Days   DatePosted = "3days"
	DatePostedWeek    DatePosted = "week"
	DatePostedMonth   DatePosted = "month"
	DefaultDatePosted            = DatePostedAll
)

// Employment types accepted by the provider. Several may be combined with commas.
const (
	EmploymentFullTime   = "FULLTIME"
	EmploymentPartTime   = "PARTTIME"
	EmploymentContractor = "CONTRACTOR"
	EmploymentIntern     = "INTERN"
)

// Job requirement tokens accepted by the provider
const (
	RequirementUnder3Years = "under_3_years_experience"
	RequirementOver3Years  = "more_than_3_years_experience"
	RequirementNoExp       = "no_experience"
	RequirementNoDegree    = "no_degree"
)

// Filters is an immutable snapshot of the search refinements. A new value
// replaces the old one on every search; Page is owned by the aggregator.
type Filters struct {
	JobCategory     string     `json:"job_category,omitempty"`
	DatePosted      DatePosted `json:"date_posted"`
	RemoteJobsOnly  bool       `json:"remote_jobs_only"`
	EmploymentType  string     `json:"employment_type,omitempty"`
	JobRequirements string     `json:"job_requirements,omitempty"`
	CompanyTypes    string     `json:"company_types,omitempty"`
	Page            int        `json:"page"`
}

// DefaultFilters is the snapshot a fresh session starts with
func DefaultFilters() Filters {
	return Filters{DatePosted: DefaultDatePosted, Page: 1}
}

// FilterOverrides carries the fields a caller wants to change. Nil fields keep
// the current value.
type FilterOverrides struct {
	JobCategory     *string     `json:"job_category,omitempty"`
	DatePosted      *DatePosted `json:"date_posted,omitempty" validate:"omitempty,date_posted"`
	RemoteJobsOnly  *bool       `json:"remote_jobs_only,omitempty"`
	EmploymentType  *string     `json:"employment_type,omitempty" validate:"omitempty,employment_types"`
	JobRequirements *string     `json:"job_requirements,omitempty" validate:"omitempty,job_requirements"`
	CompanyTypes    *string     `json:"company_types,omitempty"`
}

// Apply returns a new snapshot with the overrides merged in and Page reset to 1
func (f Filters) Apply(o FilterOverrides) Filters {
	next := f
	if o.JobCategory != nil {
		next.JobCategory = *o.JobCategory
	}
	if o.DatePosted != nil {
		next.DatePosted = *o.DatePosted
	}
	if o.RemoteJobsOnly != nil {
		next.RemoteJobsOnly = *o.RemoteJobsOnly
	}
	if o.EmploymentType != nil {
		next.EmploymentType = *o.EmploymentType
	}
	if o.JobRequirements != nil {
		next.JobRequirements = *o.JobRequirements
	}
	if o.CompanyTypes != nil {
		next.CompanyTypes = *o.CompanyTypes
	}
	if next.DatePosted == "" {
		next.DatePosted = DefaultDatePosted
	}
	next.Page = 1
	return next
}
