package models

import "time"

// Job is one row of job_applications. Optional text columns are stored as
// empty strings; NextActionDate is nil when unset.
type Job struct {
	ID             string
	UserID         string
	Title          string
	Company        string
	DateApplied    time.Time
	JobLink        string
	Salary         string
	Location       string
	Status         string
	NextActionDate *time.Time
	Notes          string
	Platforms      []string
	IdempotencyKey string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// JobPatch lists the columns an update touches; nil fields are left alone.
type JobPatch struct {
	Title          *string
	Company        *string
	DateApplied    *time.Time
	JobLink        *string
	Salary         *string
	Location       *string
	Status         *string
	NextActionDate *time.Time
	// ClearNextActionDate sets next_action_date to NULL.
	ClearNextActionDate bool
	Notes               *string
	Platforms           []string
}

// Empty reports whether the patch changes nothing.
func (p JobPatch) Empty() bool {
	return p.Title == nil && p.Company == nil && p.DateApplied == nil && p.JobLink == nil &&
		p.Salary == nil && p.Location == nil && p.Status == nil && p.NextActionDate == nil &&
		!p.ClearNextActionDate && p.Notes == nil && p.Platforms == nil
}

// JobFilter narrows a listing. Zero values mean "no filter".
type JobFilter struct {
	Company  string
	Status   string
	Platform string
	DateFrom *time.Time
	DateTo   *time.Time
}

// JobQuery is a validated, defaulted listing request.
type JobQuery struct {
	Filter    JobFilter
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

// JobPage is one page of a listing.
type JobPage struct {
	Jobs       []Job
	Page       int
	Limit      int
	TotalItems int
	TotalPages int
}
