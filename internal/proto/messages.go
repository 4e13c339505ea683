package proto

// Tag kinds accepted by the dictionary calls.
const (
	TagKindStatus   = "status"
	TagKindPlatform = "platform"
)

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenPair is returned by Login and RefreshToken. ExpiresIn is the access
// token lifetime in seconds.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type LoginResponse = TokenPair

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse = TokenPair

// Job is a persisted job application. Dates are YYYY-MM-DD, timestamps RFC 3339.
type Job struct {
	ID             string   `json:"id"`
	Title          string   `json:"job_title"`
	Company        string   `json:"company"`
	DateApplied    string   `json:"date_applied"`
	JobLink        string   `json:"job_link,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	Location       string   `json:"location,omitempty"`
	Status         string   `json:"status"`
	NextActionDate string   `json:"next_action_date,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Platforms      []string `json:"application_platforms"`
	CreatedAt      string   `json:"created_at,omitempty"`
	UpdatedAt      string   `json:"updated_at,omitempty"`
}

// TagRef is a dictionary entry, also used to describe a job's status and
// platforms so the server can upsert unknown custom entries.
type TagRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type JobInput struct {
	Title          string   `json:"job_title"`
	Company        string   `json:"company"`
	DateApplied    string   `json:"date_applied"`
	JobLink        string   `json:"job_link,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	Location       string   `json:"location,omitempty"`
	Status         string   `json:"status"`
	NextActionDate string   `json:"next_action_date,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Platforms      []string `json:"application_platforms"`
}

type CreateJobRequest struct {
	// IdempotencyKey makes retried creates return the first persisted row.
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
	Job            JobInput `json:"job"`
	StatusMeta     *TagRef  `json:"status_metadata,omitempty"`
	PlatformsMeta  []TagRef `json:"platforms_metadata,omitempty"`
}

type CreateJobResponse struct {
	Job Job `json:"job"`
}

// JobPatch carries only changed fields; nil pointers and a nil Platforms
// slice mean "leave as is". An empty string clears an optional field.
type JobPatch struct {
	Title          *string  `json:"job_title,omitempty"`
	Company        *string  `json:"company,omitempty"`
	DateApplied    *string  `json:"date_applied,omitempty"`
	JobLink        *string  `json:"job_link,omitempty"`
	Salary         *string  `json:"salary,omitempty"`
	Location       *string  `json:"location,omitempty"`
	Status         *string  `json:"status,omitempty"`
	NextActionDate *string  `json:"next_action_date,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Platforms      []string `json:"application_platforms,omitempty"`
}

type UpdateJobRequest struct {
	ID            string   `json:"id"`
	Patch         JobPatch `json:"patch"`
	StatusMeta    *TagRef  `json:"status_metadata,omitempty"`
	PlatformsMeta []TagRef `json:"platforms_metadata,omitempty"`
}

type UpdateJobResponse struct {
	Job Job `json:"job"`
}

type DeleteJobRequest struct {
	ID string `json:"id"`
}

type DeleteJobResponse struct{}

type ListJobsRequest struct {
	Q         string `json:"q,omitempty"`
	Status    string `json:"status,omitempty"`
	Platform  string `json:"platform,omitempty"`
	DateFrom  string `json:"date_from,omitempty"`
	DateTo    string `json:"date_to,omitempty"`
	SortBy    string `json:"sort_by,omitempty"`
	SortOrder string `json:"sort_order,omitempty"`
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	Limit       int `json:"limit"`
}

type ListJobsResponse struct {
	Jobs       []Job      `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

type ListTagsRequest struct {
	Kind string `json:"kind"`
}

type ListTagsResponse struct {
	Tags []TagRef `json:"tags"`
}

type CreateTagRequest struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type CreateTagResponse struct {
	Tag TagRef `json:"tag"`
}

type DeleteTagRequest struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

type DeleteTagResponse struct{}

type GetStatsRequest struct{}

type PlatformCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type GetStatsResponse struct {
	Total             int             `json:"total"`
	StatusBreakdown   map[string]int  `json:"status_breakdown"`
	PlatformBreakdown map[string]int  `json:"platform_breakdown"`
	TopPlatforms      []PlatformCount `json:"top_platforms"`
	ThisWeek          int             `json:"this_week"`
	ThisMonth         int             `json:"this_month"`
	UpcomingActions   int             `json:"upcoming_actions"`
}

type ExportJobsRequest struct {
	Format string `json:"format"`
}

// ExportJobsResponse points at the rendered file in object storage.
type ExportJobsResponse struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
	ExpiresAt   string `json:"expires_at"`
}
