package models

// Query is the active list/search request. Zero values mean server defaults.
type Query struct {
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

// Filtered reports whether any filter narrows the result set.
func (q Query) Filtered() bool {
	return q.Q != "" || q.Status != "" || q.Platform != "" || q.DateFrom != "" || q.DateTo != ""
}

// PageOrFirst returns the requested page, defaulting to 1.
func (q Query) PageOrFirst() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}
