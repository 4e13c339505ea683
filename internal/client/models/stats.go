package models

import "maps"

// PlatformCount is one row of the top-platforms ranking.
type PlatformCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats is the aggregate over all of the user's jobs.
type Stats struct {
	Total           int             `json:"total"`
	ByStatus        map[string]int  `json:"status_breakdown"`
	ByPlatform      map[string]int  `json:"platform_breakdown"`
	TopPlatforms    []PlatformCount `json:"top_platforms"`
	ThisWeek        int             `json:"this_week"`
	ThisMonth       int             `json:"this_month"`
	UpcomingActions int             `json:"upcoming_actions"`
}

// Clone deep-copies s.
func (s Stats) Clone() Stats {
	s.ByStatus = maps.Clone(s.ByStatus)
	s.ByPlatform = maps.Clone(s.ByPlatform)
	s.TopPlatforms = append([]PlatformCount(nil), s.TopPlatforms...)
	return s
}
