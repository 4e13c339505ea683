package models

type PlatformCount struct {
	Key   string
	Count int
}

// Stats is the per-user rollup served by GetStats.
type Stats struct {
	Total             int
	StatusBreakdown   map[string]int
	PlatformBreakdown map[string]int
	TopPlatforms      []PlatformCount
	ThisWeek          int
	ThisMonth         int
	UpcomingActions   int
}
