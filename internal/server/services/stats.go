package services

import (
	"context"
	"database/sql"
	"sort"

	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/stats"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

const topPlatformCount = 5

type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m}
}

// Get returns the user's rollup. The week and month windows reach back 7
// and 30 days from today; upcoming actions are due today or later.
func (s *StatsService) Get(ctx context.Context, userID string) (*models.Stats, error) {
	day := timex.StartOfDay(today())
	w := stats.Windows{
		WeekFrom:  day.AddDate(0, 0, -7),
		MonthFrom: day.AddDate(0, 0, -30),
		Today:     day,
	}

	st, err := s.repomanager.Stats(s.db).Collect(ctx, userID, w)
	if err != nil {
		return nil, err
	}
	st.TopPlatforms = topPlatforms(st.PlatformBreakdown, topPlatformCount)
	return st, nil
}

// topPlatforms orders platforms by count, highest first, breaking ties by
// key, and keeps the first n.
func topPlatforms(breakdown map[string]int, n int) []models.PlatformCount {
	out := make([]models.PlatformCount, 0, len(breakdown))
	for k, c := range breakdown {
		out = append(out, models.PlatformCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
