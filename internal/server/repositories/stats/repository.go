// Package stats aggregates a user's job applications in the database.
package stats

import (
	"context"
	"time"

	"github.com/dmitrijs2005/applylog/internal/server/models"
)

// Windows are the cut-offs for the time-bounded counters.
type Windows struct {
	WeekFrom  time.Time
	MonthFrom time.Time
	Today     time.Time
}

type Repository interface {
	// Collect fills everything except TopPlatforms.
	Collect(ctx context.Context, userID string, w Windows) (*models.Stats, error)
}
