package stats

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/server/models"
)

const countsQuery = `SELECT
	count(*),
	count(*) FILTER (WHERE date_applied >= $2),
	count(*) FILTER (WHERE date_applied >= $3),
	count(*) FILTER (WHERE next_action_date >= $4)
FROM job_applications WHERE user_id = $1`

const statusQuery = `SELECT lower(status), count(*) FROM job_applications
WHERE user_id = $1 GROUP BY lower(status)`

const platformQuery = `SELECT p, count(*) FROM job_applications, unnest(application_platforms) AS p
WHERE user_id = $1 GROUP BY p`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Collect(ctx context.Context, userID string, w Windows) (*models.Stats, error) {
	s := &models.Stats{}
	err := r.db.QueryRowContext(ctx, countsQuery, userID, w.WeekFrom, w.MonthFrom, w.Today).
		Scan(&s.Total, &s.ThisWeek, &s.ThisMonth, &s.UpcomingActions)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if s.StatusBreakdown, err = r.breakdown(ctx, statusQuery, userID); err != nil {
		return nil, err
	}
	if s.PlatformBreakdown, err = r.breakdown(ctx, platformQuery, userID); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresRepository) breakdown(ctx context.Context, query, userID string) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out[key] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
