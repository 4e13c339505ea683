package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/lib/pq"
)

const columns = `id, user_id, job_title, company, date_applied, job_link, salary, location, status,
	next_action_date, notes, application_platforms, COALESCE(idempotency_key, ''), created_at, updated_at`

// sortColumns maps accepted sort fields to columns; anything else falls
// back to date_applied.
var sortColumns = map[string]string{
	"date_applied": "date_applied",
	"company":      "lower(company)",
	"job_title":    "lower(job_title)",
	"status":       "status",
	"created_at":   "created_at",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(row scanner) (*models.Job, error) {
	var (
		j          models.Job
		nextAction sql.NullTime
		platforms  pq.StringArray
	)
	err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.DateApplied, &j.JobLink, &j.Salary, &j.Location,
		&j.Status, &nextAction, &j.Notes, &platforms, &j.IdempotencyKey, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if nextAction.Valid {
		t := nextAction.Time
		j.NextActionDate = &t
	}
	j.Platforms = []string(platforms)
	if j.Platforms == nil {
		j.Platforms = []string{}
	}
	return &j, nil
}

func nullableDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func (r *PostgresRepository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	query := `
		INSERT INTO job_applications (user_id, job_title, company, date_applied, job_link, salary, location,
			status, next_action_date, notes, application_platforms, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''))
		RETURNING ` + columns

	row := r.db.QueryRowContext(ctx, query, job.UserID, job.Title, job.Company, job.DateApplied, job.JobLink,
		job.Salary, job.Location, job.Status, nullableDate(job.NextActionDate), job.Notes,
		pq.StringArray(job.Platforms), job.IdempotencyKey)

	created, err := scanJob(row)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

func (r *PostgresRepository) FindByIdempotencyKey(ctx context.Context, userID, key string) (*models.Job, error) {
	query := `SELECT ` + columns + ` FROM job_applications WHERE user_id = $1 AND idempotency_key = $2`
	return r.one(ctx, query, userID, key)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, id string) (*models.Job, error) {
	query := `SELECT ` + columns + ` FROM job_applications WHERE id = $1 AND user_id = $2`
	return r.one(ctx, query, id, userID)
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Job, error) {
	j, err := scanJob(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return j, nil
}

// params collects positional arguments and hands out their placeholders.
type params struct {
	args []any
}

func (p *params) next(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func (r *PostgresRepository) Update(ctx context.Context, userID, id string, patch models.JobPatch) (*models.Job, error) {
	if patch.Empty() {
		return r.Get(ctx, userID, id)
	}

	var (
		p    params
		sets []string
	)
	set := func(col string, v any) { sets = append(sets, col+" = "+p.next(v)) }

	if patch.Title != nil {
		set("job_title", *patch.Title)
	}
	if patch.Company != nil {
		set("company", *patch.Company)
	}
	if patch.DateApplied != nil {
		set("date_applied", *patch.DateApplied)
	}
	if patch.JobLink != nil {
		set("job_link", *patch.JobLink)
	}
	if patch.Salary != nil {
		set("salary", *patch.Salary)
	}
	if patch.Location != nil {
		set("location", *patch.Location)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	switch {
	case patch.ClearNextActionDate:
		sets = append(sets, "next_action_date = NULL")
	case patch.NextActionDate != nil:
		set("next_action_date", *patch.NextActionDate)
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.Platforms != nil {
		set("application_platforms", pq.StringArray(patch.Platforms))
	}
	sets = append(sets, "updated_at = now()")

	query := fmt.Sprintf(`UPDATE job_applications SET %s WHERE id = %s AND user_id = %s RETURNING %s`,
		strings.Join(sets, ", "), p.next(id), p.next(userID), columns)

	return r.one(ctx, query, p.args...)
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM job_applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func where(p *params, userID string, f models.JobFilter) string {
	conds := []string{"user_id = " + p.next(userID)}
	if f.Company != "" {
		conds = append(conds, "company ILIKE "+p.next("%"+escapeLike(f.Company)+"%"))
	}
	if f.Status != "" {
		conds = append(conds, "status = "+p.next(f.Status))
	}
	if f.Platform != "" {
		conds = append(conds, p.next(f.Platform)+" = ANY(application_platforms)")
	}
	if f.DateFrom != nil {
		conds = append(conds, "date_applied >= "+p.next(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "date_applied <= "+p.next(*f.DateTo))
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

func orderBy(sortBy, sortOrder string) string {
	col, ok := sortColumns[sortBy]
	if !ok {
		col = sortColumns["date_applied"]
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("ORDER BY %s %s, created_at %s, id", col, dir, dir)
}

func (r *PostgresRepository) List(ctx context.Context, userID string, q models.JobQuery) (*models.JobPage, error) {
	var p params
	cond := where(&p, userID, q.Filter)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM job_applications `+cond, p.args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM job_applications %s %s LIMIT %s OFFSET %s`,
		columns, cond, orderBy(q.SortBy, q.SortOrder), p.next(q.Limit), p.next((q.Page-1)*q.Limit))

	list, err := r.query(ctx, query, p.args...)
	if err != nil {
		return nil, err
	}

	page := &models.JobPage{Jobs: list, Page: q.Page, Limit: q.Limit, TotalItems: total}
	if q.Limit > 0 {
		page.TotalPages = (total + q.Limit - 1) / q.Limit
	}
	return page, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]models.Job, error) {
	query := `SELECT ` + columns + ` FROM job_applications WHERE user_id = $1 ` + orderBy("date_applied", "desc")
	return r.query(ctx, query, userID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	list := []models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		list = append(list, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return list, nil
}
