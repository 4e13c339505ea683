package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/config"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/applylog/internal/tagkey"
	"github.com/dmitrijs2005/applylog/internal/timex"
	"github.com/dmitrijs2005/applylog/internal/validation"
	"github.com/google/uuid"
)

const defaultPageSize = 10

// JobService implements job CRUD and listing for one user at a time.
type JobService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	maxPageSize int
}

func NewJobService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *JobService {
	maxPage := cfg.MaxPageSize
	if maxPage <= 0 {
		maxPage = 100
	}
	return &JobService{db: db, repomanager: m, log: log.With("module", "jobs"), maxPageSize: maxPage}
}

// Create validates and stores a job. When idempotencyKey is set and the
// user already has a row created with it, that row is returned unchanged.
func (s *JobService) Create(ctx context.Context, userID, idempotencyKey string, in validation.Job, meta models.TagMeta) (*models.Job, error) {
	in.Status = tagkey.Normalize(in.Status)
	in.Platforms = normalizeKeys(in.Platforms)
	if err := validation.ValidateJob(in); err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.repomanager.Jobs(s.db).FindByIdempotencyKey(ctx, userID, idempotencyKey)
		if err == nil {
			s.log.Debug(ctx, "duplicate create answered from idempotency key", "job_id", existing.ID)
			return existing, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}

	job, err := toModelJob(userID, idempotencyKey, in)
	if err != nil {
		return nil, err
	}

	var created *models.Job
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.ensureTags(ctx, tx, userID, &job.Status, job.Platforms, meta); err != nil {
			return err
		}
		var createErr error
		created, createErr = s.repomanager.Jobs(tx).Create(ctx, job)
		return createErr
	})
	if errors.Is(err, common.ErrorAlreadyExists) && idempotencyKey != "" {
		// A concurrent retry won the insert.
		return s.repomanager.Jobs(s.db).FindByIdempotencyKey(ctx, userID, idempotencyKey)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating job: %w", err)
	}

	s.log.Info(ctx, "job created", "user_id", userID, "job_id", created.ID)
	return created, nil
}

// Update applies the fields present in p. A job that does not exist, or
// belongs to someone else, yields common.ErrorNotFound.
func (s *JobService) Update(ctx context.Context, userID, id string, p validation.Patch, meta models.TagMeta) (*models.Job, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	if p.Status != nil {
		st := tagkey.Normalize(*p.Status)
		p.Status = &st
	}
	if p.Platforms != nil {
		p.Platforms = normalizeKeys(p.Platforms)
	}
	if err := validation.ValidatePatch(p); err != nil {
		return nil, err
	}

	patch, err := toModelPatch(p)
	if err != nil {
		return nil, err
	}

	var updated *models.Job
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if patch.Status != nil || patch.Platforms != nil {
			if err := s.ensureTags(ctx, tx, userID, patch.Status, patch.Platforms, meta); err != nil {
				return err
			}
		}
		var updErr error
		updated, updErr = s.repomanager.Jobs(tx).Update(ctx, userID, id, patch)
		return updErr
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating job: %w", err)
	}
	return updated, nil
}

func (s *JobService) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return common.ErrorNotFound
	}
	if err := s.repomanager.Jobs(s.db).Delete(ctx, userID, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("error deleting job: %w", err)
	}
	s.log.Info(ctx, "job deleted", "user_id", userID, "job_id", id)
	return nil
}

// List returns one page of the user's jobs. Zero page and limit mean the
// first page of defaultPageSize; limits above the configured maximum are
// capped.
func (s *JobService) List(ctx context.Context, userID string, q validation.Query) (*models.JobPage, error) {
	if err := validation.ValidateQuery(q); err != nil {
		return nil, err
	}

	query := models.JobQuery{
		Filter: models.JobFilter{
			Company:  strings.TrimSpace(q.Q),
			Status:   tagkey.Normalize(q.Status),
			Platform: tagkey.Normalize(q.Platform),
		},
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Limit:     q.Limit,
	}
	if query.Page == 0 {
		query.Page = 1
	}
	if query.Limit == 0 {
		query.Limit = defaultPageSize
	}
	if query.Limit > s.maxPageSize {
		query.Limit = s.maxPageSize
	}
	if query.SortBy == "" {
		query.SortBy = "date_applied"
	}
	if query.SortOrder == "" {
		query.SortOrder = "desc"
	}
	if q.DateFrom != "" {
		d, _ := timex.ParseDate(q.DateFrom)
		query.Filter.DateFrom = &d
	}
	if q.DateTo != "" {
		d, _ := timex.ParseDate(q.DateTo)
		query.Filter.DateTo = &d
	}

	return s.repomanager.Jobs(s.db).List(ctx, userID, query)
}

// ListAll returns every job of the user, for export.
func (s *JobService) ListAll(ctx context.Context, userID string) ([]models.Job, error) {
	return s.repomanager.Jobs(s.db).ListAll(ctx, userID)
}

// ensureTags adds every non-default key the job references to the user's
// custom dictionaries, taking display names from meta when present.
func (s *JobService) ensureTags(ctx context.Context, tx dbx.DBTX, userID string, status *string, platforms []string, meta models.TagMeta) error {
	repo := s.repomanager.Tags(tx)

	if status != nil {
		defaults, err := repo.ListDefaults(ctx, models.TagStatus)
		if err != nil {
			return err
		}
		if !hasKey(defaults, *status) {
			tag := models.Tag{Key: *status, Name: *status}
			if meta.Status != nil {
				if key, name := tagkey.Resolve(meta.Status.Key, meta.Status.Name); key == *status {
					tag.Name = name
				}
			}
			if err := repo.EnsureCustom(ctx, userID, models.TagStatus, tag); err != nil {
				return err
			}
		}
	}

	if len(platforms) == 0 {
		return nil
	}
	defaults, err := repo.ListDefaults(ctx, models.TagPlatform)
	if err != nil {
		return err
	}
	names := map[string]string{}
	for _, m := range meta.Platforms {
		key, name := tagkey.Resolve(m.Key, m.Name)
		names[key] = name
	}
	for _, p := range platforms {
		if hasKey(defaults, p) {
			continue
		}
		tag := models.Tag{Key: p, Name: p}
		if name, ok := names[p]; ok {
			tag.Name = name
		}
		if err := repo.EnsureCustom(ctx, userID, models.TagPlatform, tag); err != nil {
			return err
		}
	}
	return nil
}

func hasKey(tags []models.Tag, key string) bool {
	for _, t := range tags {
		if t.Key == key {
			return true
		}
	}
	return false
}

// normalizeKeys maps each entry to its dictionary key, dropping blanks and
// repeats while keeping the first-seen order. A non-nil input never yields
// a nil result.
func normalizeKeys(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		k := tagkey.Normalize(v)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toModelJob(userID, idempotencyKey string, in validation.Job) (*models.Job, error) {
	applied, err := timex.ParseDate(in.DateApplied)
	if err != nil {
		return nil, err
	}
	j := &models.Job{
		UserID:         userID,
		Title:          strings.TrimSpace(in.Title),
		Company:        strings.TrimSpace(in.Company),
		DateApplied:    applied,
		JobLink:        strings.TrimSpace(in.JobLink),
		Salary:         strings.TrimSpace(in.Salary),
		Location:       strings.TrimSpace(in.Location),
		Status:         in.Status,
		Notes:          in.Notes,
		Platforms:      in.Platforms,
		IdempotencyKey: idempotencyKey,
	}
	if in.NextActionDate != "" {
		next, err := timex.ParseDate(in.NextActionDate)
		if err != nil {
			return nil, err
		}
		j.NextActionDate = &next
	}
	return j, nil
}

func toModelPatch(p validation.Patch) (models.JobPatch, error) {
	out := models.JobPatch{
		Title:     trimmed(p.Title),
		Company:   trimmed(p.Company),
		JobLink:   trimmed(p.JobLink),
		Salary:    trimmed(p.Salary),
		Location:  trimmed(p.Location),
		Status:    p.Status,
		Notes:     p.Notes,
		Platforms: p.Platforms,
	}
	if p.DateApplied != nil {
		d, err := timex.ParseDate(*p.DateApplied)
		if err != nil {
			return out, err
		}
		out.DateApplied = &d
	}
	if p.NextActionDate != nil {
		if *p.NextActionDate == "" {
			out.ClearNextActionDate = true
		} else {
			d, err := timex.ParseDate(*p.NextActionDate)
			if err != nil {
				return out, err
			}
			out.NextActionDate = &d
		}
	}
	return out, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// today is a seam shared by the stats and export services.
var today = func() time.Time { return time.Now().UTC() }
