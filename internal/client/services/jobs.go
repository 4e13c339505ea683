package services

import (
	"context"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/reconcile"
	"github.com/dmitrijs2005/applylog/internal/client/state"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

// JobAPI is the part of the server API the job service needs.
type JobAPI interface {
	ListJobs(ctx context.Context, q models.Query) (models.Page, error)
	CreateJob(ctx context.Context, idempotencyKey string, j models.Job, meta client.TagMeta) (models.Job, error)
	UpdateJob(ctx context.Context, id string, diff models.JobDiff, meta client.TagMeta) (models.Job, error)
	DeleteJob(ctx context.Context, id string) error
}

// JobService applies job mutations optimistically.
//
// Every mutation changes the visible state and the aggregate first, then
// talks to the server. A failed remote call leaves the local change in
// place and queues it in the ledger.
type JobService struct {
	core *Core
	api  JobAPI
	log  logging.Logger
}

func NewJobService(core *Core, api JobAPI) *JobService {
	return &JobService{core: core, api: api, log: core.Log.With("module", "jobs")}
}

// Create shows j at the top of the first page right away and sends it to
// the server. The returned job carries the durable id when the server
// confirmed it, and the local id only otherwise.
func (s *JobService) Create(ctx context.Context, j models.Job) (models.Job, Result) {
	if err := validation.ValidateJob(toValidationJob(j)); err != nil {
		return models.Job{}, resultOf(err)
	}

	job := j.Clone()
	job.ID = ""
	job.LocalID = models.NewLocalID()
	job.Pending = true
	job.CreatedAt = s.core.now()
	job.UpdatedAt = job.CreatedAt

	s.core.State.Update(func(v *state.View) {
		if v.OnFirstPage() {
			v.Jobs = append([]models.Job{job.Clone()}, v.Jobs...)
			if v.PageSize > 0 && len(v.Jobs) > v.PageSize {
				v.Jobs = v.Jobs[:v.PageSize]
			}
		}
		v.TotalItems++
		v.TotalPages = totalPages(v.TotalItems, v.PageSize)
	})
	s.core.Stats.OnRecordAdded(job)

	s.core.flight.beginCreate(job)
	created, err := s.api.CreateJob(ctx, job.LocalID, job, s.core.tagMeta(job.Status, job.Platforms))
	deleted := s.core.flight.endCreate(job.LocalID)

	if err != nil {
		res := resultOf(err)
		if deleted {
			return job, res
		}
		s.core.Ledger.RecordCreate(job)
		s.core.Ledger.MarkFailed(ledger.Ref{Kind: ledger.KindCreate, Key: job.LocalID}, err.Error(), res.Kind == Validation)
		s.core.persist(ctx)
		s.log.Warn(ctx, "create queued", "local_id", job.LocalID, "kind", res.Kind.String(), "error", err)
		return job, res
	}

	created = s.settleCreate(ctx, job.LocalID, created, deleted, true)
	s.core.persist(ctx)
	return created, Result{}
}

// settleCreate finishes a create the server confirmed: references to the
// local id are rewritten and the visible row is replaced. With flush set,
// updates queued while the call ran are sent too. A record deleted
// meanwhile is deleted on the server instead.
func (s *JobService) settleCreate(ctx context.Context, localID string, created models.Job, deleted, flush bool) models.Job {
	created.LocalID = localID
	created.Pending = false

	if deleted {
		s.core.Ledger.RecordDelete(created.ID, localID)
		s.deleteRemote(ctx, created.ID, localID)
		return created
	}

	s.core.Ledger.ResolveCreateID(localID, created.ID)
	shown := created
	if diff, ok := s.core.Ledger.PendingDiff(created.ID, localID); ok {
		shown = diff.Apply(created)
		shown.Pending = true
	}
	s.replace(localID, shown)

	if shown.Pending && flush {
		if out, _, sent := s.pushUpdate(ctx, created.ID, localID); sent {
			return out
		}
	}
	return shown
}

// Update merges diff into the job addressed by id (durable or local).
func (s *JobService) Update(ctx context.Context, id string, diff models.JobDiff) (models.Job, Result) {
	if err := validation.ValidatePatch(toValidationPatch(diff)); err != nil {
		return models.Job{}, resultOf(err)
	}

	var before, after models.Job
	found := false
	s.core.State.Update(func(v *state.View) {
		i := v.Index(id)
		if i < 0 {
			return
		}
		found = true
		before = v.Jobs[i].Clone()
		after = diff.Apply(before)
		after.Pending = true
		v.Jobs[i] = after.Clone()
	})
	if !found {
		return models.Job{}, notFound("job " + id + " is not on the current page")
	}
	if diff.IsEmpty() {
		return before, Result{}
	}
	s.core.Stats.OnRecordChanged(before, after)

	durable := before.ID
	s.core.Ledger.RecordUpdate(durable, before.LocalID, diff)

	if durable == "" {
		s.core.persist(ctx)
		return after, Result{}
	}

	out, res, sent := s.pushUpdate(ctx, durable, before.LocalID)
	if !sent {
		s.core.persist(ctx)
		return after, Result{}
	}
	return out, res
}

// pushUpdate sends the diff queued for the job. It reports sent=false when
// nothing is queued or another call for the job is outstanding; the diff
// then stays queued.
func (s *JobService) pushUpdate(ctx context.Context, id, localID string) (models.Job, Result, bool) {
	if !s.core.flight.acquire(id, localID) {
		return models.Job{}, Result{}, false
	}
	defer s.core.flight.release(id, localID)

	sent, ok := s.core.Ledger.PendingDiff(id, localID)
	if !ok {
		return models.Job{}, Result{}, false
	}

	updated, err := s.api.UpdateJob(ctx, id, sent, s.core.diffMeta(sent))
	defer s.core.persist(ctx)

	switch res := resultOf(err); res.Kind {
	case None:
		s.core.Ledger.ConfirmUpdate(id, sent)
		updated.LocalID = localID
		updated.Pending = false
		if rest, ok := s.core.Ledger.PendingDiff(id, localID); ok {
			updated = rest.Apply(updated)
			updated.Pending = true
		}
		s.replace(id, updated)
		return updated, res, true
	case NotFound:
		s.log.Info(ctx, "job is gone on the server", "id", id)
		s.core.Ledger.Purge(id, localID)
		s.dropVisible(id)
		return models.Job{}, Result{}, true
	default:
		s.core.Ledger.MarkFailed(ledger.Ref{Kind: ledger.KindUpdate, Key: id}, err.Error(), res.Kind == Validation)
		s.log.Warn(ctx, "update queued", "id", id, "kind", res.Kind.String(), "error", err)
		job, _ := s.core.State.View().Find(id)
		return job, res, true
	}
}

// Delete removes the job addressed by id from view at once.
func (s *JobService) Delete(ctx context.Context, id string) Result {
	job, ok := s.dropVisible(id)
	if !ok {
		return notFound("job " + id + " is not on the current page")
	}

	if job.ID == "" {
		s.core.flight.markDeleted(job.LocalID)
		s.core.Ledger.Purge("", job.LocalID)
		s.core.persist(ctx)
		return Result{}
	}

	s.core.Ledger.RecordDelete(job.ID, job.LocalID)
	res := s.deleteRemote(ctx, job.ID, job.LocalID)
	s.core.persist(ctx)
	return res
}

// deleteRemote sends the delete for a tombstoned id. The tombstone stays
// queued when the call fails or another call for the job is outstanding.
func (s *JobService) deleteRemote(ctx context.Context, id, localID string) Result {
	if !s.core.flight.acquire(id, localID) {
		return Result{}
	}
	defer s.core.flight.release(id, localID)

	err := s.api.DeleteJob(ctx, id)
	switch res := resultOf(err); res.Kind {
	case None, NotFound:
		s.core.Ledger.ConfirmDelete(id)
		return Result{}
	default:
		s.core.Ledger.MarkFailed(ledger.Ref{Kind: ledger.KindDelete, Key: id}, err.Error(), res.Kind == Validation)
		s.log.Warn(ctx, "delete queued", "id", id, "kind", res.Kind.String(), "error", err)
		return res
	}
}

// Fetch loads one page for q and reconciles it with the ledger. q becomes
// the active query.
func (s *JobService) Fetch(ctx context.Context, q models.Query) Result {
	if err := validation.ValidateQuery(toValidationQuery(q)); err != nil {
		return resultOf(err)
	}
	q.Page = q.PageOrFirst()

	s.core.State.Update(func(v *state.View) {
		if q.Limit == 0 {
			q.Limit = v.PageSize
		}
		v.Query = q
		v.Loading = true
	})

	page, err := s.api.ListJobs(ctx, q)
	if err != nil {
		s.core.State.Update(func(v *state.View) {
			v.Loading = false
			v.LastError = err
		})
		return resultOf(err)
	}

	jobs := reconcile.Merge(page.Jobs, s.core.snapshot(), q.Page == 1 && !q.Filtered())
	s.core.State.Update(func(v *state.View) {
		v.Jobs = jobs
		v.CurrentPage = page.CurrentPage
		if v.CurrentPage == 0 {
			v.CurrentPage = q.Page
		}
		v.TotalPages = page.TotalPages
		v.TotalItems = page.TotalItems
		v.Loading = false
		v.LastError = nil
		v.LastFetched = s.core.now()
	})
	return Result{}
}

// Search starts a new query from its first page.
func (s *JobService) Search(ctx context.Context, q models.Query) Result {
	q.Page = 1
	return s.Fetch(ctx, q)
}

// Refresh re-runs the active query.
func (s *JobService) Refresh(ctx context.Context) Result {
	return s.Fetch(ctx, s.core.State.View().Query)
}

// Page moves the active query to page n.
func (s *JobService) Page(ctx context.Context, n int) Result {
	q := s.core.State.View().Query
	q.Page = n
	return s.Fetch(ctx, q)
}

// replace swaps the visible row addressed by id for j.
func (s *JobService) replace(id string, j models.Job) {
	s.core.State.Update(func(v *state.View) {
		if i := v.Index(id); i >= 0 {
			v.Jobs[i] = j.Clone()
		}
	})
}

// dropVisible removes the row addressed by id and takes it out of the
// aggregate.
func (s *JobService) dropVisible(id string) (models.Job, bool) {
	var job models.Job
	found := false
	s.core.State.Update(func(v *state.View) {
		i := v.Index(id)
		if i < 0 {
			return
		}
		found = true
		job = v.Jobs[i]
		v.Jobs = append(v.Jobs[:i:i], v.Jobs[i+1:]...)
		if v.TotalItems > 0 {
			v.TotalItems--
		}
		v.TotalPages = totalPages(v.TotalItems, v.PageSize)
	})
	if found {
		s.core.Stats.OnRecordRemoved(job)
	}
	return job, found
}
