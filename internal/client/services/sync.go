package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
)

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrEntryBusy      = errors.New("change is being sent right now")
)

// SyncFailure describes one entry the sync could not replay.
type SyncFailure struct {
	Ref     ledger.Ref
	Label   string
	Kind    Kind
	Message string
	Blocked bool
}

// SyncReport summarises one SyncAll run.
type SyncReport struct {
	Attempted int
	Succeeded int
	Failed    int
	// Blocked counts entries skipped because they need the user.
	Blocked int
	// Skipped counts entries left for a later run: a call for the record
	// was outstanding, or the create they depend on did not go through.
	Skipped  int
	Failures []SyncFailure
	// Resolved maps local ids to the durable ids issued during the run.
	Resolved map[string]string
}

func (r SyncReport) String() string {
	s := fmt.Sprintf("sync: %d attempted, %d succeeded, %d failed", r.Attempted, r.Succeeded, r.Failed)
	if r.Blocked > 0 {
		s += fmt.Sprintf(", %d blocked", r.Blocked)
	}
	if r.Skipped > 0 {
		s += fmt.Sprintf(", %d deferred", r.Skipped)
	}
	return s
}

// SyncService replays the ledger against the server.
type SyncService struct {
	core    *Core
	jobs    *JobService
	tags    *TagService
	log     logging.Logger
	running atomic.Bool
}

func NewSyncService(core *Core, jobs *JobService, tags *TagService) *SyncService {
	return &SyncService{core: core, jobs: jobs, tags: tags, log: core.Log.With("module", "sync")}
}

// SyncAll drains the ledger in dependency order: tag deletes, tag
// creates, job creates, job updates, job deletes. A failing entry stays
// queued and the run moves on; only an authorization failure stops it,
// since every later call would fail the same way. After the drain the
// job page, both dictionaries and the aggregate are reloaded.
func (s *SyncService) SyncAll(ctx context.Context) (SyncReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return SyncReport{}, ErrSyncInProgress
	}
	defer s.running.Store(false)

	rep := SyncReport{Resolved: map[string]string{}}
	if s.core.Ledger.CountPending() == 0 {
		return rep, nil
	}
	defer s.core.persist(ctx)

	s.log.Info(ctx, "sync started", "pending", s.core.Ledger.CountPending())

	phases := []func(context.Context, *SyncReport) error{
		s.syncTagDeletes,
		s.syncTagCreates,
		s.syncCreates,
		s.syncUpdates,
		s.syncDeletes,
	}
	for _, phase := range phases {
		if err := phase(ctx, &rep); err != nil {
			s.log.Warn(ctx, "sync aborted", "error", err, "report", rep.String())
			return rep, err
		}
	}

	s.reload(ctx)
	s.log.Info(ctx, "sync finished", "report", rep.String(), "pending", s.core.Ledger.CountPending())
	return rep, nil
}

func (s *SyncService) reload(ctx context.Context) {
	if res := s.jobs.Refresh(ctx); !res.OK() {
		s.log.Warn(ctx, "refetch after sync failed", "result", res.String())
	}
	if res := s.tags.RefreshAll(ctx); !res.OK() {
		s.log.Warn(ctx, "dictionary refetch after sync failed", "result", res.String())
	}
	s.core.Stats.Invalidate()
	if _, err := s.core.Stats.Fetch(ctx, true); err != nil {
		s.log.Warn(ctx, "stats refetch after sync failed", "error", err)
	}
}

// Discard drops a queued change without sending it and puts the server's
// version back on screen. Offline, a discarded create still disappears
// from the page; other rows keep their local values until the next fetch.
func (s *SyncService) Discard(ctx context.Context, ref ledger.Ref) error {
	if s.core.flight.isBusy(ref.Key, ref.String()) {
		return ErrEntryBusy
	}
	if err := s.core.Ledger.Discard(ref); err != nil {
		return err
	}
	s.core.persist(ctx)
	s.log.Info(ctx, "change discarded", "ref", ref.String())

	switch ref.Kind {
	case ledger.KindTagCreate, ledger.KindTagDelete:
		if ref.Kind == ledger.KindTagCreate {
			_, _ = s.core.Dictionary(ref.TagKind).Remove(ref.Key)
		}
		s.tags.Refresh(ctx, ref.TagKind)
		return nil
	case ledger.KindCreate:
		s.jobs.dropVisible(ref.Key)
	}
	s.core.Stats.Invalidate()
	s.jobs.Refresh(ctx)
	return nil
}

// Retry unblocks ref so the next SyncAll replays it.
func (s *SyncService) Retry(ctx context.Context, ref ledger.Ref) error {
	if err := s.core.Ledger.Requeue(ref); err != nil {
		return err
	}
	s.core.persist(ctx)
	return nil
}

// begin decides whether an entry is replayed now.
func (s *SyncService) begin(rep *SyncReport, r ledger.Retry, keys ...string) bool {
	if r.Blocked {
		rep.Blocked++
		return false
	}
	if s.core.flight.isBusy(keys...) {
		rep.Skipped++
		return false
	}
	rep.Attempted++
	return true
}

// fail books a failed replay. It returns an error when the run must stop.
func (s *SyncService) fail(ctx context.Context, rep *SyncReport, ref ledger.Ref, label string, err error) error {
	kind := KindOf(err)
	blocked := s.core.Ledger.MarkFailed(ref, err.Error(), kind == Validation)
	rep.Failed++
	rep.Failures = append(rep.Failures, SyncFailure{Ref: ref, Label: label, Kind: kind, Message: err.Error(), Blocked: blocked})
	s.log.Warn(ctx, "sync item failed", "entry", ref.String(), "kind", kind.String(), "blocked", blocked, "error", err)
	if kind == Unauthorized {
		return fmt.Errorf("sync stopped: %w", client.ErrUnauthorized)
	}
	return nil
}

func (s *SyncService) syncTagDeletes(ctx context.Context, rep *SyncReport) error {
	for _, t := range s.core.Ledger.Snapshot().TagDeletes {
		ref := tagRef(ledger.KindTagDelete, t.Kind, t.Key)
		r, ok := s.core.Ledger.Lookup(ref)
		if !ok || !s.begin(rep, r, ref.String()) {
			continue
		}
		err := s.tags.api.DeleteTag(ctx, t.Kind, t.Key)
		if err == nil || KindOf(err) == NotFound {
			s.core.Ledger.ConfirmTagDelete(t.Kind, t.Key)
			rep.Succeeded++
			continue
		}
		if err := s.fail(ctx, rep, ref, t.Key, err); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) syncTagCreates(ctx context.Context, rep *SyncReport) error {
	for _, t := range s.core.Ledger.Snapshot().TagCreates {
		ref := tagRef(ledger.KindTagCreate, t.Kind, t.Key)
		r, ok := s.core.Ledger.Lookup(ref)
		if !ok || !s.begin(rep, r, ref.String()) {
			continue
		}
		_, err := s.tags.api.CreateTag(ctx, t.Kind, t.Key, t.Name)
		if err == nil || errors.Is(err, common.ErrorAlreadyExists) {
			if _, ok := s.core.Ledger.Lookup(ref); !ok {
				// Removed locally while the create was on the wire.
				s.core.Ledger.RecordTagDelete(t.Kind, t.Key)
				s.log.Info(ctx, "tag removed during sync, delete queued", "entry", ref.String())
			}
			s.core.Ledger.ConfirmTagCreate(t.Kind, t.Key)
			rep.Succeeded++
			continue
		}
		if err := s.fail(ctx, rep, ref, t.Name, err); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) syncCreates(ctx context.Context, rep *SyncReport) error {
	for _, c := range s.core.Ledger.Snapshot().Creates {
		job := c.Job
		ref := ledger.Ref{Kind: ledger.KindCreate, Key: job.LocalID}
		r, ok := s.core.Ledger.Lookup(ref)
		if !ok {
			continue
		}
		if r.Blocked {
			rep.Blocked++
			continue
		}
		if !s.core.flight.beginCreate(job) {
			rep.Skipped++
			continue
		}
		// A delete landing before beginCreate purged the entry without
		// flagging the flight.
		if _, ok := s.core.Ledger.Lookup(ref); !ok {
			s.core.flight.endCreate(job.LocalID)
			continue
		}
		rep.Attempted++

		created, err := s.jobs.api.CreateJob(ctx, job.LocalID, job, s.core.tagMeta(job.Status, job.Platforms))
		deleted := s.core.flight.endCreate(job.LocalID)
		if err != nil {
			if deleted {
				// Removed by the user meanwhile; nothing is left to retry.
				rep.Attempted--
				continue
			}
			if err := s.fail(ctx, rep, ref, job.Title+" at "+job.Company, err); err != nil {
				return err
			}
			continue
		}

		s.core.Ledger.ConfirmCreate(job.LocalID)
		rep.Resolved[job.LocalID] = created.ID
		s.jobs.settleCreate(ctx, job.LocalID, created, deleted, false)
		rep.Succeeded++
	}
	return nil
}

func (s *SyncService) syncUpdates(ctx context.Context, rep *SyncReport) error {
	for _, u := range s.core.Ledger.Snapshot().Updates {
		if id, ok := rep.Resolved[u.ID]; ok {
			u.ID = id
		}
		if models.IsLocalID(u.ID) {
			// Its create has not been confirmed yet.
			rep.Skipped++
			continue
		}
		if !s.begin(rep, u.Retry, u.ID, u.LocalID) {
			continue
		}

		_, res, sent := s.jobs.pushUpdate(ctx, u.ID, u.LocalID)
		switch {
		case !sent:
			// Nothing left to send, or a call for the job started meanwhile.
			rep.Attempted--
			rep.Skipped++
		case res.OK() || res.Kind == NotFound:
			rep.Succeeded++
		default:
			rep.Failed++
			blocked := res.Kind == Validation || s.isBlocked(ledger.Ref{Kind: ledger.KindUpdate, Key: u.ID})
			rep.Failures = append(rep.Failures, SyncFailure{
				Ref:     ledger.Ref{Kind: ledger.KindUpdate, Key: u.ID},
				Label:   "job " + u.ID,
				Kind:    res.Kind,
				Message: res.Message,
				Blocked: blocked,
			})
			if res.Kind == Unauthorized {
				return fmt.Errorf("sync stopped: %w", client.ErrUnauthorized)
			}
		}
	}
	return nil
}

func (s *SyncService) syncDeletes(ctx context.Context, rep *SyncReport) error {
	for _, d := range s.core.Ledger.Snapshot().Deletes {
		r, ok := s.core.Ledger.Lookup(ledger.Ref{Kind: ledger.KindDelete, Key: d.ID})
		if !ok || !s.begin(rep, r, d.ID) {
			continue
		}
		err := s.jobs.api.DeleteJob(ctx, d.ID)
		if err == nil || KindOf(err) == NotFound {
			s.core.Ledger.ConfirmDelete(d.ID)
			rep.Succeeded++
			continue
		}
		if err := s.fail(ctx, rep, ledger.Ref{Kind: ledger.KindDelete, Key: d.ID}, "job "+d.ID, err); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) isBlocked(ref ledger.Ref) bool {
	for _, e := range s.core.Ledger.Blocked() {
		if e.Ref == ref {
			return true
		}
	}
	return false
}
