package ledger

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// DefaultMaxAttempts is how many retryable failures an entry survives
// before it is blocked.
const DefaultMaxAttempts = 5

var ErrNoEntry = errors.New("no such ledger entry")

// Ledger is safe for concurrent use. Entries keep insertion order, which is
// the order the sync replays them in.
type Ledger struct {
	mu          sync.Mutex
	maxAttempts int
	s           Snapshot
}

// New returns an empty ledger. maxAttempts <= 0 selects DefaultMaxAttempts.
func New(maxAttempts int) *Ledger {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Ledger{maxAttempts: maxAttempts}
}

// RecordCreate queues job under its LocalID, replacing an earlier snapshot
// of the same create.
func (l *Ledger) RecordCreate(job models.Job) {
	l.mu.Lock()
	defer l.mu.Unlock()

	job = job.Clone()
	job.Pending = true
	for i := range l.s.Creates {
		if l.s.Creates[i].Job.LocalID == job.LocalID {
			l.s.Creates[i] = PendingCreate{Job: job}
			return
		}
	}
	l.s.Creates = append(l.s.Creates, PendingCreate{Job: job})
}

// RecordUpdate merges diff into the pending update for the target, or
// appends a new one. id is the durable id when known, otherwise the local
// id. New user input clears any earlier failure state on the slot.
func (l *Ledger) RecordUpdate(id, localID string, diff models.JobDiff) {
	if diff.IsEmpty() {
		return
	}
	if id == "" {
		id = localID
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.s.Updates {
		u := &l.s.Updates[i]
		if !u.targets(id, localID) {
			continue
		}
		u.Diff = u.Diff.Merge(diff)
		if models.IsLocalID(u.ID) && !models.IsLocalID(id) {
			u.ID = id
		}
		if u.LocalID == "" {
			u.LocalID = localID
		}
		u.Retry = Retry{}
		return
	}
	l.s.Updates = append(l.s.Updates, PendingUpdate{ID: id, LocalID: localID, Diff: diff.Clone()})
}

// RecordDelete drops every queued create and update for the job. A
// tombstone is kept only for a durable id; a job that never reached the
// server has nothing to delete remotely. It reports whether a tombstone
// was recorded.
func (l *Ledger) RecordDelete(id, localID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(id, localID)
	if id == "" || models.IsLocalID(id) {
		return false
	}
	if !l.s.HasDelete(id) {
		l.s.Deletes = append(l.s.Deletes, PendingDelete{ID: id})
	}
	return true
}

// Purge drops queued creates and updates for the job without tombstoning.
func (l *Ledger) Purge(id, localID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.purge(id, localID)
}

func (l *Ledger) purge(id, localID string) {
	l.s.Creates = slices.DeleteFunc(l.s.Creates, func(c PendingCreate) bool {
		return matchesJob(c.Job, id, localID)
	})
	l.s.Updates = slices.DeleteFunc(l.s.Updates, func(u PendingUpdate) bool {
		return u.targets(id, localID)
	})
}

// ConfirmCreate removes the queued create for localID.
func (l *Ledger) ConfirmCreate(localID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Creates = slices.DeleteFunc(l.s.Creates, func(c PendingCreate) bool {
		return c.Job.LocalID == localID
	})
}

// ResolveCreateID rewrites every reference to localID so it addresses
// durableID instead.
func (l *Ledger) ResolveCreateID(localID, durableID string) {
	if localID == "" || durableID == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.s.Updates {
		u := &l.s.Updates[i]
		if u.ID == localID || u.LocalID == localID {
			u.ID = durableID
			u.LocalID = localID
		}
	}
	for i := range l.s.Deletes {
		if l.s.Deletes[i].ID == localID {
			l.s.Deletes[i].ID = durableID
		}
	}
	for i := range l.s.Creates {
		if l.s.Creates[i].Job.LocalID == localID {
			l.s.Creates[i].Job.ID = durableID
		}
	}
}

// PendingDiff returns the diff still queued for the job.
func (l *Ledger) PendingDiff(id, localID string) (models.JobDiff, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.s.UpdateFor(id, localID)
	if !ok {
		return models.JobDiff{}, false
	}
	return u.Diff.Clone(), true
}

// ConfirmUpdate clears the fields the server accepted. Fields that changed
// again after sent was taken stay queued.
func (l *Ledger) ConfirmUpdate(id string, sent models.JobDiff) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.s.Updates {
		u := &l.s.Updates[i]
		if !u.targets(id, "") {
			continue
		}
		u.Diff = u.Diff.Without(sent)
		if u.Diff.IsEmpty() {
			l.s.Updates = slices.Delete(l.s.Updates, i, i+1)
		}
		return
	}
}

// ConfirmDelete removes the tombstone for id.
func (l *Ledger) ConfirmDelete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.Deletes = slices.DeleteFunc(l.s.Deletes, func(d PendingDelete) bool { return d.ID == id })
}

// RecordTagCreate queues a dictionary insert.
func (l *Ledger) RecordTagCreate(kind models.TagKind, key, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.s.TagCreates {
		if sameTag(l.s.TagCreates[i], kind, key) {
			l.s.TagCreates[i].Name = name
			return
		}
	}
	l.s.TagCreates = append(l.s.TagCreates, PendingTag{Kind: kind, Key: key, Name: name})
}

// RecordTagDelete queues a dictionary delete. A tag whose create is still
// queued is simply forgotten; it reports whether a delete was recorded.
func (l *Ledger) RecordTagDelete(kind models.TagKind, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.s.TagCreates)
	l.s.TagCreates = slices.DeleteFunc(l.s.TagCreates, func(t PendingTag) bool { return sameTag(t, kind, key) })
	if len(l.s.TagCreates) != n {
		return false
	}
	if !slices.ContainsFunc(l.s.TagDeletes, func(t PendingTag) bool { return sameTag(t, kind, key) }) {
		l.s.TagDeletes = append(l.s.TagDeletes, PendingTag{Kind: kind, Key: key})
	}
	return true
}

func (l *Ledger) ConfirmTagCreate(kind models.TagKind, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.TagCreates = slices.DeleteFunc(l.s.TagCreates, func(t PendingTag) bool { return sameTag(t, kind, key) })
}

func (l *Ledger) ConfirmTagDelete(kind models.TagKind, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s.TagDeletes = slices.DeleteFunc(l.s.TagDeletes, func(t PendingTag) bool { return sameTag(t, kind, key) })
}

// MarkFailed records a failed replay of ref. A permanent failure blocks
// the entry at once; otherwise it is blocked when attempts reach the
// limit. It reports whether the entry is now blocked.
func (l *Ledger) MarkFailed(ref Ref, msg string, permanent bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.retryFor(ref)
	if r == nil {
		return false
	}
	r.Attempts++
	r.LastError = msg
	if permanent || r.Attempts >= l.maxAttempts {
		r.Blocked = true
	}
	return r.Blocked
}

// Requeue unblocks ref and resets its attempts.
func (l *Ledger) Requeue(ref Ref) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	r := l.retryFor(ref)
	if r == nil {
		return ErrNoEntry
	}
	*r = Retry{}
	return nil
}

// Discard drops ref without telling the server.
func (l *Ledger) Discard(ref Ref) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.retryFor(ref) == nil {
		return ErrNoEntry
	}
	switch ref.Kind {
	case KindCreate:
		l.s.Creates = slices.DeleteFunc(l.s.Creates, func(c PendingCreate) bool { return c.Job.LocalID == ref.Key })
	case KindUpdate:
		l.s.Updates = slices.DeleteFunc(l.s.Updates, func(u PendingUpdate) bool { return u.ID == ref.Key })
	case KindDelete:
		l.s.Deletes = slices.DeleteFunc(l.s.Deletes, func(d PendingDelete) bool { return d.ID == ref.Key })
	case KindTagCreate:
		l.s.TagCreates = slices.DeleteFunc(l.s.TagCreates, func(t PendingTag) bool { return sameTag(t, ref.TagKind, ref.Key) })
	case KindTagDelete:
		l.s.TagDeletes = slices.DeleteFunc(l.s.TagDeletes, func(t PendingTag) bool { return sameTag(t, ref.TagKind, ref.Key) })
	}
	return nil
}

// Lookup returns the current retry state of ref. ok is false once the
// entry has been confirmed, discarded or superseded.
func (l *Ledger) Lookup(ref Ref) (Retry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r := l.retryFor(ref)
	if r == nil {
		return Retry{}, false
	}
	return *r, true
}

func (l *Ledger) retryFor(ref Ref) *Retry {
	switch ref.Kind {
	case KindCreate:
		for i := range l.s.Creates {
			if l.s.Creates[i].Job.LocalID == ref.Key {
				return &l.s.Creates[i].Retry
			}
		}
	case KindUpdate:
		for i := range l.s.Updates {
			if l.s.Updates[i].ID == ref.Key {
				return &l.s.Updates[i].Retry
			}
		}
	case KindDelete:
		for i := range l.s.Deletes {
			if l.s.Deletes[i].ID == ref.Key {
				return &l.s.Deletes[i].Retry
			}
		}
	case KindTagCreate:
		for i := range l.s.TagCreates {
			if sameTag(l.s.TagCreates[i], ref.TagKind, ref.Key) {
				return &l.s.TagCreates[i].Retry
			}
		}
	case KindTagDelete:
		for i := range l.s.TagDeletes {
			if sameTag(l.s.TagDeletes[i], ref.TagKind, ref.Key) {
				return &l.s.TagDeletes[i].Retry
			}
		}
	}
	return nil
}

// Entries lists everything queued, in replay order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []Entry
	for _, t := range l.s.TagDeletes {
		out = append(out, Entry{Ref: Ref{Kind: KindTagDelete, TagKind: t.Kind, Key: t.Key}, Label: t.Key, Retry: t.Retry})
	}
	for _, t := range l.s.TagCreates {
		out = append(out, Entry{Ref: Ref{Kind: KindTagCreate, TagKind: t.Kind, Key: t.Key}, Label: t.Name, Retry: t.Retry})
	}
	for _, c := range l.s.Creates {
		label := c.Job.Title + " at " + c.Job.Company
		out = append(out, Entry{Ref: Ref{Kind: KindCreate, Key: c.Job.LocalID}, Label: label, Retry: c.Retry})
	}
	for _, u := range l.s.Updates {
		label := strings.Join(u.Diff.Fields(), ", ")
		out = append(out, Entry{Ref: Ref{Kind: KindUpdate, Key: u.ID}, Label: label, Retry: u.Retry})
	}
	for _, d := range l.s.Deletes {
		out = append(out, Entry{Ref: Ref{Kind: KindDelete, Key: d.ID}, Label: "job " + d.ID, Retry: d.Retry})
	}
	return out
}

// Blocked lists entries the sync no longer replays.
func (l *Ledger) Blocked() []Entry {
	return slices.DeleteFunc(l.Entries(), func(e Entry) bool { return !e.Blocked })
}

// CountPending counts every queued entry, blocked ones included.
func (l *Ledger) CountPending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Len()
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.clone()
}

// Restore replaces the ledger contents, e.g. with a persisted snapshot.
func (l *Ledger) Restore(s Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.s = s.clone()
}

func sameTag(t PendingTag, kind models.TagKind, key string) bool {
	return t.Kind == kind && t.Key == key
}
