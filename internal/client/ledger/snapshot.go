package ledger

import "github.com/dmitrijs2005/applylog/internal/client/models"

// Snapshot is a detached copy of the ledger. It is also the persisted form.
type Snapshot struct {
	Creates    []PendingCreate `json:"creates,omitempty"`
	Updates    []PendingUpdate `json:"updates,omitempty"`
	Deletes    []PendingDelete `json:"deletes,omitempty"`
	TagCreates []PendingTag    `json:"tag_creates,omitempty"`
	TagDeletes []PendingTag    `json:"tag_deletes,omitempty"`
}

// Len counts all entries, blocked ones included.
func (s Snapshot) Len() int {
	return len(s.Creates) + len(s.Updates) + len(s.Deletes) + len(s.TagCreates) + len(s.TagDeletes)
}

// UpdateFor returns the pending update addressed by either identifier.
func (s Snapshot) UpdateFor(id, localID string) (PendingUpdate, bool) {
	for _, u := range s.Updates {
		if u.targets(id, localID) {
			return u, true
		}
	}
	return PendingUpdate{}, false
}

// HasDelete reports whether id carries a tombstone.
func (s Snapshot) HasDelete(id string) bool {
	if id == "" {
		return false
	}
	for _, d := range s.Deletes {
		if d.ID == id {
			return true
		}
	}
	return false
}

// HasCreate reports whether a create for localID is still queued.
func (s Snapshot) HasCreate(localID string) bool {
	for _, c := range s.Creates {
		if localID != "" && c.Job.LocalID == localID {
			return true
		}
	}
	return false
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{
		Creates:    make([]PendingCreate, len(s.Creates)),
		Updates:    make([]PendingUpdate, len(s.Updates)),
		Deletes:    append([]PendingDelete(nil), s.Deletes...),
		TagCreates: append([]PendingTag(nil), s.TagCreates...),
		TagDeletes: append([]PendingTag(nil), s.TagDeletes...),
	}
	for i, c := range s.Creates {
		c.Job = c.Job.Clone()
		out.Creates[i] = c
	}
	for i, u := range s.Updates {
		u.Diff = u.Diff.Clone()
		out.Updates[i] = u
	}
	return out
}

func matchesJob(j models.Job, id, localID string) bool {
	return j.Matches(id) || j.Matches(localID)
}
