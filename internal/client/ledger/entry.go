package ledger

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// Kind classifies a ledger entry.
type Kind string

const (
	KindCreate    Kind = "create"
	KindUpdate    Kind = "update"
	KindDelete    Kind = "delete"
	KindTagCreate Kind = "tag-create"
	KindTagDelete Kind = "tag-delete"
)

// Retry is the failure bookkeeping shared by all entries.
type Retry struct {
	Attempts  int    `json:"attempts,omitempty"`
	LastError string `json:"last_error,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
}

// PendingCreate holds the full job as created offline, keyed by Job.LocalID.
type PendingCreate struct {
	Job models.Job `json:"job"`
	Retry
}

// PendingUpdate targets ID, which is durable once the create is resolved
// and local before that. LocalID stays as a cross-reference.
type PendingUpdate struct {
	ID      string         `json:"id"`
	LocalID string         `json:"local_id,omitempty"`
	Diff    models.JobDiff `json:"diff"`
	Retry
}

func (u PendingUpdate) targets(id, localID string) bool {
	return (id != "" && (u.ID == id || u.LocalID == id)) ||
		(localID != "" && (u.ID == localID || u.LocalID == localID))
}

// PendingDelete is a tombstone for a durable id.
type PendingDelete struct {
	ID string `json:"id"`
	Retry
}

// PendingTag is a queued dictionary create or delete.
type PendingTag struct {
	Kind models.TagKind `json:"kind"`
	Key  string         `json:"key"`
	Name string         `json:"name,omitempty"`
	Retry
}

// Ref addresses one entry. Its string form is "<kind>:<key>" for jobs and
// "<kind>:<dictionary>/<key>" for tags.
type Ref struct {
	Kind    Kind
	TagKind models.TagKind
	Key     string
}

func (r Ref) String() string {
	if r.TagKind != "" {
		return fmt.Sprintf("%s:%s/%s", r.Kind, r.TagKind, r.Key)
	}
	return fmt.Sprintf("%s:%s", r.Kind, r.Key)
}

// ParseRef is the inverse of Ref.String.
func ParseRef(s string) (Ref, error) {
	kind, key, ok := strings.Cut(s, ":")
	if !ok || key == "" {
		return Ref{}, fmt.Errorf("malformed entry reference %q", s)
	}
	r := Ref{Kind: Kind(kind), Key: key}
	switch r.Kind {
	case KindCreate, KindUpdate, KindDelete:
		return r, nil
	case KindTagCreate, KindTagDelete:
		dict, tagKey, ok := strings.Cut(key, "/")
		if !ok || tagKey == "" || (models.TagKind(dict) != models.TagStatus && models.TagKind(dict) != models.TagPlatform) {
			return Ref{}, fmt.Errorf("malformed tag reference %q", s)
		}
		r.TagKind, r.Key = models.TagKind(dict), tagKey
		return r, nil
	}
	return Ref{}, fmt.Errorf("unknown entry kind %q", kind)
}

// Entry is a read-only listing row.
type Entry struct {
	Ref   Ref
	Label string
	Retry
}
