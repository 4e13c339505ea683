// Package models defines client-side data models used by the applylog CLI.
package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalIDPrefix marks identifiers minted on the client. Server ids are
// numeric, so a prefixed id can never be mistaken for a durable one.
const LocalIDPrefix = "tmp-"

// NewLocalID returns a fresh temporary identifier.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id was minted by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// Job is one job application as the client sees it.
type Job struct {
	// ID is the durable, server-issued identifier. Empty until the create
	// is confirmed.
	ID string `json:"id,omitempty"`
	// LocalID is the temporary identifier of an optimistic create. It is
	// kept after ID arrives so late references can still be resolved.
	LocalID string `json:"local_id,omitempty"`

	Title          string   `json:"title"`
	Company        string   `json:"company"`
	DateApplied    string   `json:"date_applied"`
	JobLink        string   `json:"job_link,omitempty"`
	Salary         string   `json:"salary,omitempty"`
	Location       string   `json:"location,omitempty"`
	Status         string   `json:"status"`
	NextActionDate string   `json:"next_action_date,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Platforms      []string `json:"platforms"`

	// Pending is set while the job has unconfirmed local mutations.
	Pending bool `json:"pending,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Key returns the identifier used for lookups: the durable id when known,
// otherwise the local one.
func (j Job) Key() string {
	if j.ID != "" {
		return j.ID
	}
	return j.LocalID
}

// Matches reports whether id addresses this job by either identifier.
func (j Job) Matches(id string) bool {
	return id != "" && (id == j.ID || id == j.LocalID)
}

// Clone returns a copy that shares no slices with j.
func (j Job) Clone() Job {
	j.Platforms = slices.Clone(j.Platforms)
	return j
}

// SameListing is the heuristic used to recognise an already persisted
// pending create: equal title and company, compared case-insensitively.
func (j Job) SameListing(o Job) bool {
	return strings.EqualFold(strings.TrimSpace(j.Title), strings.TrimSpace(o.Title)) &&
		strings.EqualFold(strings.TrimSpace(j.Company), strings.TrimSpace(o.Company))
}

// Page is one authoritative page of jobs with its pagination data.
type Page struct {
	Jobs        []Job
	CurrentPage int
	TotalPages  int
	TotalItems  int
}
