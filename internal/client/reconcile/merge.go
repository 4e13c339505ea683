// Package reconcile derives the visible job list from an authoritative
// fetch and the pending-change ledger.
package reconcile

import (
	"slices"

	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// Merge returns the jobs to display for one fetched page:
//
//  1. fetched jobs are marked confirmed;
//  2. jobs with a pending delete are dropped;
//  3. when includeCreates is set, pending creates not yet visible in the
//     fetch (same title and company) are put in front, in ledger order;
//  4. pending updates are overlaid and mark their job pending.
//
// Merge does not modify its inputs, so calling it again with the same
// arguments yields the same result.
func Merge(fetched []models.Job, s ledger.Snapshot, includeCreates bool) []models.Job {
	out := make([]models.Job, 0, len(fetched)+len(s.Creates))
	for _, j := range fetched {
		if s.HasDelete(j.ID) {
			continue
		}
		j = j.Clone()
		j.Pending = false
		out = append(out, j)
	}

	if includeCreates {
		var head []models.Job
		for _, c := range s.Creates {
			if slices.ContainsFunc(out, c.Job.SameListing) {
				continue
			}
			j := c.Job.Clone()
			j.Pending = true
			head = append(head, j)
		}
		out = append(head, out...)
	}

	for i := range out {
		if u, ok := s.UpdateFor(out[i].ID, out[i].LocalID); ok {
			out[i] = u.Diff.Apply(out[i])
			out[i].Pending = true
		}
	}
	return out
}
