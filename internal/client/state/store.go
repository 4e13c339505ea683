// Package state holds the job list the user currently sees, together with
// its pagination, active query and connection status.
//
// Writers go through Update; readers take a View, which is a deep copy.
// Subscribers are notified after every update with the new View, outside
// the lock, so a subscriber may read the store again.
package state

import (
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
)

// View is a point-in-time copy of the visible state.
type View struct {
	Jobs        []models.Job
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PageSize    int
	Query       models.Query

	Loading     bool
	LastError   error
	LastFetched time.Time

	Online              bool
	ConsecutiveFailures int
}

// Index returns the position of the job addressed by id, or -1.
func (v View) Index(id string) int {
	return slices.IndexFunc(v.Jobs, func(j models.Job) bool { return j.Matches(id) })
}

// Find returns the job addressed by id.
func (v View) Find(id string) (models.Job, bool) {
	if i := v.Index(id); i >= 0 {
		return v.Jobs[i].Clone(), true
	}
	return models.Job{}, false
}

// OnFirstPage reports whether new jobs would be displayed at the top.
func (v View) OnFirstPage() bool {
	return v.CurrentPage <= 1
}

func (v View) clone() View {
	jobs := make([]models.Job, len(v.Jobs))
	for i, j := range v.Jobs {
		jobs[i] = j.Clone()
	}
	v.Jobs = jobs
	return v
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	view   View
	nextID int
	subs   map[int]func(View)
}

func NewStore(pageSize int) *Store {
	return &Store{
		view: View{PageSize: pageSize, CurrentPage: 1},
		subs: make(map[int]func(View)),
	}
}

// View returns a copy of the current state.
func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// Update runs fn against the live state under the lock, then notifies
// subscribers. It returns the resulting view.
func (s *Store) Update(fn func(v *View)) View {
	s.mu.Lock()
	fn(&s.view)
	out := s.view.clone()
	subs := s.subscribers()
	s.mu.Unlock()

	for _, sub := range subs {
		sub(out.clone())
	}
	return out
}

// Replace swaps the whole state for v and notifies subscribers.
func (s *Store) Replace(v View) {
	s.Update(func(cur *View) { *cur = v.clone() })
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn func(View)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) subscribers() []func(View) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(View), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}

// SetOnline records a connectivity probe. It reports whether the online
// flag flipped.
func (s *Store) SetOnline(online bool, err error) bool {
	changed := false
	s.Update(func(v *View) {
		changed = v.Online != online
		v.Online = online
		if online {
			v.ConsecutiveFailures = 0
			return
		}
		v.ConsecutiveFailures++
		if err != nil {
			v.LastError = err
		}
	})
	return changed
}
