// Package stats caches the aggregate statistics and keeps them in step
// with optimistic job mutations between authoritative fetches.
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/timex"
)

// TopN is the length of the top-platforms ranking.
const TopN = 5

type State int

const (
	Stale State = iota
	Loading
	Fresh
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Fresh:
		return "fresh"
	}
	return "stale"
}

// Source loads authoritative statistics.
type Source interface {
	GetStats(ctx context.Context) (models.Stats, error)
}

// Cache is safe for concurrent use. Incremental adjustments never change
// the cache state; only Fetch and Invalidate do.
type Cache struct {
	src Source
	now func() time.Time

	mu    sync.Mutex
	state State
	gen   uint64
	data  models.Stats
}

func New(src Source) *Cache {
	return &Cache{src: src, now: time.Now, data: empty()}
}

func empty() models.Stats {
	return models.Stats{ByStatus: map[string]int{}, ByPlatform: map[string]int{}}
}

func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current counts without fetching.
func (c *Cache) Snapshot() models.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data.Clone()
}

// Invalidate marks the data stale. A fetch already in flight still stores
// its result but leaves the cache stale.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.state = Stale
}

// Fetch returns cached data when fresh, otherwise loads it from the source.
// force always loads. On error the previous data is returned with the error.
func (c *Cache) Fetch(ctx context.Context, force bool) (models.Stats, error) {
	c.mu.Lock()
	if c.state == Fresh && !force {
		out := c.data.Clone()
		c.mu.Unlock()
		return out, nil
	}
	c.state = Loading
	gen := c.gen
	c.mu.Unlock()

	s, err := c.src.GetStats(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.state == Loading {
			c.state = Stale
		}
		return c.data.Clone(), err
	}
	if s.ByStatus == nil {
		s.ByStatus = map[string]int{}
	}
	if s.ByPlatform == nil {
		s.ByPlatform = map[string]int{}
	}
	c.data = s.Clone()
	if c.gen == gen {
		c.state = Fresh
	} else {
		c.state = Stale
	}
	return c.data.Clone(), nil
}

func (c *Cache) OnRecordAdded(j models.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjust(j, 1)
}

func (c *Cache) OnRecordRemoved(j models.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjust(j, -1)
}

func (c *Cache) OnStatusChanged(from, to string) {
	if from == to {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	bump(c.data.ByStatus, from, -1)
	bump(c.data.ByStatus, to, 1)
}

func (c *Cache) OnPlatformsChanged(from, to []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range from {
		bump(c.data.ByPlatform, p, -1)
	}
	for _, p := range to {
		bump(c.data.ByPlatform, p, 1)
	}
	c.data.TopPlatforms = rank(c.data.ByPlatform)
}

// OnRecordChanged applies every bucket move between two versions of a job.
func (c *Cache) OnRecordChanged(before, after models.Job) {
	c.OnStatusChanged(before.Status, after.Status)
	if !sameSet(before.Platforms, after.Platforms) {
		c.OnPlatformsChanged(before.Platforms, after.Platforms)
	}
	if before.DateApplied == after.DateApplied && before.NextActionDate == after.NextActionDate {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.adjustWindows(before, -1)
	c.adjustWindows(after, 1)
}

func (c *Cache) adjust(j models.Job, delta int) {
	c.data.Total = clamp(c.data.Total + delta)
	bump(c.data.ByStatus, j.Status, delta)
	for _, p := range j.Platforms {
		bump(c.data.ByPlatform, p, delta)
	}
	c.data.TopPlatforms = rank(c.data.ByPlatform)
	c.adjustWindows(j, delta)
}

func (c *Cache) adjustWindows(j models.Job, delta int) {
	today := timex.StartOfDay(c.now())
	if timex.OnOrAfter(j.DateApplied, today.AddDate(0, 0, -7)) {
		c.data.ThisWeek = clamp(c.data.ThisWeek + delta)
	}
	if timex.OnOrAfter(j.DateApplied, today.AddDate(0, 0, -30)) {
		c.data.ThisMonth = clamp(c.data.ThisMonth + delta)
	}
	if timex.OnOrAfter(j.NextActionDate, today) {
		c.data.UpcomingActions = clamp(c.data.UpcomingActions + delta)
	}
}

func bump(m map[string]int, key string, delta int) {
	if key == "" {
		return
	}
	n := clamp(m[key] + delta)
	if n == 0 {
		delete(m, key)
		return
	}
	m[key] = n
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func rank(byPlatform map[string]int) []models.PlatformCount {
	out := make([]models.PlatformCount, 0, len(byPlatform))
	for k, n := range byPlatform {
		out = append(out, models.PlatformCount{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if len(out) > TopN {
		out = out[:TopN]
	}
	return out
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		if seen[s] == 0 {
			return false
		}
		seen[s]--
	}
	return true
}
