package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/applylog/internal/client/state"
	"github.com/dmitrijs2005/applylog/internal/client/stats"
	"github.com/dmitrijs2005/applylog/internal/client/tags"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

// Core is the client state shared by all services. It is built once at
// start-up and passed to each service.
type Core struct {
	Ledger    *ledger.Ledger
	State     *state.Store
	Stats     *stats.Cache
	Statuses  *tags.Dictionary
	Platforms *tags.Dictionary

	// Meta persists the ledger between runs. It may be nil.
	Meta metadata.Repository
	Log  logging.Logger

	now    func() time.Time
	flight *flight
}

// CoreOptions configures NewCore.
type CoreOptions struct {
	PageSize    int
	MaxAttempts int
	Stats       stats.Source
	Meta        metadata.Repository
	Log         logging.Logger
}

func NewCore(o CoreOptions) *Core {
	if o.PageSize <= 0 {
		o.PageSize = 10
	}
	if o.Log == nil {
		o.Log = logging.Nop()
	}
	return &Core{
		Ledger:    ledger.New(o.MaxAttempts),
		State:     state.NewStore(o.PageSize),
		Stats:     stats.New(o.Stats),
		Statuses:  tags.NewDictionary(models.TagStatus, tags.DefaultStatuses()),
		Platforms: tags.NewDictionary(models.TagPlatform, tags.DefaultPlatforms()),
		Meta:      o.Meta,
		Log:       o.Log,
		now:       time.Now,
		flight:    newFlight(),
	}
}

// Dictionary returns the dictionary for kind.
func (c *Core) Dictionary(kind models.TagKind) *tags.Dictionary {
	if kind == models.TagPlatform {
		return c.Platforms
	}
	return c.Statuses
}

// Load restores a ledger saved by an earlier run.
func (c *Core) Load(ctx context.Context) error {
	if c.Meta == nil {
		return nil
	}
	var snap ledger.Snapshot
	ok, err := metadata.GetJSON(ctx, c.Meta, metadata.KeyLedger, &snap)
	if err != nil || !ok {
		return err
	}
	c.Ledger.Restore(snap)
	c.Log.Info(ctx, "ledger restored", "pending", c.Ledger.CountPending())
	return nil
}

// persist saves the ledger. A failed save is logged; the in-memory ledger
// stays authoritative for this run.
func (c *Core) persist(ctx context.Context) {
	if c.Meta == nil {
		return
	}
	if err := metadata.SetJSON(ctx, c.Meta, metadata.KeyLedger, c.Ledger.Snapshot()); err != nil {
		c.Log.Error(ctx, "failed to save ledger", "error", err)
	}
}

// snapshot is the ledger state plus creates whose first remote call is
// still running, so a fetch taken meanwhile keeps showing them.
func (c *Core) snapshot() ledger.Snapshot {
	s := c.Ledger.Snapshot()
	for _, j := range c.flight.creating() {
		if !s.HasCreate(j.LocalID) {
			s.Creates = append(s.Creates, ledger.PendingCreate{Job: j})
		}
	}
	return s
}

// tagMeta describes the custom entries referenced by a job so the server
// can register them.
func (c *Core) tagMeta(status string, platforms []string) client.TagMeta {
	var meta client.TagMeta
	if status != "" && !c.Statuses.IsDefault(status) {
		meta.Status = &models.Tag{Key: status, Name: c.Statuses.Name(status)}
	}
	for _, p := range platforms {
		if !c.Platforms.IsDefault(p) {
			meta.Platforms = append(meta.Platforms, models.Tag{Key: p, Name: c.Platforms.Name(p)})
		}
	}
	return meta
}

func (c *Core) diffMeta(d models.JobDiff) client.TagMeta {
	status := ""
	if d.Status != nil {
		status = *d.Status
	}
	return c.tagMeta(status, d.Platforms)
}

// flight tracks records with a remote call outstanding. A record is busy
// under both its durable and its local id.
type flight struct {
	mu      sync.Mutex
	busy    map[string]bool
	creates map[string]models.Job
	deleted map[string]bool
}

func newFlight() *flight {
	return &flight{
		busy:    make(map[string]bool),
		creates: make(map[string]models.Job),
		deleted: make(map[string]bool),
	}
}

// acquire marks the keys busy. It fails without side effects when any of
// them already is.
func (f *flight) acquire(keys ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		if k != "" && f.busy[k] {
			return false
		}
	}
	for _, k := range keys {
		if k != "" {
			f.busy[k] = true
		}
	}
	return true
}

func (f *flight) release(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.busy, k)
	}
}

func (f *flight) isBusy(keys ...string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		if k != "" && f.busy[k] {
			return true
		}
	}
	return false
}

// beginCreate registers an outstanding create. It fails when one for the
// same local id is already running.
func (f *flight) beginCreate(j models.Job) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy[j.LocalID] {
		return false
	}
	f.busy[j.LocalID] = true
	f.creates[j.LocalID] = j.Clone()
	return true
}

// endCreate reports whether the record was deleted while its create ran.
func (f *flight) endCreate(localID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	deleted := f.deleted[localID]
	delete(f.busy, localID)
	delete(f.creates, localID)
	delete(f.deleted, localID)
	return deleted
}

// markDeleted flags a record whose create is outstanding. It reports
// false when no create is running for localID.
func (f *flight) markDeleted(localID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.creates[localID]; !ok {
		return false
	}
	f.deleted[localID] = true
	return true
}

func (f *flight) creating() []models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Job, 0, len(f.creates))
	for _, j := range f.creates {
		out = append(out, j.Clone())
	}
	return out
}

func toValidationJob(j models.Job) validation.Job {
	return validation.Job{
		Title:          j.Title,
		Company:        j.Company,
		DateApplied:    j.DateApplied,
		JobLink:        j.JobLink,
		Salary:         j.Salary,
		Location:       j.Location,
		Status:         j.Status,
		NextActionDate: j.NextActionDate,
		Notes:          j.Notes,
		Platforms:      j.Platforms,
	}
}

func toValidationPatch(d models.JobDiff) validation.Patch {
	return validation.Patch{
		Title:          d.Title,
		Company:        d.Company,
		DateApplied:    d.DateApplied,
		JobLink:        d.JobLink,
		Salary:         d.Salary,
		Location:       d.Location,
		Status:         d.Status,
		NextActionDate: d.NextActionDate,
		Notes:          d.Notes,
		Platforms:      d.Platforms,
	}
}

func toValidationQuery(q models.Query) validation.Query {
	return validation.Query(q)
}

func totalPages(items, size int) int {
	if size <= 0 || items <= 0 {
		return 0
	}
	return (items + size - 1) / size
}
