package services

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"google.golang.org/grpc/codes"
)

var errOffline = client.ErrUnavailable

// fakeServer is an in-memory stand-in for the server API.
type fakeServer struct {
	mu sync.Mutex

	// down makes every call fail with errOffline.
	down bool
	// fail overrides the outcome of one method by name.
	fail map[string]error
	// before runs at the start of a method, outside the lock.
	before map[string]func()

	nextID int
	jobs   []models.Job
	custom map[models.TagKind][]models.Tag
	keys   map[string]string
	stats  models.Stats
	calls  []string

	lastMeta  client.TagMeta
	exportURL string
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		fail:   map[string]error{},
		before: map[string]func(){},
		custom: map[models.TagKind][]models.Tag{},
		keys:   map[string]string{},
		stats:  models.Stats{ByStatus: map[string]int{}, ByPlatform: map[string]int{}},
	}
}

func (f *fakeServer) call(name string) error {
	f.mu.Lock()
	hook := f.before[name]
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.down {
		return errOffline
	}
	if err, ok := f.fail[name]; ok {
		return err
	}
	return nil
}

func (f *fakeServer) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeServer) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeServer) resetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// seed stores n jobs named "Job i at Company i", newest first.
func (f *fakeServer) seed(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i < n; i++ {
		f.nextID++
		id := strconv.Itoa(f.nextID)
		f.jobs = append([]models.Job{{
			ID:          id,
			Title:       "Job " + id,
			Company:     "Company " + id,
			DateApplied: "2025-03-01",
			Status:      "applied",
			Platforms:   []string{"linkedin"},
		}}, f.jobs...)
	}
}

func (f *fakeServer) job(id string) (models.Job, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			return j.Clone(), true
		}
	}
	return models.Job{}, false
}

func (f *fakeServer) ListJobs(_ context.Context, q models.Query) (models.Page, error) {
	if err := f.call("ListJobs"); err != nil {
		return models.Page{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	limit := q.Limit
	if limit == 0 {
		limit = 10
	}
	page := q.PageOrFirst()
	start := min((page-1)*limit, len(f.jobs))
	end := min(start+limit, len(f.jobs))
	out := make([]models.Job, 0, end-start)
	for _, j := range f.jobs[start:end] {
		out = append(out, j.Clone())
	}
	return models.Page{
		Jobs:        out,
		CurrentPage: page,
		TotalPages:  totalPages(len(f.jobs), limit),
		TotalItems:  len(f.jobs),
	}, nil
}

func (f *fakeServer) CreateJob(_ context.Context, key string, j models.Job, meta client.TagMeta) (models.Job, error) {
	if err := f.call("CreateJob"); err != nil {
		return models.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastMeta = meta
	if id, ok := f.keys[key]; ok {
		for _, existing := range f.jobs {
			if existing.ID == id {
				return existing.Clone(), nil
			}
		}
	}
	f.nextID++
	j = j.Clone()
	j.ID = strconv.Itoa(f.nextID)
	j.LocalID = ""
	j.Pending = false
	f.keys[key] = j.ID
	f.jobs = append([]models.Job{j}, f.jobs...)
	return j.Clone(), nil
}

func (f *fakeServer) UpdateJob(_ context.Context, id string, diff models.JobDiff, meta client.TagMeta) (models.Job, error) {
	if err := f.call("UpdateJob"); err != nil {
		return models.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastMeta = meta
	for i, j := range f.jobs {
		if j.ID == id {
			f.jobs[i] = diff.Apply(j)
			return f.jobs[i].Clone(), nil
		}
	}
	return models.Job{}, client.ErrNotFound
}

func (f *fakeServer) DeleteJob(_ context.Context, id string) error {
	if err := f.call("DeleteJob"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, j := range f.jobs {
		if j.ID == id {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeServer) ListDefaultTags(_ context.Context, kind models.TagKind) ([]models.Tag, error) {
	if err := f.call("ListDefaultTags"); err != nil {
		return nil, err
	}
	if kind == models.TagPlatform {
		return []models.Tag{{Key: "linkedin", Name: "LinkedIn"}, {Key: "other", Name: "Other"}}, nil
	}
	return []models.Tag{{Key: "applied", Name: "Applied"}, {Key: "offer", Name: "Offer Received"}}, nil
}

func (f *fakeServer) ListCustomTags(_ context.Context, kind models.TagKind) ([]models.Tag, error) {
	if err := f.call("ListCustomTags"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Tag(nil), f.custom[kind]...), nil
}

func (f *fakeServer) CreateTag(_ context.Context, kind models.TagKind, key, name string) (models.Tag, error) {
	if err := f.call("CreateTag"); err != nil {
		return models.Tag{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.custom[kind] {
		if t.Key == key {
			return models.Tag{}, &client.RejectedError{Code: codes.AlreadyExists, Message: "tag already exists"}
		}
	}
	t := models.Tag{Key: key, Name: name}
	f.custom[kind] = append(f.custom[kind], t)
	return t, nil
}

func (f *fakeServer) DeleteTag(_ context.Context, kind models.TagKind, key string) error {
	if err := f.call("DeleteTag"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.custom[kind] {
		if t.Key == key {
			f.custom[kind] = append(f.custom[kind][:i], f.custom[kind][i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeServer) GetStats(context.Context) (models.Stats, error) {
	if err := f.call("GetStats"); err != nil {
		return models.Stats{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.stats.Clone()
	s.Total = len(f.jobs)
	return s, nil
}

func (f *fakeServer) ExportJobs(_ context.Context, format string) (client.Export, error) {
	if err := f.call("ExportJobs"); err != nil {
		return client.Export{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return client.Export{FileName: "job_applications_2025-03-01." + format, URL: f.exportURL}, nil
}

// harness wires a core and every service to one fake server.
type harness struct {
	srv  *fakeServer
	core *Core
	jobs *JobService
	tags *TagService
	sync *SyncService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := newFakeServer()
	core := NewCore(CoreOptions{PageSize: 10, MaxAttempts: 3, Stats: srv})
	jobs := NewJobService(core, srv)
	tags := NewTagService(core, srv)
	return &harness{
		srv:  srv,
		core: core,
		jobs: jobs,
		tags: tags,
		sync: NewSyncService(core, jobs, tags),
	}
}

func newJob(title, company string) models.Job {
	return models.Job{
		Title:       title,
		Company:     company,
		DateApplied: "2025-03-01",
		Status:      "applied",
		Platforms:   []string{"linkedin"},
	}
}
