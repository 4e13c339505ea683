package cli

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/config"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/dmitrijs2005/applylog/internal/client/services"
)

// fakeAPI is an in-memory server. It embeds client.Client so methods the
// tests never reach need no body.
type fakeAPI struct {
	client.Client

	mu       sync.Mutex
	down     bool
	loginErr error
	users    map[string]string
	session  string
	nextID   int
	jobs     []models.Job
	custom   map[models.TagKind][]models.Tag
	pings    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{users: map[string]string{}, custom: map[models.TagKind][]models.Tag{}}
}

func (f *fakeAPI) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeAPI) check() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return client.ErrUnavailable
	}
	return nil
}

func (f *fakeAPI) Close() error { return nil }

func (f *fakeAPI) Ping(context.Context) error {
	f.mu.Lock()
	f.pings++
	f.mu.Unlock()
	return f.check()
}

func (f *fakeAPI) Register(_ context.Context, username, password string) error {
	if err := f.check(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
	return nil
}

func (f *fakeAPI) Login(_ context.Context, username, password string) error {
	if err := f.check(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return f.loginErr
	}
	f.session = username
	return nil
}

func (f *fakeAPI) Resume(string) {}
func (f *fakeAPI) Logout()       { f.session = "" }

func (f *fakeAPI) ListJobs(_ context.Context, q models.Query) (models.Page, error) {
	if err := f.check(); err != nil {
		return models.Page{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.jobs {
		if q.Q != "" && !strings.Contains(strings.ToLower(j.Company), strings.ToLower(q.Q)) {
			continue
		}
		if q.Status != "" && j.Status != q.Status {
			continue
		}
		out = append(out, j.Clone())
	}
	return models.Page{Jobs: out, CurrentPage: q.PageOrFirst(), TotalPages: 1, TotalItems: len(out)}, nil
}

func (f *fakeAPI) CreateJob(_ context.Context, _ string, j models.Job, _ client.TagMeta) (models.Job, error) {
	if err := f.check(); err != nil {
		return models.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	j = j.Clone()
	j.ID, j.LocalID, j.Pending = strconv.Itoa(f.nextID), "", false
	f.jobs = append([]models.Job{j}, f.jobs...)
	return j.Clone(), nil
}

func (f *fakeAPI) UpdateJob(_ context.Context, id string, diff models.JobDiff, _ client.TagMeta) (models.Job, error) {
	if err := f.check(); err != nil {
		return models.Job{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, j := range f.jobs {
		if j.ID == id {
			f.jobs[i] = diff.Apply(j)
			return f.jobs[i].Clone(), nil
		}
	}
	return models.Job{}, client.ErrNotFound
}

func (f *fakeAPI) DeleteJob(_ context.Context, id string) error {
	if err := f.check(); err != nil {
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

func (f *fakeAPI) ListDefaultTags(_ context.Context, kind models.TagKind) ([]models.Tag, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	if kind == models.TagPlatform {
		return []models.Tag{{Key: "linkedin", Name: "LinkedIn"}, {Key: "other", Name: "Other"}}, nil
	}
	return []models.Tag{{Key: "applied", Name: "Applied"}, {Key: "offer", Name: "Offer Received"}}, nil
}

func (f *fakeAPI) ListCustomTags(_ context.Context, kind models.TagKind) ([]models.Tag, error) {
	if err := f.check(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Tag(nil), f.custom[kind]...), nil
}

func (f *fakeAPI) CreateTag(_ context.Context, kind models.TagKind, key, name string) (models.Tag, error) {
	if err := f.check(); err != nil {
		return models.Tag{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.Tag{Key: key, Name: name}
	f.custom[kind] = append(f.custom[kind], t)
	return t, nil
}

func (f *fakeAPI) DeleteTag(_ context.Context, kind models.TagKind, key string) error {
	if err := f.check(); err != nil {
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

func (f *fakeAPI) GetStats(context.Context) (models.Stats, error) {
	if err := f.check(); err != nil {
		return models.Stats{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s := models.Stats{Total: len(f.jobs), ByStatus: map[string]int{}, ByPlatform: map[string]int{}}
	for _, j := range f.jobs {
		s.ByStatus[j.Status]++
		for _, p := range j.Platforms {
			s.ByPlatform[p]++
		}
	}
	return s, nil
}

func (f *fakeAPI) ExportJobs(context.Context, string) (client.Export, error) {
	return client.Export{}, f.check()
}

func (f *fakeAPI) seed(title, company string) models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	j := models.Job{
		ID:          strconv.Itoa(f.nextID),
		Title:       title,
		Company:     company,
		DateApplied: "2025-03-01",
		Status:      "applied",
		Platforms:   []string{"linkedin"},
	}
	f.jobs = append([]models.Job{j}, f.jobs...)
	return j
}

// testApp wires an App to a fakeAPI, reading input and writing output in
// memory.
type testApp struct {
	*App
	api *fakeAPI
	out *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	api := newFakeAPI()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DataDir = t.TempDir()
	core := services.NewCore(services.CoreOptions{PageSize: cfg.PageSize, MaxAttempts: 3, Stats: api})
	out := &bytes.Buffer{}
	return &testApp{App: newApp(cfg, core, api, strings.NewReader(input), out), api: api, out: out}
}

// loggedIn marks the session open and loads the first page.
func (ta *testApp) loggedIn(t *testing.T) *testApp {
	t.Helper()
	ta.setUser("alice")
	ta.loadAll(context.Background())
	ta.out.Reset()
	return ta
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
