package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/dbx"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/jobs"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/stats"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/tags"
	"github.com/dmitrijs2005/applylog/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error

	created *models.User
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.created = u
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr    error
	createErr error
	purged    int64

	deleted []string
	issued  []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.issued = append(f.issued, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.purged, nil
}

// fakeJobsRepo keeps rows in memory, keyed by id.
type fakeJobsRepo struct {
	rows      map[string]*models.Job
	nextID    int
	createErr error
	lastQuery models.JobQuery
}

func newFakeJobsRepo() *fakeJobsRepo {
	return &fakeJobsRepo{rows: map[string]*models.Job{}}
}

func (f *fakeJobsRepo) id() string {
	f.nextID++
	return "00000000-0000-0000-0000-" + leftPad(strconv.Itoa(f.nextID), 12)
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func (f *fakeJobsRepo) Create(_ context.Context, j *models.Job) (*models.Job, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if j.IdempotencyKey != "" {
		if _, err := f.FindByIdempotencyKey(context.Background(), j.UserID, j.IdempotencyKey); err == nil {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *j
	c.ID = f.id()
	f.rows[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeJobsRepo) FindByIdempotencyKey(_ context.Context, userID, key string) (*models.Job, error) {
	for _, j := range f.rows {
		if j.UserID == userID && j.IdempotencyKey == key {
			out := *j
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeJobsRepo) Get(_ context.Context, userID, id string) (*models.Job, error) {
	j, ok := f.rows[id]
	if !ok || j.UserID != userID {
		return nil, common.ErrorNotFound
	}
	out := *j
	return &out, nil
}

func (f *fakeJobsRepo) Update(ctx context.Context, userID, id string, p models.JobPatch) (*models.Job, error) {
	j, ok := f.rows[id]
	if !ok || j.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Company != nil {
		j.Company = *p.Company
	}
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.Notes != nil {
		j.Notes = *p.Notes
	}
	if p.NextActionDate != nil {
		j.NextActionDate = p.NextActionDate
	}
	if p.ClearNextActionDate {
		j.NextActionDate = nil
	}
	if p.Platforms != nil {
		j.Platforms = p.Platforms
	}
	return f.Get(ctx, userID, id)
}

func (f *fakeJobsRepo) Delete(_ context.Context, userID, id string) error {
	j, ok := f.rows[id]
	if !ok || j.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeJobsRepo) List(ctx context.Context, userID string, q models.JobQuery) (*models.JobPage, error) {
	f.lastQuery = q
	all, _ := f.ListAll(ctx, userID)
	return &models.JobPage{Jobs: all, Page: q.Page, Limit: q.Limit, TotalItems: len(all), TotalPages: 1}, nil
}

func (f *fakeJobsRepo) ListAll(_ context.Context, userID string) ([]models.Job, error) {
	out := []models.Job{}
	for _, j := range f.rows {
		if j.UserID == userID {
			out = append(out, *j)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

var defaultTags = map[models.TagKind][]models.Tag{
	models.TagStatus:   {{Key: "applied", Name: "Applied"}, {Key: "offer", Name: "Offer Received"}},
	models.TagPlatform: {{Key: "linkedin", Name: "LinkedIn"}, {Key: "other", Name: "Other"}},
}

type tagID struct {
	user string
	kind models.TagKind
}

type fakeTagsRepo struct {
	custom  map[tagID][]models.Tag
	listErr error
}

func newFakeTagsRepo() *fakeTagsRepo {
	return &fakeTagsRepo{custom: map[tagID][]models.Tag{}}
}

func (f *fakeTagsRepo) ListDefaults(_ context.Context, kind models.TagKind) ([]models.Tag, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return defaultTags[kind], nil
}

func (f *fakeTagsRepo) ListCustom(_ context.Context, userID string, kind models.TagKind) ([]models.Tag, error) {
	return append([]models.Tag{}, f.custom[tagID{userID, kind}]...), nil
}

func (f *fakeTagsRepo) CreateCustom(_ context.Context, userID string, kind models.TagKind, tag models.Tag) error {
	id := tagID{userID, kind}
	for _, t := range f.custom[id] {
		if t.Key == tag.Key {
			return common.ErrorAlreadyExists
		}
	}
	f.custom[id] = append(f.custom[id], tag)
	return nil
}

func (f *fakeTagsRepo) EnsureCustom(ctx context.Context, userID string, kind models.TagKind, tag models.Tag) error {
	if err := f.CreateCustom(ctx, userID, kind, tag); err != nil && !errors.Is(err, common.ErrorAlreadyExists) {
		return err
	}
	return nil
}

func (f *fakeTagsRepo) DeleteCustom(_ context.Context, userID string, kind models.TagKind, key string) error {
	id := tagID{userID, kind}
	for i, t := range f.custom[id] {
		if t.Key == key {
			f.custom[id] = append(f.custom[id][:i], f.custom[id][i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeStatsRepo struct {
	out     *models.Stats
	err     error
	windows stats.Windows
}

func (f *fakeStatsRepo) Collect(_ context.Context, _ string, w stats.Windows) (*models.Stats, error) {
	f.windows = w
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	j  *fakeJobsRepo
	tg *fakeTagsRepo
	s  *fakeStatsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  &fakeUsersRepo{},
		r:  &fakeRefreshRepo{},
		j:  newFakeJobsRepo(),
		tg: newFakeTagsRepo(),
		s:  &fakeStatsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Jobs(dbx.DBTX) jobs.Repository                   { return m.j }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository                   { return m.tg }
func (m *fakeRepoManager) Stats(dbx.DBTX) stats.Repository                 { return m.s }
