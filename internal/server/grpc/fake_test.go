package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/applylog/internal/common"
	"github.com/dmitrijs2005/applylog/internal/logging"
	"github.com/dmitrijs2005/applylog/internal/server/models"
	"github.com/dmitrijs2005/applylog/internal/server/ratelimit"
	"github.com/dmitrijs2005/applylog/internal/server/services"
	"github.com/dmitrijs2005/applylog/internal/validation"
)

// ---- fakes ----

type fakeUsers struct {
	regResp *models.User
	regErr  error

	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	// tokens maps access tokens to user ids; "expired" is always expired.
	tokens map[string]string
}

func (f *fakeUsers) Register(context.Context, string, string) (*models.User, error) {
	return f.regResp, f.regErr
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	if token == "expired" {
		return "", common.ErrTokenExpired
	}
	if id, ok := f.tokens[token]; ok {
		return id, nil
	}
	return "", common.ErrInvalidToken
}

type fakeJobs struct {
	job  *models.Job
	page *models.JobPage
	err  error

	gotUser  string
	gotKey   string
	gotInput validation.Job
	gotPatch validation.Patch
	gotMeta  models.TagMeta
	gotQuery validation.Query
}

func (f *fakeJobs) Create(_ context.Context, userID, key string, in validation.Job, meta models.TagMeta) (*models.Job, error) {
	f.gotUser, f.gotKey, f.gotInput, f.gotMeta = userID, key, in, meta
	return f.job, f.err
}

func (f *fakeJobs) Update(_ context.Context, userID, _ string, p validation.Patch, meta models.TagMeta) (*models.Job, error) {
	f.gotUser, f.gotPatch, f.gotMeta = userID, p, meta
	return f.job, f.err
}

func (f *fakeJobs) Delete(_ context.Context, userID, _ string) error {
	f.gotUser = userID
	return f.err
}

func (f *fakeJobs) List(_ context.Context, userID string, q validation.Query) (*models.JobPage, error) {
	f.gotUser, f.gotQuery = userID, q
	return f.page, f.err
}

type fakeTags struct {
	list []models.Tag
	tag  *models.Tag
	err  error
}

func (f *fakeTags) ListDefaults(context.Context, string) ([]models.Tag, error) { return f.list, f.err }
func (f *fakeTags) ListCustom(context.Context, string, string) ([]models.Tag, error) {
	return f.list, f.err
}
func (f *fakeTags) Create(context.Context, string, string, string, string) (*models.Tag, error) {
	return f.tag, f.err
}
func (f *fakeTags) Delete(context.Context, string, string, string) error { return f.err }

type fakeStats struct {
	out *models.Stats
	err error
}

func (f *fakeStats) Get(context.Context, string) (*models.Stats, error) { return f.out, f.err }

type fakeExports struct {
	link *models.ExportLink
	err  error
}

func (f *fakeExports) Publish(context.Context, string, string) (*models.ExportLink, error) {
	return f.link, f.err
}

type testDeps struct {
	users   *fakeUsers
	jobs    *fakeJobs
	tags    *fakeTags
	stats   *fakeStats
	exports *fakeExports
}

func newTestServer(perMinute int) (*GRPCServer, *testDeps) {
	d := &testDeps{
		users:   &fakeUsers{tokens: map[string]string{"good": "u1"}},
		jobs:    &fakeJobs{},
		tags:    &fakeTags{},
		stats:   &fakeStats{},
		exports: &fakeExports{},
	}
	s := NewGRPCServer("127.0.0.1:0", logging.Nop(), Services{
		Users:   d.users,
		Jobs:    d.jobs,
		Tags:    d.tags,
		Stats:   d.stats,
		Exports: d.exports,
	}, ratelimit.New(perMinute))
	return s, d
}

func withUser(id string) context.Context {
	return context.WithValue(context.Background(), userIDKey, id)
}

var fixedTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
