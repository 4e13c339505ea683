package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/applylog/internal/client/client"
	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestJobService_Create_ShowsConfirmedJobFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(3)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())

	job, res := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "4", job.ID)
	assert.True(t, models.IsLocalID(job.LocalID))
	assert.False(t, job.Pending)

	v := h.core.State.View()
	require.Len(t, v.Jobs, 4)
	assert.Equal(t, "4", v.Jobs[0].ID)
	assert.False(t, v.Jobs[0].Pending)
	assert.Equal(t, 4, v.TotalItems)
	assert.Equal(t, 1, h.core.Stats.Snapshot().Total)
	assert.Zero(t, h.core.Ledger.CountPending())
}

func TestJobService_Create_VisibleBeforeResponse(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(2)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())

	var during []models.Job
	var total int
	h.srv.before["CreateJob"] = func() {
		v := h.core.State.View()
		during, total = v.Jobs, v.TotalItems
	}

	_, res := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	require.True(t, res.OK())

	require.Len(t, during, 3)
	assert.Equal(t, "SWE", during[0].Title)
	assert.True(t, during[0].Pending)
	assert.Empty(t, during[0].ID)
	assert.Equal(t, 3, total)
}

func TestJobService_Create_OfflineQueuesAndKeepsJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.setDown(true)

	job, res := h.jobs.Create(ctx, models.Job{
		Title: "SWE", Company: "Acme", DateApplied: "2025-03-01",
		Status: "applied", Platforms: []string{"linkedin"},
	})
	assert.Equal(t, Transient, res.Kind)
	assert.True(t, res.Queued())
	assert.True(t, job.Pending)

	v := h.core.State.View()
	require.Len(t, v.Jobs, 1)
	assert.True(t, v.Jobs[0].Pending)
	assert.Equal(t, 1, v.TotalItems)
	assert.Equal(t, 1, h.core.Stats.Snapshot().Total)

	snap := h.core.Ledger.Snapshot()
	require.Len(t, snap.Creates, 1)
	assert.Equal(t, job.LocalID, snap.Creates[0].Job.LocalID)
	assert.Equal(t, 1, snap.Creates[0].Attempts)

	h.srv.setDown(false)
	rep, err := h.sync.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Succeeded)
	assert.Equal(t, "1", rep.Resolved[job.LocalID])

	assert.Zero(t, h.core.Ledger.CountPending())
	v = h.core.State.View()
	require.Len(t, v.Jobs, 1)
	assert.Equal(t, "1", v.Jobs[0].ID)
	assert.False(t, v.Jobs[0].Pending)
}

func TestJobService_Create_FullPageDropsLast(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(12)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	require.Len(t, h.core.State.View().Jobs, 10)

	h.srv.setDown(true)
	_, _ = h.jobs.Create(ctx, newJob("SWE", "Acme"))

	v := h.core.State.View()
	require.Len(t, v.Jobs, 10)
	assert.Equal(t, "SWE", v.Jobs[0].Title)
	assert.Equal(t, "4", v.Jobs[9].ID)
	assert.Equal(t, 13, v.TotalItems)
	assert.Equal(t, 2, v.TotalPages)
}

func TestJobService_Create_NotOnFirstPage(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(12)
	require.True(t, h.jobs.Page(ctx, 2).OK())

	h.srv.setDown(true)
	_, _ = h.jobs.Create(ctx, newJob("SWE", "Acme"))

	v := h.core.State.View()
	assert.Len(t, v.Jobs, 2)
	assert.Equal(t, 13, v.TotalItems)
}

func TestJobService_Create_InvalidInputChangesNothing(t *testing.T) {
	h := newHarness(t)

	_, res := h.jobs.Create(context.Background(), models.Job{Title: "SWE"})
	assert.Equal(t, Validation, res.Kind)
	assert.Contains(t, res.Message, "Company is required")

	assert.Empty(t, h.core.State.View().Jobs)
	assert.Zero(t, h.core.Ledger.CountPending())
	assert.Empty(t, h.srv.callLog())
}

func TestJobService_Create_ServerRejectionBlocks(t *testing.T) {
	h := newHarness(t)
	h.srv.fail["CreateJob"] = &client.RejectedError{Code: codes.InvalidArgument, Message: "Invalid status"}

	_, res := h.jobs.Create(context.Background(), newJob("SWE", "Acme"))
	assert.Equal(t, Validation, res.Kind)
	assert.Equal(t, "Invalid status", res.Message)

	blocked := h.core.Ledger.Blocked()
	require.Len(t, blocked, 1)
	assert.Equal(t, ledger.KindCreate, blocked[0].Ref.Kind)
	assert.True(t, h.core.State.View().Jobs[0].Pending)
}

func TestJobService_Create_SendsCustomTagMeta(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.core.Platforms.Add("Hacker News")
	require.NoError(t, err)

	j := newJob("SWE", "Acme")
	j.Platforms = []string{"linkedin", "hacker-news"}
	_, res := h.jobs.Create(ctx, j)
	require.True(t, res.OK())

	assert.Nil(t, h.srv.lastMeta.Status)
	assert.Equal(t, []models.Tag{{Key: "hacker-news", Name: "Hacker News"}}, h.srv.lastMeta.Platforms)
}

func TestJobService_Update_Confirmed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(1)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())

	job, res := h.jobs.Update(ctx, "1", models.JobDiff{Status: models.String("offer")})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, "offer", job.Status)
	assert.False(t, job.Pending)

	got, ok := h.srv.job("1")
	require.True(t, ok)
	assert.Equal(t, "offer", got.Status)
	assert.Zero(t, h.core.Ledger.CountPending())
	assert.Equal(t, 1, h.core.Stats.Snapshot().ByStatus["offer"])
}

func TestJobService_Update_OfflineCoalesces(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(1)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	h.srv.setDown(true)

	_, res := h.jobs.Update(ctx, "1", models.JobDiff{Status: models.String("interview"), Notes: models.String("call")})
	assert.Equal(t, Transient, res.Kind)
	job, res := h.jobs.Update(ctx, "1", models.JobDiff{Status: models.String("offer")})
	assert.Equal(t, Transient, res.Kind)

	assert.True(t, job.Pending)
	assert.Equal(t, "offer", job.Status)
	assert.Equal(t, "call", job.Notes)

	snap := h.core.Ledger.Snapshot()
	require.Len(t, snap.Updates, 1)
	assert.Equal(t, "offer", *snap.Updates[0].Diff.Status)
	assert.Equal(t, "call", *snap.Updates[0].Diff.Notes)
}

func TestJobService_Update_LocalOnlyIsQueued(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.setDown(true)
	job, _ := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	h.srv.setDown(false)
	h.srv.resetCalls()

	updated, res := h.jobs.Update(ctx, job.LocalID, models.JobDiff{Salary: models.String("100k")})
	assert.True(t, res.OK())
	assert.Equal(t, "100k", updated.Salary)
	assert.Empty(t, h.srv.callLog(), "no durable id to address yet")

	u, ok := h.core.Ledger.Snapshot().UpdateFor("", job.LocalID)
	require.True(t, ok)
	assert.Equal(t, job.LocalID, u.ID)
}

func TestJobService_Update_NotVisible(t *testing.T) {
	h := newHarness(t)
	_, res := h.jobs.Update(context.Background(), "42", models.JobDiff{Notes: models.String("x")})
	assert.Equal(t, NotFound, res.Kind)
}

func TestJobService_Update_GoneOnServer(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(2)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	require.NoError(t, h.srv.DeleteJob(ctx, "2"))

	_, res := h.jobs.Update(ctx, "2", models.JobDiff{Notes: models.String("x")})
	assert.True(t, res.OK())
	assert.Zero(t, h.core.Ledger.CountPending())
	assert.Equal(t, -1, h.core.State.View().Index("2"))
}

func TestJobService_Update_DuringCreateIsFlushedAfter(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.srv.before["CreateJob"] = func() {
		local := h.core.State.View().Jobs[0].LocalID
		_, res := h.jobs.Update(ctx, local, models.JobDiff{Status: models.String("interview")})
		require.True(t, res.OK())
	}
	job, res := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	require.True(t, res.OK())

	assert.Equal(t, "interview", job.Status)
	assert.False(t, job.Pending)
	got, _ := h.srv.job(job.ID)
	assert.Equal(t, "interview", got.Status)
	assert.Equal(t, []string{"CreateJob", "UpdateJob"}, h.srv.callLog())
	assert.Zero(t, h.core.Ledger.CountPending())
}

func TestJobService_Update_InFlightFoldsIntoSlot(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(1)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())

	once := true
	h.srv.before["UpdateJob"] = func() {
		if !once {
			return
		}
		once = false
		_, res := h.jobs.Update(ctx, "1", models.JobDiff{Notes: models.String("second")})
		require.True(t, res.OK())
	}

	job, res := h.jobs.Update(ctx, "1", models.JobDiff{Notes: models.String("first")})
	require.True(t, res.OK())

	assert.Equal(t, []string{"ListJobs", "UpdateJob"}, h.srv.callLog())
	assert.Equal(t, "second", job.Notes)
	assert.True(t, job.Pending)

	diff, ok := h.core.Ledger.PendingDiff("1", "")
	require.True(t, ok)
	assert.Equal(t, "second", *diff.Notes)
}

func TestJobService_Delete_LocalOnlyPurgesWithoutCall(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.setDown(true)
	job, _ := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	_, _ = h.jobs.Update(ctx, job.LocalID, models.JobDiff{Notes: models.String("x")})
	h.srv.setDown(false)
	h.srv.resetCalls()

	res := h.jobs.Delete(ctx, job.LocalID)
	assert.True(t, res.OK())
	assert.Empty(t, h.srv.callLog())
	assert.Zero(t, h.core.Ledger.CountPending())
	assert.Empty(t, h.core.State.View().Jobs)
	assert.Zero(t, h.core.State.View().TotalItems)
	assert.Zero(t, h.core.Stats.Snapshot().Total)
}

func TestJobService_Delete_OfflineTombstones(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(2)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	h.srv.setDown(true)

	res := h.jobs.Delete(ctx, "2")
	assert.Equal(t, Transient, res.Kind)
	assert.Equal(t, -1, h.core.State.View().Index("2"))
	assert.True(t, h.core.Ledger.Snapshot().HasDelete("2"))

	// A fetch while the delete is queued keeps the job hidden.
	h.srv.setDown(false)
	require.True(t, h.jobs.Refresh(ctx).OK())
	assert.Equal(t, -1, h.core.State.View().Index("2"))

	_, err := h.sync.SyncAll(ctx)
	require.NoError(t, err)
	_, ok := h.srv.job("2")
	assert.False(t, ok)
	assert.Zero(t, h.core.Ledger.CountPending())
}

func TestJobService_Delete_AlreadyGoneIsSuccess(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(1)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	require.NoError(t, h.srv.DeleteJob(ctx, "1"))

	assert.True(t, h.jobs.Delete(ctx, "1").OK())
	assert.Zero(t, h.core.Ledger.CountPending())
}

func TestJobService_Delete_DuringCreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.srv.before["CreateJob"] = func() {
		local := h.core.State.View().Jobs[0].LocalID
		require.True(t, h.jobs.Delete(ctx, local).OK())
	}
	job, res := h.jobs.Create(ctx, newJob("SWE", "Acme"))
	require.True(t, res.OK())

	assert.Equal(t, []string{"CreateJob", "DeleteJob"}, h.srv.callLog())
	_, ok := h.srv.job(job.ID)
	assert.False(t, ok)
	assert.Empty(t, h.core.State.View().Jobs)
	assert.Zero(t, h.core.Ledger.CountPending())
}

func TestJobService_Fetch_MergesPendingCreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.srv.setDown(true)
	_, _ = h.jobs.Create(ctx, newJob("Engineer", "Globex"))
	h.srv.setDown(false)

	h.srv.seed(9)
	_, err := h.srv.CreateJob(ctx, "other", newJob("Engineer", "Initech"), client.TagMeta{})
	require.NoError(t, err)

	require.True(t, h.jobs.Refresh(ctx).OK())
	v := h.core.State.View()
	require.Len(t, v.Jobs, 11)
	assert.Equal(t, "Globex", v.Jobs[0].Company)
	assert.True(t, v.Jobs[0].Pending)
	assert.Equal(t, 10, v.TotalItems)
	assert.False(t, v.Loading)
	assert.False(t, v.LastFetched.IsZero())
}

func TestJobService_Fetch_FilteredHidesPendingCreates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.setDown(true)
	_, _ = h.jobs.Create(ctx, newJob("Engineer", "Globex"))
	h.srv.setDown(false)

	require.True(t, h.jobs.Search(ctx, models.Query{Status: "offer"}).OK())
	v := h.core.State.View()
	assert.Empty(t, v.Jobs)
	assert.Equal(t, "offer", v.Query.Status)
	assert.Equal(t, 10, v.Query.Limit)
}

func TestJobService_Fetch_Errors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.jobs.Fetch(ctx, models.Query{SortBy: "salary"})
	assert.Equal(t, Validation, res.Kind)

	h.srv.setDown(true)
	res = h.jobs.Fetch(ctx, models.Query{})
	assert.Equal(t, Transient, res.Kind)
	v := h.core.State.View()
	assert.False(t, v.Loading)
	assert.ErrorIs(t, v.LastError, client.ErrUnavailable)
}

func TestJobService_Fetch_Idempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.srv.seed(4)
	require.True(t, h.jobs.Fetch(ctx, models.Query{}).OK())
	h.srv.setDown(true)
	_, _ = h.jobs.Create(ctx, newJob("Engineer", "Globex"))
	_, _ = h.jobs.Update(ctx, "3", models.JobDiff{Notes: models.String("n")})
	h.srv.setDown(false)

	require.True(t, h.jobs.Refresh(ctx).OK())
	first := h.core.State.View().Jobs
	require.True(t, h.jobs.Refresh(ctx).OK())
	assert.Equal(t, first, h.core.State.View().Jobs)
}
