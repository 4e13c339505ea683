package cli

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/applylog/internal/client/ledger"
	"github.com/dmitrijs2005/applylog/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_AddListDelete(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(t)
	ctx := context.Background()

	require.NoError(t, ta.AddTag(ctx, models.TagPlatform, []string{"Hacker", "News"}))
	assert.Contains(t, ta.out.String(), `Added platform "Hacker News" as hacker-news.`)

	ta.out.Reset()
	require.NoError(t, ta.Tags(ctx, models.TagPlatform))
	out := ta.out.String()
	assert.Contains(t, out, "hacker-news")
	assert.Contains(t, out, "custom")
	assert.Contains(t, out, "LinkedIn")

	require.NoError(t, ta.DeleteTag(ctx, models.TagPlatform, []string{"hacker-news"}))
	assert.Empty(t, ta.api.custom[models.TagPlatform])

	assert.Error(t, ta.DeleteTag(ctx, models.TagStatus, []string{"applied"}), "defaults are fixed")
	assert.Error(t, ta.AddTag(ctx, models.TagStatus, []string{"Applied"}))
	assert.IsType(t, usageError(""), ta.AddTag(ctx, models.TagStatus, nil))
}

func TestSync_PendingDiscardRetry(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(t)
	ctx := context.Background()
	ta.api.setDown(true)
	ta.probe(ctx)

	require.NoError(t, ta.AddTag(ctx, models.TagStatus, []string{"On", "Hold"}))
	require.NoError(t, ta.AddTag(ctx, models.TagPlatform, []string{"Hacker", "News"}))

	ta.out.Reset()
	require.NoError(t, ta.Pending(ctx))
	assert.Contains(t, ta.out.String(), "tag-create:status/on-hold")
	assert.Contains(t, ta.out.String(), "queued")

	require.NoError(t, ta.Discard(ctx, []string{"tag-create:platform/hacker-news"}))
	assert.False(t, ta.core.Platforms.Has("hacker-news"))
	assert.Error(t, ta.Discard(ctx, []string{"tag-create:platform/hacker-news"}))
	assert.Error(t, ta.Discard(ctx, []string{"nonsense"}))
	assert.Error(t, ta.Retry(ctx, nil))

	ta.api.setDown(false)
	ta.probe(ctx)
	ta.out.Reset()
	require.NoError(t, ta.Sync(ctx))
	assert.Contains(t, ta.out.String(), "sync: 1 attempted, 1 succeeded, 0 failed")
	assert.Zero(t, ta.core.Ledger.CountPending())

	ta.out.Reset()
	require.NoError(t, ta.Sync(ctx))
	assert.Contains(t, ta.out.String(), "Nothing to sync.")

	ta.out.Reset()
	require.NoError(t, ta.Pending(ctx))
	assert.Contains(t, ta.out.String(), "Nothing to sync.")
}

func TestRetry_Blocked(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(t)
	ctx := context.Background()
	ta.api.setDown(true)
	ta.core.Ledger.RecordTagCreate(models.TagStatus, "on-hold", "On Hold")
	ref := ledger.Ref{Kind: ledger.KindTagCreate, TagKind: models.TagStatus, Key: "on-hold"}
	ta.core.Ledger.MarkFailed(ref, "rejected", true)
	require.Len(t, ta.core.Ledger.Blocked(), 1)

	ta.api.setDown(false)
	require.NoError(t, ta.Retry(ctx, []string{ref.String()}))
	assert.Contains(t, ta.out.String(), "Re-queued "+ref.String())
	assert.Zero(t, ta.core.Ledger.CountPending(), "online retry syncs at once")
}

func TestStats(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.seed("SWE", "Acme")
	ta.loggedIn(t)
	ctx := context.Background()

	require.NoError(t, ta.Stats(ctx, nil))
	out := ta.out.String()
	assert.Contains(t, out, "Total: 1")
	assert.Contains(t, out, "Applied")

	ta.api.setDown(true)
	ta.out.Reset()
	require.NoError(t, ta.Stats(ctx, []string{"refresh"}))
	assert.Contains(t, ta.out.String(), "Could not load statistics")

	assert.IsType(t, usageError(""), ta.Stats(ctx, []string{"x"}))
}

func TestExport_Errors(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(t)
	ctx := context.Background()

	assert.IsType(t, usageError(""), ta.Export(ctx, nil))
	err := ta.Export(ctx, []string{"docx"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv, json, xlsx, pdf")
}

func TestStatus(t *testing.T) {
	ta := newTestApp(t, "").loggedIn(t)
	ta.core.Ledger.RecordDelete("5", "")

	require.NoError(t, ta.Status(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "online")
	assert.Contains(t, out, "1 change(s), 0 blocked")
}
