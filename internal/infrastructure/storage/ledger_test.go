package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NewsMirror/internal/domain"
)

func TestLedgerRemembersRevisions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, err := OpenLedger(ctx, filepath.Join(t.TempDir(), "data", "ledger.db"))
	require.NoError(t, err)
	defer ledger.Close()

	seen, err := ledger.AlreadyAnnounced(ctx, "1001", "hash-a")
	require.NoError(t, err)
	assert.False(t, seen)

	first := time.Date(2025, 10, 1, 15, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.MarkAnnounced(ctx, domain.Announcement{
		ArticleID: "1001", ContentHash: "hash-a", Title: "Patch", AnnouncedAt: first,
	}))

	seen, err = ledger.AlreadyAnnounced(ctx, "1001", "hash-a")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = ledger.AlreadyAnnounced(ctx, "1001", "hash-b")
	require.NoError(t, err)
	assert.False(t, seen, "a new revision is announced again")

	require.NoError(t, ledger.MarkAnnounced(ctx, domain.Announcement{
		ArticleID: "1001", ContentHash: "hash-a", Title: "Patch v2", AnnouncedAt: first.Add(time.Hour),
	}), "re-marking is an upsert")
	require.NoError(t, ledger.MarkAnnounced(ctx, domain.Announcement{
		ArticleID: "1002", ContentHash: "hash-c", Title: "Event", AnnouncedAt: first.Add(2 * time.Hour),
	}))

	recent, err := ledger.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "1002", recent[0].ArticleID)
	assert.Equal(t, "Patch v2", recent[1].Title)
	assert.True(t, first.Add(time.Hour).Equal(recent[1].AnnouncedAt))
}

func TestLedgerPersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	ledger, err := OpenLedger(ctx, path)
	require.NoError(t, err)
	require.NoError(t, ledger.MarkAnnounced(ctx, domain.Announcement{ArticleID: "7", ContentHash: "h", AnnouncedAt: time.Now()}))
	require.NoError(t, ledger.Close())

	reopened, err := OpenLedger(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.AlreadyAnnounced(ctx, "7", "h")
	require.NoError(t, err)
	assert.True(t, seen)
}
