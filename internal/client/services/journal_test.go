package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
	"github.com/ebergstrom/daybreak/internal/cryptox"
)

func newJournalFixture(t *testing.T) (JournalService, *SyncManager) {
	t.Helper()
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	return NewJournalService(st, fb, newTestCipher(), m, testLogger()), m
}

func TestJournal_AddAndGetRoundTrip(t *testing.T) {
	js, _ := newJournalFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "ninety in ninety", "meeting #12 today", "")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, models.SyncPending, entry.SyncStatus)
	assert.NotEmpty(t, entry.Payload)
	assert.Len(t, entry.Nonce, 12)

	got, err := js.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "ninety in ninety", got.Title)
	assert.Equal(t, "meeting #12 today", got.Body)
	assert.False(t, got.HasFile)
}

func TestJournal_ListSkipsUndecryptableRows(t *testing.T) {
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	js := NewJournalService(st, fb, newTestCipher(), m, testLogger())
	ctx := context.Background()

	_, err := js.Add(ctx, "readable", "body", "")
	require.NoError(t, err)

	// a row written under a different key cannot be decrypted
	foreign := NewJournalService(st, fb, newSponsorCipher(), m, testLogger())
	_, err = foreign.Add(ctx, "unreadable", "body", "")
	require.NoError(t, err)

	items, err := js.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "readable", items[0].Title)
}

func TestJournal_UpdateReencryptsAndQueues(t *testing.T) {
	js, m := newJournalFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "before", "old body", "")
	require.NoError(t, err)
	require.NoError(t, m.TriggerSync(ctx))

	require.NoError(t, js.Update(ctx, entry.ID, "after", "new body"))

	got, err := js.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, models.SyncPending, got.SyncStatus)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount)
}

func TestJournal_UpdateMissingEntry(t *testing.T) {
	js, _ := newJournalFixture(t)
	err := js.Update(context.Background(), "nope", "t", "b")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestJournal_WrongKeyYieldsCryptoError(t *testing.T) {
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	js := NewJournalService(st, fb, newTestCipher(), m, testLogger())
	ctx := context.Background()

	entry, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)

	wrongKey := NewJournalService(st, fb, cryptox.NewCipher(make([]byte, 32)), m, testLogger())
	_, err = wrongKey.Get(ctx, entry.ID)
	assert.ErrorIs(t, err, common.ErrCrypto)
}
