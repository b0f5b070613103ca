package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
)

func newSyncFixture(t *testing.T) (*SyncManager, *fakeBackend, JournalService) {
	t.Helper()
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	js := NewJournalService(st, fb, newTestCipher(), m, testLogger())
	return m, fb, js
}

func TestTriggerSync_DeliversPendingInsert(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "day one", "made it to a meeting", "")
	require.NoError(t, err)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount)

	require.NoError(t, m.TriggerSync(ctx))

	require.Equal(t, 1, fb.upsertCount())
	assert.Equal(t, common.TableJournalEntries, fb.upserts[0].Table)
	assert.Equal(t, entry.ID, fb.upserts[0].Record["id"])

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount)
	assert.False(t, stats.LastSyncTime.IsZero())

	got, err := js.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSynced, got.SyncStatus)
}

func TestTriggerSync_DeleteUsesRemoteIDCapturedAtEnqueue(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)
	require.NoError(t, m.TriggerSync(ctx)) // insert lands, remote id assigned

	require.NoError(t, js.Delete(ctx, entry.ID))
	require.NoError(t, m.TriggerSync(ctx))

	require.Len(t, fb.deletes, 1)
	assert.Equal(t, common.TableJournalEntries+"/remote-1", fb.deletes[0])
}

func TestTriggerSync_InsertThenDeleteCancelsOut(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)
	require.NoError(t, js.Delete(ctx, entry.ID))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount, "insert+delete owes the backend nothing")

	require.NoError(t, m.TriggerSync(ctx))
	assert.Zero(t, fb.upsertCount())
	assert.Empty(t, fb.deletes)
}

func TestTriggerSync_NetworkFailureKeepsEntryAndAborts(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	first, err := js.Add(ctx, "first", "b", "")
	require.NoError(t, err)
	_, err = js.Add(ctx, "second", "b", "")
	require.NoError(t, err)

	fb.setUpsertErr(fmt.Errorf("%w: connection refused", common.ErrNetwork))
	require.NoError(t, m.TriggerSync(ctx))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.PendingCount, "both entries survive the failed pass")
	assert.Contains(t, stats.LastError, "sync interrupted")

	got, err := js.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, got.SyncStatus)

	// link restored: the whole backlog drains in order
	fb.setUpsertErr(nil)
	require.NoError(t, m.TriggerSync(ctx))

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount)
	require.Equal(t, 2, fb.upsertCount())
	assert.Equal(t, "first", decryptTitle(t, fb.upserts[0].Record))
	assert.Equal(t, "second", decryptTitle(t, fb.upserts[1].Record))
}

// decryptTitle recovers the plaintext title from an upserted wire record.
// []byte fields arrive as base64 strings after the JSON round trip.
func decryptTitle(t *testing.T, record map[string]any) string {
	t.Helper()
	ciphertext := decodeB64(t, record["payload"])
	nonce := decodeB64(t, record["nonce"])

	var payload models.JournalPayload
	require.NoError(t, newTestCipher().Decrypt(ciphertext, nonce, &payload))
	return payload.Title
}

func decodeB64(t *testing.T, v any) []byte {
	t.Helper()
	s, ok := v.(string)
	require.True(t, ok, "expected base64 string, got %T", v)
	b, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestTriggerSync_SessionExpiryKeepsEntry(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "kept", "b", "")
	require.NoError(t, err)

	fb.setUpsertErr(common.ErrRefreshTokenExpired)
	require.NoError(t, m.TriggerSync(ctx))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount, "the backend never acknowledged, the entry is still owed")
	assert.Contains(t, stats.LastError, "session expired")

	got, err := js.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncPending, got.SyncStatus, "an expired session is not the record's failure")

	// logged in again: the backlog drains
	fb.setUpsertErr(nil)
	require.NoError(t, m.TriggerSync(ctx))

	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount)
	require.Equal(t, 1, fb.upsertCount())
	assert.Equal(t, "kept", decryptTitle(t, fb.upserts[0].Record))
}

func TestTriggerSync_UnauthorizedKeepsEntry(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	_, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)

	fb.setUpsertErr(common.ErrUnauthorized)
	require.NoError(t, m.TriggerSync(ctx))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Contains(t, stats.LastError, "log in again")
}

func TestTriggerSync_OverlappingTriggersCollapse(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	_, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)

	gate := make(chan struct{})
	fb.setUpsertGate(gate)

	firstDone := make(chan error, 1)
	go func() { firstDone <- m.TriggerSync(ctx) }()

	require.Eventually(t, func() bool { return fb.upsertsStarted() == 1 },
		time.Second, time.Millisecond, "first pass should be mid-delivery")

	// second trigger while the first pass holds the guard: returns at once
	require.NoError(t, m.TriggerSync(ctx))
	assert.Equal(t, 1, fb.upsertsStarted(), "no second drain pass started")

	close(gate)
	require.NoError(t, <-firstDone)

	require.Equal(t, 1, fb.upsertCount())
	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount)
}

func TestTriggerSync_TerminalRejectionDropsEntry(t *testing.T) {
	m, fb, js := newSyncFixture(t)
	ctx := context.Background()

	entry, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)

	fb.setUpsertErr(fmt.Errorf("%w: payload too large", common.ErrValidation))
	require.NoError(t, m.TriggerSync(ctx))

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.PendingCount, "rejected entry is dropped, not retried")
	assert.Contains(t, stats.LastError, "payload too large")

	got, err := js.Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SyncFailed, got.SyncStatus)

	m.ClearError()
	stats, err = m.Stats(ctx)
	require.NoError(t, err)
	assert.Empty(t, stats.LastError)
}

func TestTriggerSync_SkipsEntriesAtAttemptsCap(t *testing.T) {
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 2, testLogger())
	js := NewJournalService(st, fb, newTestCipher(), m, testLogger())
	ctx := context.Background()

	_, err := js.Add(ctx, "t", "b", "")
	require.NoError(t, err)

	fb.setUpsertErr(fmt.Errorf("%w: unreachable", common.ErrNetwork))
	require.NoError(t, m.TriggerSync(ctx))
	require.NoError(t, m.TriggerSync(ctx))

	// attempts cap reached: the entry is parked, the backend untouched
	fb.setUpsertErr(nil)
	require.NoError(t, m.TriggerSync(ctx))
	assert.Zero(t, fb.upsertCount())

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount)
	assert.Contains(t, stats.LastError, "could not be delivered")
}

func TestTriggerSync_SecretColumnsNeverLeaveDevice(t *testing.T) {
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	ps := NewPairingService(st, newTestCipher(), m, "erik", testLogger())
	ctx := context.Background()

	_, err := ps.CreateInvite(ctx, "Erik")
	require.NoError(t, err)
	require.NoError(t, m.TriggerSync(ctx))

	require.Equal(t, 1, fb.upsertCount())
	record := fb.upserts[0].Record
	assert.NotContains(t, record, "pending_private_key")
	assert.NotContains(t, record, "shared_key")
	assert.Contains(t, record, "own_public_key")
}

func TestEnqueue_RejectsUnknownTable(t *testing.T) {
	m, _, _ := newSyncFixture(t)
	err := m.Enqueue(context.Background(), "metadata", "x", models.OpInsert)
	assert.ErrorIs(t, err, common.ErrValidation)
}
