package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebergstrom/daybreak/internal/client/models"
	"github.com/ebergstrom/daybreak/internal/common"
)

func newCheckInFixture(t *testing.T) (CheckInService, *SyncManager) {
	t.Helper()
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	return NewCheckInService(st, newTestCipher(), m, testLogger()), m
}

func TestCheckIn_OncePerDay(t *testing.T) {
	cs, m := newCheckInFixture(t)
	ctx := context.Background()

	checkIn, err := cs.CheckIn(ctx, 7, 2, "grateful for coffee")
	require.NoError(t, err)
	assert.Equal(t, time.Now().Format(dateLayout), checkIn.CheckedOn)

	_, err = cs.CheckIn(ctx, 8, 1, "")
	assert.ErrorIs(t, err, common.ErrState)

	items, err := cs.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Mood)
	assert.Equal(t, 2, items[0].Craving)
	assert.Equal(t, "grateful for coffee", items[0].Gratitude)
	assert.Equal(t, models.SyncPending, items[0].SyncStatus)

	stats, err := m.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.PendingCount)
}

func TestCheckIn_ValidatesScores(t *testing.T) {
	cs, _ := newCheckInFixture(t)
	ctx := context.Background()

	_, err := cs.CheckIn(ctx, 0, 5, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = cs.CheckIn(ctx, 5, 11, "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestStreak(t *testing.T) {
	st := newTestStore(t)
	fb := &fakeBackend{}
	m := NewSyncManager(st, fb, 3, testLogger())
	cipher := newTestCipher()
	cs := NewCheckInService(st, cipher, m, testLogger())
	ctx := context.Background()

	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	insertOn := func(daysAgo int) {
		date := now.AddDate(0, 0, -daysAgo).Format(dateLayout)
		ct, nonce, err := cipher.Encrypt(models.CheckInPayload{Mood: 5, Craving: 5})
		require.NoError(t, err)
		require.NoError(t, st.CheckIns.Insert(ctx, &models.CheckIn{
			ID: date, CheckedOn: date, Payload: ct, Nonce: nonce,
			SyncStatus: models.SyncPending, CreatedAt: now,
		}))
	}

	streak, err := cs.Streak(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	// yesterday and the day before, but not today: streak still alive
	insertOn(1)
	insertOn(2)
	streak, err = cs.Streak(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	insertOn(0)
	streak, err = cs.Streak(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)

	// a gap five days back does not extend the current run
	insertOn(5)
	streak, err = cs.Streak(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}
