package service

import (
	"context"
	"testing"

	"progression-service/internal/gamification"
	"progression-service/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGamificationFixture(userIDs ...string) (*GamificationService, *fakeProgressionStore, *fakePublisher) {
	store := newFakeProgressionStore()
	publisher := &fakePublisher{}
	svc := NewGamificationService(store, newFakeUserStore(userIDs...), nil, publisher)
	return svc, store, publisher
}

func TestGetStateDefaultsForFreshUser(t *testing.T) {
	svc, _, _ := newGamificationFixture("u1")

	view, err := svc.GetState(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 5, view.Hearts)
	assert.Equal(t, 0, view.XP)
	assert.Equal(t, 1, view.Level)
	assert.Equal(t, 0, view.Streak)
	assert.Equal(t, 5, view.MaxHearts)
	assert.Equal(t, 100, view.XPToNextLevel)
	assert.Nil(t, view.LastHeartRegenTime)
}

func TestGetStateUnknownUser(t *testing.T) {
	svc, _, _ := newGamificationFixture("u1")

	_, err := svc.GetState(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApplyActionCreatesRecordImplicitly(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1")

	result, err := svc.ApplyAction(context.Background(), "u1", "loseHeart", 0)
	require.NoError(t, err)
	require.NotNil(t, result.Hearts)
	assert.Equal(t, 4, *result.Hearts)

	rec, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, rec.State.Hearts)
	assert.Equal(t, int64(1), rec.Version)
}

func TestApplyActionLoseHeartClampsAtZero(t *testing.T) {
	svc, _, _ := newGamificationFixture("u1")

	var last int
	for i := 0; i < 8; i++ {
		result, err := svc.ApplyAction(context.Background(), "u1", "loseHeart", 0)
		require.NoError(t, err)
		last = *result.Hearts
	}
	assert.Equal(t, 0, last)
}

func TestApplyActionAddXPAcrossLevelBoundary(t *testing.T) {
	svc, store, publisher := newGamificationFixture("u1")

	rec := repository.NewProgressionRecord("u1")
	rec.State = gamification.State{Hearts: 5, XP: 95, Level: 2}
	require.NoError(t, store.Save(context.Background(), rec))

	result, err := svc.ApplyAction(context.Background(), "u1", "addXp", 20)
	require.NoError(t, err)
	assert.Equal(t, 15, *result.XP)
	assert.Equal(t, 3, *result.Level)
	assert.Equal(t, 20, *result.XPAdded)

	assert.True(t, publisher.published("gamification.level_up"))
}

func TestApplyActionAddXPDefaultAmount(t *testing.T) {
	svc, _, _ := newGamificationFixture("u1")

	result, err := svc.ApplyAction(context.Background(), "u1", "addXp", 0)
	require.NoError(t, err)
	assert.Equal(t, 10, *result.XPAdded)
	assert.Equal(t, 10, *result.XP)
	assert.Equal(t, 1, *result.Level)
}

func TestApplyActionUseStreakFreeze(t *testing.T) {
	svc, store, publisher := newGamificationFixture("u1")

	rec := repository.NewProgressionRecord("u1")
	rec.State.StreakFreezesAvailable = 2
	require.NoError(t, store.Save(context.Background(), rec))

	result, err := svc.ApplyAction(context.Background(), "u1", "useStreakFreeze", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, *result.StreakFreezesAvailable)
	assert.True(t, *result.StreakFreezeActive)
	assert.True(t, publisher.published("gamification.streak_freeze_used"))
}

func TestApplyActionUseStreakFreezeRefusedWithoutFreezes(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1")

	rec := repository.NewProgressionRecord("u1")
	require.NoError(t, store.Save(context.Background(), rec))
	savesBefore := store.saves

	_, err := svc.ApplyAction(context.Background(), "u1", "useStreakFreeze", 0)
	assert.ErrorIs(t, err, ErrNoFreezeAvailable)
	assert.Equal(t, savesBefore, store.saves)

	stored, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, stored.State.StreakFreezeActive)
	assert.Equal(t, 0, stored.State.StreakFreezesAvailable)
}

func TestApplyActionUnknownActionRefused(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1")

	_, err := svc.ApplyAction(context.Background(), "u1", "becomeAdmin", 0)
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, 0, store.saves)
}

func TestApplyActionStorageFailureLeavesStateUntouched(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1")

	rec := repository.NewProgressionRecord("u1")
	require.NoError(t, store.Save(context.Background(), rec))
	store.saveErr = repository.ErrVersionConflict

	_, err := svc.ApplyAction(context.Background(), "u1", "loseHeart", 0)
	assert.ErrorIs(t, err, ErrStorage)

	stored, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.State.Hearts)
	assert.Equal(t, int64(1), stored.Version)
}

func TestApplyActionUnknownUser(t *testing.T) {
	svc, _, _ := newGamificationFixture("u1")

	_, err := svc.ApplyAction(context.Background(), "nobody", "loseHeart", 0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestApplyActionRefillHeartsStampsRegenTime(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1")

	rec := repository.NewProgressionRecord("u1")
	rec.State.Hearts = 1
	require.NoError(t, store.Save(context.Background(), rec))

	result, err := svc.ApplyAction(context.Background(), "u1", "refillHearts", 0)
	require.NoError(t, err)
	assert.Equal(t, 5, *result.Hearts)

	stored, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, stored.State.LastHeartRegenTime)
}

func TestLeaderboardSortedByTotalXP(t *testing.T) {
	svc, store, _ := newGamificationFixture("u1", "u2", "u3")

	for _, seed := range []struct {
		id    string
		level int
		xp    int
	}{
		{"u1", 1, 40},
		{"u2", 3, 10},
		{"u3", 2, 0},
	} {
		rec := repository.NewProgressionRecord(seed.id)
		rec.State.Level = seed.level
		rec.State.XP = seed.xp
		require.NoError(t, store.Save(context.Background(), rec))
	}

	entries, err := svc.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "u2", entries[0].UserID)
	assert.Equal(t, 210, entries[0].TotalXP)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "u3", entries[1].UserID)
	assert.Equal(t, "u1", entries[2].UserID)
}
