package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoseHeartNeverGoesBelowZero(t *testing.T) {
	s := DefaultState()
	for i := 0; i < 20; i++ {
		var res HeartsResult
		s, res = LoseHeart(s)
		assert.GreaterOrEqual(t, res.Hearts, 0)
		assert.Equal(t, s.Hearts, res.Hearts)
	}
	assert.Equal(t, 0, s.Hearts)
}

func TestGainHeartNeverExceedsMax(t *testing.T) {
	s := State{Hearts: 3, Level: 1}
	for i := 0; i < 20; i++ {
		var res HeartsResult
		s, res = GainHeart(s)
		assert.LessOrEqual(t, res.Hearts, 5)
	}
	assert.Equal(t, 5, s.Hearts)
}

func TestRefillHearts(t *testing.T) {
	now := time.Now()

	for _, hearts := range []int{0, 1, 3, 5} {
		s := State{Hearts: hearts, Level: 1}
		s, res := RefillHearts(s, now)
		assert.Equal(t, 5, res.Hearts)
		assert.Equal(t, 5, s.Hearts)
		require.NotNil(t, s.LastHeartRegenTime)
		assert.Equal(t, now, *s.LastHeartRegenTime)
	}
}

func TestAddXPArithmetic(t *testing.T) {
	tests := []struct {
		name      string
		xp        int
		level     int
		amount    int
		wantXP    int
		wantLevel int
		wantAdded int
	}{
		{"no level up", 40, 1, 30, 70, 1, 30},
		{"exact boundary", 90, 1, 10, 0, 2, 10},
		{"single level up", 95, 2, 20, 15, 3, 20},
		{"multiple levels in one grant", 50, 1, 350, 0, 5, 350},
		{"default amount when zero", 0, 1, 0, 10, 1, 10},
		{"default amount when negative", 0, 1, -5, 10, 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{XP: tt.xp, Level: tt.level}
			s, res := AddXP(s, tt.amount)
			assert.Equal(t, tt.wantXP, res.XP)
			assert.Equal(t, tt.wantLevel, res.Level)
			assert.Equal(t, tt.wantAdded, res.XPAdded)
			assert.Equal(t, s.XP, res.XP)
			assert.Equal(t, s.Level, res.Level)
		})
	}
}

func TestAddXPInvariantHolds(t *testing.T) {
	for xp0 := 0; xp0 < 100; xp0 += 7 {
		for amount := 1; amount < 500; amount += 53 {
			s := State{XP: xp0, Level: 3}
			s, _ = AddXP(s, amount)
			total := xp0 + amount
			assert.Equal(t, total%100, s.XP)
			assert.Equal(t, 3+total/100, s.Level)
			assert.Less(t, s.XP, 100)
		}
	}
}

func TestUseStreakFreezeRefusedWhenNoneAvailable(t *testing.T) {
	s := State{Hearts: 5, Level: 1, StreakFreezesAvailable: 0}
	after, _, err := UseStreakFreeze(s)
	require.ErrorIs(t, err, ErrNoFreezeAvailable)
	assert.Equal(t, s, after)
}

func TestUseStreakFreezeDecrementsAndActivates(t *testing.T) {
	s := State{Hearts: 5, Level: 1, StreakFreezesAvailable: 3}
	s, res, err := UseStreakFreeze(s)
	require.NoError(t, err)
	assert.Equal(t, 2, res.StreakFreezesAvailable)
	assert.True(t, res.StreakFreezeActive)
	assert.Equal(t, 2, s.StreakFreezesAvailable)
	assert.True(t, s.StreakFreezeActive)
}

func TestNormalizeAppliesDefaultsAndClamps(t *testing.T) {
	s := Normalize(State{Hearts: 9, XP: 250, Level: 0, Streak: -1, StreakFreezesAvailable: -2})
	assert.Equal(t, 5, s.Hearts)
	assert.Equal(t, 50, s.XP)
	assert.Equal(t, 3, s.Level)
	assert.Equal(t, 0, s.Streak)
	assert.Equal(t, 0, s.StreakFreezesAvailable)
}

func TestDefaultState(t *testing.T) {
	s := DefaultState()
	assert.Equal(t, 5, s.Hearts)
	assert.Equal(t, 0, s.XP)
	assert.Equal(t, 1, s.Level)
	assert.Equal(t, 0, s.Streak)
	assert.False(t, s.StreakFreezeActive)
	assert.Equal(t, 0, s.StreakFreezesAvailable)
	assert.Nil(t, s.LastHeartRegenTime)
}

func TestTotalXP(t *testing.T) {
	assert.Equal(t, 0, TotalXP(State{Level: 1, XP: 0}))
	assert.Equal(t, 215, TotalXP(State{Level: 3, XP: 15}))
}
