package gamification

import (
	"errors"
	"time"

	"progression-service/internal/constants"
)

var ErrNoFreezeAvailable = errors.New("no streak freeze available")

// State is the per-user gamification record. Persisted rows may predate any
// given column, so loaders pass whatever they have through Normalize before
// applying a transition.
type State struct {
	Hearts                 int
	XP                     int
	Level                  int
	Streak                 int
	StreakFreezeActive     bool
	StreakFreezesAvailable int
	LastHeartRegenTime     *time.Time
}

func DefaultState() State {
	return State{
		Hearts: constants.MaxHearts,
		XP:     0,
		Level:  1,
		Streak: 0,
	}
}

// Normalize clamps a state back inside its invariants: 0 <= hearts <= 5,
// 0 <= xp < 100 (overflow rolled into level), level >= 1, counters >= 0.
func Normalize(s State) State {
	if s.Hearts < 0 {
		s.Hearts = 0
	}
	if s.Hearts > constants.MaxHearts {
		s.Hearts = constants.MaxHearts
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.XP < 0 {
		s.XP = 0
	}
	for s.XP >= constants.XPPerLevel {
		s.XP -= constants.XPPerLevel
		s.Level++
	}
	if s.Streak < 0 {
		s.Streak = 0
	}
	if s.StreakFreezesAvailable < 0 {
		s.StreakFreezesAvailable = 0
	}
	return s
}

type HeartsResult struct {
	Hearts int
}

type XPResult struct {
	XP      int
	Level   int
	XPAdded int
}

type FreezeResult struct {
	StreakFreezesAvailable int
	StreakFreezeActive     bool
}

// LoseHeart clamps at zero; reaching zero is not an error, callers inspect
// the returned count.
func LoseHeart(s State) (State, HeartsResult) {
	s = Normalize(s)
	if s.Hearts > 0 {
		s.Hearts--
	}
	return s, HeartsResult{Hearts: s.Hearts}
}

func GainHeart(s State) (State, HeartsResult) {
	s = Normalize(s)
	if s.Hearts < constants.MaxHearts {
		s.Hearts++
	}
	return s, HeartsResult{Hearts: s.Hearts}
}

func RefillHearts(s State, now time.Time) (State, HeartsResult) {
	s = Normalize(s)
	s.Hearts = constants.MaxHearts
	s.LastHeartRegenTime = &now
	return s, HeartsResult{Hearts: s.Hearts}
}

// AddXP grants amount (default when <= 0) and rolls overflow into levels.
// A single large grant may cross several level boundaries, hence the loop.
func AddXP(s State, amount int) (State, XPResult) {
	s = Normalize(s)
	if amount <= 0 {
		amount = constants.DefaultXPGain
	}
	s.XP += amount
	for s.XP >= constants.XPPerLevel {
		s.XP -= constants.XPPerLevel
		s.Level++
	}
	return s, XPResult{XP: s.XP, Level: s.Level, XPAdded: amount}
}

func UseStreakFreeze(s State) (State, FreezeResult, error) {
	s = Normalize(s)
	if s.StreakFreezesAvailable == 0 {
		return s, FreezeResult{}, ErrNoFreezeAvailable
	}
	s.StreakFreezesAvailable--
	s.StreakFreezeActive = true
	return s, FreezeResult{
		StreakFreezesAvailable: s.StreakFreezesAvailable,
		StreakFreezeActive:     s.StreakFreezeActive,
	}, nil
}

// TotalXP is the lifetime score used for leaderboard ordering.
func TotalXP(s State) int {
	return (s.Level-1)*constants.XPPerLevel + s.XP
}
