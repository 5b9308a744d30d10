package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"progression-service/internal/constants"
	"progression-service/internal/gamification"
	"progression-service/internal/repository"
	"progression-service/pkg/cache"
)

const (
	stateCacheTTL       = 5 * time.Minute
	stateCacheKeyPrefix = "gamification:state:"
	leaderboardKey      = "gamification:leaderboard"
)

type ProgressionStore interface {
	Get(ctx context.Context, userID string) (*repository.ProgressionRecord, error)
	Save(ctx context.Context, rec *repository.ProgressionRecord) error
	ListTopByXP(ctx context.Context, limit int) ([]repository.LeaderboardRow, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*repository.User, error)
}

type Publisher interface {
	Publish(ctx context.Context, queueName string, body []byte) error
}

type GamificationService struct {
	progressionRepo ProgressionStore
	userRepo        UserStore
	redis           *cache.RedisClient
	mqPublisher     Publisher
}

func NewGamificationService(
	progressionRepo ProgressionStore,
	userRepo UserStore,
	redis *cache.RedisClient,
	mqPublisher Publisher,
) *GamificationService {
	return &GamificationService{
		progressionRepo: progressionRepo,
		userRepo:        userRepo,
		redis:           redis,
		mqPublisher:     mqPublisher,
	}
}

// StateView is the read model of a user's gamification record, with defaults
// already substituted for fields the stored row never had.
type StateView struct {
	Hearts                 int        `json:"hearts"`
	XP                     int        `json:"xp"`
	Level                  int        `json:"level"`
	Streak                 int        `json:"streak"`
	StreakFreezeActive     bool       `json:"streak_freeze_active"`
	StreakFreezesAvailable int        `json:"streak_freezes_available"`
	LastHeartRegenTime     *time.Time `json:"last_heart_regen_time,omitempty"`
	MaxHearts              int        `json:"max_hearts"`
	XPToNextLevel          int        `json:"xp_to_next_level"`
}

type ActionResult struct {
	Action                 string
	Hearts                 *int
	XP                     *int
	Level                  *int
	XPAdded                *int
	StreakFreezesAvailable *int
	StreakFreezeActive     *bool
}

type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"user_id"`
	TotalXP int    `json:"total_xp"`
}

func (s *GamificationService) GetState(ctx context.Context, userID string) (*StateView, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := s.redis.Get(ctx, stateCacheKeyPrefix+userID); err == nil {
			var view StateView
			if err := json.Unmarshal([]byte(data), &view); err == nil {
				return &view, nil
			}
		}
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := stateView(rec.State)
	s.cacheState(ctx, userID, view)
	return view, nil
}

// ApplyAction runs one gamification transition and persists the full updated
// record before returning. Refused actions (unknown name, no freeze left)
// never touch storage.
func (s *GamificationService) ApplyAction(ctx context.Context, userID, action string, amount int) (*ActionResult, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	prevLevel := gamification.Normalize(rec.State).Level
	result := &ActionResult{Action: action}

	switch action {
	case constants.ActionLoseHeart:
		var res gamification.HeartsResult
		rec.State, res = gamification.LoseHeart(rec.State)
		result.Hearts = &res.Hearts

	case constants.ActionGainHeart:
		var res gamification.HeartsResult
		rec.State, res = gamification.GainHeart(rec.State)
		result.Hearts = &res.Hearts

	case constants.ActionRefillHearts:
		var res gamification.HeartsResult
		rec.State, res = gamification.RefillHearts(rec.State, time.Now())
		result.Hearts = &res.Hearts

	case constants.ActionAddXP:
		var res gamification.XPResult
		rec.State, res = gamification.AddXP(rec.State, amount)
		result.XP = &res.XP
		result.Level = &res.Level
		result.XPAdded = &res.XPAdded

	case constants.ActionUseStreakFreeze:
		newState, res, err := gamification.UseStreakFreeze(rec.State)
		if err != nil {
			return nil, err
		}
		rec.State = newState
		result.StreakFreezesAvailable = &res.StreakFreezesAvailable
		result.StreakFreezeActive = &res.StreakFreezeActive

	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidAction, action)
	}

	if err := s.progressionRepo.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.invalidateState(ctx, userID)

	if action == constants.ActionAddXP {
		s.updateLeaderboard(ctx, userID, rec.State)
		if rec.State.Level > prevLevel {
			s.publishLevelUp(ctx, userID, rec.State.Level)
		}
	}
	if action == constants.ActionUseStreakFreeze {
		s.publishStreakFreezeUsed(ctx, userID, rec.State.StreakFreezesAvailable)
	}

	return result, nil
}

// Leaderboard is a simple sorted retrieval of the top users by lifetime XP.
// Served from the redis sorted set when available, otherwise straight from
// Postgres.
func (s *GamificationService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	if s.redis != nil {
		zs, err := s.redis.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1))
		if err == nil && len(zs) > 0 {
			entries := make([]LeaderboardEntry, 0, len(zs))
			for i, z := range zs {
				member, _ := z.Member.(string)
				entries = append(entries, LeaderboardEntry{
					Rank:    i + 1,
					UserID:  member,
					TotalXP: int(z.Score),
				})
			}
			return entries, nil
		}
	}

	rows, err := s.progressionRepo.ListTopByXP(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, LeaderboardEntry{
			Rank:    i + 1,
			UserID:  row.UserID,
			TotalXP: row.TotalXP,
		})
	}
	return entries, nil
}

func (s *GamificationService) checkUser(ctx context.Context, userID string) error {
	_, err := s.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// loadOrInit materializes the implicit record: a user with no progression row
// behaves as if one existed with all defaults.
func (s *GamificationService) loadOrInit(ctx context.Context, userID string) (*repository.ProgressionRecord, error) {
	rec, err := s.progressionRepo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.NewProgressionRecord(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}

func stateView(state gamification.State) *StateView {
	state = gamification.Normalize(state)
	return &StateView{
		Hearts:                 state.Hearts,
		XP:                     state.XP,
		Level:                  state.Level,
		Streak:                 state.Streak,
		StreakFreezeActive:     state.StreakFreezeActive,
		StreakFreezesAvailable: state.StreakFreezesAvailable,
		LastHeartRegenTime:     state.LastHeartRegenTime,
		MaxHearts:              constants.MaxHearts,
		XPToNextLevel:          constants.XPPerLevel,
	}
}

func (s *GamificationService) cacheState(ctx context.Context, userID string, view *StateView) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, stateCacheKeyPrefix+userID, data, stateCacheTTL); err != nil {
		log.Printf("Failed to cache gamification state for %s: %v", userID, err)
	}
}

func (s *GamificationService) invalidateState(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, stateCacheKeyPrefix+userID); err != nil {
		log.Printf("Failed to invalidate gamification state for %s: %v", userID, err)
	}
}

func (s *GamificationService) updateLeaderboard(ctx context.Context, userID string, state gamification.State) {
	if s.redis == nil {
		return
	}
	score := float64(gamification.TotalXP(state))
	if err := s.redis.ZAdd(ctx, leaderboardKey, userID, score); err != nil {
		log.Printf("Failed to update leaderboard for %s: %v", userID, err)
	}
}

func (s *GamificationService) publishLevelUp(ctx context.Context, userID string, level int) {
	if s.mqPublisher == nil {
		return
	}

	event := map[string]string{
		"user_id": userID,
		"level":   strconv.Itoa(level),
	}
	eventData, _ := json.Marshal(event)

	if err := s.mqPublisher.Publish(ctx, "gamification.level_up", eventData); err != nil {
		log.Printf("Failed to publish level_up event: %v", err)
	}
}

func (s *GamificationService) publishStreakFreezeUsed(ctx context.Context, userID string, remaining int) {
	if s.mqPublisher == nil {
		return
	}

	event := map[string]string{
		"user_id":   userID,
		"remaining": strconv.Itoa(remaining),
	}
	eventData, _ := json.Marshal(event)

	if err := s.mqPublisher.Publish(ctx, "gamification.streak_freeze_used", eventData); err != nil {
		log.Printf("Failed to publish streak_freeze_used event: %v", err)
	}
}
