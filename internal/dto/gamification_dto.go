package dto

type GamificationStateResponse struct {
	Hearts                 int    `json:"hearts"`
	XP                     int    `json:"xp"`
	Level                  int    `json:"level"`
	Streak                 int    `json:"streak"`
	StreakFreezeActive     bool   `json:"streak_freeze_active"`
	StreakFreezesAvailable int    `json:"streak_freezes_available"`
	LastHeartRegenTime     string `json:"last_heart_regen_time,omitempty"`
	MaxHearts              int    `json:"max_hearts"`
	XPToNextLevel          int    `json:"xp_to_next_level"`
}

type GamificationActionRequest struct {
	Action string `json:"action" binding:"required"`
	Amount int    `json:"amount"`
}

type GamificationActionResponse struct {
	Success                bool   `json:"success"`
	Action                 string `json:"action"`
	Hearts                 *int   `json:"hearts,omitempty"`
	XP                     *int   `json:"xp,omitempty"`
	Level                  *int   `json:"level,omitempty"`
	XPAdded                *int   `json:"xp_added,omitempty"`
	StreakFreezesAvailable *int   `json:"streak_freezes_available,omitempty"`
	StreakFreezeActive     *bool  `json:"streak_freeze_active,omitempty"`
}

type LeaderboardEntryDTO struct {
	Rank    int    `json:"rank"`
	UserID  string `json:"user_id"`
	TotalXP int    `json:"total_xp"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntryDTO `json:"entries"`
}
