package constants

const (
	MaxHearts     = 5
	XPPerLevel    = 100
	DefaultXPGain = 10
)

const (
	ActionLoseHeart       = "loseHeart"
	ActionGainHeart       = "gainHeart"
	ActionRefillHearts    = "refillHearts"
	ActionAddXP           = "addXp"
	ActionUseStreakFreeze = "useStreakFreeze"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)
