package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"progression-service/internal/gamification"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

// ProgressEntry is the resumable cursor for one difficulty tier: how far the
// user got and what they answered so far, keyed by question index.
type ProgressEntry struct {
	CurrentIndex int               `json:"currentIndex"`
	Answers      map[string]string `json:"answers"`
}

// ProgressionRecord is the full per-user record: gamification state plus the
// per-difficulty quiz progress sub-document. Version 0 means the row has not
// been persisted yet.
type ProgressionRecord struct {
	UserID       string
	State        gamification.State
	QuizProgress map[string]ProgressEntry
	Version      int64
	UpdatedAt    time.Time
}

func NewProgressionRecord(userID string) *ProgressionRecord {
	return &ProgressionRecord{
		UserID:       userID,
		State:        gamification.DefaultState(),
		QuizProgress: make(map[string]ProgressEntry),
	}
}

type ProgressionRepository struct {
	db *sql.DB
}

func NewProgressionRepository(db *sql.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

func (r *ProgressionRepository) Get(ctx context.Context, userID string) (*ProgressionRecord, error) {
	query := `
		SELECT user_id, hearts, xp, level, streak, streak_freeze_active,
		       streak_freezes_available, last_heart_regen_time, quiz_progress,
		       version, updated_at
		FROM user_progression
		WHERE user_id = $1
	`

	var (
		rec              ProgressionRecord
		hearts           sql.NullInt64
		xp               sql.NullInt64
		level            sql.NullInt64
		streak           sql.NullInt64
		freezeActive     sql.NullBool
		freezesAvailable sql.NullInt64
		lastRegen        sql.NullTime
		progressJSON     []byte
	)

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID,
		&hearts,
		&xp,
		&level,
		&streak,
		&freezeActive,
		&freezesAvailable,
		&lastRegen,
		&progressJSON,
		&rec.Version,
		&rec.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progression record: %w", err)
	}

	// NULL columns are legacy rows from before the field existed; substitute
	// the documented defaults (normalize on read).
	state := gamification.DefaultState()
	if hearts.Valid {
		state.Hearts = int(hearts.Int64)
	}
	if xp.Valid {
		state.XP = int(xp.Int64)
	}
	if level.Valid {
		state.Level = int(level.Int64)
	}
	if streak.Valid {
		state.Streak = int(streak.Int64)
	}
	if freezeActive.Valid {
		state.StreakFreezeActive = freezeActive.Bool
	}
	if freezesAvailable.Valid {
		state.StreakFreezesAvailable = int(freezesAvailable.Int64)
	}
	if lastRegen.Valid {
		t := lastRegen.Time
		state.LastHeartRegenTime = &t
	}
	rec.State = gamification.Normalize(state)

	rec.QuizProgress = make(map[string]ProgressEntry)
	if len(progressJSON) > 0 {
		if err := json.Unmarshal(progressJSON, &rec.QuizProgress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal quiz progress: %w", err)
		}
	}

	return &rec, nil
}

// Save writes the full record. Updates are conditional on the version the
// record was loaded at, so two concurrent read-modify-writes cannot both win;
// the loser gets ErrVersionConflict and nothing is applied.
func (r *ProgressionRepository) Save(ctx context.Context, rec *ProgressionRecord) error {
	progressJSON, err := json.Marshal(rec.QuizProgress)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz progress: %w", err)
	}

	var lastRegen sql.NullTime
	if rec.State.LastHeartRegenTime != nil {
		lastRegen = sql.NullTime{Time: *rec.State.LastHeartRegenTime, Valid: true}
	}

	if rec.Version == 0 {
		query := `
			INSERT INTO user_progression (
				user_id, hearts, xp, level, streak, streak_freeze_active,
				streak_freezes_available, last_heart_regen_time, quiz_progress,
				version, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10)
		`

		_, err := r.db.ExecContext(ctx, query,
			rec.UserID,
			rec.State.Hearts,
			rec.State.XP,
			rec.State.Level,
			rec.State.Streak,
			rec.State.StreakFreezeActive,
			rec.State.StreakFreezesAvailable,
			lastRegen,
			progressJSON,
			time.Now(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert progression record: %w", err)
		}
		rec.Version = 1
		return nil
	}

	query := `
		UPDATE user_progression
		SET hearts = $3,
		    xp = $4,
		    level = $5,
		    streak = $6,
		    streak_freeze_active = $7,
		    streak_freezes_available = $8,
		    last_heart_regen_time = $9,
		    quiz_progress = $10,
		    version = version + 1,
		    updated_at = $11
		WHERE user_id = $1 AND version = $2
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.UserID,
		rec.Version,
		rec.State.Hearts,
		rec.State.XP,
		rec.State.Level,
		rec.State.Streak,
		rec.State.StreakFreezeActive,
		rec.State.StreakFreezesAvailable,
		lastRegen,
		progressJSON,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update progression record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrVersionConflict
	}

	rec.Version++
	return nil
}

// LeaderboardRow is one entry of the sorted-by-total-XP retrieval.
type LeaderboardRow struct {
	UserID  string
	TotalXP int
}

func (r *ProgressionRepository) ListTopByXP(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	query := `
		SELECT user_id, (COALESCE(level, 1) - 1) * 100 + COALESCE(xp, 0) AS total_xp
		FROM user_progression
		ORDER BY total_xp DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.TotalXP); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
