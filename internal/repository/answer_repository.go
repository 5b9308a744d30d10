package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AnsweredQuestion is one immutable attempt-history record. The log is
// append-only and not keyed by question identity, so repeat attempts at the
// same question produce separate rows.
type AnsweredQuestion struct {
	ID            string
	UserID        string
	Question      string
	Options       []string
	CorrectAnswer string
	UserAnswer    string
	IsCorrect     bool
	Difficulty    string
	AnsweredAt    time.Time
}

type AnswerRepository struct {
	db *sql.DB
}

func NewAnswerRepository(db *sql.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Insert(ctx context.Context, answer *AnsweredQuestion) error {
	if answer.ID == "" {
		answer.ID = uuid.New().String()
	}
	if answer.AnsweredAt.IsZero() {
		answer.AnsweredAt = time.Now()
	}

	optionsJSON, err := json.Marshal(answer.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	query := `
		INSERT INTO answered_questions (
			id, user_id, question, options, correct_answer,
			user_answer, is_correct, difficulty, answered_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		answer.ID,
		answer.UserID,
		answer.Question,
		optionsJSON,
		answer.CorrectAnswer,
		answer.UserAnswer,
		answer.IsCorrect,
		answer.Difficulty,
		answer.AnsweredAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert answered question: %w", err)
	}

	return nil
}

func (r *AnswerRepository) ListByUser(ctx context.Context, userID string) ([]*AnsweredQuestion, error) {
	query := `
		SELECT id, user_id, question, options, correct_answer,
		       user_answer, is_correct, difficulty, answered_at
		FROM answered_questions
		WHERE user_id = $1
		ORDER BY answered_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answered questions: %w", err)
	}
	defer rows.Close()

	var answers []*AnsweredQuestion
	for rows.Next() {
		var answer AnsweredQuestion
		var optionsJSON []byte

		if err := rows.Scan(
			&answer.ID,
			&answer.UserID,
			&answer.Question,
			&optionsJSON,
			&answer.CorrectAnswer,
			&answer.UserAnswer,
			&answer.IsCorrect,
			&answer.Difficulty,
			&answer.AnsweredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan answered question: %w", err)
		}

		if err := json.Unmarshal(optionsJSON, &answer.Options); err != nil {
			return nil, fmt.Errorf("failed to unmarshal options: %w", err)
		}

		answers = append(answers, &answer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return answers, nil
}
