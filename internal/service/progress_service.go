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
	"progression-service/internal/repository"
)

type AnswerStore interface {
	Insert(ctx context.Context, answer *repository.AnsweredQuestion) error
	ListByUser(ctx context.Context, userID string) ([]*repository.AnsweredQuestion, error)
}

type ProgressService struct {
	progressionRepo ProgressionStore
	answerRepo      AnswerStore
	userRepo        UserStore
	mqPublisher     Publisher
}

func NewProgressService(
	progressionRepo ProgressionStore,
	answerRepo AnswerStore,
	userRepo UserStore,
	mqPublisher Publisher,
) *ProgressService {
	return &ProgressService{
		progressionRepo: progressionRepo,
		answerRepo:      answerRepo,
		userRepo:        userRepo,
		mqPublisher:     mqPublisher,
	}
}

// SaveProgress upserts the whole entry for one difficulty tier. The entry is
// replaced, not merged: the saved index and answers are exactly what resumes.
// currentIndex comes in as a pointer so an omitted field is distinguishable
// from a legitimate zero.
func (s *ProgressService) SaveProgress(ctx context.Context, userID, difficulty string, currentIndex *int, answers map[string]string) error {
	if !validDifficulty(difficulty) || currentIndex == nil || *currentIndex < 0 || answers == nil {
		return fmt.Errorf("%w: difficulty, currentIndex and answers are required", ErrMissingField)
	}

	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return err
	}

	rec.QuizProgress[difficulty] = repository.ProgressEntry{
		CurrentIndex: *currentIndex,
		Answers:      answers,
	}

	if err := s.progressionRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

func (s *ProgressService) GetProgress(ctx context.Context, userID string) (map[string]repository.ProgressEntry, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	return rec.QuizProgress, nil
}

// ResetProgress deletes the tier's entry outright, so a later GetProgress
// omits the key instead of returning a zeroed entry.
func (s *ProgressService) ResetProgress(ctx context.Context, userID, difficulty string) error {
	if !validDifficulty(difficulty) {
		return fmt.Errorf("%w: difficulty is required", ErrMissingField)
	}

	if err := s.checkUser(ctx, userID); err != nil {
		return err
	}

	rec, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return err
	}

	if _, ok := rec.QuizProgress[difficulty]; !ok {
		return nil
	}

	delete(rec.QuizProgress, difficulty)

	if err := s.progressionRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// RecordAnswer appends one immutable history record stamped with the current
// time. userAnswer, isCorrect and options are presence-checked (a wrong empty
// answer, a false correctness flag and an empty option set are valid data),
// the rest must be non-empty.
func (s *ProgressService) RecordAnswer(ctx context.Context, userID, question string, options []string, correctAnswer string, userAnswer *string, isCorrect *bool, difficulty string) (*repository.AnsweredQuestion, error) {
	if question == "" || options == nil || correctAnswer == "" || !validDifficulty(difficulty) || userAnswer == nil || isCorrect == nil {
		return nil, fmt.Errorf("%w: question, options, correctAnswer, userAnswer, isCorrect and difficulty are required", ErrMissingField)
	}

	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	answer := &repository.AnsweredQuestion{
		UserID:        userID,
		Question:      question,
		Options:       options,
		CorrectAnswer: correctAnswer,
		UserAnswer:    *userAnswer,
		IsCorrect:     *isCorrect,
		Difficulty:    difficulty,
		AnsweredAt:    time.Now(),
	}

	if err := s.answerRepo.Insert(ctx, answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishAnswerRecorded(ctx, userID, difficulty, *isCorrect)

	return answer, nil
}

func (s *ProgressService) ListAnswerHistory(ctx context.Context, userID string) ([]*repository.AnsweredQuestion, error) {
	if err := s.checkUser(ctx, userID); err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return answers, nil
}

func validDifficulty(difficulty string) bool {
	switch difficulty {
	case constants.DifficultyEasy, constants.DifficultyMedium, constants.DifficultyHard:
		return true
	}
	return false
}

func (s *ProgressService) checkUser(ctx context.Context, userID string) error {
	_, err := s.userRepo.GetUserByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (s *ProgressService) loadOrInit(ctx context.Context, userID string) (*repository.ProgressionRecord, error) {
	rec, err := s.progressionRepo.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.NewProgressionRecord(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}

func (s *ProgressService) publishAnswerRecorded(ctx context.Context, userID, difficulty string, isCorrect bool) {
	if s.mqPublisher == nil {
		return
	}

	event := map[string]string{
		"user_id":    userID,
		"difficulty": difficulty,
		"is_correct": strconv.FormatBool(isCorrect),
	}
	eventData, _ := json.Marshal(event)

	if err := s.mqPublisher.Publish(ctx, "progress.answer_recorded", eventData); err != nil {
		log.Printf("Failed to publish answer_recorded event: %v", err)
	}
}
