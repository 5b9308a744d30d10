package service

import (
	"context"
	"sort"
	"time"

	"progression-service/internal/repository"
)

type fakeProgressionStore struct {
	records map[string]*repository.ProgressionRecord
	saveErr error
	saves   int
}

func newFakeProgressionStore() *fakeProgressionStore {
	return &fakeProgressionStore{records: make(map[string]*repository.ProgressionRecord)}
}

func (f *fakeProgressionStore) Get(ctx context.Context, userID string) (*repository.ProgressionRecord, error) {
	rec, ok := f.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (f *fakeProgressionStore) Save(ctx context.Context, rec *repository.ProgressionRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if rec.Version == 0 {
		rec.Version = 1
	} else {
		rec.Version++
	}
	rec.UpdatedAt = time.Now()
	f.records[rec.UserID] = copyRecord(rec)
	f.saves++
	return nil
}

func (f *fakeProgressionStore) ListTopByXP(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	var rows []repository.LeaderboardRow
	for _, rec := range f.records {
		rows = append(rows, repository.LeaderboardRow{
			UserID:  rec.UserID,
			TotalXP: (rec.State.Level-1)*100 + rec.State.XP,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TotalXP > rows[j].TotalXP })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func copyRecord(rec *repository.ProgressionRecord) *repository.ProgressionRecord {
	cp := *rec
	cp.QuizProgress = make(map[string]repository.ProgressEntry, len(rec.QuizProgress))
	for k, v := range rec.QuizProgress {
		cp.QuizProgress[k] = v
	}
	return &cp
}

type fakeUserStore struct {
	users map[string]*repository.User
}

func newFakeUserStore(ids ...string) *fakeUserStore {
	users := make(map[string]*repository.User, len(ids))
	for _, id := range ids {
		users[id] = &repository.User{ID: id, Email: id + "@example.com", CreatedAt: time.Now()}
	}
	return &fakeUserStore{users: users}
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, userID string) (*repository.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

type fakeAnswerStore struct {
	answers []*repository.AnsweredQuestion
}

func (f *fakeAnswerStore) Insert(ctx context.Context, answer *repository.AnsweredQuestion) error {
	if answer.ID == "" {
		answer.ID = "answer-" + time.Now().Format("150405.000000000")
	}
	cp := *answer
	f.answers = append(f.answers, &cp)
	return nil
}

// ListByUser mirrors the ORDER BY answered_at DESC of the real repository;
// reverse insertion order is equivalent for monotonically stamped records.
func (f *fakeAnswerStore) ListByUser(ctx context.Context, userID string) ([]*repository.AnsweredQuestion, error) {
	var out []*repository.AnsweredQuestion
	for i := len(f.answers) - 1; i >= 0; i-- {
		if f.answers[i].UserID == userID {
			out = append(out, f.answers[i])
		}
	}
	return out, nil
}

type fakePublisher struct {
	queues []string
	bodies [][]byte
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, body []byte) error {
	f.queues = append(f.queues, queueName)
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakePublisher) published(queueName string) bool {
	for _, q := range f.queues {
		if q == queueName {
			return true
		}
	}
	return false
}
