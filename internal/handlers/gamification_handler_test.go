package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"progression-service/internal/repository"
	"progression-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProgressionStore struct {
	records map[string]*repository.ProgressionRecord
}

func (s *stubProgressionStore) Get(ctx context.Context, userID string) (*repository.ProgressionRecord, error) {
	rec, ok := s.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return rec, nil
}

func (s *stubProgressionStore) Save(ctx context.Context, rec *repository.ProgressionRecord) error {
	if rec.Version == 0 {
		rec.Version = 1
	} else {
		rec.Version++
	}
	s.records[rec.UserID] = rec
	return nil
}

func (s *stubProgressionStore) ListTopByXP(ctx context.Context, limit int) ([]repository.LeaderboardRow, error) {
	return nil, nil
}

type stubUserStore struct{}

func (s *stubUserStore) GetUserByID(ctx context.Context, userID string) (*repository.User, error) {
	if userID != "u1" {
		return nil, repository.ErrNotFound
	}
	return &repository.User{ID: userID, Email: "u1@example.com", CreatedAt: time.Now()}, nil
}

func newTestRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	store := &stubProgressionStore{records: make(map[string]*repository.ProgressionRecord)}
	svc := service.NewGamificationService(store, &stubUserStore{}, nil, nil)
	handler := NewGamificationHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})
	router.GET("/gamification", handler.GetState)
	router.POST("/gamification/action", handler.ApplyAction)
	return router
}

func TestGetStateReturnsDefaultsAndConstants(t *testing.T) {
	router := newTestRouter("u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/gamification", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 5, body["hearts"])
	assert.EqualValues(t, 1, body["level"])
	assert.EqualValues(t, 5, body["max_hearts"])
	assert.EqualValues(t, 100, body["xp_to_next_level"])
}

func TestApplyActionLoseHeart(t *testing.T) {
	router := newTestRouter("u1")

	payload, _ := json.Marshal(map[string]interface{}{"action": "loseHeart"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/gamification/action", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 4, body["hearts"])
}

func TestApplyActionUnknownActionIsBadRequest(t *testing.T) {
	router := newTestRouter("u1")

	payload, _ := json.Marshal(map[string]interface{}{"action": "teleport"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/gamification/action", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyActionUnknownUserIsNotFound(t *testing.T) {
	router := newTestRouter("nobody")

	payload, _ := json.Marshal(map[string]interface{}{"action": "loseHeart"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/gamification/action", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApplyActionMissingActionIsBadRequest(t *testing.T) {
	router := newTestRouter("u1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/gamification/action", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
