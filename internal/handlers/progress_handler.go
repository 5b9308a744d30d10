package handlers

import (
	"net/http"
	"time"

	"progression-service/internal/dto"
	"progression-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ProgressHandler struct {
	progressService *service.ProgressService
}

func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// SaveProgress godoc
// @Summary Save resumable quiz progress for one difficulty
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveProgressRequest true "Progress"
// @Success 200 {object} dto.SaveProgressResponse
// @Router /quiz-progress [post]
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	userID := c.GetString("user_id")

	var req dto.SaveProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.progressService.SaveProgress(c.Request.Context(), userID, req.Difficulty, req.CurrentIndex, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SaveProgressResponse{
		Success: true,
		Message: "Progress saved",
	})
}

// GetProgress godoc
// @Summary Get quiz progress for all difficulties
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.GetProgressResponse
// @Router /quiz-progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID := c.GetString("user_id")

	progress, err := h.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	dtoProgress := make(map[string]dto.ProgressEntryDTO, len(progress))
	for difficulty, entry := range progress {
		dtoProgress[difficulty] = dto.ProgressEntryDTO{
			CurrentIndex: entry.CurrentIndex,
			Answers:      entry.Answers,
		}
	}

	c.JSON(http.StatusOK, dto.GetProgressResponse{Progress: dtoProgress})
}

// ResetProgress godoc
// @Summary Remove quiz progress for one difficulty
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param difficulty path string true "Difficulty tier"
// @Success 200 {object} dto.ResetProgressResponse
// @Router /quiz-progress/{difficulty} [delete]
func (h *ProgressHandler) ResetProgress(c *gin.Context) {
	userID := c.GetString("user_id")
	difficulty := c.Param("difficulty")

	if err := h.progressService.ResetProgress(c.Request.Context(), userID, difficulty); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResetProgressResponse{
		Success: true,
		Message: "Progress reset",
	})
}

// RecordAnswer godoc
// @Summary Append one answered-question record
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RecordAnswerRequest true "Answer"
// @Success 200 {object} dto.RecordAnswerResponse
// @Router /answer-history [post]
func (h *ProgressHandler) RecordAnswer(c *gin.Context) {
	userID := c.GetString("user_id")

	var req dto.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.progressService.RecordAnswer(
		c.Request.Context(),
		userID,
		req.Question,
		req.Options,
		req.CorrectAnswer,
		req.UserAnswer,
		req.IsCorrect,
		req.Difficulty,
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RecordAnswerResponse{
		Success: true,
		Record: dto.AnsweredQuestionDTO{
			ID:            record.ID,
			Question:      record.Question,
			Options:       record.Options,
			CorrectAnswer: record.CorrectAnswer,
			UserAnswer:    record.UserAnswer,
			IsCorrect:     record.IsCorrect,
			Difficulty:    record.Difficulty,
			AnsweredAt:    record.AnsweredAt.Format(time.RFC3339),
		},
	})
}

// AnswerHistory godoc
// @Summary List answered questions, newest first
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.AnswerHistoryResponse
// @Router /answer-history [get]
func (h *ProgressHandler) AnswerHistory(c *gin.Context) {
	userID := c.GetString("user_id")

	records, err := h.progressService.ListAnswerHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	history := make([]dto.AnsweredQuestionDTO, len(records))
	for i, r := range records {
		history[i] = dto.AnsweredQuestionDTO{
			ID:            r.ID,
			Question:      r.Question,
			Options:       r.Options,
			CorrectAnswer: r.CorrectAnswer,
			UserAnswer:    r.UserAnswer,
			IsCorrect:     r.IsCorrect,
			Difficulty:    r.Difficulty,
			AnsweredAt:    r.AnsweredAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, dto.AnswerHistoryResponse{History: history})
}
