package handlers

import (
	"net/http"
	"strconv"
	"time"

	"progression-service/internal/dto"
	"progression-service/internal/service"

	"github.com/gin-gonic/gin"
)

type GamificationHandler struct {
	gamificationService *service.GamificationService
}

func NewGamificationHandler(gamificationService *service.GamificationService) *GamificationHandler {
	return &GamificationHandler{
		gamificationService: gamificationService,
	}
}

// GetState godoc
// @Summary Get current gamification state
// @Tags Gamification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.GamificationStateResponse
// @Router /gamification [get]
func (h *GamificationHandler) GetState(c *gin.Context) {
	userID := c.GetString("user_id")

	view, err := h.gamificationService.GetState(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.GamificationStateResponse{
		Hearts:                 view.Hearts,
		XP:                     view.XP,
		Level:                  view.Level,
		Streak:                 view.Streak,
		StreakFreezeActive:     view.StreakFreezeActive,
		StreakFreezesAvailable: view.StreakFreezesAvailable,
		MaxHearts:              view.MaxHearts,
		XPToNextLevel:          view.XPToNextLevel,
	}
	if view.LastHeartRegenTime != nil {
		resp.LastHeartRegenTime = view.LastHeartRegenTime.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, resp)
}

// ApplyAction godoc
// @Summary Apply a gamification action
// @Tags Gamification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GamificationActionRequest true "Action"
// @Success 200 {object} dto.GamificationActionResponse
// @Router /gamification/action [post]
func (h *GamificationHandler) ApplyAction(c *gin.Context) {
	userID := c.GetString("user_id")

	var req dto.GamificationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.gamificationService.ApplyAction(c.Request.Context(), userID, req.Action, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GamificationActionResponse{
		Success:                true,
		Action:                 result.Action,
		Hearts:                 result.Hearts,
		XP:                     result.XP,
		Level:                  result.Level,
		XPAdded:                result.XPAdded,
		StreakFreezesAvailable: result.StreakFreezesAvailable,
		StreakFreezeActive:     result.StreakFreezeActive,
	})
}

// Leaderboard godoc
// @Summary Top users by lifetime XP
// @Tags Gamification
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries" default(10)
// @Success 200 {object} dto.LeaderboardResponse
// @Router /gamification/leaderboard [get]
func (h *GamificationHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	entries, err := h.gamificationService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	dtoEntries := make([]dto.LeaderboardEntryDTO, len(entries))
	for i, e := range entries {
		dtoEntries[i] = dto.LeaderboardEntryDTO{
			Rank:    e.Rank,
			UserID:  e.UserID,
			TotalXP: e.TotalXP,
		}
	}

	c.JSON(http.StatusOK, dto.LeaderboardResponse{Entries: dtoEntries})
}
