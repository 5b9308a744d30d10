package handlers

import (
	"net/http"
	"strings"

	"progression-service/internal/dto"
	"progression-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login godoc
// @Summary Request a login verification code
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Email"
// @Success 200 {object} dto.LoginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.authService.Login(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: "Verification code sent to your email",
	})
}

// VerifyCode godoc
// @Summary Exchange a verification code for tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyCodeRequest true "Email and code"
// @Success 200 {object} dto.VerifyCodeResponse
// @Router /auth/verify [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokens, err := h.authService.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyCodeResponse{
		Success:      true,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       tokens.UserID,
	})
}

// RefreshToken godoc
// @Summary Rotate a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.RefreshTokenResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.JsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	tokens, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RefreshTokenResponse{
		Success:      true,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout godoc
// @Summary Revoke the current access token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.LogoutResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		dto.JsonError(c, http.StatusUnauthorized, "Invalid authorization header format")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), parts[1]); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LogoutResponse{
		Success: true,
		Message: "Logged out",
	})
}

// LogoutAll godoc
// @Summary Revoke all sessions for the current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.LogoutResponse
// @Router /auth/logout-all [post]
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		dto.JsonError(c, http.StatusUnauthorized, "Invalid authorization header format")
		return
	}

	if err := h.authService.LogoutAll(c.Request.Context(), parts[1]); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LogoutResponse{
		Success: true,
		Message: "Logged out everywhere",
	})
}
