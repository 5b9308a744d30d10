package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"progression-service/internal/repository"
	"progression-service/pkg/cache"
	"progression-service/pkg/jwt"
	"progression-service/pkg/validator"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	authRepo    *repository.AuthRepository
	userRepo    *repository.UserRepository
	mqPublisher Publisher
	jwtSecret   string
}

func NewAuthService(redis *cache.RedisClient, db *sql.DB, mqPublisher Publisher, jwtSecret string) *AuthService {
	return &AuthService{
		authRepo:    repository.NewAuthRepository(redis, db),
		userRepo:    repository.NewUserRepository(db),
		mqPublisher: mqPublisher,
		jwtSecret:   jwtSecret,
	}
}

type AuthTokens struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// Login starts the passwordless flow: generate a short code, stash it in
// redis with a TTL and hand it to the notification consumer for delivery.
func (s *AuthService) Login(ctx context.Context, email string) error {
	email = validator.NormalizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalidCredentials)
	}

	code, err := generateCode(4)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.authRepo.SaveAuthCode(ctx, email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.publishSendCode(ctx, email, code)

	return nil
}

func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (*AuthTokens, error) {
	email = validator.NormalizeEmail(email)

	authCode, err := s.authRepo.GetAuthCode(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: verification code not found or expired", ErrInvalidCredentials)
	}

	if authCode.Attempts >= repository.MaxAttempts {
		s.authRepo.DeleteAuthCode(ctx, email)
		return nil, fmt.Errorf("%w: too many failed attempts", ErrInvalidCredentials)
	}

	if authCode.Code != code {
		s.authRepo.IncrementAuthCodeAttempts(ctx, email)
		return nil, fmt.Errorf("%w: invalid verification code", ErrInvalidCredentials)
	}

	if time.Now().After(authCode.ExpiresAt) {
		s.authRepo.DeleteAuthCode(ctx, email)
		return nil, fmt.Errorf("%w: verification code expired", ErrInvalidCredentials)
	}

	user, err := s.userRepo.GetOrCreateUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	tokens, err := jwt.GenerateTokenPair(user.ID, user.Email, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken := repository.NewRefreshToken(tokens.RefreshToken, user.ID, time.Now().Add(jwt.RefreshTokenDuration), time.Now())
	if err := s.authRepo.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.authRepo.DeleteAuthCode(ctx, email)

	return &AuthTokens{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		UserID:       user.ID,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthTokens, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrInvalidCredentials)
	}

	storedToken, err := s.authRepo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token not found", ErrInvalidCredentials)
	}

	if time.Now().After(storedToken.ExpiresAt) {
		s.authRepo.DeleteRefreshToken(ctx, refreshToken)
		return nil, fmt.Errorf("%w: refresh token expired", ErrInvalidCredentials)
	}

	newTokens, err := jwt.GenerateTokenPair(claims.UserID, claims.Email, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.authRepo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		log.Printf("Failed to delete old refresh token: %v", err)
	}

	newRefreshToken := repository.NewRefreshToken(newTokens.RefreshToken, claims.UserID, time.Now().Add(jwt.RefreshTokenDuration), time.Now())
	if err := s.authRepo.SaveRefreshToken(ctx, newRefreshToken); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &AuthTokens{
		AccessToken:  newTokens.AccessToken,
		RefreshToken: newTokens.RefreshToken,
		UserID:       claims.UserID,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	jti, err := jwt.ExtractJTI(accessToken)
	if err != nil {
		return fmt.Errorf("%w: invalid access token", ErrInvalidCredentials)
	}

	if err := s.authRepo.AddToBlacklist(ctx, jti); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// LogoutAll revokes every session: the current access token goes on the
// blacklist and all of the user's refresh tokens are deleted, so nothing
// can be rotated back into a valid pair.
func (s *AuthService) LogoutAll(ctx context.Context, accessToken string) error {
	claims, err := jwt.ValidateAccessToken(accessToken, s.jwtSecret)
	if err != nil {
		return fmt.Errorf("%w: invalid access token", ErrInvalidCredentials)
	}

	if err := s.authRepo.DeleteAllUserRefreshTokens(ctx, claims.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := s.authRepo.AddToBlacklist(ctx, claims.JTI); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

func (s *AuthService) AuthRepo() *repository.AuthRepository {
	return s.authRepo
}

func (s *AuthService) publishSendCode(ctx context.Context, email, code string) {
	if s.mqPublisher == nil {
		return
	}

	event := map[string]string{
		"email": email,
		"code":  code,
	}
	eventData, _ := json.Marshal(event)

	if err := s.mqPublisher.Publish(ctx, "auth.send_code", eventData); err != nil {
		log.Printf("Failed to publish send_code event: %v", err)
	}
}

func generateCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += n.String()
	}
	return code, nil
}
