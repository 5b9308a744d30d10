package service

import (
	"context"
	"testing"

	"progression-service/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogoutRejectsMalformedToken(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, "test-secret")

	err := svc.Logout(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutAllRejectsMalformedToken(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, "test-secret")

	err := svc.LogoutAll(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutAllRejectsTokenSignedWithOtherSecret(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, "test-secret")

	tokens, err := jwt.GenerateTokenPair("u1", "u1@example.com", "other-secret")
	require.NoError(t, err)

	err = svc.LogoutAll(context.Background(), tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInvalidEmail(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, "test-secret")

	err := svc.Login(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
