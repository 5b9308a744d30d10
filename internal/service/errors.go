package service

import (
	"errors"

	"progression-service/internal/gamification"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidAction     = errors.New("invalid action")
	ErrNoFreezeAvailable = gamification.ErrNoFreezeAvailable
	ErrStorage           = errors.New("storage failure")
)
