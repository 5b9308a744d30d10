package handlers

import (
	"errors"
	"net/http"

	"progression-service/internal/dto"
	"progression-service/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		dto.JsonError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidAction),
		errors.Is(err, service.ErrNoFreezeAvailable),
		errors.Is(err, service.ErrInvalidCredentials):
		dto.JsonError(c, http.StatusBadRequest, err.Error())
	default:
		dto.JsonError(c, http.StatusInternalServerError, err.Error())
	}
}
