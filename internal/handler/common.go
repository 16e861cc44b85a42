package handler

import (
	"errors"
	"net/http"

	"parley/internal/model"
	"parley/internal/repository"
)

// errorStatus 存储层错误到 HTTP 状态与错误体的映射
func errorStatus(err error, message string) (int, model.ErrorResponse) {
	switch {
	case errors.Is(err, repository.ErrInvalidID), errors.Is(err, repository.ErrInvalidRole):
		return http.StatusBadRequest, model.ErrorResponse{
			Code:    40002,
			Message: message,
			Detail:  err.Error(),
		}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, model.ErrorResponse{
			Code:    40401,
			Message: "Chat not found",
		}
	default:
		return http.StatusInternalServerError, model.ErrorResponse{
			Code:    50001,
			Message: message,
			Detail:  err.Error(),
		}
	}
}
