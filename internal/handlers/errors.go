package handlers

import (
	"errors"
	"net/http"

	"plutoTodo/internal/logger"
	"plutoTodo/internal/service"

	"go.uber.org/zap"
)

var (
	errUnknownCommand = errors.New("неизвестная команда")
)

func handleError(w http.ResponseWriter, command string, err error) {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		logger.Error("HTTP: Необработанная ошибка", err, zap.String("command", command))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	fields := []zap.Field{
		zap.String("command", command),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("HTTP: Ошибка хранилища", businessErr.Err, fields...)
	} else {
		logger.Warn("HTTP: Бизнес-ошибка", fields...)
	}

	responseWithError(w, statusCode, errorMessage(businessErr))
}

// errorMessage для ошибок хранилища добавляет причину к описанию действия
func errorMessage(be *service.BusinessError) string {
	if be.Code == service.CodePersistence && be.Err != nil {
		return be.Message + ": " + be.Err.Error()
	}
	return be.Message
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeHasSubtasks:
		return http.StatusConflict
	case service.CodeLockContention:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
