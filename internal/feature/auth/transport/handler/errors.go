package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rental_backend/internal/feature/auth/transport/http/dto"
	"rental_backend/internal/feature/auth/usecase"
)

const msgInternal = "internal server error"

// bindingMessage turns a binding failure into a field-level message.
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request body"
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// classify maps a usecase error to a status and client-facing message.
func classify(err error) (int, string) {
	var fieldErr *usecase.FieldError
	switch {
	case errors.As(err, &fieldErr):
		return http.StatusBadRequest, fieldErr.Error()
	case errors.Is(err, usecase.ErrEmailAlreadyExists):
		return http.StatusConflict, "email is already registered"
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized, usecase.ErrInvalidCredentials.Error()
	case errors.Is(err, usecase.ErrTooManyAttempts):
		return http.StatusTooManyRequests, usecase.ErrTooManyAttempts.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// writeError writes the response for a failed request and logs it exactly
// once. Causes of 500s are never sent to the client.
func writeError(c *gin.Context, op string, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), op+" failed", "error", err, "remote_addr", c.ClientIP())
	} else {
		slog.WarnContext(c.Request.Context(), op+" rejected", "error", err, "remote_addr", c.ClientIP())
	}
	c.JSON(status, dto.MessageRes{Message: msg})
}
