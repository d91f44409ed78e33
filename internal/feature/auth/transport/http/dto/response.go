package dto

import "rental_backend/internal/feature/auth/domain/entity"

// MessageRes is the body of error responses and of logout.
type MessageRes struct {
	Message string `json:"message"`
}

// AuthRes is returned by register and login.
type AuthRes struct {
	Message string            `json:"message"`
	User    entity.PublicUser `json:"user"`
}
