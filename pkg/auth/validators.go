package auth

import "github.com/todosdemo/todos/pkg/models"

// LoginPayload represents the login request body.
type LoginPayload struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the caller. User is omitted for guests.
type SessionResponse struct {
	Role string       `json:"role"`
	User *models.User `json:"user,omitempty"`
}

func newSessionResponse(sess *Session) SessionResponse {
	return SessionResponse{Role: sess.Role(), User: sess.User}
}
