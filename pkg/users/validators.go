package users

import "github.com/todosdemo/todos/pkg/fsp"

// CreateUserPayload represents the signup request body.
type CreateUserPayload struct {
	Name     string `json:"name" mod:"trim" validate:"required,max=100"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// ListUsersQuery represents the query parameters for listing users.
type ListUsersQuery struct {
	fsp.Query
}
