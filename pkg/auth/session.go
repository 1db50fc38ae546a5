package auth

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/todosdemo/todos/pkg/models"
)

type contextKey struct{}

const echoKey = "session"

// Session is the caller of one request. A session without a user is a
// guest.
type Session struct {
	User *models.User
}

// Guest is the session of an unauthenticated caller.
func Guest() *Session {
	return &Session{}
}

// Role is the caller's role, models.RoleGuest for guests.
func (s *Session) Role() string {
	if s == nil || s.User == nil {
		return models.RoleGuest
	}
	return s.User.Role
}

func (s *Session) IsGuest() bool {
	return s == nil || s.User == nil
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.User.IsAdmin()
}

// UserID is the caller's user id, nil for guests.
func (s *Session) UserID() *int {
	if s.IsGuest() {
		return nil
	}
	id := s.User.ID
	return &id
}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored in ctx, or a guest session.
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(contextKey{}).(*Session); ok && sess != nil {
		return sess
	}
	return Guest()
}

// FromEcho returns the session the Load middleware attached to c, or a guest
// session.
func FromEcho(c echo.Context) *Session {
	if sess, ok := c.Get(echoKey).(*Session); ok && sess != nil {
		return sess
	}
	return FromContext(c.Request().Context())
}

// Attach makes sess the session of the request behind c.
func Attach(c echo.Context, sess *Session) {
	c.Set(echoKey, sess)
	req := c.Request()
	c.SetRequest(req.WithContext(NewContext(req.Context(), sess)))
}
