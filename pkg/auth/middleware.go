package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	golog "github.com/robinjoseph08/golib/logger"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/models"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Load builds the request's session from the session cookie. A missing,
// invalid or expired cookie, or one for a user that no longer exists, yields
// a guest session; the stale cookie is cleared.
func (m *Middleware) Load(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := Guest()

		cookie, err := c.Cookie(CookieName)
		if err == nil && cookie.Value != "" {
			if user, err := m.userFromToken(c, cookie.Value); err == nil {
				sess = &Session{User: user}
			} else {
				logger.FromEchoContext(c).Debug("discarding session cookie", golog.Data{"error": err.Error()})
				clearCookie(c)
			}
		}

		Attach(c, sess)
		return next(c)
	}
}

func (m *Middleware) userFromToken(c echo.Context, token string) (*models.User, error) {
	claims, err := m.authService.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return m.authService.GetUserByID(c.Request().Context(), claims.UserID)
}

// RequireUser rejects guests. Must be used after Load.
func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if FromEcho(c).IsGuest() {
			return errcodes.Unauthorized("Authentication required")
		}
		return next(c)
	}
}

// RequireAdmin rejects everyone but admins. Must be used after Load.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := FromEcho(c)
		if sess.IsGuest() {
			return errcodes.Unauthorized("Authentication required")
		}
		if !sess.IsAdmin() {
			return errcodes.Forbidden("This action")
		}
		return next(c)
	}
}
