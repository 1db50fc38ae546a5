package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/todosdemo/todos/pkg/models"
)

// CookieName is the name of the session cookie.
const CookieName = "todos_session"

type handler struct {
	authService *Service
}

// login handles user login.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Email, params.Password)
	if err != nil {
		return err
	}

	if err := h.authService.StartSession(c, user); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newSessionResponse(&Session{User: user}))
}

// logout handles user logout.
func (h *handler) logout(c echo.Context) error {
	clearCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// session returns the caller's session.
func (h *handler) session(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(FromEcho(c)))
}

// StartSession signs a token for user, sets the session cookie, and makes
// user the caller for the rest of the request.
func (s *Service) StartSession(c echo.Context, user *models.User) error {
	token, err := s.GenerateToken(user)
	if err != nil {
		return errors.WithStack(err)
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
	})
	Attach(c, &Session{User: user})
	return nil
}

func clearCookie(c echo.Context) {
	// Clear cookie by setting MaxAge to -1
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(c),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecure(c echo.Context) bool {
	return c.Request().TLS != nil || c.Request().Header.Get("X-Forwarded-Proto") == "https"
}
