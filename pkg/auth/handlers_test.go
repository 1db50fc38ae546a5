package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todosdemo/todos/pkg/binder"
	"github.com/todosdemo/todos/pkg/errcodes"
	"github.com/todosdemo/todos/pkg/models"
)

func newTestContext(t *testing.T, payload, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(method, path, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewService(db, testSecret, time.Hour)
	h := &handler{authService: svc}
	user := createUser(t, db, "ann@example.com", "password123", models.RoleAdmin)

	c, rr := newTestContext(t, `{"email":" ANN@example.com ","password":"password123"}`, http.MethodPost, "/api/auth/login")
	err := h.login(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Role string `json:"role"`
		User struct {
			ID           int    `json:"id"`
			Email        string `json:"email"`
			PasswordHash string `json:"password_hash"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleAdmin, resp.Role)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Empty(t, resp.User.PasswordHash)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	claims, err := svc.ValidateToken(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)

	assert.Equal(t, user.ID, FromEcho(c).User.ID)
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	h := &handler{authService: NewService(db, testSecret, time.Hour)}
	createUser(t, db, "ann@example.com", "password123", models.RoleUser)

	for _, payload := range []string{
		`{"email":"ann@example.com","password":"wrong-password"}`,
		`{"email":"bob@example.com","password":"password123"}`,
	} {
		c, rr := newTestContext(t, payload, http.MethodPost, "/api/auth/login")
		err := h.login(c)

		var codeErr *errcodes.Error
		require.ErrorAs(t, err, &codeErr)
		assert.Equal(t, http.StatusUnauthorized, codeErr.HTTPCode)
		assert.Empty(t, rr.Result().Cookies())
	}
}

func TestHandler_Login_Validation(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	h := &handler{authService: NewService(db, testSecret, time.Hour)}

	c, _ := newTestContext(t, `{"email":"nope"}`, http.MethodPost, "/api/auth/login")
	err := h.login(c)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)
	assert.Contains(t, codeErr.Fields, "email")
	assert.Contains(t, codeErr.Fields, "password")
}

func TestHandler_Logout(t *testing.T) {
	t.Parallel()

	h := &handler{}
	c, rr := newTestContext(t, "", http.MethodPost, "/api/auth/logout")

	require.NoError(t, h.logout(c))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestHandler_Session(t *testing.T) {
	t.Parallel()

	h := &handler{}

	c, rr := newTestContext(t, "", http.MethodGet, "/api/auth/session")
	Attach(c, Guest())
	require.NoError(t, h.session(c))
	assert.JSONEq(t, `{"role":"guest"}`, rr.Body.String())

	c, rr = newTestContext(t, "", http.MethodGet, "/api/auth/session")
	Attach(c, &Session{User: &models.User{ID: 4, Name: "Bob", Email: "bob@example.com", Role: models.RoleUser}})
	require.NoError(t, h.session(c))

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, models.RoleUser, resp.Role)
	require.NotNil(t, resp.User)
	assert.Equal(t, 4, resp.User.ID)
}

func TestService_TokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewService(nil, testSecret, 0)
	assert.Equal(t, DefaultSessionMaxAge, svc.MaxAge())

	a, err := svc.GenerateToken(&models.User{ID: 7})
	require.NoError(t, err)
	b, err := svc.GenerateToken(&models.User{ID: 7})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	claims, err := svc.ValidateToken(a)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
}
