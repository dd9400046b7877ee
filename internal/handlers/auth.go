package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/laundry_service/internal/logging"
	"github.com/Skotchmaster/laundry_service/internal/service"
	"github.com/Skotchmaster/laundry_service/internal/transport"
	"github.com/Skotchmaster/laundry_service/pkg/tokens"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	token, exp, user, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err, "cannot log in")
	}

	ck := tokens.CreateCookie(tokens.AccessCookie, token, "/", exp)
	ck.Secure = h.SecureCookie
	c.SetCookie(ck)
	l.Info("login_success", "user_id", user.ID, "role", user.Role)
	return c.JSON(http.StatusOK, transport.LoginResponse{AccessToken: token, ExpiresAt: exp, User: user})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	return c.NoContent(http.StatusNoContent)
}
