package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	middleware "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Svc.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return fail(l, "register_error", err)
	}
	return h.respond(c, http.StatusCreated, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(l, "login_error", err)
	}
	return h.respond(c, http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth.me")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Me(c.Request().Context(), userID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *AuthHTTP) respond(c echo.Context, status int, res *service.LoginResult) error {
	c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, res.AccessToken, "/", res.AccessExp))
	return c.JSON(status, transport.AuthResponse{
		User:        res.User,
		AccessToken: res.AccessToken,
		ExpiresAt:   res.AccessExp,
	})
}

func currentUser(c echo.Context) (string, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
