package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickorder/storefront/internal/api/middleware"
	"github.com/quickorder/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account and opens a session for it.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      412   {object}  map[string]string
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		Origin:   requestOrigin(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newAuthResponse(res))
}

// Login signs in with email or phone. target_role=admin is rejected for customers.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      412   {object}  map[string]string
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	target := ports.TargetCustomer
	if req.TargetRole == string(ports.TargetAdmin) {
		target = ports.TargetAdmin
	}

	res, err := h.authService.SignIn(c.Request().Context(), ports.SignInInput{
		Email:      req.Email,
		Phone:      req.Phone,
		Password:   req.Password,
		TargetRole: target,
		Origin:     requestOrigin(c),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newAuthResponse(res))
}

// Logout closes the caller's session.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	if err := h.authService.SignOut(c.Request().Context(), session.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller with a freshly resolved role.
//
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func newAuthResponse(res *ports.AuthResult) authResponse {
	resp := authResponse{Token: res.Token, User: res.User}
	if res.Session != nil {
		resp.ExpiresAt = res.Session.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func requestOrigin(c echo.Context) string {
	return c.Request().Header.Get(echo.HeaderOrigin)
}
